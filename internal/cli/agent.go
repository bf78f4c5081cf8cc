package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openswarm-io/skysweep/controller"
	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
	"github.com/openswarm-io/skysweep/internal/sim"
)

// agentCmd runs one coordination agent: the area-coverage state machine plus
// a simulated vehicle that consumes the movement commands it produces.
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run one coverage agent",
	Long: `Run one coverage agent against the shared knowledge store.

The agent waits for a search-area assignment, ranks itself among its
peers, covers its cell with the requested strategy, and publishes its
telemetry back into the store. A built-in simulated vehicle executes the
movement commands; point --redis-url at a shared server to run a fleet
as separate processes.`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)

	agentCmd.Flags().Int("id", 0, "Agent id within the fleet")
	agentCmd.Flags().Float64("start-lat", 0, "Initial latitude")
	agentCmd.Flags().Float64("start-lon", 0, "Initial longitude")
	agentCmd.Flags().Float64("sim-speed", 0.05, "Simulated speed in degrees per tick")
	agentCmd.Flags().Duration("tick", 0, "Evaluation interval (default from config)")

	viper.BindPFlag("agent_id", agentCmd.Flags().Lookup("id"))
}

func runAgent(cmd *cobra.Command, args []string) error {
	opts := []core.Option{core.WithAgentID(viper.GetInt("agent_id"))}
	if tick, _ := cmd.Flags().GetDuration("tick"); tick > 0 {
		opts = append(opts, core.WithTickInterval(tick))
	}
	cfg, err := loadConfig(opts...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := core.NewProductionLogger(fmt.Sprintf("agent-%d", cfg.AgentID), cfg.Logging)
	store, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create knowledge store: %w", err)
	}
	tel, shutdownTelemetry, err := newTelemetry(cfg)
	if err != nil {
		return fmt.Errorf("failed to create telemetry: %w", err)
	}
	defer shutdownTelemetry()

	startLat, _ := cmd.Flags().GetFloat64("start-lat")
	startLon, _ := cmd.Flags().GetFloat64("start-lon")
	simSpeed, _ := cmd.Flags().GetFloat64("sim-speed")

	engine := core.NewTickEngine(cfg.Engine.TickInterval, logger)
	vehicle := sim.NewVehicle(cfg.AgentID, geo.Position{Lat: startLat, Lon: startLon}, simSpeed, store, logger)
	vehicle.Register(engine)
	coverage := controller.NewAreaCoverageController(cfg, store, logger, tel)
	coverage.Register(engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Start(ctx); err != nil {
		return err
	}
	logger.Info("Agent running", map[string]interface{}{
		"agent": cfg.AgentID,
		"store": cfg.Store.Provider,
		"tick":  cfg.Engine.TickInterval.String(),
	})

	<-ctx.Done()
	engine.Stop()
	logger.Info("Agent stopped", map[string]interface{}{"agent": cfg.AgentID})
	return nil
}
