package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openswarm-io/skysweep/controller"
	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/geo"
)

// missionCmd publishes a mission plan into the shared store.
var missionCmd = &cobra.Command{
	Use:   "mission [plan-file]",
	Short: "Publish a mission plan",
	Long: `Read a YAML mission plan and publish it through the mission
controller: roster, fleet parameters, search areas, coverage assignments
and bridges, then the takeoff command.

With --watch the command keeps running, periodically printing fleet
positions and any reported detections.`,
	Args: cobra.ExactArgs(1),
	RunE: runMission,
}

func init() {
	rootCmd.AddCommand(missionCmd)

	missionCmd.Flags().Bool("watch", false, "Keep watching fleet positions after publishing")
	missionCmd.Flags().Duration("watch-interval", 2*time.Second, "Position poll interval with --watch")
	missionCmd.Flags().Bool("land-on-exit", false, "Publish the land command when the watch loop exits")
}

// planPosition and friends mirror the mission plan file schema.
type planPosition struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

type planRegion struct {
	TopLeft     planPosition `yaml:"top_left"`
	BottomRight planPosition `yaml:"bottom_right"`
}

func (r planRegion) region() geo.Region {
	return geo.Region{
		TopLeft:     geo.Position{Lat: r.TopLeft.Lat, Lon: r.TopLeft.Lon},
		BottomRight: geo.Position{Lat: r.BottomRight.Lat, Lon: r.BottomRight.Lon},
	}
}

type planArea struct {
	ID     int        `yaml:"id"`
	Region planRegion `yaml:"region"`
}

type planAssignment struct {
	Area      int     `yaml:"area"`
	Agents    []int   `yaml:"agents"`
	Strategy  string  `yaml:"strategy"`
	LineWidth float64 `yaml:"line_width"`
}

type planBridge struct {
	ID    int        `yaml:"id"`
	Start planRegion `yaml:"start"`
	End   planRegion `yaml:"end"`
}

type planParameters struct {
	CommRange       float64 `yaml:"comm_range"`
	MinAltitude     float64 `yaml:"min_altitude"`
	AltitudeSpacing float64 `yaml:"altitude_spacing"`
	LineWidth       float64 `yaml:"line_width"`
}

type missionPlan struct {
	Roster      []int            `yaml:"roster"`
	Parameters  planParameters   `yaml:"parameters"`
	Areas       []planArea       `yaml:"areas"`
	Assignments []planAssignment `yaml:"assignments"`
	Bridges     []planBridge     `yaml:"bridges"`
	Takeoff     bool             `yaml:"takeoff"`
}

func loadPlan(path string) (*missionPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mission plan: %w", err)
	}
	var plan missionPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", core.ErrInvalidConfiguration, path, err)
	}
	if len(plan.Roster) == 0 {
		return nil, fmt.Errorf("%w: mission plan has an empty roster", core.ErrInvalidConfiguration)
	}
	return &plan, nil
}

func runMission(cmd *cobra.Command, args []string) error {
	plan, err := loadPlan(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := core.NewProductionLogger("mission", cfg.Logging)
	store, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create knowledge store: %w", err)
	}
	tel, shutdownTelemetry, err := newTelemetry(cfg)
	if err != nil {
		return fmt.Errorf("failed to create telemetry: %w", err)
	}
	defer shutdownTelemetry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mission := controller.NewMissionController(store, logger, tel)
	if err := publishPlan(ctx, mission, plan); err != nil {
		return err
	}
	fmt.Printf("Mission published: %d agents, %d areas, %d bridges\n",
		len(plan.Roster), len(plan.Areas), len(plan.Bridges))

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}

	interval, _ := cmd.Flags().GetDuration("watch-interval")
	watchFleet(ctx, mission, plan.Roster, interval)

	if land, _ := cmd.Flags().GetBool("land-on-exit"); land {
		// Use a fresh context; the watch context is already canceled.
		return mission.Land(context.Background())
	}
	return nil
}

func publishPlan(ctx context.Context, mission *controller.MissionController, plan *missionPlan) error {
	if err := mission.PublishRoster(ctx, plan.Roster); err != nil {
		return fmt.Errorf("publishing roster: %w", err)
	}
	if err := mission.UpdateGeneralParameters(ctx, controller.GeneralParameters{
		TotalDevices:    len(plan.Roster),
		CommRange:       plan.Parameters.CommRange,
		MinAltitude:     plan.Parameters.MinAltitude,
		AltitudeSpacing: plan.Parameters.AltitudeSpacing,
		LineWidth:       plan.Parameters.LineWidth,
	}); err != nil {
		return fmt.Errorf("publishing parameters: %w", err)
	}

	for _, area := range plan.Areas {
		if err := mission.RegisterSearchArea(ctx, area.ID, area.Region.region()); err != nil {
			return err
		}
	}
	for _, a := range plan.Assignments {
		if err := mission.AssignCoverage(ctx, a.Agents, a.Area, a.Strategy, a.LineWidth); err != nil {
			return err
		}
	}
	for _, b := range plan.Bridges {
		if _, err := mission.RegisterBridge(ctx, b.ID, b.Start.region(), b.End.region()); err != nil {
			return err
		}
	}

	if plan.Takeoff {
		if err := mission.Takeoff(ctx); err != nil {
			return fmt.Errorf("publishing takeoff: %w", err)
		}
	}
	return nil
}

func watchFleet(ctx context.Context, mission *controller.MissionController, roster []int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			positions, err := mission.CurrentPositions(ctx, roster)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading positions: %v\n", err)
				continue
			}
			ids := make([]int, 0, len(positions))
			for id := range positions {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			for _, id := range ids {
				p := positions[id]
				fmt.Printf("agent %d: lat=%.7f lon=%.7f alt=%.1f\n", id, p.Lat, p.Lon, p.Alt)
			}

			detections, err := mission.CurrentDetections(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading detections: %v\n", err)
				continue
			}
			for _, d := range detections {
				fmt.Printf("detection at %v confidence=%.2f\n", d.Position, d.Confidence)
			}
		}
	}
}
