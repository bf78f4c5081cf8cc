// Package cli provides the command-line interface for skysweep.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openswarm-io/skysweep/core"
	"github.com/openswarm-io/skysweep/telemetry"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "skysweep",
	Short: "Drone fleet coordination core",
	Long: `Skysweep coordinates a drone fleet searching an area:

  1. A mission controller publishes search areas and assignments
  2. Each agent ranks itself among its available peers
  3. Agents deterministically partition the area into disjoint cells
  4. A coverage strategy walks each cell as a waypoint sequence

All coordination flows through a shared key/value store; agents never
talk to each other directly.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./skysweep.yaml)")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis URL backing the shared knowledge store")
	rootCmd.PersistentFlags().String("namespace", "skysweep", "key namespace within the store")
	rootCmd.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")

	viper.BindPFlag("redis_url", rootCmd.PersistentFlags().Lookup("redis-url"))
	viper.BindPFlag("namespace", rootCmd.PersistentFlags().Lookup("namespace"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("skysweep")
	}

	viper.SetEnvPrefix("SKYSWEEP")
	viper.AutomaticEnv()

	viper.ReadInConfig()
}

// loadConfig assembles the core configuration from the config file, the
// environment and command-line flags, flags winning.
func loadConfig(opts ...core.Option) (*core.Config, error) {
	if url := viper.GetString("redis_url"); url != "" {
		opts = append(opts, core.WithRedisURL(url))
	}
	opts = append(opts, func(c *core.Config) {
		if ns := viper.GetString("namespace"); ns != "" {
			c.Store.Namespace = ns
		}
		if lvl := viper.GetString("log_level"); lvl != "" {
			c.Logging.Level = lvl
		}
	})

	if file := viper.ConfigFileUsed(); file != "" {
		return core.LoadConfigFile(file, opts...)
	}
	return core.NewConfig(opts...)
}

// newStore builds the knowledge store the configuration selects. The
// in-memory backend only coordinates agents within one process; separate
// processes need Redis.
func newStore(cfg *core.Config, logger core.Logger) (core.KnowledgeStore, error) {
	switch cfg.Store.Provider {
	case "redis":
		return core.NewRedisKnowledge(core.RedisKnowledgeOptions{
			RedisURL:  cfg.Store.RedisURL,
			Namespace: cfg.Store.Namespace,
			Logger:    logger,
		})
	case "inmemory":
		return core.NewInMemoryKnowledge(), nil
	default:
		return nil, fmt.Errorf("%w: store provider %q", core.ErrInvalidConfiguration, cfg.Store.Provider)
	}
}

// newTelemetry builds the OTel provider when enabled, the no-op otherwise.
func newTelemetry(cfg *core.Config) (core.Telemetry, func(), error) {
	if !cfg.Telemetry.Enabled {
		return &core.NoOpTelemetry{}, func() {}, nil
	}
	provider, err := telemetry.NewOTelProvider(cfg.Telemetry)
	if err != nil {
		return nil, nil, err
	}
	shutdown := func() {
		_ = provider.Shutdown(context.Background())
	}
	return provider, shutdown, nil
}
