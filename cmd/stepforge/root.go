package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/v0xg/stepforge/internal/config"
	"github.com/v0xg/stepforge/internal/observability"
	"github.com/v0xg/stepforge/internal/session"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

// flagKeys binds command flags, wherever a command defines them, to config keys
var flagKeys = map[string]string{
	"headless":   "browser.headless",
	"proxy":      "browser.proxy",
	"user-agent": "browser.user_agent",
	"stealth":    "browser.stealth",
	"profile":    "browser.profile_dir",
	"timeout":    "executor.timeout",
	"target":     "output.target",
	"dir":        "output.dir",
	"provider":   "ai.provider",
	"model":      "ai.model",
}

// app carries what every subcommand needs once configuration is loaded
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *zap.Logger

	// launch and clock replace the rod launcher and wall clock in tests
	launch session.Launcher
	clock  func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "stepforge",
		Short: "Record browser actions and turn them into runnable scripts",
		Long: `stepforge drives a browser one action at a time. Every action that
succeeds is recorded; the recording can be saved as JSON, replayed,
and generated into a standalone go-rod program or Selenium script.

Example:
  stepforge console --headless
  stepforge generate actions_20261019_153000.json --target python`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./stepforge.yaml)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newConsoleCmd(a),
		newGenerateCmd(a),
		newReplayCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// init loads configuration, with the running command's flags taking
// precedence, and starts the logger.
func (a *app) init(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		observability.InitializeLogger(config.NewDefaultConfig().Logger)
		return err
	}
	a.cfg = cfg
	observability.InitializeLogger(cfg.Logger)
	a.logger = observability.GetLogger()
	a.logger.Debug("Configuration loaded.", zap.String("version", Version), zap.String("config_file", a.v.ConfigFileUsed()))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
