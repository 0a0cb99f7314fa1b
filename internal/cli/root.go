package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"narraive/internal/backend"
	"narraive/internal/config"
	"narraive/internal/logging"
	"narraive/internal/service"
	"narraive/internal/store/memory"
)

var (
	appVersion = "dev"
	appCommit  = "none"
)

// app carries the resolved configuration between PersistentPreRunE and the subcommands.
type app struct {
	cfgFile string
	cfgPath string
	cfg     *config.AppConfig
	v       *viper.Viper
}

// NewRootCmd builds the command tree. Running it without a subcommand starts the TUI.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "narraive [files...]",
		Short:         "narraive: ask questions across your documents from the terminal",
		Version:       fmt.Sprintf("%s (commit: %s)", appVersion, appCommit),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./config.yaml or ~/.config/narraive/config.yaml)")
	pf.String("base-url", "", "Q&A service root, e.g. http://127.0.0.1:8000")
	pf.Int("timeout", 0, "per-request timeout in seconds")
	pf.String("export-dir", "", "directory answer exports are written to")
	pf.String("log-file", "", "path to the log file")
	pf.Bool("debug", false, "log full backend responses")

	root.AddCommand(newTUICmd(a), newAskCmd(a), newThemeCmd(a), newNarrateCmd(a), newConfigCmd(a))
	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// load reads the YAML config, then lets flags and NARRAIVE_* variables override it.
func (a *app) load(cmd *cobra.Command) error {
	_ = godotenv.Load()

	var err error
	if a.cfgFile != "" {
		a.cfgPath = a.cfgFile
		a.cfg, err = config.Load(a.cfgFile)
	} else {
		a.cfg, a.cfgPath, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	v := a.v
	v.SetEnvPrefix("NARRAIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("base-url", a.cfg.Backend.BaseURL)
	v.SetDefault("timeout", a.cfg.Backend.TimeoutSecs)
	v.SetDefault("export-dir", a.cfg.Export.Dir)
	v.SetDefault("log-file", a.cfg.Log.File)
	v.SetDefault("debug", a.cfg.Log.Debug)
	for _, name := range []string{"base-url", "timeout", "export-dir", "log-file", "debug"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	a.cfg.Backend.BaseURL = v.GetString("base-url")
	if t := v.GetInt("timeout"); t > 0 {
		a.cfg.Backend.TimeoutSecs = t
	}
	a.cfg.Export.Dir = v.GetString("export-dir")
	a.cfg.Log.File = v.GetString("log-file")
	a.cfg.Log.Debug = v.GetBool("debug")

	if err := logging.Init(a.cfg.Log.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetDebug(a.cfg.Log.Debug)
	logging.LogEvent("narraive %s starting, backend=%s", appVersion, a.cfg.Backend.BaseURL)
	return nil
}

func (a *app) newSession() *service.Session {
	client := backend.NewClient(backend.Config{
		BaseURL: a.cfg.Backend.BaseURL,
		Timeout: a.cfg.Backend.Timeout(),
	})
	return service.NewSession(client, memory.NewStorage())
}
