package cli

import (
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"narraive/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after flags and environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.cfgPath != "" {
				fmt.Fprintf(out, "config file: %s\n", a.cfgPath)
			}
			pp.ColoringEnabled = false
			_, err := pp.Fprintln(out, a.cfg)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration unless one already exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfgFile
			if path == "" {
				var err error
				if path, err = config.UserConfigPath(); err != nil {
					return err
				}
			}
			created, err := config.Init(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, left unchanged\n", path)
			}
			return nil
		},
	})
	return cmd
}
