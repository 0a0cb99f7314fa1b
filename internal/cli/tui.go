package cli

import (
	"github.com/spf13/cobra"

	"narraive/internal/clipboard"
	"narraive/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [files...]",
		Short: "Start the interactive document Q&A screen",
		Long:  `Starts the full-screen interface. Files given as arguments are uploaded before you ask anything.`,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, args)
		},
	}
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	var clip clipboard.Writer = clipboard.System{}
	if !clipboard.Available() {
		clip = &clipboard.Memory{}
	}
	return tui.Run(cmd.Context(), a.newSession(), tui.Options{
		ExportDir:    a.cfg.Export.Dir,
		AllowedTypes: a.cfg.UI.AllowedTypes,
		InitialFiles: expandPaths(args),
		Clipboard:    clip,
	})
}
