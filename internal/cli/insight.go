package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"narraive/internal/service"
)

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "theme FILE",
		Short: "Upload a file and print its main theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.insight(cmd, args[0], "Theme", (*service.Session).Theme)
		},
	}
}

func newNarrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "narrate FILE",
		Short: "Upload a file and print a storytelling-style summary of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.insight(cmd, args[0], "Narration", (*service.Session).Narrate)
		},
	}
}

type insightFunc func(s *service.Session, ctx context.Context, id string) (string, error)

func (a *app) insight(cmd *cobra.Command, file, title string, fn insightFunc) error {
	sess := a.newSession()
	added := uploadAndReport(cmd, sess, []string{file})
	if len(added) == 0 {
		return errNoUploads
	}
	text, err := fn(sess, cmd.Context(), added[0].ID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	docHeading.Fprintf(out, "\n%s of %s\n", title, added[0].Name)
	fmt.Fprintln(out, text)
	return nil
}
