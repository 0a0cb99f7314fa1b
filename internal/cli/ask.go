package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"narraive/internal/clipboard"
	"narraive/internal/domain"
	"narraive/internal/export"
	"narraive/internal/preview"
	"narraive/internal/service"
)

var (
	docHeading   = color.New(color.FgCyan, color.Bold)
	answerLabel  = color.New(color.FgGreen)
	warnLabel    = color.New(color.FgYellow)
	savedLabel   = color.New(color.FgMagenta)
	errNoUploads = errors.New("none of the files could be uploaded")
)

func newAskCmd(a *app) *cobra.Command {
	var (
		question string
		format   string
		copyOut  bool
	)
	cmd := &cobra.Command{
		Use:   "ask -q QUESTION files...",
		Short: "Upload files, ask one question and print the answer for each document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f export.Format
			if format != "" {
				var err error
				if f, err = export.ParseFormat(format); err != nil {
					return err
				}
			}
			var clip clipboard.Writer
			if copyOut {
				if !clipboard.Available() {
					return errors.New("no system clipboard available")
				}
				clip = clipboard.System{}
			}
			return a.ask(cmd, args, question, f, clip)
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask across the documents")
	cmd.Flags().StringVar(&format, "export", "", "also save each answer as txt or pdf")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy all answers to the clipboard")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

func (a *app) ask(cmd *cobra.Command, files []string, question string, format export.Format, clip clipboard.Writer) error {
	out := cmd.OutOrStdout()
	sess := a.newSession()

	added := uploadAndReport(cmd, sess, files)
	if len(added) == 0 {
		return errNoUploads
	}

	answers, err := sess.Ask(cmd.Context(), question)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuestion) {
			return errors.New("question must not be blank")
		}
		return err
	}

	texts := make([]string, 0, len(answers))
	for _, ans := range answers {
		name := sess.DocumentName(ans.DocID)
		printAnswer(out, name, ans)
		texts = append(texts, ans.Text())
		if format != "" {
			path, err := export.Write(a.cfg.Export.Dir, name, ans.Text(), format)
			if err != nil {
				return fmt.Errorf("export %s: %w", name, err)
			}
			savedLabel.Fprintf(out, "saved %s\n", path)
		}
	}
	if clip != nil {
		if err := clip.WriteAll(strings.Join(texts, "\n\n")); err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		fmt.Fprintln(out, "Answers copied to clipboard.")
	}
	return nil
}

func uploadAndReport(cmd *cobra.Command, sess *service.Session, files []string) []domain.Document {
	out := cmd.OutOrStdout()
	ex := preview.NewExcerpter(1, 72)
	files = expandPaths(files)
	added := sess.Upload(cmd.Context(), files)
	for _, d := range added {
		fmt.Fprintf(out, "uploaded %s  %s\n", d.Name, ex.Excerpt(d.Text))
	}
	if skipped := len(files) - len(added); skipped > 0 {
		warnLabel.Fprintf(cmd.ErrOrStderr(), "%d file(s) skipped, see the log for details\n", skipped)
	}
	return added
}

func printAnswer(w io.Writer, name string, ans domain.Answer) {
	docHeading.Fprintf(w, "\n%s\n", name)
	answerLabel.Fprint(w, "Answer: ")
	fmt.Fprintln(w, ans.Answer)
	answerLabel.Fprint(w, "Citation: ")
	fmt.Fprintln(w, ans.Citation)
}

// expandPaths resolves shell-style globs the shell left alone. A path that
// names an existing file is kept as is, and a pattern matching nothing is
// kept so its failure is reported.
func expandPaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
			continue
		}
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		out = append(out, matches...)
	}
	return out
}
