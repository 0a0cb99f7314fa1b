package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"narraive/internal/domain"
	"narraive/internal/export"
)

// uploadDoneMsg carries the new documents and their list excerpts, keyed by id.
type uploadDoneMsg struct {
	attempted int
	added     []domain.Document
	excerpts  map[string]string
}

type queryDoneMsg struct {
	question string
	answers  []domain.Answer
	err      error
}

type exportDoneMsg struct {
	path string
	err  error
}

// insightMsg carries a theme or narration for one document.
type insightMsg struct {
	title string
	doc   string
	text  string
	err   error
}

func uploadCmd(ctx context.Context, s SessionPort, paths []string, excerpt func(string) string) tea.Cmd {
	return func() tea.Msg {
		added := s.Upload(ctx, paths)
		excerpts := make(map[string]string, len(added))
		for _, d := range added {
			excerpts[d.ID] = excerpt(d.Text)
		}
		return uploadDoneMsg{attempted: len(paths), added: added, excerpts: excerpts}
	}
}

// askCmd sends a request already prepared on the update loop.
func askCmd(ctx context.Context, s SessionPort, req domain.QueryRequest) tea.Cmd {
	return func() tea.Msg {
		answers, err := s.SendQuery(ctx, req)
		return queryDoneMsg{question: req.Question, answers: answers, err: err}
	}
}

func exportCmd(dir, name, text string, format export.Format) tea.Cmd {
	return func() tea.Msg {
		path, err := export.Write(dir, name, text, format)
		return exportDoneMsg{path: path, err: err}
	}
}

func themeCmd(ctx context.Context, s SessionPort, doc domain.Document) tea.Cmd {
	return func() tea.Msg {
		text, err := s.Theme(ctx, doc.ID)
		return insightMsg{title: "Theme", doc: doc.Name, text: text, err: err}
	}
}

func narrateCmd(ctx context.Context, s SessionPort, doc domain.Document) tea.Cmd {
	return func() tea.Msg {
		text, err := s.Narrate(ctx, doc.ID)
		return insightMsg{title: "Narration", doc: doc.Name, text: text, err: err}
	}
}
