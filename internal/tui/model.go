package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"narraive/internal/clipboard"
	"narraive/internal/domain"
	"narraive/internal/export"
	"narraive/internal/logging"
	"narraive/internal/preview"
	"narraive/internal/service"
)

// SessionPort is the TUI-facing subset of the session.
type SessionPort interface {
	Upload(ctx context.Context, paths []string) []domain.Document
	Delete(id string) bool
	Reset()
	PrepareQuery(question string) (domain.QueryRequest, error)
	SendQuery(ctx context.Context, req domain.QueryRequest) ([]domain.Answer, error)
	Theme(ctx context.Context, id string) (string, error)
	Narrate(ctx context.Context, id string) (string, error)
	DocumentName(id string) string
	Documents() []domain.Document
	Answers() []domain.Answer
}

// Options configures the TUI.
type Options struct {
	ExportDir    string
	AllowedTypes []string
	StartDir     string
	InitialFiles []string
	Clipboard    clipboard.Writer
}

type focus int

const (
	focusQuestion focus = iota
	focusDocuments
	focusAnswers
)

func (f focus) next() focus { return (f + 1) % 3 }

// Model is the Bubble Tea model for the whole page.
type Model struct {
	ctx       context.Context
	session   SessionPort
	opts      Options
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	picker    filepicker.Model
	excerpt   func(string) string
	excerpts  map[string]string // by document id, filled once per upload

	focus        focus
	docCursor    int
	answerCursor int
	picking      bool
	loading      bool
	status       string
	notice       string
	width        int
	height       int
	ready        bool
}

// New creates a new TUI model instance. Files in opts.InitialFiles are
// uploaded as soon as the program starts.
func New(ctx context.Context, session SessionPort, opts Options) Model {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.System{}
	}
	if len(opts.AllowedTypes) == 0 {
		opts.AllowedTypes = []string{".txt", ".pdf"}
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type your question here..."
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		ctx:       ctx,
		session:   session,
		opts:      opts,
		input:     ti,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		excerpt:   preview.NewExcerpter(1, 80).Excerpt,
		excerpts:  map[string]string{},
		status:    "Upload documents with ctrl+o, then ask a question.",
	}
	for _, d := range session.Documents() {
		m.excerpts[d.ID] = m.excerpt(d.Text)
	}
	if len(opts.InitialFiles) > 0 {
		m.loading = true
	}
	return m
}

// Init starts the cursor blink and any startup uploads.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if len(m.opts.InitialFiles) > 0 {
		cmds = append(cmds, m.spinner.Tick, uploadCmd(m.ctx, m.session, m.opts.InitialFiles, m.excerpt))
	}
	return tea.Batch(cmds...)
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.syncViewport()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case uploadDoneMsg:
		m.loading = false
		for id, ex := range msg.excerpts {
			m.excerpts[id] = ex
		}
		m.clampCursors()
		m.status = fmt.Sprintf("Uploaded %d of %d file(s).", len(msg.added), msg.attempted)
		return m, nil

	case queryDoneMsg:
		m.loading = false
		if msg.err != nil {
			logging.LogEvent("query %q failed: %v", msg.question, msg.err)
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.answerCursor = 0
		m.status = fmt.Sprintf("%d answer(s) for %q", len(msg.answers), msg.question)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Saved " + msg.path
		}
		return m, nil

	case insightMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("%s of %s\n\n%s", msg.title, msg.doc, msg.text)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.notice != "" {
			m.notice = ""
			return m, nil
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.setFocus(m.focus.next())
		return m, nil
	case "ctrl+o":
		return m.openPicker()
	case "ctrl+r":
		m.session.Reset()
		clear(m.excerpts)
		m.input.SetValue("")
		m.docCursor, m.answerCursor = 0, 0
		m.status = "Cleared documents, answers and question."
		return m, nil
	}

	switch m.focus {
	case focusDocuments:
		return m.handleDocumentKey(msg)
	case focusAnswers:
		return m.handleAnswerKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		return m.ask()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask() (Model, tea.Cmd) {
	req, err := m.session.PrepareQuery(m.input.Value())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuestion):
			m.status = "Type a question first."
		case errors.Is(err, service.ErrNoDocuments):
			m.status = "Upload at least one document first."
		}
		return m, nil
	}
	m.status = "Asking..."
	cmd := m.startLoading(askCmd(m.ctx, m.session, req))
	return m, cmd
}

func (m Model) handleDocumentKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	docs := m.session.Documents()
	switch msg.String() {
	case "up", "k":
		if len(docs) > 0 {
			m.docCursor = (m.docCursor - 1 + len(docs)) % len(docs)
		}
	case "down", "j":
		if len(docs) > 0 {
			m.docCursor = (m.docCursor + 1) % len(docs)
		}
	case "d", "delete", "x":
		if len(docs) == 0 {
			return m, nil
		}
		doc := docs[m.docCursor]
		m.session.Delete(doc.ID)
		delete(m.excerpts, doc.ID)
		m.clampCursors()
		m.status = "Deleted " + doc.Name
	case "m":
		if len(docs) == 0 {
			return m, nil
		}
		m.status = "Detecting theme of " + docs[m.docCursor].Name + "..."
		cmd := m.startLoading(themeCmd(m.ctx, m.session, docs[m.docCursor]))
		return m, cmd
	case "n":
		if len(docs) == 0 {
			return m, nil
		}
		m.status = "Narrating " + docs[m.docCursor].Name + "..."
		cmd := m.startLoading(narrateCmd(m.ctx, m.session, docs[m.docCursor]))
		return m, cmd
	}
	return m, nil
}

func (m Model) handleAnswerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	answers := m.session.Answers()
	switch msg.String() {
	case "up", "k":
		if len(answers) > 0 {
			m.answerCursor = (m.answerCursor - 1 + len(answers)) % len(answers)
		}
		return m, nil
	case "down", "j":
		if len(answers) > 0 {
			m.answerCursor = (m.answerCursor + 1) % len(answers)
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if len(answers) == 0 || m.answerCursor >= len(answers) {
		return m, nil
	}
	ans := answers[m.answerCursor]
	name := m.session.DocumentName(ans.DocID)
	switch msg.String() {
	case "c":
		if err := m.opts.Clipboard.WriteAll(ans.Text()); err != nil {
			m.status = "Copy failed: " + err.Error()
			return m, nil
		}
		m.notice = "Answer copied to clipboard!"
	case "t":
		return m, exportCmd(m.opts.ExportDir, name, ans.Text(), export.FormatText)
	case "p":
		return m, exportCmd(m.opts.ExportDir, name, ans.Text(), export.FormatPDF)
	}
	return m, nil
}

func (m Model) openPicker() (Model, tea.Cmd) {
	fp := filepicker.New()
	fp.AllowedTypes = m.opts.AllowedTypes
	fp.CurrentDirectory = m.opts.StartDir
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}
	fp.Height = max(5, m.height-8)
	m.picker = fp
	m.picking = true
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+o", "q":
		m.picking = false
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		m.status = "Uploading " + path + "..."
		m.opts.StartDir = m.picker.CurrentDirectory
		upload := m.startLoading(uploadCmd(m.ctx, m.session, []string{path}, m.excerpt))
		return m, upload
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.status = path + " is not a supported file type."
	}
	return m, cmd
}

// startLoading raises the loading flag and kicks the spinner if it was idle.
// The flag only drives the indicator; input stays live.
func (m *Model) startLoading(cmd tea.Cmd) tea.Cmd {
	if m.loading {
		return cmd
	}
	m.loading = true
	return tea.Batch(m.spinner.Tick, cmd)
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusQuestion {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) clampCursors() {
	if n := len(m.session.Documents()); m.docCursor >= n {
		m.docCursor = max(0, n-1)
	}
	if n := len(m.session.Answers()); m.answerCursor >= n {
		m.answerCursor = max(0, n-1)
	}
}

func (m *Model) layout() {
	m.input.Width = max(10, m.width-8)
	m.viewport.Width = max(20, m.width-2)
	m.viewport.Height = max(3, m.height-m.chromeHeight())
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, session SessionPort, opts Options) error {
	_, err := tea.NewProgram(New(ctx, session, opts), tea.WithAltScreen()).Run()
	return err
}
