package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	navStyle      = lipgloss.NewStyle().Background(lipgloss.Color("28")).Foreground(lipgloss.Color("15")).Padding(0, 1)
	brandStyle    = lipgloss.NewStyle().Bold(true)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	sectionStyle  = lipgloss.NewStyle().Bold(true)
	emptyStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
	excerptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activeBox     = queryBoxStyle.Copy().BorderForeground(lipgloss.Color("63"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(1, 2)
)

const visibleDocuments = 8

// View renders the page: nav bar, documents, question, answers, status.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.notice != "" {
		box := modalStyle.Width(min(60, max(20, m.width-4))).Render(m.notice + "\n\n" + helpStyle.Render("press any key"))
		return m.renderNav() + "\n" + lipgloss.Place(m.width, max(1, m.height-1), lipgloss.Center, lipgloss.Center, box)
	}
	if m.picking {
		hint := helpStyle.Render(fmt.Sprintf("Pick a document (%s), enter to upload, q to cancel", strings.Join(m.opts.AllowedTypes, ", ")))
		return m.renderNav() + "\n" + hint + "\n\n" + m.picker.View()
	}
	return m.renderTop() + "\n" + m.viewport.View() + "\n" + m.renderFooter()
}

func (m Model) renderNav() string {
	links := "About  Contact"
	gap := max(1, m.width-lipgloss.Width("NarrAIve")-lipgloss.Width(links)-2)
	return navStyle.Width(max(m.width, 1)).Render(brandStyle.Render("NarrAIve") + strings.Repeat(" ", gap) + links)
}

func (m Model) renderTop() string {
	var b strings.Builder
	b.WriteString(m.renderNav() + "\n")
	b.WriteString(titleStyle.Render("Multi-Document Q&A") + "\n\n")

	b.WriteString(sectionStyle.Render("Uploaded Documents:") + "\n")
	b.WriteString(m.renderDocuments() + "\n")

	b.WriteString(sectionStyle.Render("Ask a Question:") + "\n")
	box := queryBoxStyle
	if m.focus == focusQuestion {
		box = activeBox
	}
	b.WriteString(box.Render(m.input.View()) + "\n")
	b.WriteString(sectionStyle.Render("Answers:"))
	return b.String()
}

func (m Model) renderDocuments() string {
	docs := m.session.Documents()
	if len(docs) == 0 {
		return emptyStyle.Render("No documents uploaded.")
	}
	start := 0
	if m.docCursor >= visibleDocuments {
		start = m.docCursor - visibleDocuments + 1
	}
	end := min(len(docs), start+visibleDocuments)
	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		d := docs[i]
		marker := "  "
		name := d.Name
		if m.focus == focusDocuments && i == m.docCursor {
			marker = "▸ "
			name = selectedStyle.Render(name)
		}
		line := marker + name
		if ex := m.excerpts[d.ID]; ex != "" {
			line += "  " + excerptStyle.Render(ex)
		}
		lines = append(lines, line)
	}
	if len(docs) > visibleDocuments {
		lines = append(lines, helpStyle.Render(fmt.Sprintf("  %d/%d", m.docCursor+1, len(docs))))
	}
	return strings.Join(lines, "\n")
}

// renderAnswers returns the answer table and the first line of each row.
func (m Model) renderAnswers() (string, []int) {
	answers := m.session.Answers()
	if len(answers) == 0 {
		return emptyStyle.Render("No answers yet."), nil
	}
	width := max(20, m.viewport.Width-4)
	body := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	offsets := make([]int, len(answers))
	line := 0
	for i, a := range answers {
		offsets[i] = line
		label := "Document: " + m.session.DocumentName(a.DocID)
		marker := "  "
		if m.focus == focusAnswers && i == m.answerCursor {
			marker = "▸ "
			label = selectedStyle.Render(label)
		} else {
			label = sectionStyle.Render(label)
		}
		row := marker + label + "\n" + indent(body.Render(a.Text()), "  ") + "\n"
		b.WriteString(row)
		line += strings.Count(row, "\n")
	}
	return strings.TrimRight(b.String(), "\n"), offsets
}

func (m Model) renderFooter() string {
	status := m.status
	if m.loading {
		status = m.spinner.View() + " Processing... " + status
	}
	var help string
	switch m.focus {
	case focusDocuments:
		help = "up/down select  d delete  m theme  n narrate"
	case focusAnswers:
		help = "up/down select  c copy  t save .txt  p save .pdf"
	default:
		help = "enter ask"
	}
	help += "  |  tab focus  ctrl+o upload  ctrl+r reset  ctrl+c quit"
	return statusStyle.Render(status) + "\n" + helpStyle.Render(help)
}

func (m *Model) chromeHeight() int {
	return lipgloss.Height(m.renderTop()) + lipgloss.Height(m.renderFooter()) + 1
}

func (m *Model) syncViewport() {
	m.clampCursors()
	m.viewport.Height = max(3, m.height-m.chromeHeight())
	content, offsets := m.renderAnswers()
	m.viewport.SetContent(content)
	if m.focus != focusAnswers || m.answerCursor >= len(offsets) {
		return
	}
	off := offsets[m.answerCursor]
	if off < m.viewport.YOffset || off >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
