package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dsa-rag/internal/helper"
	"dsa-rag/internal/models"
	"dsa-rag/internal/rag"
)

// Asker is the TUI-facing subset of the answer pipeline.
type Asker interface {
	Query(ctx context.Context, question string, history []rag.Turn) models.Answer
}

type answerMsg struct {
	answer models.Answer
}

// Model is the Bubble Tea model for the chat front-end.
type Model struct {
	asker    Asker
	input    textinput.Model
	viewport viewport.Model
	history  []rag.Turn
	sources  []string
	status   string
	pending  string
	ready    bool
}

// New creates a chat model over asker. summary describes the loaded backend.
func New(asker Asker, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about data structures and algorithms"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{asker: asker, input: ti, viewport: vp, status: summary}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case answerMsg:
		m.history = append(m.history, rag.Turn{Question: msg.answer.Query, Answer: msg.answer.Text})
		m.sources = msg.answer.Sources
		m.pending = ""
		m.status = fmt.Sprintf("%d source(s)", len(m.sources))
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending != "" {
				return m, nil
			}
			m.pending = q
			m.status = "Thinking..."
			m.input.SetValue("")
			m.viewport.SetContent(m.renderTranscript())
			return m, m.ask(q)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	history := append([]rag.Turn(nil), m.history...)
	return func() tea.Msg {
		return answerMsg{answer: m.asker.Query(context.Background(), question, history)}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("KtuGPT")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 && m.pending == "" {
		return "No questions yet."
	}
	var sb strings.Builder
	for _, t := range m.history {
		sb.WriteString(userStyle.Render("You: ") + t.Question + "\n\n")
		sb.WriteString(botStyle.Render("KtuGPT: ") + t.Answer + "\n\n")
	}
	if m.pending != "" {
		sb.WriteString(userStyle.Render("You: ") + m.pending + "\n\n")
		return sb.String()
	}
	for i, s := range m.sources {
		sb.WriteString(sourceStyle.Render(fmt.Sprintf("[%d] %s", i+1, helper.Truncate(s, 160))) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
