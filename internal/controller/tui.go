package controller

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mouse-blink/mend/internal/adapter"
	"github.com/mouse-blink/mend/internal/domain"
	m "github.com/mouse-blink/mend/internal/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	tierStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
	markerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

// contextLines is how many file lines are shown around a candidate position.
const contextLines = 4

// ReviewResult summarizes an interactive review session.
type ReviewResult struct {
	Applied int
	Skipped int
}

// RunReview drives an interactive review of the session's suggestions.
func RunReview(session domain.Session, store adapter.FileStore, file m.Path, content string, output io.Writer) (ReviewResult, error) {
	model := newReviewModel(session, store, file, content)

	program := tea.NewProgram(model, tea.WithOutput(output), tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		return ReviewResult{}, err
	}

	rm, ok := final.(reviewModel)
	if !ok {
		return ReviewResult{}, fmt.Errorf("unexpected review model type")
	}

	return ReviewResult{Applied: rm.applied, Skipped: rm.skipped}, nil
}

type reviewModel struct {
	session domain.Session
	store   adapter.FileStore
	file    m.Path
	content string

	viewport  viewport.Model
	lineInput textinput.Model

	width      int
	height     int
	manualMode bool
	status     string
	applied    int
	skipped    int
}

func newReviewModel(session domain.Session, store adapter.FileStore, file m.Path, content string) reviewModel {
	input := textinput.New()
	input.Placeholder = "line number"
	input.CharLimit = 7
	input.Width = 12

	vp := viewport.New(80, 16)

	model := reviewModel{
		session:   session,
		store:     store,
		file:      file,
		content:   content,
		viewport:  vp,
		lineInput: input,
	}

	model.refreshViewport()

	return model
}

func (rm reviewModel) Init() tea.Cmd {
	return nil
}

func (rm reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.width = msg.Width
		rm.height = msg.Height
		rm.viewport.Width = msg.Width

		if h := msg.Height - 12; h > 3 {
			rm.viewport.Height = h
		}

		rm.refreshViewport()

		return rm, nil

	case tea.KeyMsg:
		if rm.manualMode {
			return rm.handleManualKey(msg)
		}

		return rm.handleKey(msg)
	}

	return rm, nil
}

//nolint:cyclop // Key handling requires multiple cases for UI navigation
func (rm reviewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return rm, tea.Quit

	case "n", "right":
		rm.session.Next()
		rm.refreshViewport()

	case "p", "left":
		rm.session.Prev()
		rm.refreshViewport()

	case "a", "enter":
		merged, err := rm.session.Apply(rm.content)
		if err != nil {
			rm.status = fmt.Sprintf("apply failed: %v", err)
			break
		}

		rm.content = merged
		rm.applied++
		rm.status = "applied"
		rm.session.Resync(rm.content)
		rm.refreshViewport()

		if rm.session.Len() == 0 {
			return rm, tea.Quit
		}

	case "s":
		rm.session.Skip()
		rm.skipped++
		rm.status = "skipped"
		rm.session.Resync(rm.content)
		rm.refreshViewport()

		if rm.session.Len() == 0 {
			return rm, tea.Quit
		}

	case "r":
		rm.session.Resync(rm.content)
		rm.status = "resynced"
		rm.refreshViewport()

	case "u":
		content, err := rm.session.History().Undo()
		if err != nil {
			rm.status = err.Error()
			break
		}

		rm.restore(content, "undone")

	case "ctrl+r", "y":
		content, err := rm.session.History().Redo()
		if err != nil {
			rm.status = err.Error()
			break
		}

		rm.restore(content, "redone")

	case "m":
		rm.manualMode = true
		rm.lineInput.SetValue("")
		rm.lineInput.Focus()

	default:
		var cmd tea.Cmd
		rm.viewport, cmd = rm.viewport.Update(msg)

		return rm, cmd
	}

	return rm, nil
}

func (rm reviewModel) handleManualKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		rm.manualMode = false
		rm.lineInput.Blur()

		return rm, nil

	case "enter":
		line, err := strconv.Atoi(strings.TrimSpace(rm.lineInput.Value()))
		if err != nil || line < 0 {
			rm.status = "not a valid line number"
		} else {
			rm.session.SetManualPosition(line, rm.content)
			rm.status = fmt.Sprintf("placed at line %d", line)
		}

		rm.manualMode = false
		rm.lineInput.Blur()
		rm.refreshViewport()

		return rm, nil
	}

	var cmd tea.Cmd
	rm.lineInput, cmd = rm.lineInput.Update(msg)

	return rm, cmd
}

// restore saves an undo/redo snapshot as the live content.
func (rm *reviewModel) restore(content, verb string) {
	if err := rm.store.Save(rm.file, content); err != nil {
		rm.status = fmt.Sprintf("restore failed: %v", err)
		return
	}

	rm.content = content
	rm.status = verb
	rm.session.Resync(rm.content)
	rm.refreshViewport()
}

func (rm *reviewModel) refreshViewport() {
	sug, ok := rm.session.Current()
	if !ok {
		rm.viewport.SetContent("No pending suggestions.")
		return
	}

	rm.viewport.SetContent(renderCandidateContext(rm.content, sug) + "\n" + renderSuggestionDiff(sug))
}

// renderCandidateContext shows the file lines around the selected candidate
// with a marker on the insertion/replacement point.
func renderCandidateContext(content string, sug m.Suggestion) string {
	lines := strings.Split(content, "\n")
	cand := sug.Selected()

	start := cand.LineOffset - contextLines
	if start < 0 {
		start = 0
	}

	end := cand.LineOffset + contextLines + 1
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder

	for i := start; i < end; i++ {
		marker := "  "
		if i == cand.LineOffset {
			marker = markerStyle.Render("▶ ")
		}

		fmt.Fprintf(&b, "%s%4d  %s\n", marker, i+1, lines[i])
	}

	return b.String()
}

func renderSuggestionDiff(sug m.Suggestion) string {
	return labelStyle.Render("proposed change:") + "\n" +
		colorizeDiff(RenderDiff(sug.ProposedBefore, sug.ProposedAfter))
}

func (rm reviewModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("mend review: %s", rm.file)))
	fmt.Fprintf(&b, "  %s\n\n", labelStyle.Render(fmt.Sprintf("%d pending", rm.session.Len())))

	if sug, ok := rm.session.Current(); ok {
		cand := sug.Selected()
		fmt.Fprintf(&b, "candidate %d/%d  %s  line %d\n\n",
			sug.SelectedIndex+1, len(sug.Candidates),
			tierStyle.Render(cand.Tier.String()), cand.LineOffset+1)
	}

	b.WriteString(rm.viewport.View())
	b.WriteByte('\n')

	if rm.manualMode {
		fmt.Fprintf(&b, "go to line: %s\n", rm.lineInput.View())
	}

	if rm.status != "" {
		b.WriteString(statusStyle.Render(rm.status))
		b.WriteByte('\n')
	}

	b.WriteString(helpStyle.Render("n/p candidates • a apply • s skip • m manual • r resync • u undo • y redo • q quit"))
	b.WriteByte('\n')

	return b.String()
}
