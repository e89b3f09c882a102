// Package tui renders the quiz in the terminal with bubbletea.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/scarepick/internal/catalog"
	"github.com/felixgeelhaar/scarepick/internal/quiz"
)

// QuizModel represents the TUI state for one quiz run
type QuizModel struct {
	engine   *quiz.Engine
	form     *huh.Form
	choice   string
	view     quiz.View
	styles   Styles
	quitting bool
	width    int
	height   int

	// OnSelect, when set, is called after every accepted selection.
	OnSelect func(moved bool, v quiz.View)
}

// keyMap defines the keyboard shortcuts
type keyMap struct {
	Quit    key.Binding
	Restart key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
}

// NewQuizModel creates a model positioned wherever the engine currently is.
func NewQuizModel(engine *quiz.Engine) *QuizModel {
	m := &QuizModel{
		engine: engine,
		styles: DefaultStyles(),
	}
	m.refresh()
	return m
}

// refresh re-reads the engine view and builds a form when it shows a question.
func (m *QuizModel) refresh() {
	m.view = m.engine.View()
	m.form = nil
	m.choice = ""
	if m.view.Kind != quiz.ViewQuestion {
		return
	}

	q := m.view.Question
	options := make([]huh.Option[string], 0, len(q.Options))
	for _, o := range q.Options {
		options = append(options, huh.NewOption(o.Text, o.ID))
	}

	field := huh.NewSelect[string]().
		Key(q.ID).
		Title(q.Text).
		Options(options...).
		Value(&m.choice)

	// Answers are picked from a short list, so filtering is off and q is
	// free to quit.
	km := huh.NewDefaultKeyMap()
	km.Select.Filter.SetEnabled(false)

	m.form = huh.NewForm(
		huh.NewGroup(field).
			Title(m.formatProgress()).
			Description(m.formatHelp()),
	).WithShowHelp(true).WithKeyMap(km)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width)
	}
}

// formatProgress returns the "Question N" header, counted from the trail.
func (m *QuizModel) formatProgress() string {
	return m.styles.Progress.Render(fmt.Sprintf("Question %d", m.engine.Steps()+1))
}

func (m *QuizModel) formatHelp() string {
	return m.styles.Muted.Render("Pick the answer that fits your mood. q quits.")
}

// Init initializes the model
func (m *QuizModel) Init() tea.Cmd {
	if m.form != nil {
		return m.form.Init()
	}
	return nil
}

// Update handles messages
func (m *QuizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// Outside the form, r restarts.
		if m.form == nil {
			if key.Matches(msg, keys.Restart) {
				return m, m.restart()
			}
			return m, nil
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.quitting = true
		return m, tea.Quit
	case huh.StateCompleted:
		return m, m.choose(m.form.GetString(m.view.Question.ID))
	}
	return m, cmd
}

// choose forwards a selection to the engine and moves to whatever it shows
// next. A selection that does not move re-asks the same question.
func (m *QuizModel) choose(optionID string) tea.Cmd {
	moved := m.engine.SelectByID(optionID)
	m.refresh()
	if m.OnSelect != nil {
		m.OnSelect(moved, m.view)
	}
	return m.Init()
}

func (m *QuizModel) restart() tea.Cmd {
	m.engine.Restart()
	m.refresh()
	return m.Init()
}

// View renders the UI
func (m *QuizModel) View() string {
	if m.quitting {
		return "Sleep tight.\n"
	}

	switch m.view.Kind {
	case quiz.ViewResult:
		return m.renderResult(*m.view.Movie)
	case quiz.ViewNotFound:
		return m.renderNotFound()
	}

	if m.form != nil {
		return m.form.View()
	}
	return "Loading...\n"
}

// renderResult renders the movie card
func (m *QuizModel) renderResult(movie catalog.Movie) string {
	s := m.styles

	var card strings.Builder
	card.WriteString(s.Title.Render(movie.String()))
	card.WriteString("\n")
	card.WriteString(s.Subtitle.Render("Directed by " + movie.Director))
	card.WriteString("\n\n")

	rows := []struct{ label, value string }{
		{"Genre", s.Value.Render(movie.Genre)},
		{"Rating", s.Value.Render(movie.Rating)},
		{"Runtime", s.Value.Render(movie.Runtime)},
		{"Scare", s.level(movie.ScareLevel)},
		{"Quality", s.Value.Render(movie.QualityLevel)},
		{"Gore", s.level(movie.GoreLevel)},
	}
	for _, r := range rows {
		card.WriteString(s.Label.Render(fmt.Sprintf("%-8s ", r.label+":")))
		card.WriteString(r.value)
		card.WriteString("\n")
	}

	card.WriteString("\n")
	card.WriteString(wrap(movie.Description, m.cardWidth()))
	card.WriteString("\n")

	if movie.TrailerURL != "" {
		card.WriteString("\n")
		card.WriteString(s.Label.Render("Trailer: "))
		card.WriteString(movie.TrailerURL)
		if id := movie.TrailerVideoID(); id != "" {
			card.WriteString(s.Muted.Render(" (" + id + ")"))
		}
		card.WriteString("\n")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.Progress.Render("Your movie tonight"))
	b.WriteString("\n\n")
	b.WriteString(s.Card.Render(card.String()))
	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())
	return b.String()
}

// renderNotFound renders the view for a dangling question or movie id
func (m *QuizModel) renderNotFound() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.Error.Render("Unable to load questions"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Nothing found for %s %q.", m.view.Missing, m.view.MissingID)))
	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())
	return b.String()
}

func (m *QuizModel) renderHelpLine() string {
	parts := []string{
		m.styles.Key.Render(keys.Restart.Help().Key) + " " + m.styles.Muted.Render(keys.Restart.Help().Desc),
		m.styles.Key.Render(keys.Quit.Help().Key) + " " + m.styles.Muted.Render(keys.Quit.Help().Desc),
	}
	return m.styles.Help.Render(strings.Join(parts, "  •  "))
}

func (m *QuizModel) cardWidth() int {
	if m.width > 10 && m.width < 80 {
		return m.width - 10
	}
	return 70
}

// wrap breaks text on spaces so no line exceeds width.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	line := 0
	for i, w := range words {
		if i > 0 {
			if line+1+len(w) > width {
				b.WriteString("\n")
				line = 0
			} else {
				b.WriteString(" ")
				line++
			}
		}
		b.WriteString(w)
		line += len(w)
	}
	return b.String()
}

// RunQuiz runs the quiz full screen until the player quits. onSelect may
// be nil.
func RunQuiz(engine *quiz.Engine, onSelect func(moved bool, v quiz.View)) error {
	model := NewQuizModel(engine)
	model.OnSelect = onSelect

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}

	if _, ok := finalModel.(*QuizModel); !ok {
		return errors.New("invalid final model type")
	}
	return nil
}
