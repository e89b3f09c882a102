package quiz

import "github.com/felixgeelhaar/scarepick/internal/catalog"

// Engine walks the question graph for a single session.
//
// The graph and catalog are shared and read-only; the cursor is the only
// mutable state and belongs to the engine. An Engine is not safe for
// concurrent use.
type Engine struct {
	questions QuestionSource
	movies    MovieSource
	root      string

	state State
	trail []string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRoot overrides the question the engine starts from.
func WithRoot(id string) EngineOption {
	return func(e *Engine) {
		if id != "" {
			e.root = id
		}
	}
}

// NewEngine creates an engine positioned at the root question.
func NewEngine(questions QuestionSource, movies MovieSource, opts ...EngineOption) *Engine {
	e := &Engine{
		questions: questions,
		movies:    movies,
		root:      DefaultRoot,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Restart()
	return e
}

// Root returns the id of the starting question.
func (e *Engine) Root() string {
	return e.root
}

// State returns a snapshot of the cursor.
func (e *Engine) State() State {
	return e.state
}

// Steps returns how many transitions happened since the last restart.
func (e *Engine) Steps() int {
	return len(e.trail) - 1
}

// Trail returns the question ids visited since the last restart, in order.
func (e *Engine) Trail() []string {
	out := make([]string, len(e.trail))
	copy(out, e.trail)
	return out
}

// TotalQuestions returns the size of the question graph when the source
// can report it, or 0.
func (e *Engine) TotalQuestions() int {
	if l, ok := e.questions.(interface{ Len() int }); ok {
		return l.Len()
	}
	return 0
}

// IsComplete reports whether the engine reached a movie.
func (e *Engine) IsComplete() bool {
	return e.state.Phase == PhaseResult
}

// Select applies the chosen option and reports whether the state changed.
//
// A known movie id ends the quiz, even if the option also names a next
// question. Otherwise a known next question moves the cursor. Options that
// resolve to neither leave the state untouched, as does any selection once
// a result has been reached.
func (e *Engine) Select(opt Option) bool {
	if e.state.Phase == PhaseResult {
		return false
	}

	if opt.MovieID != "" {
		if _, ok := e.movies.Movie(opt.MovieID); ok {
			e.state = AtResult(opt.MovieID)
			return true
		}
	}

	if opt.NextQuestion != "" {
		if _, ok := e.questions.Question(opt.NextQuestion); ok {
			e.state = AtQuestion(opt.NextQuestion)
			e.trail = append(e.trail, opt.NextQuestion)
			return true
		}
	}

	return false
}

// SelectByID selects the option with the given id from the current
// question. Unknown ids are ignored.
func (e *Engine) SelectByID(optionID string) bool {
	if e.state.Phase != PhaseQuestion {
		return false
	}
	q, ok := e.questions.Question(e.state.QuestionID)
	if !ok {
		return false
	}
	opt, ok := q.Option(optionID)
	if !ok {
		return false
	}
	return e.Select(opt)
}

// View resolves the current state against the graph and catalog.
func (e *Engine) View() View {
	switch e.state.Phase {
	case PhaseResult:
		m, ok := e.movies.Movie(e.state.MovieID)
		if !ok {
			return View{Kind: ViewNotFound, MissingID: e.state.MovieID, Missing: PhaseResult}
		}
		return View{Kind: ViewResult, Movie: &m}
	default:
		q, ok := e.questions.Question(e.state.QuestionID)
		if !ok {
			return View{Kind: ViewNotFound, MissingID: e.state.QuestionID, Missing: PhaseQuestion}
		}
		return View{Kind: ViewQuestion, Question: &q}
	}
}

// Restart puts the engine back at the root question.
func (e *Engine) Restart() {
	e.state = AtQuestion(e.root)
	e.trail = append(e.trail[:0], e.root)
}

var _ MovieSource = (*catalog.Store)(nil)
var _ QuestionSource = (*Graph)(nil)
