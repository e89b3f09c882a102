package quiz

import "github.com/felixgeelhaar/scarepick/internal/catalog"

// DefaultRoot is the id of the question every session starts from.
const DefaultRoot = "1"

// Option is a selectable answer. It either continues to another question
// or ends the quiz at a movie. When both are set the movie wins.
type Option struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	NextQuestion string `json:"nextQuestion,omitempty"`
	MovieID      string `json:"movieId,omitempty"`
}

// Terminal reports whether the option ends the quiz when selected.
func (o Option) Terminal() bool {
	return o.MovieID != ""
}

// Question is a prompt with an ordered list of options.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Option returns the option with the given id.
func (q Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// File is the on-disk shape of the questions data file.
type File struct {
	Questions []Question `json:"questions"`
}

// QuestionSource looks up questions by id.
type QuestionSource interface {
	Question(id string) (Question, bool)
}

// MovieSource looks up movies by id.
type MovieSource interface {
	Movie(id string) (catalog.Movie, bool)
}

// Phase is the coarse position of an engine.
type Phase string

const (
	PhaseQuestion Phase = "question"
	PhaseResult   Phase = "result"
)

// State is a snapshot of the engine cursor. Exactly one of QuestionID and
// MovieID is set, matching Phase.
type State struct {
	Phase      Phase  `json:"phase"`
	QuestionID string `json:"questionId,omitempty"`
	MovieID    string `json:"movieId,omitempty"`
}

// AtQuestion returns the state positioned at a question.
func AtQuestion(id string) State {
	return State{Phase: PhaseQuestion, QuestionID: id}
}

// AtResult returns the terminal state for a movie.
func AtResult(movieID string) State {
	return State{Phase: PhaseResult, MovieID: movieID}
}

// ViewKind tells a presentation what to render.
type ViewKind string

const (
	ViewQuestion ViewKind = "question"
	ViewResult   ViewKind = "result"
	ViewNotFound ViewKind = "not_found"
)

// View is what a presentation renders for the current state. Question is
// set for ViewQuestion, Movie for ViewResult. ViewNotFound carries the id
// that could not be resolved so the presentation can offer a restart.
type View struct {
	Kind      ViewKind       `json:"kind"`
	Question  *Question      `json:"question,omitempty"`
	Movie     *catalog.Movie `json:"movie,omitempty"`
	MissingID string         `json:"missingId,omitempty"`
	Missing   Phase          `json:"missing,omitempty"`
}
