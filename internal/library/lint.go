package library

import "sort"

// OptionRef names one option of one question.
type OptionRef struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

// Lint lists data problems that the quiz tolerates but players notice.
type Lint struct {
	// InertOptions resolve to neither a known movie nor a known question;
	// selecting them does nothing.
	InertOptions []OptionRef `json:"inertOptions,omitempty"`
	// Unreachable questions cannot be reached from the root.
	Unreachable []string `json:"unreachable,omitempty"`
	// UnusedMovies are never recommended by any reachable option.
	UnusedMovies []string `json:"unusedMovies,omitempty"`
}

// Clean reports whether no problem was found.
func (l Lint) Clean() bool {
	return len(l.InertOptions) == 0 && len(l.Unreachable) == 0 && len(l.UnusedMovies) == 0
}

// Lint walks the graph from the root the way the engine would.
func (l *Library) Lint() Lint {
	var out Lint

	for _, q := range l.Graph.Questions() {
		for _, o := range q.Options {
			if _, ok := l.Store.Movie(o.MovieID); ok && o.MovieID != "" {
				continue
			}
			if _, ok := l.Graph.Question(o.NextQuestion); ok && o.NextQuestion != "" {
				continue
			}
			out.InertOptions = append(out.InertOptions, OptionRef{QuestionID: q.ID, OptionID: o.ID})
		}
	}

	reached := make(map[string]bool)
	recommended := make(map[string]bool)
	queue := []string{l.Root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reached[id] {
			continue
		}
		q, ok := l.Graph.Question(id)
		if !ok {
			continue
		}
		reached[id] = true
		for _, o := range q.Options {
			// A known movie ends the quiz even when a next question is set.
			if _, ok := l.Store.Movie(o.MovieID); ok && o.MovieID != "" {
				recommended[o.MovieID] = true
				continue
			}
			if o.NextQuestion != "" {
				queue = append(queue, o.NextQuestion)
			}
		}
	}

	for _, q := range l.Graph.Questions() {
		if !reached[q.ID] {
			out.Unreachable = append(out.Unreachable, q.ID)
		}
	}
	for _, id := range l.Store.IDs() {
		if !recommended[id] {
			out.UnusedMovies = append(out.UnusedMovies, id)
		}
	}
	sort.Strings(out.Unreachable)
	return out
}
