// Package quiz implements the branching question graph and the traversal
// engine that walks it.
package quiz

import (
	"encoding/json"
	"fmt"
	"io"
)

// Graph is an immutable, ordered set of questions.
type Graph struct {
	questions []Question
	byID      map[string]int
}

// NewGraph builds a graph from questions in their original order. When two
// questions share an id, lookups return the first one.
func NewGraph(questions []Question) *Graph {
	g := &Graph{
		questions: make([]Question, len(questions)),
		byID:      make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		g.questions[i] = cloneQuestion(q)
		if _, exists := g.byID[q.ID]; !exists {
			g.byID[q.ID] = i
		}
	}
	return g
}

// ParseGraph decodes a questions data file.
func ParseGraph(r io.Reader) (*Graph, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return NewGraph(f.Questions), nil
}

// Question returns a copy of the question with the given id.
func (g *Graph) Question(id string) (Question, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Question{}, false
	}
	return cloneQuestion(g.questions[i]), true
}

// Len returns the number of questions.
func (g *Graph) Len() int {
	return len(g.questions)
}

// Questions returns a copy of all questions in their original order.
func (g *Graph) Questions() []Question {
	out := make([]Question, len(g.questions))
	for i, q := range g.questions {
		out[i] = cloneQuestion(q)
	}
	return out
}

// Options are copied so callers cannot reach into the shared graph.
func cloneQuestion(q Question) Question {
	opts := make([]Option, len(q.Options))
	copy(opts, q.Options)
	q.Options = opts
	return q
}
