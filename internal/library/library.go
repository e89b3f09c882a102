// Package library loads the question graph and movie catalog as one
// immutable snapshot and keeps it current while the data files change.
package library

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"time"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/scarepick/internal/catalog"
	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
	"github.com/felixgeelhaar/scarepick/internal/quiz"
)

//go:embed data/questions.json data/movies.json
var defaultData embed.FS

const (
	embeddedQuestions = "data/questions.json"
	embeddedMovies    = "data/movies.json"
)

// Source names the data files. An empty path selects the built-in data set.
type Source struct {
	Questions string
	Movies    string
	// Root is the entry question id; empty means quiz.DefaultRoot.
	Root string
}

func (s Source) root() string {
	if s.Root == "" {
		return quiz.DefaultRoot
	}
	return s.Root
}

// Files returns the on-disk paths of the source, skipping built-in ones.
func (s Source) Files() []string {
	var files []string
	for _, p := range []string{s.Questions, s.Movies} {
		if p != "" {
			files = append(files, p)
		}
	}
	return files
}

// Library is one loaded snapshot of the quiz data. It is never mutated
// after Load returns and may be shared freely.
type Library struct {
	Graph       *quiz.Graph
	Store       *catalog.Store
	Root        string
	Fingerprint string
	LoadedAt    time.Time
	Source      Source
}

// Load reads both data files and builds a snapshot.
func Load(ctx context.Context, src Source) (*Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qData, err := readData(src.Questions, embeddedQuestions)
	if err != nil {
		return nil, scerrors.NewQuestionsUnreadableError(displayPath(src.Questions, embeddedQuestions), err)
	}
	mData, err := readData(src.Movies, embeddedMovies)
	if err != nil {
		return nil, scerrors.NewMoviesUnreadableError(displayPath(src.Movies, embeddedMovies), err)
	}

	graph, err := quiz.ParseGraph(bytes.NewReader(qData))
	if err != nil {
		return nil, scerrors.NewQuestionsUnreadableError(displayPath(src.Questions, embeddedQuestions), err)
	}
	store, err := catalog.ParseStore(bytes.NewReader(mData))
	if err != nil {
		return nil, scerrors.NewMoviesUnreadableError(displayPath(src.Movies, embeddedMovies), err)
	}

	return &Library{
		Graph:       graph,
		Store:       store,
		Root:        src.root(),
		Fingerprint: Fingerprint(qData, mData),
		LoadedAt:    time.Now().UTC(),
		Source:      src,
	}, nil
}

// Default loads the built-in data set.
func Default() (*Library, error) {
	return Load(context.Background(), Source{})
}

func readData(path, embedded string) ([]byte, error) {
	if path == "" {
		return defaultData.ReadFile(embedded)
	}
	return os.ReadFile(path)
}

func displayPath(path, embedded string) string {
	if path == "" {
		return "built-in " + embedded
	}
	return path
}

// Fingerprint hashes the raw question and movie data. Two snapshots with the
// same fingerprint hold the same data.
func Fingerprint(questions, movies []byte) string {
	h := blake3.New()
	fmt.Fprintf(h, "questions:%d:", len(questions))
	_, _ = h.Write(questions)
	fmt.Fprintf(h, "movies:%d:", len(movies))
	_, _ = h.Write(movies)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NewEngine starts a quiz over this snapshot at its root question.
func (l *Library) NewEngine() *quiz.Engine {
	return quiz.NewEngine(l.Graph, l.Store, quiz.WithRoot(l.Root))
}

// Check reports data problems that still let the quiz run. A missing root
// question only yields the not-found view, so it is a warning.
func (l *Library) Check() error {
	if _, ok := l.Graph.Question(l.Root); !ok {
		return scerrors.NewRootMissingError(l.Root)
	}
	return nil
}

// Summary returns the snapshot counts used by logs and health details.
func (l *Library) Summary() map[string]any {
	return map[string]any{
		"questions":   l.Graph.Len(),
		"movies":      l.Store.Len(),
		"root":        l.Root,
		"fingerprint": l.Fingerprint,
		"loaded_at":   l.LoadedAt.Format(time.RFC3339),
	}
}
