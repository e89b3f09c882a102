package health

import (
	"context"

	"github.com/felixgeelhaar/scarepick/internal/library"
)

// LibraryChecker reports on the quiz data snapshot currently served.
type LibraryChecker struct {
	current func() *library.Library
}

// NewLibraryChecker checks whatever snapshot current returns at check time,
// so reloads are picked up.
func NewLibraryChecker(current func() *library.Library) *LibraryChecker {
	return &LibraryChecker{current: current}
}

func (c *LibraryChecker) Name() string {
	return "quiz-data"
}

// Check is unhealthy without data, degraded when the root question is
// missing (every session would open on the not-found view) and healthy
// otherwise.
func (c *LibraryChecker) Check(ctx context.Context) *Result {
	lib := c.current()
	if lib == nil {
		return Unhealthy("no quiz data loaded")
	}
	if lib.Graph.Len() == 0 || lib.Store.Len() == 0 {
		return Degraded("quiz data is empty").WithDetails(lib.Summary())
	}
	if err := lib.Check(); err != nil {
		return Degraded(err.Error()).WithDetails(lib.Summary())
	}
	return Healthy("quiz data loaded").WithDetails(lib.Summary())
}

// ReferenceChecker lints the option references of the current snapshot.
type ReferenceChecker struct {
	current func() *library.Library
}

func NewReferenceChecker(current func() *library.Library) *ReferenceChecker {
	return &ReferenceChecker{current: current}
}

func (c *ReferenceChecker) Name() string {
	return "quiz-references"
}

// Check is degraded when options are inert, questions are unreachable or
// movies are never recommended.
func (c *ReferenceChecker) Check(ctx context.Context) *Result {
	lib := c.current()
	if lib == nil {
		return Unhealthy("no quiz data loaded")
	}

	lint := lib.Lint()
	details := map[string]any{
		"inert_options":         len(lint.InertOptions),
		"unreachable_questions": lint.Unreachable,
		"unused_movies":         lint.UnusedMovies,
	}
	if lint.Clean() {
		return Healthy("every option leads somewhere").WithDetails(details)
	}
	return Degraded("quiz data has loose ends").WithDetails(details)
}
