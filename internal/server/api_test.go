package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/scarepick/internal/catalog"
	"github.com/felixgeelhaar/scarepick/internal/quiz"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func createSession(t *testing.T, h http.Handler) SessionResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[SessionResponse](t, rec)
}

func getSession(t *testing.T, h http.Handler, id string) SessionResponse {
	t.Helper()
	rec := do(t, h, http.MethodGet, "/api/v1/sessions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[SessionResponse](t, rec)
}

func selectOption(t *testing.T, h http.Handler, id, optionID string) SelectResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/select", `{"optionId":"`+optionID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[SelectResponse](t, rec)
}

func TestSessionFlow(t *testing.T) {
	s, _ := newTestServer(t, builtInLibrary(t), Config{})
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[SessionResponse](t, rec)
	assert.Equal(t, "/api/v1/sessions/"+created.Session.ID, rec.Header().Get("Location"))
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))

	id := created.Session.ID
	require.Equal(t, quiz.ViewQuestion, created.View.Kind)
	assert.Equal(t, quiz.DefaultRoot, created.View.Question.ID)
	assert.Equal(t, quiz.AtQuestion("1"), created.Session.State)
	assert.Equal(t, 0, created.Session.Steps)

	step := selectOption(t, h, id, "1")
	assert.True(t, step.Moved)
	assert.Equal(t, "2", step.View.Question.ID)
	assert.Equal(t, []string{"1", "2"}, step.Session.Trail)

	result := selectOption(t, h, id, "1")
	assert.True(t, result.Moved)
	require.Equal(t, quiz.ViewResult, result.View.Kind)
	assert.Equal(t, "the-texas-chain-saw-massacre-1974", result.View.Movie.ID)
	assert.Equal(t, quiz.AtResult("the-texas-chain-saw-massacre-1974"), result.Session.State)

	again := selectOption(t, h, id, "1")
	assert.False(t, again.Moved, "the result is terminal")
	assert.Equal(t, quiz.ViewResult, again.View.Kind)

	assert.Equal(t, result.View, getSession(t, h, id).View)

	rec = do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/restart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	restarted := decode[SessionResponse](t, rec)
	assert.Equal(t, quiz.AtQuestion("1"), restarted.Session.State)
	assert.Equal(t, created.View, restarted.View)
}

func TestUnknownOptionIsNoop(t *testing.T) {
	s, _ := newTestServer(t, builtInLibrary(t), Config{})
	h := s.Handler()
	id := createSession(t, h).Session.ID

	resp := selectOption(t, h, id, "99")
	assert.False(t, resp.Moved)
	assert.Equal(t, quiz.AtQuestion("1"), resp.Session.State)
}

func TestSessionsAreIsolated(t *testing.T) {
	s, _ := newTestServer(t, builtInLibrary(t), Config{})
	h := s.Handler()

	a := createSession(t, h).Session.ID
	b := createSession(t, h).Session.ID
	require.NotEqual(t, a, b)

	selectOption(t, h, a, "1")
	selectOption(t, h, a, "1")

	assert.Equal(t, quiz.PhaseResult, getSession(t, h, a).Session.State.Phase)
	assert.Equal(t, quiz.AtQuestion("1"), getSession(t, h, b).Session.State)
}

func TestConcurrentSelections(t *testing.T) {
	s, _ := newTestServer(t, builtInLibrary(t), Config{})
	h := s.Handler()

	ids := make([]string, 8)
	for i := range ids {
		ids[i] = createSession(t, h).Session.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/select", `{"optionId":"2"}`)
				assert.Equal(t, http.StatusOK, rec.Code)
			}(id)
		}
	}
	wg.Wait()

	// option 2 of the root leads to question 3, whose option 2 is a movie;
	// whichever order the requests ran in, each session ends at that movie
	for _, id := range ids {
		assert.Equal(t, quiz.AtResult("it-follows-2014"), getSession(t, h, id).Session.State)
	}
}

func TestNotFoundViewIsOK(t *testing.T) {
	s, _ := newTestServer(t, libraryWithRoot(t, "404"), Config{})
	h := s.Handler()

	created := createSession(t, h)
	assert.Equal(t, quiz.ViewNotFound, created.View.Kind)
	assert.Equal(t, "404", created.View.MissingID)
	assert.Equal(t, quiz.PhaseQuestion, created.View.Missing)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+created.Session.ID+"/restart", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionErrors(t *testing.T) {
	s, _ := newTestServer(t, builtInLibrary(t), Config{})
	h := s.Handler()
	id := createSession(t, h).Session.ID

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"get unknown", http.MethodGet, "/api/v1/sessions/nope", "", http.StatusNotFound, "SESSION-001"},
		{"select unknown", http.MethodPost, "/api/v1/sessions/nope/select", `{"optionId":"1"}`, http.StatusNotFound, "SESSION-001"},
		{"restart unknown", http.MethodPost, "/api/v1/sessions/nope/restart", "", http.StatusNotFound, "SESSION-001"},
		{"delete unknown", http.MethodDelete, "/api/v1/sessions/nope", "", http.StatusNotFound, "SESSION-001"},
		{"empty body", http.MethodPost, "/api/v1/sessions/" + id + "/select", "", http.StatusBadRequest, "SESSION-003"},
		{"malformed body", http.MethodPost, "/api/v1/sessions/" + id + "/select", `{"optionId":`, http.StatusBadRequest, "SESSION-003"},
		{"unknown field", http.MethodPost, "/api/v1/sessions/" + id + "/select", `{"option":"1"}`, http.StatusBadRequest, "SESSION-003"},
		{"missing option id", http.MethodPost, "/api/v1/sessions/" + id + "/select", `{"optionId":""}`, http.StatusBadRequest, "SESSION-003"},
		{"unknown movie", http.MethodGet, "/api/v1/movies/nope", "", http.StatusNotFound, "DATA-004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode[ErrorBody](t, rec)
			assert.Equal(t, tt.wantErr, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
			assert.NotEmpty(t, body.Error.Suggestions)
		})
	}
}

func TestValidationMessageUsesJSONNames(t *testing.T) {
	s, _ := newTestServer(t, builtInLibrary(t), Config{})
	h := s.Handler()
	id := createSession(t, h).Session.ID

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/select", `{"optionId":""}`)
	body := decode[ErrorBody](t, rec)
	assert.Contains(t, body.Error.Message, "optionId is required")
}

func TestDeleteSession(t *testing.T) {
	s, _ := newTestServer(t, builtInLibrary(t), Config{})
	h := s.Handler()
	id := createSession(t, h).Session.ID

	rec := do(t, h, http.MethodDelete, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, s.Sessions().Len())
}

func TestSessionLimit(t *testing.T) {
	s, _ := newTestServer(t, builtInLibrary(t), Config{MaxSessions: 1})
	h := s.Handler()
	createSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SESSION-002", decode[ErrorBody](t, rec).Error.Code)
}

func TestMovies(t *testing.T) {
	lib := builtInLibrary(t)
	s, _ := newTestServer(t, lib, Config{})
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/movies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.Equal(t, `"`+lib.Fingerprint+`"`, etag)

	list := decode[MovieList](t, rec)
	assert.Equal(t, lib.Store.Len(), list.Count)
	assert.Equal(t, lib.Fingerprint, list.Fingerprint)
	assert.Equal(t, lib.Store.All(), list.Movies)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	h.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/movies/alien-1979", "")
	require.Equal(t, http.StatusOK, rec.Code)
	movie := decode[catalog.Movie](t, rec)
	assert.Equal(t, "Alien", movie.Title)
	assert.Equal(t, "LjLamj-b0I8", movie.TrailerVideoID())
}

func TestOpenAPIDocument(t *testing.T) {
	s, _ := newTestServer(t, builtInLibrary(t), Config{Version: "9.9.9"})

	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "9.9.9", doc.Info.Version)
	assert.Contains(t, doc.Paths, "/api/v1/sessions/{id}/select")
}

func TestOpenAPICoversEveryRoute(t *testing.T) {
	doc, err := LoadOpenAPI(context.Background())
	require.NoError(t, err)

	s, _ := newTestServer(t, builtInLibrary(t), Config{})
	routes, ok := s.Handler().(chi.Routes)
	require.True(t, ok)

	documented := 0
	err = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		item := doc.Paths.Find(route)
		if !assert.NotNil(t, item, "route %s is not documented", route) {
			return nil
		}
		assert.NotNil(t, item.GetOperation(method), "%s %s is not documented", method, route)
		documented++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, documented, countOperations(doc.Paths.Map()), "document lists routes the server does not serve")
}

func countOperations(paths map[string]*openapi3.PathItem) int {
	n := 0
	for _, item := range paths {
		n += len(item.Operations())
	}
	return n
}
