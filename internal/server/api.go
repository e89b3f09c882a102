package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/scarepick/internal/catalog"
	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
	"github.com/felixgeelhaar/scarepick/internal/library"
	"github.com/felixgeelhaar/scarepick/internal/log"
	"github.com/felixgeelhaar/scarepick/internal/metrics"
	"github.com/felixgeelhaar/scarepick/internal/quiz"
	"github.com/felixgeelhaar/scarepick/internal/telemetry"
)

// maxBodyBytes caps request bodies; the only body the API reads is one
// option id.
const maxBodyBytes = 4 << 10

// API serves the quiz session and catalog endpoints.
type API struct {
	sessions *SessionStore
	library  func() *library.Library
	metrics  *metrics.Metrics
	logger   *log.Logger
	validate *validator.Validate
}

// NewAPI creates the API. current returns the snapshot new sessions start
// from; m may be nil.
func NewAPI(sessions *SessionStore, current func() *library.Library, m *metrics.Metrics, logger *log.Logger) *API {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &API{
		sessions: sessions,
		library:  current,
		metrics:  m,
		logger:   logger,
		validate: v,
	}
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	Session SessionInfo `json:"session"`
	View    quiz.View   `json:"view"`
}

// SelectRequest is the body of the select endpoint.
type SelectRequest struct {
	OptionID string `json:"optionId" validate:"required,max=64"`
}

// SelectResponse reports whether the answer moved the quiz.
type SelectResponse struct {
	Moved   bool        `json:"moved"`
	Session SessionInfo `json:"session"`
	View    quiz.View   `json:"view"`
}

// MovieList is the body of the movie listing.
type MovieList struct {
	Count       int             `json:"count"`
	Fingerprint string          `json:"fingerprint"`
	Movies      []catalog.Movie `json:"movies"`
}

func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Create(a.library())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	info, view := sess.Do(nil)
	if a.metrics != nil {
		a.metrics.SessionsStarted.WithLabelValues("http").Inc()
	}
	a.observeView(view)
	a.logger.DebugContext(r.Context(), "session started", "session", sess.ID, "fingerprint", info.Fingerprint)

	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, SessionResponse{Session: info, View: view})
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	info, view := sess.Do(nil)
	writeJSON(w, http.StatusOK, SessionResponse{Session: info, View: view})
}

func (a *API) selectOption(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req SelectRequest
	if err := a.decode(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	_, span := telemetry.StartQuizSpan(r.Context(), "select", sess.ID)
	defer span.End()

	var moved bool
	info, view := sess.Do(func(e *quiz.Engine) {
		moved = e.SelectByID(req.OptionID)
	})
	telemetry.RecordSuccess(span,
		attribute.String("option.id", req.OptionID),
		attribute.Bool("moved", moved),
		attribute.String("phase", string(info.State.Phase)),
	)

	a.recordSelection(moved, info.State)
	a.observeView(view)
	writeJSON(w, http.StatusOK, SelectResponse{Moved: moved, Session: info, View: view})
}

func (a *API) restartSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	_, span := telemetry.StartQuizSpan(r.Context(), "restart", sess.ID)
	info, view := sess.Do(func(e *quiz.Engine) { e.Restart() })
	telemetry.RecordSuccess(span)
	span.End()
	if a.metrics != nil {
		a.metrics.Restarts.Inc()
	}
	a.observeView(view)
	writeJSON(w, http.StatusOK, SessionResponse{Session: info, View: view})
}

func (a *API) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !a.sessions.Delete(id) {
		a.writeError(w, r, scerrors.NewSessionNotFoundError(id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listMovies(w http.ResponseWriter, r *http.Request) {
	lib := a.library()
	if a.notModified(w, r, lib) {
		return
	}
	movies := lib.Store.All()
	writeJSON(w, http.StatusOK, MovieList{
		Count:       len(movies),
		Fingerprint: lib.Fingerprint,
		Movies:      movies,
	})
}

func (a *API) getMovie(w http.ResponseWriter, r *http.Request) {
	lib := a.library()
	id := chi.URLParam(r, "id")
	movie, ok := lib.Store.Movie(id)
	if !ok {
		a.writeError(w, r, scerrors.NewMovieNotFoundError(id))
		return
	}
	if a.notModified(w, r, lib) {
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

// notModified sets the ETag of the snapshot and answers 304 when the client
// already holds it.
func (a *API) notModified(w http.ResponseWriter, r *http.Request, lib *library.Library) bool {
	etag := `"` + lib.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" {
		for _, candidate := range strings.Split(match, ",") {
			if c := strings.TrimSpace(candidate); c == etag || c == "*" {
				w.WriteHeader(http.StatusNotModified)
				return true
			}
		}
	}
	return false
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		return scerrors.NewSessionBadRequestError(err.Error(), err)
	}
	if err := a.validate.Struct(v); err != nil {
		return scerrors.NewSessionBadRequestError(validationMessage(err), err)
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func (a *API) recordSelection(moved bool, state quiz.State) {
	if a.metrics == nil {
		return
	}
	switch {
	case !moved:
		a.metrics.RecordSelection(metrics.OutcomeIgnored, "")
	case state.Phase == quiz.PhaseResult:
		a.metrics.RecordSelection(metrics.OutcomeResult, state.MovieID)
	default:
		a.metrics.RecordSelection(metrics.OutcomeQuestion, "")
	}
}

func (a *API) observeView(view quiz.View) {
	if a.metrics != nil && view.Kind == quiz.ViewNotFound {
		a.metrics.NotFoundViews.WithLabelValues(string(view.Missing)).Inc()
	}
}
