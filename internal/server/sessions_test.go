package server

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
	"github.com/felixgeelhaar/scarepick/internal/metrics"
	"github.com/felixgeelhaar/scarepick/internal/quiz"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedStore(ttl time.Duration, max int) (*SessionStore, *fakeClock, *metrics.Metrics) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	clock := &fakeClock{t: time.Date(2024, 10, 31, 20, 0, 0, 0, time.UTC)}
	st := NewSessionStore(ttl, max, m)
	st.now = clock.now
	return st, clock, m
}

func TestSessionExpiresWhenIdle(t *testing.T) {
	st, clock, m := newClockedStore(time.Minute, 10)
	sess, err := st.Create(builtInLibrary(t))
	require.NoError(t, err)

	clock.advance(50 * time.Second)
	_, err = st.Get(sess.ID)
	require.NoError(t, err, "use within the ttl keeps the session")

	clock.advance(50 * time.Second)
	_, err = st.Get(sess.ID)
	require.NoError(t, err, "the previous Get refreshed the idle timer")

	clock.advance(61 * time.Second)
	_, err = st.Get(sess.ID)
	assert.True(t, scerrors.HasCode(err, scerrors.ErrCodeSessionNotFound))
	assert.Equal(t, 0, st.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsEnded.WithLabelValues("expired")))
}

func TestEvictExpiredFreesCapacity(t *testing.T) {
	st, clock, m := newClockedStore(time.Minute, 2)
	lib := builtInLibrary(t)

	for i := 0; i < 2; i++ {
		_, err := st.Create(lib)
		require.NoError(t, err)
	}
	_, err := st.Create(lib)
	assert.True(t, scerrors.HasCode(err, scerrors.ErrCodeSessionLimit))

	clock.advance(2 * time.Minute)
	_, err = st.Create(lib)
	require.NoError(t, err, "expired sessions are evicted before the limit is checked")
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestDeleteCountsReason(t *testing.T) {
	st, _, m := newClockedStore(time.Minute, 10)
	sess, err := st.Create(builtInLibrary(t))
	require.NoError(t, err)

	assert.True(t, st.Delete(sess.ID))
	assert.False(t, st.Delete(sess.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsEnded.WithLabelValues("deleted")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestSessionDo(t *testing.T) {
	st, _, _ := newClockedStore(0, 0)
	sess, err := st.Create(builtInLibrary(t))
	require.NoError(t, err)

	info, view := sess.Do(func(e *quiz.Engine) { e.SelectByID("3") })
	assert.Equal(t, sess.ID, info.ID)
	assert.Equal(t, quiz.AtQuestion("4"), info.State)
	assert.Equal(t, 1, info.Steps)
	assert.Equal(t, sess.Library.Graph.Len(), info.TotalQuestions)
	assert.Equal(t, "4", view.Question.ID)
}
