package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/scarepick/internal/library"
	"github.com/felixgeelhaar/scarepick/internal/quiz"
)

func builtInEngine(t *testing.T) *quiz.Engine {
	t.Helper()
	lib, err := library.Default()
	require.NoError(t, err)
	return lib.NewEngine()
}

func TestPlayLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		missing  []string
	}{
		{
			name:     "quit at the first question",
			input:    "q\n",
			contains: []string{"Question 1: How brave are you feeling tonight?", "  1) Drag me to hell"},
			missing:  []string{"Question 2"},
		},
		{
			name:  "two answers reach a movie",
			input: "1\n1\nn\n",
			contains: []string{
				"Question 2: How much gore can you stomach?",
				"The Texas Chain Saw Massacre (1974)",
				"Directed by Tobe Hooper",
				"Gore:     Buckets & Buckets",
				"Trailer: https://www.youtube.com/watch?v=Ztu8zZ3RPbc",
				"Embed:   https://www.youtube.com/embed/Ztu8zZ3RPbc",
				"Start over? [y/N]",
			},
		},
		{
			name:     "unknown answer re-asks",
			input:    "7\nq\n",
			contains: []string{"Pick one of the listed numbers, or q to quit."},
			missing:  []string{"Question 2"},
		},
		{
			name:     "restart after a result",
			input:    "3\n1\ny\nquit\n",
			contains: []string{"Shaun of the Dead (2004)"},
		},
		{
			name:     "input ends mid quiz",
			input:    "2\n",
			contains: []string{"Question 2: What should be lurking in the dark?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := playLines(context.Background(), builtInEngine(t), strings.NewReader(tt.input), &out)
			require.NoError(t, err)

			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
			for _, unwanted := range tt.missing {
				assert.NotContains(t, out.String(), unwanted)
			}
		})
	}
}

func TestPlayLinesRestartStartsOver(t *testing.T) {
	var out bytes.Buffer
	err := playLines(context.Background(), builtInEngine(t), strings.NewReader("3\n1\ny\nq\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out.String(), "Question 1:"))
}

func TestPlayLinesNotFound(t *testing.T) {
	lib, err := library.Load(context.Background(), library.Source{Root: "404"})
	require.NoError(t, err)

	var out bytes.Buffer
	err = playLines(context.Background(), lib.NewEngine(), strings.NewReader("y\nn\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out.String(), "Unable to load questions"))
	assert.Contains(t, out.String(), `Nothing found for question "404".`)
}

func TestPlayLinesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := playLines(ctx, builtInEngine(t), strings.NewReader("1\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestPlayLinesCancelledWhileWaitingForAnswer(t *testing.T) {
	// stdin stays open and never delivers a line
	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	engine := builtInEngine(t)
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- playLines(ctx, engine, in, &out)
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("playLines kept waiting for input after cancellation")
	}
	assert.Contains(t, out.String(), "Question 1:")
}

func TestPlayLinesReadError(t *testing.T) {
	in, w := io.Pipe()
	_ = w.CloseWithError(io.ErrUnexpectedEOF)

	var out bytes.Buffer
	err := playLines(context.Background(), builtInEngine(t), in, &out)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestIsQuit(t *testing.T) {
	for _, s := range []string{"q", "Q", "quit", "EXIT"} {
		assert.True(t, isQuit(s), s)
	}
	for _, s := range []string{"", "1", "quiet"} {
		assert.False(t, isQuit(s), s)
	}
}
