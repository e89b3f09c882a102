package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scarepick/internal/catalog"
	"github.com/felixgeelhaar/scarepick/internal/log"
	"github.com/felixgeelhaar/scarepick/internal/quiz"
	"github.com/felixgeelhaar/scarepick/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take the quiz in the terminal",
	Long: `Walk the quiz one question at a time until it recommends a movie.

Line mode prints each question with its numbered options and reads the
number of your answer. Type q to quit. With --tui the quiz runs full
screen; --tui is ignored when stdin is not a terminal.

Examples:
  scarepick play
  scarepick play --tui
  scarepick play --questions my-questions.json --root 3`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

var playTUI bool

func init() {
	playCmd.Flags().BoolVar(&playTUI, "tui", false, "run the full screen terminal UI")

	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary(cmd.Context(), settings)
	if err != nil {
		return err
	}
	engine := lib.NewEngine()
	logger := log.DefaultLogger()

	if playTUI {
		if tui.CanRun() {
			return tui.RunQuiz(engine, func(moved bool, v quiz.View) {
				logger.Debug("selection", "moved", moved, "view", v.Kind)
			})
		}
		logger.Warn("no terminal attached, falling back to line mode")
	}

	return playLines(cmd.Context(), engine, cmd.InOrStdin(), cmd.OutOrStdout())
}

// playLines runs the quiz in line mode until the player quits, the input
// ends or ctx is cancelled. A pending read does not delay cancellation.
func playLines(ctx context.Context, engine *quiz.Engine, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	input := scanLines(ctx, in)
	read := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return "", ctx.Err()
		case l, ok := <-input:
			if !ok {
				fmt.Fprintln(out)
				return "", io.EOF
			}
			if l.err != nil {
				return "", l.err
			}
			return strings.TrimSpace(l.text), nil
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		v := engine.View()
		switch v.Kind {
		case quiz.ViewQuestion:
			writeQuestion(out, engine.Steps()+1, *v.Question)
			answer, err := read("> ")
			if err != nil {
				return endOfInput(err)
			}
			if isQuit(answer) {
				return nil
			}
			if !engine.SelectByID(answer) {
				fmt.Fprintln(out, "Pick one of the listed numbers, or q to quit.")
			}

		case quiz.ViewResult:
			fmt.Fprintln(out)
			writeMovie(out, *v.Movie)
			again, err := askRestart(read)
			if err != nil || !again {
				return endOfInput(err)
			}
			engine.Restart()

		default:
			fmt.Fprintln(out, "\nUnable to load questions")
			fmt.Fprintf(out, "Nothing found for %s %q.\n", v.Missing, v.MissingID)
			again, err := askRestart(read)
			if err != nil || !again {
				return endOfInput(err)
			}
			engine.Restart()
		}
	}
}

type inputLine struct {
	text string
	err  error
}

// scanLines reads in on its own goroutine so callers can stop waiting when
// ctx is done. The channel closes after the last line; a read error is sent
// as the final item.
func scanLines(ctx context.Context, in io.Reader) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- inputLine{text: scanner.Text()}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- inputLine{err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return lines
}

// endOfInput treats running out of input as a normal way to stop.
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func askRestart(read func(string) (string, error)) (bool, error) {
	answer, err := read("\nStart over? [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "q", "quit", "exit":
		return true
	}
	return false
}

func writeQuestion(w io.Writer, n int, q quiz.Question) {
	fmt.Fprintf(w, "\nQuestion %d: %s\n", n, q.Text)
	for _, o := range q.Options {
		fmt.Fprintf(w, "  %s) %s\n", o.ID, o.Text)
	}
}

// writeMovie prints the plain text movie card.
func writeMovie(w io.Writer, m catalog.Movie) {
	fmt.Fprintf(w, "%s\n", m.String())
	fmt.Fprintf(w, "Directed by %s\n\n", m.Director)
	fmt.Fprintf(w, "  Genre:    %s\n", m.Genre)
	fmt.Fprintf(w, "  Rating:   %s\n", m.Rating)
	fmt.Fprintf(w, "  Runtime:  %s\n", m.Runtime)
	fmt.Fprintf(w, "  Scare:    %s\n", m.ScareLevel)
	fmt.Fprintf(w, "  Quality:  %s\n", m.QualityLevel)
	fmt.Fprintf(w, "  Gore:     %s\n", m.GoreLevel)
	fmt.Fprintf(w, "\n%s\n", m.Description)
	if m.TrailerURL != "" {
		fmt.Fprintf(w, "\nTrailer: %s\n", m.TrailerURL)
		if embed := m.TrailerEmbedURL(); embed != "" {
			fmt.Fprintf(w, "Embed:   %s\n", embed)
		}
	}
}
