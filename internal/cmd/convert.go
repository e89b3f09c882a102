package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scarepick/internal/catalog"
	"github.com/felixgeelhaar/scarepick/internal/convert"
	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
	"github.com/felixgeelhaar/scarepick/internal/log"
	"github.com/felixgeelhaar/scarepick/internal/quiz"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert spreadsheet exports into quiz data files",
	Long: `Convert CSV exports of the quiz spreadsheets into the JSON data files
read by play and serve.

The film sheet has the columns Film, Scare Level, Quality Level, Gore Level
and Trailer. The question sheet has the question text followed by groups of
Option Text, Next Question and Movie ID.

Examples:
  scarepick convert movies --in films.csv --out data/movies.json
  scarepick convert questions --in questions.csv --out data/questions.json`,
}

var convertMoviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "Convert the film sheet into movies.json",
	Args:  cobra.NoArgs,
	RunE:  runConvertMovies,
}

var convertQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Convert the question sheet into questions.json",
	Args:  cobra.NoArgs,
	RunE:  runConvertQuestions,
}

var (
	convertIn             string
	convertOut            string
	convertDefaultYear    int
	convertDefaultRuntime string
)

func init() {
	for _, c := range []*cobra.Command{convertMoviesCmd, convertQuestionsCmd} {
		c.Flags().StringVar(&convertIn, "in", "", "CSV export to read")
		c.Flags().StringVar(&convertOut, "out", "", "JSON file to write")
		_ = c.MarkFlagRequired("in")
		_ = c.MarkFlagRequired("out")
	}
	convertMoviesCmd.Flags().IntVar(&convertDefaultYear, "default-year", 0, "year used when a film name has none (default from config)")
	convertMoviesCmd.Flags().StringVar(&convertDefaultRuntime, "default-runtime", "", "runtime given to every movie (default from config)")

	convertCmd.AddCommand(convertMoviesCmd)
	convertCmd.AddCommand(convertQuestionsCmd)
	rootCmd.AddCommand(convertCmd)
}

func movieOptions(cmd *cobra.Command) convert.MovieOptions {
	opts := convert.MovieOptions{
		DefaultYear:       settings.Convert.DefaultYear,
		DefaultRuntime:    settings.Convert.DefaultRuntime,
		PosterURLTemplate: settings.Convert.PosterURLTemplate,
	}
	if cmd.Flags().Changed("default-year") {
		opts.DefaultYear = convertDefaultYear
	}
	if cmd.Flags().Changed("default-runtime") {
		opts.DefaultRuntime = convertDefaultRuntime
	}
	return opts
}

func openExport(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scerrors.NewConvertInputError(path, err)
	}
	return f, nil
}

// inputError keeps coded errors such as a missing header and wraps the rest.
func inputError(err error) error {
	if _, ok := scerrors.As(err); ok {
		return err
	}
	return scerrors.NewConvertInputError(convertIn, err)
}

func runConvertMovies(cmd *cobra.Command, args []string) error {
	in, err := openExport(convertIn)
	if err != nil {
		return err
	}
	defer in.Close()

	file, report, err := convert.NewMovieConverter(movieOptions(cmd)).Convert(in)
	if err != nil {
		return inputError(err)
	}
	logSkipped(report)
	if err := convert.WriteJSON(convertOut, file); err != nil {
		return err
	}

	writeMoviesReport(cmd.OutOrStdout(), file, report)
	return nil
}

func runConvertQuestions(cmd *cobra.Command, args []string) error {
	in, err := openExport(convertIn)
	if err != nil {
		return err
	}
	defer in.Close()

	file, report, err := convert.ConvertQuestions(in)
	if err != nil {
		return inputError(err)
	}
	logSkipped(report)
	if err := convert.WriteJSON(convertOut, file); err != nil {
		return err
	}

	writeQuestionsReport(cmd.OutOrStdout(), file, report)
	return nil
}

func logSkipped(report convert.Report) {
	logger := log.DefaultLogger()
	for _, s := range report.Skipped {
		logger.Debug("skipped row", "line", s.Line, "reason", s.Reason)
	}
}

func writeMoviesReport(w io.Writer, file catalog.File, report convert.Report) {
	fmt.Fprintf(w, "Movies: %s -> %s\n", report, convertOut)
	ids := make([]string, 0, len(file.Movies))
	for id := range file.Movies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m := file.Movies[id]
		fmt.Fprintf(w, "  %s: %s [%s]\n", id, m.String(), m.Genre)
	}
}

func writeQuestionsReport(w io.Writer, file quiz.File, report convert.Report) {
	fmt.Fprintf(w, "Questions: %s -> %s\n", report, convertOut)
	for _, q := range file.Questions {
		fmt.Fprintf(w, "  %s: %s (%d options)\n", q.ID, q.Text, len(q.Options))
	}
}
