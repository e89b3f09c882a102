package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scarepick/internal/health"
	"github.com/felixgeelhaar/scarepick/internal/library"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the quiz data for problems",
	Long: `Load the configured quiz data and report problems players would run into.

Checks include:
  • Both data files load and the root question exists
  • Every option leads to a known question or movie
  • Every question can be reached from the root
  • Every movie is recommended somewhere

Examples:
  scarepick doctor
  scarepick doctor --questions data/questions.json --json
`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorJSON bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output the report as JSON")

	rootCmd.AddCommand(doctorCmd)
}

// DoctorReport is the outcome of all data checks.
type DoctorReport struct {
	Status  health.Status             `json:"status"`
	Summary map[string]any            `json:"summary"`
	Checks  map[string]*health.Result `json:"checks"`
	Lint    library.Lint              `json:"lint"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary(cmd.Context(), settings)
	if err != nil {
		return err
	}

	report := buildDoctorReport(cmd, lib)
	out := cmd.OutOrStdout()
	if doctorJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	writeDoctorReport(out, report)
	return nil
}

func buildDoctorReport(cmd *cobra.Command, lib *library.Library) DoctorReport {
	current := func() *library.Library { return lib }
	m := health.NewManager()
	m.AddChecker(health.NewLibraryChecker(current))
	m.AddChecker(health.NewReferenceChecker(current))

	results := m.Check(cmd.Context())
	return DoctorReport{
		Status:  m.OverallStatus(results),
		Summary: lib.Summary(),
		Checks:  results,
		Lint:    lib.Lint(),
	}
}

func statusIcon(s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return "✓"
	case health.StatusDegraded:
		return "!"
	default:
		return "✗"
	}
}

func writeDoctorReport(w io.Writer, r DoctorReport) {
	fmt.Fprintf(w, "Quiz data: %v questions, %v movies, root %q\n", r.Summary["questions"], r.Summary["movies"], r.Summary["root"])
	fmt.Fprintf(w, "Fingerprint: %v\n\n", r.Summary["fingerprint"])

	for _, name := range []string{"quiz-data", "quiz-references"} {
		res, ok := r.Checks[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s %-16s %s\n", statusIcon(res.Status), name, res.Message)
	}

	for _, o := range r.Lint.InertOptions {
		fmt.Fprintf(w, "  option %s of question %s leads nowhere\n", o.OptionID, o.QuestionID)
	}
	for _, id := range r.Lint.Unreachable {
		fmt.Fprintf(w, "  question %s cannot be reached\n", id)
	}
	for _, id := range r.Lint.UnusedMovies {
		fmt.Fprintf(w, "  movie %s is never recommended\n", id)
	}

	fmt.Fprintf(w, "\nOverall: %s\n", r.Status)
}
