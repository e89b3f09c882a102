package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
)

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "List the movies the quiz can recommend",
	Args:  cobra.NoArgs,
	RunE:  runMoviesList,
}

var moviesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runMoviesShow,
}

var moviesJSON bool

func init() {
	moviesCmd.PersistentFlags().BoolVar(&moviesJSON, "json", false, "output as JSON")

	moviesCmd.AddCommand(moviesShowCmd)
	rootCmd.AddCommand(moviesCmd)
}

func runMoviesList(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary(cmd.Context(), settings)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if moviesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(lib.Store.All())
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tGENRE\tSCARE")
	for _, m := range lib.Store.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.String(), m.Genre, m.ScareLevel)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d movies\n", lib.Store.Len())
	return nil
}

func runMoviesShow(cmd *cobra.Command, args []string) error {
	lib, err := loadLibrary(cmd.Context(), settings)
	if err != nil {
		return err
	}

	m, ok := lib.Store.Movie(args[0])
	if !ok {
		return scerrors.NewMovieNotFoundError(args[0])
	}

	if moviesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	writeMovie(cmd.OutOrStdout(), m)
	return nil
}
