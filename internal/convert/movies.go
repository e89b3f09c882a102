package convert

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/scarepick/internal/catalog"
)

// Column layout of the film spreadsheet.
const (
	colFilm = iota
	colScare
	colQuality
	colGore
	colTrailer

	movieFieldCount
)

// MovieOptions holds the stand-in values for data the spreadsheet does not
// carry.
type MovieOptions struct {
	DefaultYear       int
	DefaultRuntime    string
	PosterURLTemplate string
}

// DefaultMovieOptions returns the placeholders used until real data exists.
func DefaultMovieOptions() MovieOptions {
	return MovieOptions{
		DefaultYear:       2000,
		DefaultRuntime:    "95 min",
		PosterURLTemplate: "https://via.placeholder.com/300x450/1a1a1a/ffffff?text=%s",
	}
}

// MovieConverter builds catalog records from film spreadsheet rows.
type MovieConverter struct {
	Options             MovieOptions
	Directors           Table
	ScareDescriptions   Table
	QualityDescriptions Table
	Ratings             Table
	Genres              GenreClassifier
}

// NewMovieConverter returns a converter with the default lookup tables.
func NewMovieConverter(opts MovieOptions) *MovieConverter {
	return &MovieConverter{
		Options:             opts,
		Directors:           DefaultDirectors(),
		ScareDescriptions:   DefaultScareDescriptions(),
		QualityDescriptions: DefaultQualityDescriptions(),
		Ratings:             DefaultRatings(),
		Genres:              DefaultGenres(),
	}
}

// Convert reads a film export. Rows with fewer than five fields or no film
// name are skipped and reported. A later row with the same id replaces the
// earlier record.
func (c *MovieConverter) Convert(r io.Reader) (catalog.File, Report, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return catalog.File{}, Report{}, err
	}

	var report Report
	movies := make(map[string]catalog.Movie, len(rows))
	for _, row := range rows {
		movie, reason := c.ConvertRow(row)
		if reason != "" {
			report.skip(row.Line, reason)
			continue
		}
		if _, dup := movies[movie.ID]; dup {
			report.Replaced++
		} else {
			report.Converted++
		}
		movies[movie.ID] = movie
	}

	return catalog.File{Movies: movies}, report, nil
}

// ConvertRow builds one movie. A non-empty reason means the row is unusable.
func (c *MovieConverter) ConvertRow(row Row) (catalog.Movie, string) {
	if len(row.Fields) < movieFieldCount {
		return catalog.Movie{}, fmt.Sprintf("expected at least %d fields, got %d", movieFieldCount, len(row.Fields))
	}

	film := row.Field(colFilm)
	if film == "" {
		return catalog.Movie{}, "film name is empty"
	}

	scare := row.Field(colScare)
	quality := row.Field(colQuality)
	gore := row.Field(colGore)

	id := catalog.Slug(film)
	year, ok := ExtractYear(film)
	if !ok {
		year = c.Options.DefaultYear
	}

	return catalog.Movie{
		ID:           id,
		Title:        CleanTitle(film),
		Year:         year,
		Director:     c.Directors.Get(id),
		Description:  c.describe(scare, quality),
		Genre:        c.Genres.Classify(film, scare),
		Rating:       c.Ratings.Get(gore),
		Runtime:      c.Options.DefaultRuntime,
		PosterURL:    c.PosterURL(id),
		ScareLevel:   scare,
		QualityLevel: quality,
		GoreLevel:    gore,
		TrailerURL:   row.Field(colTrailer),
	}, ""
}

func (c *MovieConverter) describe(scare, quality string) string {
	return strings.TrimSpace(c.ScareDescriptions.Get(scare) + " " + c.QualityDescriptions.Get(quality))
}

// PosterURL fills the poster template with the id spelled as upper-case words.
func (c *MovieConverter) PosterURL(id string) string {
	label := strings.ToUpper(strings.ReplaceAll(id, "-", " "))
	return fmt.Sprintf(c.Options.PosterURLTemplate, url.PathEscape(label))
}

var (
	yearPattern      = regexp.MustCompile(`\((\d{4})\)`)
	yearRangePattern = regexp.MustCompile(`\(\d{4}-\d{4}\)`)
	yearShortPattern = regexp.MustCompile(`\(\d{4}-\d{2}\)`)
)

// ExtractYear returns the first "(YYYY)" in a film cell.
func ExtractYear(film string) (int, bool) {
	m := yearPattern.FindStringSubmatch(film)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// CleanTitle drops the first year, year range and short year range
// annotation from a film cell.
func CleanTitle(film string) string {
	title := film
	for _, p := range []*regexp.Regexp{yearPattern, yearRangePattern, yearShortPattern} {
		if loc := p.FindStringIndex(title); loc != nil {
			title = title[:loc[0]] + title[loc[1]:]
		}
	}
	return strings.TrimSpace(title)
}
