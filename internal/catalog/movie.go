// Package catalog holds the movie catalog that quiz results point into.
//
// A Store is built once from the movies data file and is never mutated
// afterwards, so it can be shared by any number of quiz sessions.
package catalog

import (
	"fmt"
	"regexp"
)

// Movie is a single recommendation target.
type Movie struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Year         int    `json:"year"`
	Director     string `json:"director"`
	Description  string `json:"description"`
	Genre        string `json:"genre"`
	Rating       string `json:"rating"`
	Runtime      string `json:"runtime"`
	PosterURL    string `json:"posterUrl"`
	ScareLevel   string `json:"scareLevel"`
	QualityLevel string `json:"qualityLevel"`
	GoreLevel    string `json:"goreLevel"`
	TrailerURL   string `json:"trailerUrl,omitempty"`
}

// String returns "Title (Year)"
func (m Movie) String() string {
	return fmt.Sprintf("%s (%d)", m.Title, m.Year)
}

var youTubePattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// TrailerVideoID extracts the YouTube video id from the trailer URL.
// It returns "" when there is no trailer or the URL is not a recognizable
// YouTube link.
func (m Movie) TrailerVideoID() string {
	if m.TrailerURL == "" {
		return ""
	}
	match := youTubePattern.FindStringSubmatch(m.TrailerURL)
	if match == nil || len(match[2]) != 11 {
		return ""
	}
	return match[2]
}

// TrailerEmbedURL returns the embeddable player URL for the trailer, or ""
func (m Movie) TrailerEmbedURL() string {
	id := m.TrailerVideoID()
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}
