package convert

import (
	"sort"
	"strings"
)

// Table is a finite lookup with an explicit fallback for unknown keys.
type Table struct {
	name     string
	entries  map[string]string
	fallback string
}

// NewTable creates a table. The entries map is copied.
func NewTable(name, fallback string, entries map[string]string) Table {
	m := make(map[string]string, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Table{name: name, entries: m, fallback: fallback}
}

// Name identifies the table in logs and errors.
func (t Table) Name() string {
	return t.name
}

// Lookup returns the value for key and whether it was present.
func (t Table) Lookup(key string) (string, bool) {
	v, ok := t.entries[key]
	return v, ok
}

// Get returns the value for key, or the fallback.
func (t Table) Get(key string) string {
	if v, ok := t.entries[key]; ok {
		return v
	}
	return t.fallback
}

// Fallback returns the value used for unknown keys.
func (t Table) Fallback() string {
	return t.fallback
}

// Keys returns the known keys in ascending order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GenreRule assigns Genre to titles containing any of Keywords.
type GenreRule struct {
	Genre    string
	Keywords []string
}

// GenreClassifier picks a genre from the title first and the scare level
// second. Rules are tried in order; the first match wins.
type GenreClassifier struct {
	Rules        []GenreRule
	ByScareLevel Table
}

// Classify returns the genre for a film cell and its scare level.
func (c GenreClassifier) Classify(film, scareLevel string) string {
	lower := strings.ToLower(film)
	for _, rule := range c.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Genre
			}
		}
	}
	return c.ByScareLevel.Get(scareLevel)
}

// Scare, quality and gore levels used by the film spreadsheet.
const (
	ScareIntense = "Drag Me to Hell"
	ScareSome    = "Scare Me Some"
	ScareGentle  = "Easy Watching for the Faint of Heart"

	GoreBuckets     = "Buckets & Buckets"
	GoreMissingLimb = "Missing Limbs"
	GorePaperCut    = "Paper Cut"
)

// DefaultDirectors maps movie ids to directors.
func DefaultDirectors() Table {
	return NewTable("directors", "Unknown Director", map[string]string{
		"the-shining":             "Stanley Kubrick",
		"alien":                   "Ridley Scott",
		"halloween":               "John Carpenter",
		"nightmare-on-elm-street": "Wes Craven",
		"scream":                  "Wes Craven",
		"the-exorcist":            "William Friedkin",
		"hereditary":              "Ari Aster",
		"get-out":                 "Jordan Peele",
		"it-follows":              "David Robert Mitchell",
		"the-babadook":            "Jennifer Kent",
	})
}

// DefaultScareDescriptions maps scare levels to the first description sentence.
func DefaultScareDescriptions() Table {
	return NewTable("scare-descriptions", "A horror film that delivers scares and thrills.", map[string]string{
		ScareIntense: "An intense horror experience that will leave you terrified and on the edge of your seat.",
		ScareSome:    "A moderately scary film that provides thrills without being overwhelming.",
		ScareGentle:  "A gentle introduction to horror that's perfect for those who prefer lighter scares.",
	})
}

// DefaultQualityDescriptions maps quality levels to the second description sentence.
func DefaultQualityDescriptions() Table {
	return NewTable("quality-descriptions", "", map[string]string{
		"Masterpiece": "A cinematic masterpiece that represents the pinnacle of horror filmmaking.",
		"Excellent":   "An outstanding film that showcases exceptional storytelling and craftsmanship.",
		"Great":       "A well-crafted film that delivers a compelling horror experience.",
		"Good":        "A solid horror film that provides good entertainment value.",
		"Meh":         "An average film that may have some redeeming qualities despite its flaws.",
	})
}

// DefaultRatings maps gore levels to an age rating.
func DefaultRatings() Table {
	return NewTable("ratings", "PG-13", map[string]string{
		GoreBuckets:     "R",
		GoreMissingLimb: "R",
		GorePaperCut:    "PG-13",
	})
}

// DefaultGenres returns the title keyword rules used by the film spreadsheet.
func DefaultGenres() GenreClassifier {
	return GenreClassifier{
		Rules: []GenreRule{
			{Genre: "Zombie Horror", Keywords: []string{"zombie", "living dead"}},
			{Genre: "Vampire Horror", Keywords: []string{"vampire", "nosferatu"}},
			{Genre: "Werewolf Horror", Keywords: []string{"werewolf", "wolf"}},
			{Genre: "Sci-Fi Horror", Keywords: []string{"alien", "predator"}},
			{Genre: "Slasher", Keywords: []string{"slasher", "massacre", "friday", "halloween", "nightmare"}},
			{Genre: "Supernatural Horror", Keywords: []string{"possession", "exorcist", "conjuring"}},
			{Genre: "Psychological Horror", Keywords: []string{"psychological", "mind", "memory"}},
		},
		ByScareLevel: NewTable("scare-genres", "Horror", map[string]string{
			ScareGentle: "Horror Comedy",
		}),
	}
}
