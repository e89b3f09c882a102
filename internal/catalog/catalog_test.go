package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Drag Me to Hell", "drag-me-to-hell"},
		{"The Shining (1980)", "the-shining-1980"},
		{"Alien: Covenant", "alien-covenant"},
		{"Don't Breathe", "dont-breathe"},
		{"Spider-Man", "spiderman"},
		{"A - B", "a-b"},
		{"  Leading and trailing  ", "-leading-and-trailing-"},
		{"Foo -", "foo-"},
		{"- Foo", "-foo"},
		{"Scream!", "scream"},
		{"   ", "-"},
		{"Tabs\tand\nnewlines", "tabs-and-newlines"},
		{"It Follows?", "it-follows"},
		{"Café Terror", "caf-terror"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.title))
		})
	}
}

func TestSlugIsDeterministic(t *testing.T) {
	titles := []string{"Drag Me to Hell", "The Texas Chain Saw Massacre (1974)", "28 Days Later"}
	for _, title := range titles {
		first := Slug(title)
		second := Slug(title)
		assert.Equal(t, first, second, "title %q", title)
		assert.NotContains(t, first, "--")
		assert.False(t, strings.HasPrefix(first, "-") || strings.HasSuffix(first, "-"))
	}
}

func TestTrailerVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ?start=3", "dQw4w9WgXcQ"},
		{"extra params", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"wrong length", "https://youtu.be/short", ""},
		{"not youtube", "https://example.com/trailer.mp4", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Movie{TrailerURL: tt.url}
			assert.Equal(t, tt.want, m.TrailerVideoID())
			if tt.want != "" {
				assert.Equal(t, "https://www.youtube.com/embed/"+tt.want, m.TrailerEmbedURL())
			} else {
				assert.Empty(t, m.TrailerEmbedURL())
			}
		})
	}
}

func TestParseStore(t *testing.T) {
	input := `{
	  "movies": {
	    "drag-me-to-hell": {"title": "Drag Me to Hell", "year": 2009, "rating": "R"},
	    "hereditary": {"id": "hereditary", "title": "Hereditary", "year": 2018}
	  }
	}`

	store, err := ParseStore(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"drag-me-to-hell", "hereditary"}, store.IDs())

	m, ok := store.Movie("drag-me-to-hell")
	require.True(t, ok)
	assert.Equal(t, "drag-me-to-hell", m.ID, "id falls back to the map key")
	assert.Equal(t, 2009, m.Year)
	assert.Equal(t, "Drag Me to Hell (2009)", m.String())

	_, ok = store.Movie("missing")
	assert.False(t, ok)
}

func TestParseStoreInvalidJSON(t *testing.T) {
	_, err := ParseStore(strings.NewReader(`{"movies": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode movies")
}

func TestNewStoreDerivesIDs(t *testing.T) {
	store := NewStore([]Movie{
		{Title: "Get Out", Year: 2017},
		{Title: "Get Out", Year: 2018},
	})

	require.Equal(t, 1, store.Len())
	m, ok := store.Movie("get-out")
	require.True(t, ok)
	assert.Equal(t, 2018, m.Year, "later record wins")

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "get-out", all[0].ID)
}
