package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// File is the on-disk shape of the movies data file.
type File struct {
	Movies map[string]Movie `json:"movies"`
}

// Store is an immutable movie lookup keyed by movie id.
type Store struct {
	movies map[string]Movie
	ids    []string
}

// NewStore builds a store from the given movies. Records without an id get
// the slug of their title. A later record with the same id replaces an
// earlier one.
func NewStore(movies []Movie) *Store {
	s := &Store{movies: make(map[string]Movie, len(movies))}
	for _, m := range movies {
		if m.ID == "" {
			m.ID = Slug(m.Title)
		}
		s.movies[m.ID] = m
	}
	s.index()
	return s
}

// NewStoreFromFile builds a store from a decoded movies file. The map key is
// authoritative when a record carries no id of its own.
func NewStoreFromFile(f File) *Store {
	s := &Store{movies: make(map[string]Movie, len(f.Movies))}
	for key, m := range f.Movies {
		if m.ID == "" {
			m.ID = key
		}
		s.movies[key] = m
	}
	s.index()
	return s
}

// ParseStore decodes a movies data file.
func ParseStore(r io.Reader) (*Store, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}
	return NewStoreFromFile(f), nil
}

func (s *Store) index() {
	s.ids = make([]string, 0, len(s.movies))
	for id := range s.movies {
		s.ids = append(s.ids, id)
	}
	sort.Strings(s.ids)
}

// Movie returns the movie with the given id.
func (s *Store) Movie(id string) (Movie, bool) {
	m, ok := s.movies[id]
	return m, ok
}

// Len returns the number of movies in the store.
func (s *Store) Len() int {
	return len(s.movies)
}

// IDs returns all movie ids in ascending order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// All returns every movie ordered by id.
func (s *Store) All() []Movie {
	out := make([]Movie, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.movies[id])
	}
	return out
}
