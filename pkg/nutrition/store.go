package nutrition

import "sync/atomic"

// Store holds the live catalog. Reloads replace the whole catalog in one
// atomic swap; readers keep whatever snapshot they loaded.
type Store struct {
	current atomic.Pointer[Catalog]
}

func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

func (s *Store) Catalog() *Catalog {
	return s.current.Load()
}

// Swap installs c and returns the previous catalog. A nil c is rejected so
// a failed reload can never leave readers without a catalog.
func (s *Store) Swap(c *Catalog) *Catalog {
	if c == nil {
		return s.current.Load()
	}
	return s.current.Swap(c)
}
