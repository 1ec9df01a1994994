package catalog

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GTDGit/vtu_api/internal/models"
)

// Store holds the live catalog and swaps it atomically on reload, so readers
// never observe a half-loaded table.
type Store struct {
	current atomic.Pointer[Catalog]

	path    string
	mu      sync.Mutex
	modTime time.Time
}

// NewStore loads the catalog from path, or the embedded default when path is empty.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		c, err := Default()
		if err != nil {
			return nil, err
		}
		s.current.Store(c)
		return s, nil
	}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticStore wraps an already parsed catalog.
func NewStaticStore(c *Catalog) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

// Current returns the catalog in effect.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Path returns the backing file, empty for embedded or static catalogs.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the backing file when it changed since the last load.
// It reports whether a new catalog was installed. A file that fails to parse
// leaves the current catalog in place.
func (s *Store) Reload() (bool, error) {
	if s.path == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return false, fmt.Errorf("stat catalog: %w", err)
	}
	if !s.modTime.IsZero() && !info.ModTime().After(s.modTime) {
		return false, nil
	}

	c, err := LoadFile(s.path)
	if err != nil {
		return false, err
	}
	s.current.Store(c)
	s.modTime = info.ModTime()
	return true, nil
}

// LookupPlans delegates to the current catalog.
func (s *Store) LookupPlans(service models.ServiceType, provider, category string) ([]models.Plan, error) {
	return s.Current().LookupPlans(service, provider, category)
}

// LookupPlanByID delegates to the current catalog.
func (s *Store) LookupPlanByID(service models.ServiceType, provider, category, id string) (*models.Plan, error) {
	return s.Current().LookupPlanByID(service, provider, category, id)
}

// OffersDuration delegates to the current catalog.
func (s *Store) OffersDuration(months int) bool {
	return s.Current().OffersDuration(months)
}
