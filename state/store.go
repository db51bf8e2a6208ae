// Package state holds the single owner of the storefront's mutable state:
// the loaded catalog, the quantity map and the catalog status line.
package state

import (
	"sync"

	"trader-storefront/models"
)

// Store is the state owner. All mutation goes through its methods.
type Store struct {
	mu         sync.RWMutex
	catalog    models.Catalog
	quantities models.QuantityMap
	status     models.CatalogStatus
	generation uint64
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		quantities: make(models.QuantityMap),
	}
}

// Catalog returns the current catalog. Entries are never mutated in place,
// so the returned slice is safe to read.
func (s *Store) Catalog() models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Quantity returns the stored quantity for item (0 when absent)
func (s *Store) Quantity(item string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantities.Get(item)
}

// Quantities returns a snapshot copy of the quantity map
func (s *Store) Quantities() models.QuantityMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantities.Clone()
}

// Snapshot returns the catalog and a copy of the quantities taken under one lock
func (s *Store) Snapshot() (models.Catalog, models.QuantityMap) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, s.quantities.Clone()
}

// SetQuantity parses raw, stores the clamped value for item and returns it.
// Only the given item is touched. A zero result removes the key.
func (s *Store) SetQuantity(item, raw string) int {
	qty := ParseQuantity(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	if qty == 0 {
		delete(s.quantities, item)
	} else {
		s.quantities[item] = qty
	}
	return qty
}

// Clear empties the quantity map
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quantities = make(models.QuantityMap)
}

// ClearSubmitted removes the quantities that were part of submitted. Items
// edited after the snapshot was taken keep their current value.
func (s *Store) ClearSubmitted(submitted models.QuantityMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for item, qty := range submitted {
		if s.quantities[item] == qty {
			delete(s.quantities, item)
		}
	}
}

// Status returns the current catalog status
func (s *Store) Status() models.CatalogStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetMessage replaces the user-facing status message
func (s *Store) SetMessage(message string, good bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Message = message
	s.status.Good = good
}

// BeginLoad reserves a new load generation. Only the result of the most
// recently started load may be applied.
func (s *Store) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Generation returns the most recently reserved load generation
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// ApplyCatalog replaces the catalog and status if gen is still current.
// It reports false and changes nothing for a stale generation.
func (s *Store) ApplyCatalog(gen uint64, catalog models.Catalog, status models.CatalogStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.catalog = catalog
	status.Generation = gen
	s.status = status
	return true
}
