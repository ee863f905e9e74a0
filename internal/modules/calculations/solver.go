package calculations

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qubitkit/qubitkit/internal/events"
	"github.com/qubitkit/qubitkit/internal/modules/spectrum"
)

// Solver is the spectral surface of a quantum-system model. FluxQubit
// satisfies it.
type Solver interface {
	Eigenvalues(count int) ([]float64, error)
	Eigensys(count int) (*spectrum.Eigensystem, error)
	SnapshotKey() string
}

// CachingSolver wraps a Solver and memoizes its results in a Cache. Cached
// entries are keyed by the wrapped system's parameter snapshot, so a stale
// read is impossible even without invalidation; bus-driven invalidation
// just keeps the table from accumulating entries for abandoned parameter
// sets between janitor runs.
type CachingSolver struct {
	inner Solver
	cache *Cache
	log   zerolog.Logger
}

// NewCachingSolver wraps inner with the cache. If bus is non-nil, any
// QuantumSystemUpdated event clears all spectrum entries.
func NewCachingSolver(inner Solver, cache *Cache, bus *events.Bus, log zerolog.Logger) *CachingSolver {
	s := &CachingSolver{
		inner: inner,
		cache: cache,
		log:   log.With().Str("service", "caching_solver").Logger(),
	}
	if bus != nil {
		bus.Subscribe(events.QuantumSystemUpdated, func(data events.EventData) {
			if err := cache.DeleteByPrefix(KeyPrefix); err != nil {
				s.log.Warn().Err(err).Msg("Failed to invalidate spectrum cache")
			}
		})
	}
	return s
}

// Eigenvalues returns the lowest count eigenvalues, from cache when the
// current parameter snapshot has been solved before.
func (s *CachingSolver) Eigenvalues(count int) ([]float64, error) {
	key := s.valuesKey(count)
	if values, ok := s.cache.GetEigenvalues(key); ok {
		s.log.Debug().Str("key", key).Msg("Spectrum cache hit")
		return values, nil
	}

	values, err := s.inner.Eigenvalues(count)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetEigenvalues(key, values); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache eigenvalues")
	}
	return values, nil
}

// Eigensys returns the lowest count eigenpairs, from cache when possible.
func (s *CachingSolver) Eigensys(count int) (*spectrum.Eigensystem, error) {
	key := s.systemKey(count)
	if esys, ok := s.cache.GetEigensystem(key); ok {
		s.log.Debug().Str("key", key).Msg("Eigensystem cache hit")
		return esys, nil
	}

	esys, err := s.inner.Eigensys(count)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetEigensystem(key, esys); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache eigensystem")
	}
	return esys, nil
}

// SnapshotKey passes through the wrapped system's snapshot key.
func (s *CachingSolver) SnapshotKey() string {
	return s.inner.SnapshotKey()
}

func (s *CachingSolver) valuesKey(count int) string {
	return fmt.Sprintf("%svals:%s:%d", KeyPrefix, s.inner.SnapshotKey(), count)
}

func (s *CachingSolver) systemKey(count int) string {
	return fmt.Sprintf("%ssys:%s:%d", KeyPrefix, s.inner.SnapshotKey(), count)
}
