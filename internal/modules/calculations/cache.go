// Package calculations provides persistent caching for expensive spectral
// computations. Results are keyed by a content hash of the parameter set,
// serialized with msgpack and stored in a cache-profile SQLite database.
package calculations

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"

	"github.com/qubitkit/qubitkit/internal/database"
	"github.com/qubitkit/qubitkit/internal/modules/spectrum"
)

// KeyPrefix namespaces all spectrum entries so they can be invalidated as
// a group.
const KeyPrefix = "spectrum:"

// Cache stores computed spectra with expiration.
type Cache struct {
	db  *database.DB
	ttl time.Duration
	log zerolog.Logger
}

// cachedEigensystem is the msgpack wire form of a spectrum.Eigensystem.
// msgpack has no complex type, so vectors are split into real and
// imaginary parts in row-major order. Cols == 0 means values-only.
type cachedEigensystem struct {
	Values  []float64 `msgpack:"values"`
	VecReal []float64 `msgpack:"vec_real"`
	VecImag []float64 `msgpack:"vec_imag"`
	Rows    int       `msgpack:"rows"`
	Cols    int       `msgpack:"cols"`
}

// NewCache creates the cache and its schema.
func NewCache(db *database.DB, ttl time.Duration, log zerolog.Logger) (*Cache, error) {
	_, err := db.Conn().Exec(`
		CREATE TABLE IF NOT EXISTS spectra (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create spectra table: %w", err)
	}
	return &Cache{
		db:  db,
		ttl: ttl,
		log: log.With().Str("service", "calculations_cache").Logger(),
	}, nil
}

// SetEigenvalues stores a values-only spectrum under key.
func (c *Cache) SetEigenvalues(key string, values []float64) error {
	return c.put(key, &cachedEigensystem{Values: values})
}

// GetEigenvalues returns cached eigenvalues, or false on miss/expiry.
func (c *Cache) GetEigenvalues(key string) ([]float64, bool) {
	entry, ok := c.get(key)
	if !ok {
		return nil, false
	}
	return entry.Values, true
}

// SetEigensystem stores values and eigenvectors under key.
func (c *Cache) SetEigensystem(key string, esys *spectrum.Eigensystem) error {
	rows, cols := esys.Vectors.Dims()
	entry := &cachedEigensystem{
		Values:  esys.Values,
		VecReal: make([]float64, rows*cols),
		VecImag: make([]float64, rows*cols),
		Rows:    rows,
		Cols:    cols,
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := esys.Vectors.At(i, j)
			entry.VecReal[i*cols+j] = real(v)
			entry.VecImag[i*cols+j] = imag(v)
		}
	}
	return c.put(key, entry)
}

// GetEigensystem returns a cached eigensystem, or false on miss/expiry or
// when the entry is values-only.
func (c *Cache) GetEigensystem(key string) (*spectrum.Eigensystem, bool) {
	entry, ok := c.get(key)
	if !ok || entry.Cols == 0 {
		return nil, false
	}
	vectors := mat.NewCDense(entry.Rows, entry.Cols, nil)
	for i := 0; i < entry.Rows; i++ {
		for j := 0; j < entry.Cols; j++ {
			idx := i*entry.Cols + j
			vectors.Set(i, j, complex(entry.VecReal[idx], entry.VecImag[idx]))
		}
	}
	return &spectrum.Eigensystem{Values: entry.Values, Vectors: vectors}, true
}

// DeleteByPrefix removes all cache entries matching a key prefix.
func (c *Cache) DeleteByPrefix(prefix string) error {
	_, err := c.db.Conn().Exec("DELETE FROM spectra WHERE key LIKE ?", prefix+"%")
	if err != nil {
		return fmt.Errorf("failed to delete cache entries with prefix %q: %w", prefix, err)
	}
	return nil
}

// PruneExpired removes all expired entries and returns how many were
// dropped. Run periodically by the cache janitor.
func (c *Cache) PruneExpired() (int64, error) {
	res, err := c.db.Conn().Exec("DELETE FROM spectra WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune expired cache entries: %w", err)
	}
	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		c.log.Debug().Int64("pruned", pruned).Msg("Pruned expired spectra")
	}
	return pruned, nil
}

func (c *Cache) put(key string, entry *cachedEigensystem) error {
	blob, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize cache entry: %w", err)
	}
	expiresAt := time.Now().Add(c.ttl).Unix()
	_, err = c.db.Conn().Exec(`
		INSERT INTO spectra (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, blob, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

func (c *Cache) get(key string) (*cachedEigensystem, bool) {
	var blob []byte
	var expiresAt int64
	err := c.db.Conn().QueryRow(
		"SELECT value, expires_at FROM spectra WHERE key = ?", key,
	).Scan(&blob, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return nil, false
	}
	if expiresAt < time.Now().Unix() {
		return nil, false
	}

	var entry cachedEigensystem
	if err := msgpack.Unmarshal(blob, &entry); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache entry corrupt; ignoring")
		return nil, false
	}
	return &entry, true
}
