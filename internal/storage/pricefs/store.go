// Package pricefs implements file-based storage for resolved prices and
// manual price overrides.
package pricefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asafgelber/folio/internal/common"
	"github.com/asafgelber/folio/internal/interfaces"
	"github.com/asafgelber/folio/internal/models"
)

const (
	cacheKey  = "price_cache"
	manualKey = "manual_prices"
)

// Store provides file-based JSON storage for the price layer: the persistent
// last-known price cache and the manual override table. Writes are atomic
// (temp file then rename) so a crash never leaves a torn file behind.
type Store struct {
	basePath string
	logger   *common.Logger
}

var _ interfaces.PriceStore = (*Store)(nil)

// NewStore opens a price store rooted at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create price store path %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("price store opened")
	return &Store{basePath: path, logger: logger}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// LoadCache reads the persisted last-known prices. A missing file is not an
// error and yields an empty map.
func (s *Store) LoadCache() (map[string]models.PriceData, error) {
	cache := make(map[string]models.PriceData)
	if err := s.readJSON(cacheKey, &cache); err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return nil, err
	}
	return cache, nil
}

// SaveCache persists the last-known prices.
func (s *Store) SaveCache(cache map[string]models.PriceData) error {
	return s.writeJSON(cacheKey, cache)
}

// LoadManual reads the manual price overrides (symbol to price). A missing
// file yields an empty map.
func (s *Store) LoadManual() (map[string]float64, error) {
	manual := make(map[string]float64)
	if err := s.readJSON(manualKey, &manual); err != nil {
		if os.IsNotExist(err) {
			return manual, nil
		}
		return nil, err
	}
	return manual, nil
}

// SaveManual persists the manual price overrides.
func (s *Store) SaveManual(manual map[string]float64) error {
	return s.writeJSON(manualKey, manual)
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// --- helpers ---

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func (s *Store) filePath(key string) string {
	return filepath.Join(s.basePath, sanitizeKey(key)+".json")
}

func (s *Store) readJSON(key string, dest interface{}) error {
	path := s.filePath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	return json.Unmarshal(data, dest)
}

func (s *Store) writeJSON(key string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	tmpFile, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
