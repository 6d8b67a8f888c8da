// Package snapshot persists the pipeline's published artifacts as JSON
// documents. Every write is a whole-file replace via a temp file and rename,
// duplicated to a canonical data directory and an optional publish directory
// consumed by the dashboard.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/observability"
)

const (
	aqiFileName             = "aqi-data.json"
	recommendationsFileName = "recommendations.json"
)

// Store reads the zones reference document and reads/writes snapshot
// envelopes.
type Store struct {
	zonesPath  string
	dataDir    string
	publishDir string // empty disables the secondary copy
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewStore creates a snapshot store.
func NewStore(zonesPath, dataDir, publishDir string, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		zonesPath:  zonesPath,
		dataDir:    dataDir,
		publishDir: publishDir,
		logger:     logger,
		metrics:    metrics,
	}
}

// ReadZones loads the curated zones document. A missing or empty document is
// an error: without zones neither job can do anything.
func (s *Store) ReadZones() (domain.ZonesDocument, error) {
	data, err := os.ReadFile(s.zonesPath)
	if err != nil {
		return domain.ZonesDocument{}, fmt.Errorf("read zones document: %w", err)
	}

	var doc domain.ZonesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.ZonesDocument{}, fmt.Errorf("parse zones document: %w", err)
	}
	if len(doc.Zones) == 0 {
		return domain.ZonesDocument{}, errors.New("zones document contains no zones")
	}
	return doc, nil
}

// ReadAQISnapshot loads the previous AQI snapshot. A missing file is not an
// error: the bool reports whether a snapshot existed.
func (s *Store) ReadAQISnapshot() (domain.AQISnapshot, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, aqiFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.AQISnapshot{}, false, nil
	}
	if err != nil {
		return domain.AQISnapshot{}, false, fmt.Errorf("read aqi snapshot: %w", err)
	}

	var snap domain.AQISnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.AQISnapshot{}, false, fmt.Errorf("parse aqi snapshot: %w", err)
	}
	return snap, true, nil
}

// WriteAQISnapshot publishes a new AQI envelope to both locations.
func (s *Store) WriteAQISnapshot(snap domain.AQISnapshot) error {
	if err := s.writeBoth(aqiFileName, snap); err != nil {
		return err
	}
	s.metrics.SnapshotWrites.WithLabelValues("aqi").Inc()
	return nil
}

// WriteRecommendationSnapshot publishes a new recommendations envelope to
// both locations.
func (s *Store) WriteRecommendationSnapshot(snap domain.RecommendationSnapshot) error {
	if err := s.writeBoth(recommendationsFileName, snap); err != nil {
		return err
	}
	s.metrics.SnapshotWrites.WithLabelValues("recommendations").Inc()
	return nil
}

// writeBoth marshals once and replaces the file in the canonical and publish
// directories. The published files are hand-inspected, so output is indented.
func (s *Store) writeBoth(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	dirs := []string{s.dataDir}
	if s.publishDir != "" && s.publishDir != s.dataDir {
		dirs = append(dirs, s.publishDir)
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if err := writeAtomic(path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		s.logger.Info("snapshot written", "path", path, "bytes", len(data))
	}
	return nil
}

// writeAtomic replaces path contents via a temp file in the same directory
// and a rename, so readers never observe a partial document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
