package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"xfollowers/pkg/logger"
)

// csvHeader is the column layout of the cache file
var csvHeader = []string{"timestamp", "id", "screen_name", "name", "followers_count", "created_at"}

// CSVStore implements Store backed by a flat CSV file, one file per
// tracked handle. Rows are never deleted; a re-fetched profile overwrites
// its row in place.
type CSVStore struct {
	path   string
	logger logger.Logger
}

// NewCSVStore creates a CSV-backed store at the given path.
// The parent directory is created if missing; the file itself is created
// lazily on first upsert.
func NewCSVStore(path string, log logger.Logger) (*CSVStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return &CSVStore{path: path, logger: log}, nil
}

// Path returns the cache file path
func (s *CSVStore) Path() string {
	return s.path
}

// LoadExisting returns the set of IDs already present in the cache file
func (s *CSVStore) LoadExisting() (map[string]struct{}, error) {
	records, err := s.All()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		ids[r.ID] = struct{}{}
	}
	return ids, nil
}

// All reads every record from the cache file in stored order.
// A missing file is an empty store, not an error.
func (s *CSVStore) All() ([]Record, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	// Skip the header row
	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("malformed cache row %d: expected %d columns, got %d", i+2, len(csvHeader), len(row))
		}

		count, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("malformed followers_count in cache row %d: %w", i+2, err)
		}

		records = append(records, Record{
			Timestamp:      row[0],
			ID:             row[1],
			ScreenName:     row[2],
			Name:           row[3],
			FollowersCount: count,
			CreatedAt:      row[5],
		})
	}

	return records, nil
}

// Upsert merges records into the cache file, overwriting rows with
// matching IDs and appending new ones. The whole file is rewritten
// atomically via a temp file and rename.
func (s *CSVStore) Upsert(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	existing, err := s.All()
	if err != nil {
		return err
	}

	index := make(map[string]int, len(existing))
	for i, r := range existing {
		index[r.ID] = i
	}

	added := 0
	for _, r := range records {
		if i, ok := index[r.ID]; ok {
			existing[i] = r
		} else {
			index[r.ID] = len(existing)
			existing = append(existing, r)
			added++
		}
	}

	if err := s.writeAll(existing); err != nil {
		return err
	}

	s.logger.DebugWithFields("cache updated", map[string]interface{}{
		"path":     s.path,
		"upserted": len(records),
		"added":    added,
		"total":    len(existing),
	})

	return nil
}

// writeAll rewrites the cache file atomically
func (s *CSVStore) writeAll(records []Record) error {
	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write cache header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Timestamp,
			r.ID,
			r.ScreenName,
			r.Name,
			strconv.Itoa(r.FollowersCount),
			r.CreatedAt,
		}
		if err := writer.Write(row); err != nil {
			file.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to write cache row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to flush cache file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync cache file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	return nil
}

// CacheFilePath returns the conventional cache file path for a handle
func CacheFilePath(dir, handle string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_followers.csv", handle))
}
