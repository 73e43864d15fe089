package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"xfollowers/pkg/logger"
	"xfollowers/pkg/twitter"
)

// Checkpoint captures the resumable state of a fetch run for one handle
type Checkpoint struct {
	Handle string `json:"handle"`
	// Cursor is the pagination cursor to resume follower ID fetching from.
	// twitter.CursorEnd means the ID fetch phase completed.
	Cursor int64 `json:"cursor"`
	// PendingIDs are fetched follower IDs not yet resolved to profiles
	PendingIDs   []string  `json:"pending_ids"`
	TotalFetched int       `json:"total_fetched"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

// IDFetchDone reports whether pagination finished and only resolution remains
func (c *Checkpoint) IDFetchDone() bool {
	return c.Cursor == twitter.CursorEnd
}

// Manager handles checkpoint persistence for one handle
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a checkpoint manager storing under the OS data directory
func NewManager(handle string) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}
	return NewManagerIn(filepath.Join(dataDir, "checkpoints"), handle)
}

// NewManagerIn creates a checkpoint manager storing under an explicit directory
func NewManagerIn(dir, handle string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &Manager{
		checkpointPath: filepath.Join(dir, fmt.Sprintf("%s.checkpoint.json", handle)),
		logger:         logger.GetLogger(),
	}, nil
}

// Create creates and saves a fresh checkpoint
func (m *Manager) Create(handle string) (*Checkpoint, error) {
	checkpoint := &Checkpoint{
		Handle:    handle,
		Cursor:    twitter.CursorStart,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Version:   1,
	}

	if err := m.Save(checkpoint); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint created", map[string]interface{}{
		"handle": handle,
		"path":   m.checkpointPath,
	})

	return checkpoint, nil
}

// Load loads an existing checkpoint, or nil if none exists
func (m *Manager) Load() (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"handle":        checkpoint.Handle,
		"cursor":        checkpoint.Cursor,
		"pending":       len(checkpoint.PendingIDs),
		"total_fetched": checkpoint.TotalFetched,
		"updated_at":    checkpoint.UpdatedAt,
	})

	return &checkpoint, nil
}

// Save saves the checkpoint to disk atomically
func (m *Manager) Save(checkpoint *Checkpoint) error {
	checkpoint.UpdatedAt = time.Now()

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(checkpoint); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// UpdateCursor records a completed page: the next cursor and its new IDs
func (m *Manager) UpdateCursor(checkpoint *Checkpoint, cursor int64, newIDs []string) error {
	checkpoint.Cursor = cursor
	checkpoint.PendingIDs = append(checkpoint.PendingIDs, newIDs...)
	checkpoint.TotalFetched += len(newIDs)
	return m.Save(checkpoint)
}

// SetPending replaces the unresolved ID backlog
func (m *Manager) SetPending(checkpoint *Checkpoint, ids []string) error {
	checkpoint.PendingIDs = ids
	return m.Save(checkpoint)
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "xfollowers")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "xfollowers")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "xfollowers")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			dataDir = filepath.Join(appData, "xfollowers")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, "AppData", "Roaming", "xfollowers")
		}
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".xfollowers")
	}

	return dataDir, nil
}
