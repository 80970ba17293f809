package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry records the input file state a processed output was built from.
type Entry struct {
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	Output      string    `json:"output"`
	Config      string    `json:"config"` // fingerprint of the options the output was built with
	ProcessedAt time.Time `json:"processed_at"`
}

// Manifest maps input paths to their last processed state.
type Manifest struct {
	mu        sync.Mutex
	Entries   map[string]Entry `json:"entries"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Load reads the manifest from a JSON file. Returns an empty manifest if the file doesn't exist.
func Load(filePath string) (*Manifest, error) {
	m := &Manifest{Entries: map[string]Entry{}}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", filePath, err)
	}
	if m.Entries == nil {
		m.Entries = map[string]Entry{}
	}
	return m, nil
}

// Save writes the manifest to a JSON file.
func (m *Manifest) Save(filePath string) error {
	m.mu.Lock()
	m.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}

// Unchanged reports whether input still matches its recorded state, was
// built with the same config fingerprint, and the recorded output still exists.
func (m *Manifest) Unchanged(input string, info os.FileInfo, config string) bool {
	m.mu.Lock()
	e, ok := m.Entries[input]
	m.mu.Unlock()
	if !ok || e.Size != info.Size() || !e.ModTime.Equal(info.ModTime()) || e.Config != config {
		return false
	}
	_, err := os.Stat(e.Output)
	return err == nil
}

// Mark records that input was processed into output.
func (m *Manifest) Mark(input string, info os.FileInfo, output, config string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[input] = Entry{
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Output:      output,
		Config:      config,
		ProcessedAt: time.Now(),
	}
}

// Lookup returns the recorded entry for input.
func (m *Manifest) Lookup(input string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Entries[input]
	return e, ok
}
