package sim

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const replayVersion = 1

// Replay is a recorded match: one snapshot per finished turn.
type Replay struct {
	MatchID string     `yaml:"match_id"`
	Seed    int64      `yaml:"seed"`
	States  []Snapshot `yaml:"states"`

	current int
	mu      sync.RWMutex
}

type replayFile struct {
	Version int       `yaml:"version"`
	SavedAt time.Time `yaml:"saved_at"`
	Replay  *Replay   `yaml:"replay"`
}

// NewReplay creates an empty replay.
func NewReplay(matchID string, seed int64) *Replay {
	return &Replay{MatchID: matchID, Seed: seed}
}

// Record appends a snapshot.
func (r *Replay) Record(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.States = append(r.States, s)
}

// Start rewinds playback.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = 0
}

// Next returns the next snapshot, or false at the end.
func (r *Replay) Next() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current >= len(r.States) {
		return Snapshot{}, false
	}
	s := r.States[r.current]
	r.current++
	return s, true
}

// Previous steps back one snapshot.
func (r *Replay) Previous() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == 0 {
		return Snapshot{}, false
	}
	r.current--
	return r.States[r.current], true
}

// Skip moves count snapshots forward (or back when negative), clamped to
// the recording.
func (r *Replay) Skip(count int) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.States) == 0 {
		return Snapshot{}, false
	}
	idx := r.current + count
	if idx >= len(r.States) {
		idx = len(r.States) - 1
	}
	if idx < 0 {
		idx = 0
	}
	r.current = idx
	return r.States[idx], true
}

// Size returns the number of snapshots.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.States)
}

// At returns the snapshot at index.
func (r *Replay) At(index int) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.States) {
		return Snapshot{}, false
	}
	return r.States[index], true
}

// Checksum chains the checksums of every snapshot.
func (r *Replay) Checksum() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h := sha256.New()
	for _, s := range r.States {
		io.WriteString(h, s.Checksum())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Encode writes the replay as gzipped YAML.
func (r *Replay) Encode(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	zw := gzip.NewWriter(w)
	enc := yaml.NewEncoder(zw)
	if err := enc.Encode(replayFile{Version: replayVersion, SavedAt: time.Now().UTC(), Replay: r}); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	return zw.Close()
}

// SaveToFile writes the replay to <dir>/<match id>.replay.yaml.gz.
func (r *Replay) SaveToFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(dir, r.MatchID+".replay.yaml.gz")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	if err := r.Encode(f); err != nil {
		return "", err
	}
	return path, nil
}

// DecodeReplay reads a replay written by Encode.
func DecodeReplay(rd io.Reader) (*Replay, error) {
	zr, err := gzip.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer zr.Close()

	var file replayFile
	if err := yaml.NewDecoder(zr).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if file.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", file.Version)
	}
	if file.Replay == nil {
		return nil, fmt.Errorf("replay file has no states")
	}
	return file.Replay, nil
}

// LoadReplayFromFile reads a replay saved by SaveToFile.
func LoadReplayFromFile(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return DecodeReplay(f)
}
