package game

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Replay is the ordered list of committed states of one match. Every commit
// appends one snapshot, so stepping through a replay reproduces the match
// exactly as both players saw it.
type Replay struct {
	mu     sync.Mutex
	gameID string
	states []*GameState
	cursor int
}

// NewReplay creates an empty replay for a match.
func NewReplay(gameID string) *Replay {
	return &Replay{gameID: gameID, cursor: -1}
}

// GameID returns the match this replay belongs to.
func (r *Replay) GameID() string {
	return r.gameID
}

// Record appends one committed state. The snapshot is cloned, so later
// mutations never reach back into the replay.
func (r *Replay) Record(s *GameState) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s.Clone())
}

// Size returns the number of recorded states.
func (r *Replay) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Rewind moves the cursor before the first state.
func (r *Replay) Rewind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = -1
}

// Next steps the cursor forward and returns the state there, or nil at the
// end.
func (r *Replay) Next() *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor+1 >= len(r.states) {
		return nil
	}
	r.cursor++
	return r.states[r.cursor].Clone()
}

// Previous steps the cursor backward and returns the state there, or nil at
// the start.
func (r *Replay) Previous() *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor <= 0 {
		r.cursor = -1
		return nil
	}
	r.cursor--
	return r.states[r.cursor].Clone()
}

// StateAt returns the snapshot at the given index without moving the cursor.
func (r *Replay) StateAt(index int) *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.states) {
		return nil
	}
	return r.states[index].Clone()
}

// Checksum computes a deterministic digest of one state. Two states with the
// same cards in the same zones produce the same digest, which guards saved
// replays against divergence.
func Checksum(s *GameState) (string, error) {
	// Struct field order is fixed and map keys marshal sorted, so the JSON
	// encoding is canonical.
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// replayFile is the on-disk replay format.
type replayFile struct {
	GameID   string       `json:"game_id"`
	Version  int          `json:"version"`
	Checksum string       `json:"checksum"`
	States   []*GameState `json:"states"`
}

const replayVersion = 1

// SaveToFile writes the replay as JSON under the given directory.
func (r *Replay) SaveToFile(dir string) error {
	r.mu.Lock()
	states := make([]*GameState, len(r.states))
	copy(states, r.states)
	r.mu.Unlock()

	if len(states) == 0 {
		return fmt.Errorf("replay %s has no states", r.gameID)
	}
	sum, err := Checksum(states[len(states)-1])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create replay dir: %w", err)
	}
	data, err := json.MarshalIndent(replayFile{
		GameID:   r.gameID,
		Version:  replayVersion,
		Checksum: sum,
		States:   states,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal replay: %w", err)
	}
	return os.WriteFile(replayPath(dir, r.gameID), data, 0o644)
}

// LoadReplayFromFile reads a saved replay back and verifies its checksum.
func LoadReplayFromFile(dir, gameID string) (*Replay, error) {
	data, err := os.ReadFile(replayPath(dir, gameID))
	if err != nil {
		return nil, err
	}
	var file replayFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse replay: %w", err)
	}
	if file.Version != replayVersion {
		return nil, fmt.Errorf("replay version %d not supported", file.Version)
	}
	if len(file.States) == 0 {
		return nil, fmt.Errorf("replay %s has no states", gameID)
	}
	sum, err := Checksum(file.States[len(file.States)-1])
	if err != nil {
		return nil, err
	}
	if sum != file.Checksum {
		return nil, fmt.Errorf("replay %s checksum mismatch", gameID)
	}
	return &Replay{gameID: file.GameID, states: file.States, cursor: -1}, nil
}

func replayPath(dir, gameID string) string {
	return filepath.Join(dir, gameID+".replay.json")
}
