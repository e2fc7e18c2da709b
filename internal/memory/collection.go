package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateID is returned by Add when the memory's id is already present.
var ErrDuplicateID = errors.New("memory id already exists")

// Collection is an id-keyed store of memories. It is not safe for
// concurrent use; each advisor owns exactly one.
type Collection struct {
	memories map[string]*Memory
	order    []string // insertion order
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{memories: make(map[string]*Memory)}
}

// Add inserts m under its own id and returns that id.
func (c *Collection) Add(m *Memory) (string, error) {
	if _, ok := c.memories[m.id]; ok {
		return "", fmt.Errorf("add %s: %w", m.id, ErrDuplicateID)
	}
	c.memories[m.id] = m
	c.order = append(c.order, m.id)
	return m.id, nil
}

// Get returns the memory with the given id, or nil.
func (c *Collection) Get(id string) *Memory {
	return c.memories[id]
}

// Len returns the number of memories held.
func (c *Collection) Len() int {
	return len(c.memories)
}

// Serialize encodes the collection as a flat JSON object of id → statement.
func (c *Collection) Serialize() (string, error) {
	flat := make(map[string]string, len(c.memories))
	for id, m := range c.memories {
		flat[id] = m.statement
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(flat); err != nil {
		return "", fmt.Errorf("serialize memories: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Select returns the memories named by ids, in request order, skipping
// unknown and repeated ids. Every returned memory is refreshed; every other
// member decays one step. Forgotten members are pruned before returning.
func (c *Collection) Select(ids []string) []*Memory {
	selected := make([]*Memory, 0, len(ids))
	resolved := make(map[string]bool, len(ids))
	for _, id := range ids {
		if resolved[id] {
			continue
		}
		m, ok := c.memories[id]
		if !ok {
			continue
		}
		resolved[id] = true
		selected = append(selected, m)
	}

	for _, m := range selected {
		m.Refresh()
	}
	for id, m := range c.memories {
		if !resolved[id] {
			m.Decay()
		}
	}

	c.Prune()
	return selected
}

// Prune removes every forgotten memory and returns how many were removed.
func (c *Collection) Prune() int {
	removed := 0
	kept := c.order[:0]
	for _, id := range c.order {
		if c.memories[id].Forgotten() {
			delete(c.memories, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	return removed
}

// Snapshot is a read-only view of a memory's state.
type Snapshot struct {
	ID              string  `json:"id"`
	Statement       string  `json:"statement"`
	DecayRate       float64 `json:"decay_rate"`
	StrengthInitial float64 `json:"strength_initial"`
	Strength        float64 `json:"strength"`
	Step            int     `json:"step"`
}

// Snapshot returns the state of every memory, strongest first.
func (c *Collection) Snapshot() []Snapshot {
	out := make([]Snapshot, 0, len(c.order))
	for _, id := range c.order {
		m := c.memories[id]
		out = append(out, Snapshot{
			ID:              m.id,
			Statement:       m.statement,
			DecayRate:       m.decayRate,
			StrengthInitial: m.strengthInitial,
			Strength:        m.currentStrength,
			Step:            m.step,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Strength > out[j].Strength
	})
	return out
}
