// Package memory holds the decaying memory model used by advisors.
//
// A Memory loses strength linearly each time it is passed over and regains
// its full strength whenever it is selected as relevant. Once strength
// reaches zero the owning Collection prunes it.
package memory

import (
	"strings"

	"github.com/google/uuid"
)

// Memory is a single decaying statement.
type Memory struct {
	id              string
	statement       string
	decayRate       float64
	strengthInitial float64

	currentStrength float64
	step            int
}

// New creates a memory at full strength with a fresh random id.
// Negative decay rates are treated as zero.
func New(statement string, decayRate, strengthInitial float64) *Memory {
	if decayRate < 0 {
		decayRate = 0
	}
	return &Memory{
		id:              NewID(),
		statement:       statement,
		decayRate:       decayRate,
		strengthInitial: strengthInitial,
		currentStrength: strengthInitial,
	}
}

// NewID returns a 32-character hex identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ID returns the memory's identifier.
func (m *Memory) ID() string { return m.id }

// Statement returns the memory text.
func (m *Memory) Statement() string { return m.statement }

// DecayRate returns the strength lost per step.
func (m *Memory) DecayRate() float64 { return m.decayRate }

// StrengthInitial returns the baseline strength restored by Refresh.
func (m *Memory) StrengthInitial() float64 { return m.strengthInitial }

// Strength returns the current strength.
func (m *Memory) Strength() float64 { return m.currentStrength }

// Step returns the number of decay steps since creation or the last refresh.
func (m *Memory) Step() int { return m.step }

// Decay advances the memory one step. A zero decay rate makes it a no-op.
func (m *Memory) Decay() {
	if m.decayRate == 0 {
		return
	}
	m.step++
	m.currentStrength = m.strengthInitial - m.decayRate*float64(m.step)
}

// Refresh restores the memory to its initial strength.
func (m *Memory) Refresh() {
	m.step = 0
	m.currentStrength = m.strengthInitial
}

// Forgotten reports whether the memory has decayed to zero or below.
func (m *Memory) Forgotten() bool {
	return m.currentStrength <= 0
}
