package advisor

import (
	"fmt"

	"github.com/lazypower/council/internal/config"
)

// Personality describes how an advisor sees the world. It is either a
// Simple free-text description or a Structured motive/fear/strategy/blind
// spot tuple.
type Personality interface {
	// Describe returns the value embedded in backend payloads.
	Describe() any
	String() string

	personality()
}

// Simple is a single free-text personality description.
type Simple string

// Describe returns the text itself.
func (s Simple) Describe() any { return string(s) }

// String returns the text itself.
func (s Simple) String() string { return string(s) }

func (Simple) personality() {}

// Structured is the four-field personality.
type Structured struct {
	Motive    string `json:"motive"`
	Fear      string `json:"fear"`
	Strategy  string `json:"strategy"`
	BlindSpot string `json:"blind_spot"`
}

// Describe returns the struct, which encodes as an object with motive, fear,
// strategy and blind_spot keys.
func (s Structured) Describe() any { return s }

// String renders the four fields on one line.
func (s Structured) String() string {
	return fmt.Sprintf("motive: %s; fear: %s; strategy: %s; blind spot: %s",
		s.Motive, s.Fear, s.Strategy, s.BlindSpot)
}

func (Structured) personality() {}

// PersonalityFrom builds the personality declared by an advisor config entry.
func PersonalityFrom(a config.AdvisorConfig) Personality {
	if a.Structured() {
		return Structured{
			Motive:    a.Motive,
			Fear:      a.Fear,
			Strategy:  a.Strategy,
			BlindSpot: a.BlindSpot,
		}
	}
	return Simple(a.Personality)
}
