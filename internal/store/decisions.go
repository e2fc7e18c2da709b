package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lazypower/council/internal/executive"
)

// ErrNotFound is returned when a journal entry does not exist.
var ErrNotFound = errors.New("not found")

// Decision is a recorded deliberation.
type Decision struct {
	ID string `json:"id"`
	executive.Deliberation
	CreatedAt int64 `json:"created_at"`
}

// RecordDecision journals a completed deliberation under a new snowflake id.
func (db *DB) RecordDecision(d *executive.Deliberation) (*Decision, error) {
	selected, err := json.Marshal(nonNil(d.Selected))
	if err != nil {
		return nil, fmt.Errorf("encode selected: %w", err)
	}
	impressions := d.Impressions
	if impressions == nil {
		impressions = []executive.Impression{}
	}
	encoded, err := json.Marshal(impressions)
	if err != nil {
		return nil, fmt.Errorf("encode impressions: %w", err)
	}

	rec := &Decision{
		ID:           db.ids.Generate().String(),
		Deliberation: *d,
		CreatedAt:    time.Now().UnixMilli(),
	}
	_, err = db.Exec(`
		INSERT INTO decisions (id, scenario, selected, impressions, decision, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, d.Scenario, string(selected), string(encoded), d.Decision, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert decision: %w", err)
	}
	return rec, nil
}

// GetDecision returns the decision with id, or ErrNotFound.
func (db *DB) GetDecision(id string) (*Decision, error) {
	row := db.QueryRow(`
		SELECT id, scenario, selected, impressions, decision, created_at
		FROM decisions WHERE id = ?
	`, id)
	d, err := scanDecision(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("decision %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return d, nil
}

// RecentDecisions returns the most recent decisions, newest first.
func (db *DB) RecentDecisions(limit int) ([]Decision, error) {
	rows, err := db.Query(`
		SELECT id, scenario, selected, impressions, decision, created_at
		FROM decisions ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent decisions: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDecision(s scanner) (*Decision, error) {
	var (
		d           Decision
		selected    string
		impressions string
	)
	if err := s.Scan(&d.ID, &d.Scenario, &selected, &impressions, &d.Decision, &d.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(selected), &d.Selected); err != nil {
		return nil, fmt.Errorf("decode selected: %w", err)
	}
	if err := json.Unmarshal([]byte(impressions), &d.Impressions); err != nil {
		return nil, fmt.Errorf("decode impressions: %w", err)
	}
	return &d, nil
}

// Reflection is an outcome offered to the council after acting.
type Reflection struct {
	ID          int64    `json:"id"`
	DecisionID  string   `json:"decision_id,omitempty"`
	Scenario    string   `json:"scenario"`
	ActionTaken string   `json:"action_taken"`
	Result      string   `json:"result"`
	RetainedBy  []string `json:"retained_by"`
	CreatedAt   int64    `json:"created_at"`
}

// RecordReflection journals a reflection. An empty DecisionID is stored as
// NULL; a non-empty one must reference a recorded decision.
func (db *DB) RecordReflection(r *Reflection) error {
	retained, err := json.Marshal(nonNil(r.RetainedBy))
	if err != nil {
		return fmt.Errorf("encode retained_by: %w", err)
	}

	var decisionID any
	if r.DecisionID != "" {
		decisionID = r.DecisionID
	}

	r.CreatedAt = time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO reflections (decision_id, scenario, action_taken, result, retained_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, decisionID, r.Scenario, r.ActionTaken, r.Result, string(retained), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reflection: %w", err)
	}
	r.ID, _ = result.LastInsertId()
	return nil
}

// ReflectionsFor returns the reflections recorded against a decision, oldest
// first.
func (db *DB) ReflectionsFor(decisionID string) ([]Reflection, error) {
	rows, err := db.Query(`
		SELECT id, COALESCE(decision_id, ''), scenario, action_taken, result, retained_by, created_at
		FROM reflections WHERE decision_id = ? ORDER BY id
	`, decisionID)
	if err != nil {
		return nil, fmt.Errorf("reflections for %s: %w", decisionID, err)
	}
	defer rows.Close()

	var out []Reflection
	for rows.Next() {
		var (
			r        Reflection
			retained string
		)
		if err := rows.Scan(&r.ID, &r.DecisionID, &r.Scenario, &r.ActionTaken, &r.Result, &retained, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reflection: %w", err)
		}
		if err := json.Unmarshal([]byte(retained), &r.RetainedBy); err != nil {
			return nil, fmt.Errorf("decode retained_by: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
