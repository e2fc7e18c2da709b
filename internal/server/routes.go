package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lazypower/council/internal/advisor"
	"github.com/lazypower/council/internal/config"
	"github.com/lazypower/council/internal/executive"
	"github.com/lazypower/council/internal/memory"
	"github.com/lazypower/council/internal/store"
)

type advisorView struct {
	ID          string            `json:"id"`
	Personality any               `json:"personality"`
	MemoryCount int               `json:"memory_count"`
	Memories    []memory.Snapshot `json:"memories,omitempty"`
}

func viewOf(a *advisor.Advisor, withMemories bool) advisorView {
	v := advisorView{
		ID:          a.ID(),
		Personality: a.Personality().Describe(),
		MemoryCount: a.Memories().Len(),
	}
	if withMemories {
		v.Memories = a.Memories().Snapshot()
	}
	return v
}

// lookup returns the advisor named in the URL. Callers hold s.mu.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *advisor.Advisor {
	a, err := s.exec.Lookup(chi.URLParam(r, "id"))
	if errors.Is(err, executive.ErrUnknownAdvisor) {
		writeError(w, http.StatusNotFound, err.Error())
		return nil
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	return a
}

func (s *Server) handleListAdvisors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	advisors := s.exec.Advisors()
	out := make([]advisorView, 0, len(advisors))
	for _, a := range advisors {
		out = append(out, viewOf(a, false))
	}
	writeJSON(w, http.StatusOK, out)
}

type memoryRequest struct {
	Statement string  `json:"statement"`
	DecayRate float64 `json:"decay_rate"`
	Strength  float64 `json:"strength"`
}

func (s *Server) handleRegisterAdvisor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string          `json:"name"`
		Personality string          `json:"personality"`
		Motive      string          `json:"motive"`
		Fear        string          `json:"fear"`
		Strategy    string          `json:"strategy"`
		BlindSpot   string          `json:"blind_spot"`
		Memories    []memoryRequest `json:"memories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	cfg := config.AdvisorConfig{
		Name:        req.Name,
		Personality: req.Personality,
		Motive:      req.Motive,
		Fear:        req.Fear,
		Strategy:    req.Strategy,
		BlindSpot:   req.BlindSpot,
	}
	if cfg.Personality == "" && !cfg.Structured() {
		writeError(w, http.StatusBadRequest, "personality required")
		return
	}
	for _, m := range req.Memories {
		if strings.TrimSpace(m.Statement) == "" || m.DecayRate < 0 {
			writeError(w, http.StatusBadRequest, "memories need a statement and a non-negative decay_rate")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.exec.RegisterAdvisor(advisor.PersonalityFrom(cfg), req.Name)
	if errors.Is(err, executive.ErrAdvisorExists) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, m := range req.Memories {
		if _, err := a.Remember(m.Statement, m.DecayRate, strengthOrDefault(m.Strength)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusCreated, viewOf(a, true))
}

func strengthOrDefault(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func (s *Server) handleGetAdvisor(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a := s.lookup(w, r); a != nil {
		writeJSON(w, http.StatusOK, viewOf(a, true))
	}
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a := s.lookup(w, r); a != nil {
		writeJSON(w, http.StatusOK, a.Memories().Snapshot())
	}
}

func (s *Server) handleAddMemory(w http.ResponseWriter, r *http.Request) {
	var req memoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Statement) == "" {
		writeError(w, http.StatusBadRequest, "statement required")
		return
	}
	if req.DecayRate < 0 {
		writeError(w, http.StatusBadRequest, "decay_rate must not be negative")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.lookup(w, r)
	if a == nil {
		return
	}
	id, err := a.Remember(req.Statement, req.DecayRate, strengthOrDefault(req.Strength))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type outcomeRequest struct {
	DecisionID  string `json:"decision_id"`
	Scenario    string `json:"scenario"`
	ActionTaken string `json:"action_taken"`
	Result      string `json:"result"`
}

func (s *Server) handleRetain(w http.ResponseWriter, r *http.Request) {
	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Scenario == "" || req.ActionTaken == "" || req.Result == "" {
		writeError(w, http.StatusBadRequest, "scenario, action_taken and result required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.lookup(w, r)
	if a == nil {
		return
	}
	kept, err := a.RetainMemory(r.Context(), req.Scenario, req.ActionTaken, req.Result)
	if err != nil {
		s.backendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"retained": kept})
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scenario string `json:"scenario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Scenario) == "" {
		writeError(w, http.StatusBadRequest, "scenario required")
		return
	}

	s.mu.Lock()
	d, err := s.exec.Deliberate(r.Context(), req.Scenario)
	s.mu.Unlock()
	if err != nil {
		s.backendError(w, err)
		return
	}

	rec, err := s.db.RecordDecision(d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleReflect(w http.ResponseWriter, r *http.Request) {
	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.DecisionID != "" {
		d, err := s.db.GetDecision(req.DecisionID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if req.Scenario == "" {
			req.Scenario = d.Scenario
		}
		if req.ActionTaken == "" {
			req.ActionTaken = d.Decision
		}
	}
	if req.Scenario == "" || req.ActionTaken == "" || req.Result == "" {
		writeError(w, http.StatusBadRequest, "scenario, action_taken and result required")
		return
	}

	s.mu.Lock()
	kept, err := s.exec.Reflect(r.Context(), req.Scenario, req.ActionTaken, req.Result)
	s.mu.Unlock()
	if err != nil {
		s.backendError(w, err)
		return
	}

	ref := &store.Reflection{
		DecisionID:  req.DecisionID,
		Scenario:    req.Scenario,
		ActionTaken: req.ActionTaken,
		Result:      req.Result,
		RetainedBy:  kept,
	}
	if err := s.db.RecordReflection(ref); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ref.RetainedBy == nil {
		ref.RetainedBy = []string{}
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	decisions, err := s.db.RecentDecisions(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if decisions == nil {
		decisions = []store.Decision{}
	}
	writeJSON(w, http.StatusOK, decisions)
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.db.GetDecision(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	reflections, err := s.db.ReflectionsFor(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reflections == nil {
		reflections = []store.Reflection{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"decision":    d,
		"reflections": reflections,
	})
}

func (s *Server) backendError(w http.ResponseWriter, err error) {
	s.log.Error("reasoning backend failed", zap.Error(err))
	writeError(w, http.StatusBadGateway, err.Error())
}
