package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lazypower/council/internal/advisor"
	"github.com/lazypower/council/internal/executive"
	"github.com/lazypower/council/internal/llm"
	"github.com/lazypower/council/internal/store"
)

func testDirectives() llm.Directives {
	return llm.Directives{
		SelectMemories:  "select:{payload}",
		Consult:         "consult:{payload}",
		KeepMemory:      "keep:{payload}",
		SummarizeMemory: "summarize:{payload}",
		SelectAdvisors:  "advisors:{payload}",
		Decide:          "decide:{payload}",
	}
}

// scripted answers every step of a deliberation: the selector picks safety,
// safety picks nothing, the decision is fixed, and every advisor keeps
// every experience.
func scripted(prompt string) (*llm.Response, error) {
	switch {
	case strings.HasPrefix(prompt, "advisors:"):
		return &llm.Response{Content: `["safety"]`}, nil
	case strings.HasPrefix(prompt, "select:"):
		return &llm.Response{Content: `[]`}, nil
	case strings.HasPrefix(prompt, "decide:"):
		return &llm.Response{Content: "I inspect the runes."}, nil
	case strings.HasPrefix(prompt, "keep:"):
		return &llm.Response{Content: "true"}, nil
	case strings.HasPrefix(prompt, "summarize:"):
		return &llm.Response{Content: "The bridge held."}, nil
	}
	return &llm.Response{}, nil
}

func testServer(t *testing.T, handler func(string) (*llm.Response, error)) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	exec := executive.New(&llm.MockClient{Handler: handler}, executive.WithDirectives(testDirectives()))
	a, err := exec.RegisterAdvisor(advisor.Simple("cautious"), "safety")
	if err != nil {
		t.Fatalf("RegisterAdvisor: %v", err)
	}
	a.Remember("Ropes fray in the cold.", 0.01, 1)

	return New(exec, db, "test-version")
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body: %v; body: %s", err, w.Body.String())
	}
	return v
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, scripted)

	w := do(t, srv, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := decodeBody[map[string]any](t, w)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
	if body["advisors"] != float64(1) {
		t.Errorf("advisors = %v, want 1", body["advisors"])
	}
}

func TestListAdvisors(t *testing.T) {
	srv := testServer(t, scripted)

	w := do(t, srv, "GET", "/api/advisors", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decodeBody[[]map[string]any](t, w)
	if len(got) != 1 || got[0]["id"] != "safety" || got[0]["personality"] != "cautious" {
		t.Errorf("advisors = %v", got)
	}
	if got[0]["memory_count"] != float64(1) {
		t.Errorf("memory_count = %v", got[0]["memory_count"])
	}
}

func TestRegisterAdvisor(t *testing.T) {
	srv := testServer(t, scripted)

	body := `{"name":"greed","motive":"wealth","fear":"poverty","strategy":"hoard","blind_spot":"friendship",
		"memories":[{"statement":"Gold glitters.","decay_rate":0.1}]}`
	w := do(t, srv, "POST", "/api/advisors", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	got := decodeBody[map[string]any](t, w)
	p, ok := got["personality"].(map[string]any)
	if !ok || p["blind_spot"] != "friendship" {
		t.Errorf("personality = %v", got["personality"])
	}
	if got["memory_count"] != float64(1) {
		t.Errorf("memory_count = %v", got["memory_count"])
	}

	w = do(t, srv, "POST", "/api/advisors", `{"name":"greed","personality":"x"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}
}

func TestRegisterAdvisorInvalid(t *testing.T) {
	srv := testServer(t, scripted)

	for _, body := range []string{
		`not json`,
		`{"name":"blank"}`,
		`{"name":"x","personality":"p","memories":[{"statement":""}]}`,
		`{"name":"x","personality":"p","memories":[{"statement":"s","decay_rate":-1}]}`,
	} {
		w := do(t, srv, "POST", "/api/advisors", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGetAdvisor(t *testing.T) {
	srv := testServer(t, scripted)

	w := do(t, srv, "GET", "/api/advisors/safety", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decodeBody[map[string]any](t, w)
	mems, _ := got["memories"].([]any)
	if len(mems) != 1 {
		t.Errorf("memories = %v", got["memories"])
	}

	for _, path := range []string{"/api/advisors/nobody", "/api/advisors/nobody/memories"} {
		if w := do(t, srv, "GET", path, ""); w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, w.Code)
		}
	}
}

func TestAddMemory(t *testing.T) {
	srv := testServer(t, scripted)

	w := do(t, srv, "POST", "/api/advisors/safety/memories", `{"statement":"Heights are deceptive.","decay_rate":0.05}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	if id := decodeBody[map[string]string](t, w)["id"]; len(id) != 32 {
		t.Errorf("id = %q", id)
	}

	w = do(t, srv, "GET", "/api/advisors/safety/memories", "")
	if got := decodeBody[[]map[string]any](t, w); len(got) != 2 {
		t.Errorf("got %d memories, want 2", len(got))
	}

	if w := do(t, srv, "POST", "/api/advisors/safety/memories", `{"statement":" "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank statement status = %d, want 400", w.Code)
	}
}

func TestRetain(t *testing.T) {
	srv := testServer(t, scripted)

	w := do(t, srv, "POST", "/api/advisors/safety/retain", `{"scenario":"bridge","action_taken":"crossed","result":"held"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	if !decodeBody[map[string]bool](t, w)["retained"] {
		t.Error("retained = false, want true")
	}

	if w := do(t, srv, "POST", "/api/advisors/safety/retain", `{"scenario":"bridge"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d, want 400", w.Code)
	}
}

func TestDecideRecordsDecision(t *testing.T) {
	srv := testServer(t, scripted)

	w := do(t, srv, "POST", "/api/decide", `{"scenario":"A swaying rope bridge."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	rec := decodeBody[store.Decision](t, w)
	if rec.ID == "" || rec.Decision != "I inspect the runes." {
		t.Fatalf("decision = %+v", rec)
	}
	if len(rec.Selected) != 1 || rec.Selected[0] != "safety" {
		t.Errorf("selected = %v", rec.Selected)
	}

	w = do(t, srv, "GET", "/api/decisions", "")
	if got := decodeBody[[]store.Decision](t, w); len(got) != 1 || got[0].ID != rec.ID {
		t.Errorf("decisions = %+v", got)
	}

	w = do(t, srv, "GET", "/api/decisions/"+rec.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get decision status = %d", w.Code)
	}
}

func TestDecideInvalid(t *testing.T) {
	srv := testServer(t, scripted)

	for _, body := range []string{`nope`, `{"scenario":"  "}`} {
		if w := do(t, srv, "POST", "/api/decide", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestDecideBackendFailure(t *testing.T) {
	srv := testServer(t, func(string) (*llm.Response, error) {
		return nil, errors.New("connection refused")
	})

	w := do(t, srv, "POST", "/api/decide", `{"scenario":"s"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}

	w = do(t, srv, "GET", "/api/decisions", "")
	if got := decodeBody[[]store.Decision](t, w); len(got) != 0 {
		t.Errorf("failed deliberation was journaled: %+v", got)
	}
}

func TestReflectAgainstDecision(t *testing.T) {
	srv := testServer(t, scripted)

	rec := decodeBody[store.Decision](t, do(t, srv, "POST", "/api/decide", `{"scenario":"bridge"}`))

	w := do(t, srv, "POST", "/api/reflect", `{"decision_id":"`+rec.ID+`","result":"the runes were a warning"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	ref := decodeBody[store.Reflection](t, w)
	if ref.Scenario != "bridge" || ref.ActionTaken != "I inspect the runes." {
		t.Errorf("reflection = %+v", ref)
	}
	if len(ref.RetainedBy) != 1 || ref.RetainedBy[0] != "safety" {
		t.Errorf("retained_by = %v", ref.RetainedBy)
	}

	w = do(t, srv, "GET", "/api/decisions/"+rec.ID, "")
	var detail struct {
		Reflections []store.Reflection `json:"reflections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.Reflections) != 1 {
		t.Errorf("got %d reflections, want 1", len(detail.Reflections))
	}
}

func TestReflectErrors(t *testing.T) {
	srv := testServer(t, scripted)

	if w := do(t, srv, "POST", "/api/reflect", `{"decision_id":"404","result":"r"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown decision status = %d, want 404", w.Code)
	}
	if w := do(t, srv, "POST", "/api/reflect", `{"scenario":"s"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d, want 400", w.Code)
	}
}

func TestGetDecisionNotFound(t *testing.T) {
	srv := testServer(t, scripted)

	if w := do(t, srv, "GET", "/api/decisions/123", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
