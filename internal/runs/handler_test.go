package runs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRunsRouter(t *testing.T, svc *Service, userID string, guest bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", guest)
		c.Next()
	})
	h := NewHandler(svc)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAssessEndpointScoresSynchronously(t *testing.T) {
	svc := testService(t, stubGenerator{candidate: improvedCandidate()})
	r := newRunsRouter(t, svc, "u1", false)

	body := `{"industry": "plumbing", "context": {"businessName": "Smith Plumbing", "city": "Mesa"}, "candidate": {"headline": "Welcome to Smith Plumbing", "ctaPrimary": "Learn More"}}`
	w := doJSON(t, r, http.MethodPost, "/api/v1/assess", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		OverallScore int    `json:"overallScore"`
		Grade        string `json:"grade"`
		PublishReady bool   `json:"isPublishReady"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OverallScore <= 0 || resp.OverallScore > 100 {
		t.Errorf("overallScore = %d", resp.OverallScore)
	}
	if resp.Grade == "" {
		t.Error("grade missing")
	}
	if resp.PublishReady {
		t.Error("weak copy reported publish-ready")
	}
}

func TestRefineEndpointAcceptsAndPolls(t *testing.T) {
	svc := testService(t, stubGenerator{candidate: improvedCandidate()})
	r := newRunsRouter(t, svc, "u1", false)

	body := `{"context": {"businessName": "Smith Plumbing", "city": "Mesa", "industry": "plumbing"}, "baseline": {"headline": "Welcome to Smith Plumbing", "ctaPrimary": "Learn More"}}`
	w := doJSON(t, r, http.MethodPost, "/api/v1/refine", body)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var accepted struct {
		RunID  string `json:"runId"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted.RunID == "" || accepted.Status != StatusQueued {
		t.Fatalf("accepted = %+v", accepted)
	}

	waitForTerminal(t, svc.Repo, accepted.RunID)

	w = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+accepted.RunID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("poll status = %d, body = %s", w.Code, w.Body.String())
	}
	var polled struct {
		Status string         `json:"status"`
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &polled); err != nil {
		t.Fatalf("decode poll: %v", err)
	}
	if polled.Status != StatusCompleted || polled.Result == nil {
		t.Fatalf("polled = %+v", polled)
	}
}

func TestRefineEndpointRejectsEmptyBaseline(t *testing.T) {
	svc := testService(t, stubGenerator{candidate: improvedCandidate()})
	r := newRunsRouter(t, svc, "u1", false)

	w := doJSON(t, r, http.MethodPost, "/api/v1/refine", `{"context": {"businessName": "Smith Plumbing"}, "baseline": {}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation_error") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestVariantsEndpointRequiresBusinessName(t *testing.T) {
	svc := testService(t, stubGenerator{candidate: improvedCandidate()})
	r := newRunsRouter(t, svc, "u1", false)

	w := doJSON(t, r, http.MethodPost, "/api/v1/variants", `{"context": {"city": "Mesa"}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/variants", `{"context": {"businessName": "Smith Plumbing", "industry": "plumbing"}}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGetRunHidesOtherUsers(t *testing.T) {
	svc := testService(t, stubGenerator{candidate: improvedCandidate()})
	owner := newRunsRouter(t, svc, "u1", false)
	stranger := newRunsRouter(t, svc, "u2", false)

	body := `{"context": {"businessName": "Smith Plumbing", "industry": "plumbing"}, "baseline": {"headline": "Welcome to Smith Plumbing", "ctaPrimary": "Learn More"}}`
	w := doJSON(t, owner, http.MethodPost, "/api/v1/refine", body)
	var accepted struct {
		RunID string `json:"runId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doJSON(t, stranger, http.MethodGet, "/api/v1/runs/"+accepted.RunID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for foreign run", w.Code)
	}
}

func TestGetRunPollLimiter(t *testing.T) {
	svc := testService(t, stubGenerator{candidate: improvedCandidate()})
	r := newRunsRouter(t, svc, "u1", false)

	body := `{"context": {"businessName": "Smith Plumbing", "industry": "plumbing"}, "baseline": {"headline": "Welcome to Smith Plumbing", "ctaPrimary": "Learn More"}}`
	w := doJSON(t, r, http.MethodPost, "/api/v1/refine", body)
	var accepted struct {
		RunID string `json:"runId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}

	first := doJSON(t, r, http.MethodGet, "/api/v1/runs/"+accepted.RunID, "")
	if first.Code == http.StatusTooManyRequests {
		t.Fatalf("first poll throttled: %s", first.Body.String())
	}
	second := doJSON(t, r, http.MethodGet, "/api/v1/runs/"+accepted.RunID, "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second poll status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("429 missing Retry-After header")
	}
}

func TestListRunsRejectsGuests(t *testing.T) {
	svc := testService(t, stubGenerator{candidate: improvedCandidate()})
	r := newRunsRouter(t, svc, "guest:abc", true)

	w := doJSON(t, r, http.MethodGet, "/api/v1/runs", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for guests", w.Code)
	}
	if !strings.Contains(w.Body.String(), "login_required") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestListRunsReturnsSummaries(t *testing.T) {
	svc := testService(t, stubGenerator{candidate: improvedCandidate()})
	r := newRunsRouter(t, svc, "u1", false)

	body := `{"context": {"businessName": "Smith Plumbing", "industry": "plumbing"}, "baseline": {"headline": "Welcome to Smith Plumbing", "ctaPrimary": "Learn More"}}`
	w := doJSON(t, r, http.MethodPost, "/api/v1/refine", body)
	var accepted struct {
		RunID string `json:"runId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	waitForTerminal(t, svc.Repo, accepted.RunID)
	// Let the completed-status write settle before listing.
	time.Sleep(20 * time.Millisecond)

	w = doJSON(t, r, http.MethodGet, "/api/v1/runs?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var items []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0]["runId"] != accepted.RunID || items[0]["status"] != StatusCompleted {
		t.Errorf("item = %+v", items[0])
	}
	if _, ok := items[0]["afterScore"]; !ok {
		t.Errorf("summary missing afterScore: %+v", items[0])
	}
}
