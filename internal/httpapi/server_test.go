package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/epanichev/sheetcheck/internal/config"
	"github.com/epanichev/sheetcheck/internal/interview"
	"github.com/epanichev/sheetcheck/internal/oracle"
	"github.com/epanichev/sheetcheck/internal/store"
)

// stubOracle gives canned replies so handler tests never touch the network.
type stubOracle struct {
	evalScore int
	evalErr   error
}

func (o *stubOracle) Complete(_ context.Context, req oracle.Request) (string, error) {
	switch req.Op {
	case oracle.OpEvaluateAnswer:
		if o.evalErr != nil {
			return "", o.evalErr
		}
		return fmt.Sprintf(`{"technical_accuracy":%d,"practical_application":%d,"communication":%d,"advanced_knowledge":%d,"feedback":"ok"}`,
			o.evalScore, o.evalScore, o.evalScore, o.evalScore), nil
	case oracle.OpGenerateQuestion:
		return "Generated question?", nil
	default:
		return "", fmt.Errorf("unexpected op %q", req.Op)
	}
}

func newTestServer(t *testing.T, o oracle.Oracle, maxQuestions int) *httptest.Server {
	t.Helper()

	bank, err := interview.LoadBank("")
	if err != nil {
		t.Fatalf("LoadBank() error = %v", err)
	}
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	engine := interview.NewEngine(o, bank, interview.EngineConfig{
		MaxQuestions:        maxQuestions,
		MinQuestionsToClose: maxQuestions,
		DifficultyThreshold: 70,
	})
	service := interview.NewService(engine, st, nil, interview.ServiceConfig{PassCutoff: 70})

	srv := New(config.Config{AllowAnyOrigin: true}, service, nil, "file")
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	defer res.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer res.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res, decoded
}

func TestStartRequiresNameAndRole(t *testing.T) {
	ts := newTestServer(t, &stubOracle{evalScore: 70}, 2)

	res, body := postJSON(t, ts.URL+"/api/interview/start", map[string]string{
		"candidate_name": "  ",
	})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
	if body["code"] != "missing_fields" {
		t.Fatalf("code = %v, want missing_fields", body["code"])
	}
}

func TestInterviewFlowOverREST(t *testing.T) {
	ts := newTestServer(t, &stubOracle{evalScore: 75}, 2)

	res, created := postJSON(t, ts.URL+"/api/interview/start", map[string]string{
		"candidate_name": "Alice",
		"target_role":    "Data Analyst",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("start status = %d, want %d", res.StatusCode, http.StatusCreated)
	}
	if created["phase"] != string(interview.PhaseSetup) {
		t.Fatalf("phase after start = %v, want %v", created["phase"], interview.PhaseSetup)
	}
	id, _ := created["interview_id"].(string)
	if id == "" {
		t.Fatalf("missing interview_id: %+v", created)
	}

	res, reply := postJSON(t, ts.URL+"/api/interview/message", map[string]string{
		"interview_id": id,
		"message":      "hello",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("message status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if reply["phase"] != string(interview.PhaseIntroduction) {
		t.Fatalf("phase after first message = %v, want %v", reply["phase"], interview.PhaseIntroduction)
	}

	for _, msg := range []string{"ready", "answer one", "answer two"} {
		res, reply = postJSON(t, ts.URL+"/api/interview/message", map[string]string{
			"interview_id": id,
			"message":      msg,
		})
		if res.StatusCode != http.StatusOK {
			t.Fatalf("message(%q) status = %d, body %+v", msg, res.StatusCode, reply)
		}
	}
	if reply["done"] != true {
		t.Fatalf("interview should be done: %+v", reply)
	}

	res, status := getJSON(t, ts.URL+"/api/interview/status/"+id)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status status = %d", res.StatusCode)
	}
	if status["phase"] != string(interview.PhaseConclusion) {
		t.Fatalf("final phase = %v, want %v", status["phase"], interview.PhaseConclusion)
	}
	if status["questions_answered"] != float64(2) {
		t.Fatalf("questions_answered = %v, want 2", status["questions_answered"])
	}

	res, report := getJSON(t, ts.URL+"/api/interview/report/"+id)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d", res.StatusCode)
	}
	if report["overall_score"] != float64(75) {
		t.Fatalf("overall_score = %v, want 75", report["overall_score"])
	}
	if report["recommendation"] != interview.RecommendationHire {
		t.Fatalf("recommendation = %v, want %v", report["recommendation"], interview.RecommendationHire)
	}
}

func TestUnknownInterviewIs404(t *testing.T) {
	ts := newTestServer(t, &stubOracle{evalScore: 70}, 2)

	res, body := getJSON(t, ts.URL+"/api/interview/status/does-not-exist")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
	if body["code"] != "interview_not_found" {
		t.Fatalf("code = %v, want interview_not_found", body["code"])
	}

	res, _ = postJSON(t, ts.URL+"/api/interview/message", map[string]string{
		"interview_id": "does-not-exist",
		"message":      "hi",
	})
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("message status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestReportBeforeAnyEvaluationConflicts(t *testing.T) {
	ts := newTestServer(t, &stubOracle{evalScore: 70}, 2)

	_, created := postJSON(t, ts.URL+"/api/interview/start", map[string]string{
		"candidate_name": "Alice",
		"target_role":    "Data Analyst",
	})
	id := created["interview_id"].(string)

	res, body := getJSON(t, ts.URL+"/api/interview/report/"+id)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
	if body["code"] != "no_evaluations" {
		t.Fatalf("code = %v, want no_evaluations", body["code"])
	}
}

func TestOracleFailureIsRetryableAndNonDestructive(t *testing.T) {
	o := &stubOracle{evalScore: 70}
	ts := newTestServer(t, o, 4)

	_, created := postJSON(t, ts.URL+"/api/interview/start", map[string]string{
		"candidate_name": "Alice",
		"target_role":    "Data Analyst",
	})
	id := created["interview_id"].(string)
	for _, msg := range []string{"hello", "ready"} {
		if res, body := postJSON(t, ts.URL+"/api/interview/message", map[string]string{
			"interview_id": id, "message": msg,
		}); res.StatusCode != http.StatusOK {
			t.Fatalf("setup message failed: %+v", body)
		}
	}

	o.evalErr = fmt.Errorf("upstream timeout: %w", oracle.ErrUnavailable)
	res, body := postJSON(t, ts.URL+"/api/interview/message", map[string]string{
		"interview_id": id, "message": "my answer",
	})
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadGateway)
	}
	if body["code"] != "oracle_unavailable" || body["retryable"] != true {
		t.Fatalf("unexpected error body: %+v", body)
	}

	_, status := getJSON(t, ts.URL+"/api/interview/status/"+id)
	if status["questions_answered"] != float64(0) {
		t.Fatalf("questions_answered = %v, want 0 after failed turn", status["questions_answered"])
	}
	if status["phase"] != string(interview.PhaseAssessment) {
		t.Fatalf("phase = %v, want unchanged %v", status["phase"], interview.PhaseAssessment)
	}

	// The same message goes through once the oracle recovers.
	o.evalErr = nil
	res, _ = postJSON(t, ts.URL+"/api/interview/message", map[string]string{
		"interview_id": id, "message": "my answer",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("retry status = %d, want %d", res.StatusCode, http.StatusOK)
	}
}

func TestEmbeddedPages(t *testing.T) {
	ts := newTestServer(t, &stubOracle{evalScore: 70}, 2)

	res, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %d", res.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(buf.String(), "Excel mock interview") {
		t.Fatalf("index page missing expected content")
	}

	reportRes, err := http.Get(ts.URL + "/report/some-id")
	if err != nil {
		t.Fatalf("GET /report/some-id error = %v", err)
	}
	defer reportRes.Body.Close()
	if reportRes.StatusCode != http.StatusOK {
		t.Fatalf("GET /report status = %d", reportRes.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, &stubOracle{evalScore: 70}, 2)

	res, body := getJSON(t, ts.URL+"/healthz")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", res.StatusCode)
	}
	if body["store_mode"] != "file" {
		t.Fatalf("store_mode = %v, want file", body["store_mode"])
	}
}
