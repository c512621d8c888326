package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmascout/internal/auth"
	"pharmascout/internal/model"
	"pharmascout/internal/store"
)

type stubEvaluator struct{}

func (stubEvaluator) Evaluate(ctx context.Context, query string) *model.EvaluationResult {
	return &model.EvaluationResult{
		JobID:  "job-" + query,
		Query:  query,
		Status: "completed",
		Scores: model.ScoreCard{
			ScientificFit:       80,
			CommercialPotential: 70,
			IPRisk:              20,
			SupplyFeasibility:   75,
			OverallScore:        76,
		},
		Narrative: model.Narrative{
			Summary:        "Promising candidate.",
			Recommendation: model.RecommendGo,
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := New(":0", stubEvaluator{}, auth.NewService(st, "test-key"), st)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func getWithToken(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func registerAndLogin(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp := postJSON(t, ts.URL+"/register", "", map[string]string{
		"email":      "ada@example.com",
		"password":   "s3cret",
		"first_name": "Ada",
		"last_name":  "Lovelace",
	})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	form := url.Values{"username": {"ada@example.com"}, "password": {"s3cret"}}
	tokenResp, err := http.Post(ts.URL+"/token", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer func() { _ = tokenResp.Body.Close() }()
	require.Equal(t, http.StatusOK, tokenResp.StatusCode)

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(tokenResp.Body).Decode(&payload))
	require.Equal(t, "bearer", payload.TokenType)
	require.NotEmpty(t, payload.AccessToken)
	return payload.AccessToken
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEvaluateFlow(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)

	resp := postJSON(t, ts.URL+"/evaluate", token, map[string]string{"query": "metformin"})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.EvaluationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "metformin", result.Query)
	assert.Equal(t, 76, result.Scores.OverallScore)
	assert.Equal(t, model.RecommendGo, result.Narrative.Recommendation)

	// The report must now appear in the owner's history.
	reportsResp := getWithToken(t, ts.URL+"/users/me/reports", token)
	defer func() { _ = reportsResp.Body.Close() }()
	require.Equal(t, http.StatusOK, reportsResp.StatusCode)

	var reports []*model.EvaluationResult
	require.NoError(t, json.NewDecoder(reportsResp.Body).Decode(&reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "job-metformin", reports[0].JobID)
}

func TestEvaluate_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/evaluate", "", map[string]string{"query": "metformin"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
}

func TestEvaluate_RejectsEmptyQuery(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)

	resp := postJSON(t, ts.URL+"/evaluate", token, map[string]string{"query": "   "})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToken_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts)

	form := url.Values{"username": {"ada@example.com"}, "password": {"wrong"}}
	resp, err := http.Post(ts.URL+"/token", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["detail"], "incorrect email or password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts)

	resp := postJSON(t, ts.URL+"/register", "", map[string]string{
		"email":    "ada@example.com",
		"password": "another",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)

	resp := getWithToken(t, ts.URL+"/users/me", token)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, "Ada", body["first_name"])
}

func TestReports_EmptyHistoryIsEmptyArray(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts)

	resp := getWithToken(t, ts.URL+"/users/me/reports", token)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reports []*model.EvaluationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reports))
	assert.Empty(t, reports)
}
