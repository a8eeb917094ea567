package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"ilnlp/config"
	"ilnlp/convert"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	p, err := convert.New(config.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	ts := httptest.NewServer(New(p, zap.NewNop()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestConvert(t *testing.T) {
	ts := newTestServer(t)
	resp, body := post(t, ts, "/convert", "p.\nI:\nO: {p}\n")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Run-Id"))
	assert.Contains(t, string(body), "#pos(p1, {p}, {}, {}).")
}

func TestConvertErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"parse", "p :- .", http.StatusBadRequest},
		{"incompatible", "I: q\nO: {q r}\nI:\nO: {q}\n", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := post(t, ts, "/convert", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestTask(t *testing.T) {
	ts := newTestServer(t)
	resp, body := post(t, ts, "/task", "I:\nO: {a}\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response Response
	require.NoError(t, json.Unmarshal(body, &response))
	assert.Equal(t, ConvertedStage, response.Stage)
	require.NotNil(t, response.Task)
	require.Len(t, response.Task.PosExamples, 1)
	assert.Equal(t, []string{"a"}, response.Task.PosExamples[0].Incl)
}

func TestTaskParseError(t *testing.T) {
	ts := newTestServer(t)
	resp, body := post(t, ts, "/task", "p(.\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var response Response
	require.NoError(t, json.Unmarshal(body, &response))
	assert.Equal(t, ParsingStage, response.Stage)
	require.NotNil(t, response.Position)
	assert.Equal(t, 1, response.Position.Line)
}

func TestTaskIncompatible(t *testing.T) {
	ts := newTestServer(t)
	resp, body := post(t, ts, "/task", "I: q\nO: {q r}\nI:\nO: {q}\n")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var response Response
	require.NoError(t, json.Unmarshal(body, &response))
	assert.Equal(t, CompatibleStage, response.Stage)
	assert.Contains(t, response.Error, "condition (i)")
}

func TestDiagnose(t *testing.T) {
	ts := newTestServer(t)
	resp, body := post(t, ts, "/diagnose", "p.\n:- p.\nq.\nI:\nO:\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response Response
	require.NoError(t, json.Unmarshal(body, &response))
	assert.Equal(t, DiagnosedStage, response.Stage)
	require.Len(t, response.Diagnoses, 1)
	require.Len(t, response.Diagnoses[0].Conflicts, 1)
	assert.Equal(t, []string{"p.", " :- p."}, response.Diagnoses[0].Conflicts[0].Rules)
}

func TestPreflight(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/convert", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}
