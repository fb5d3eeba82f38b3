package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/heartsquest"
	"github.com/aretw0/heartsquest/internal/testutils"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*heartsquest.Engine, *httptest.Server) {
	t.Helper()
	eng, err := heartsquest.New(heartsquest.WithClock(testutils.NewManualClock()))
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(eng))
	t.Cleanup(func() {
		srv.Close()
		_ = eng.Shutdown(context.Background())
	})
	return eng, srv
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		SessionID string      `json:"session_id"`
		View      domain.View `json:"view"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.SessionID)
	assert.Equal(t, domain.KindIntro, body.View.Step.Kind)
	return body.SessionID
}

func sendIntent(t *testing.T, srv *httptest.Server, id string, intent domain.Intent) *http.Response {
	t.Helper()
	data, err := json.Marshal(intent)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/sessions/"+id+"/intents", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestGetSwagger_IsValid(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Info.Version)
	assert.NotNil(t, doc.Paths.Find("/sessions/{id}/intents"))
}

func TestHealthAndInfo(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "heartsquest-http", info["app"])
	assert.Equal(t, strings.TrimSpace(heartsquest.Version), info["version"])
	assert.Equal(t, "Hearts Quest", info["quest"])
	assert.NotEqual(t, "unknown", info["api_version"])
}

func TestSessionLifecycle(t *testing.T) {
	_, srv := newTestServer(t)
	id := createSession(t, srv)

	resp := sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentStart})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rich runner.RichResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rich))
	assert.True(t, rich.Outcome.Accepted)
	assert.Equal(t, domain.KindHub, rich.View.Step.Kind)
	assert.Len(t, rich.View.Nodes, 13)

	// Locked nodes are rejected silently.
	resp = sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentSelect, Node: "q3"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rich))
	assert.False(t, rich.Outcome.Accepted)
	assert.Equal(t, domain.StepID("map"), rich.View.Step.ID)

	getResp, err := http.Get(srv.URL + "/sessions/" + id)
	require.NoError(t, err)
	defer getResp.Body.Close()
	var view domain.View
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&view))
	assert.Equal(t, domain.StepID("map"), view.Progress.CurrentStep)

	listResp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var list map[string][]string
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	assert.Contains(t, list["sessions"], id)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/"+id, nil)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	getResp, err = http.Get(srv.URL + "/sessions/" + id)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestSendIntent_Errors(t *testing.T) {
	eng, srv := newTestServer(t)

	resp := sendIntent(t, srv, "missing", domain.Intent{Kind: domain.IntentStart})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	id := createSession(t, srv)

	resp = sendIntent(t, srv, id, domain.Intent{Kind: "teleport"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad, err := http.Post(srv.URL+"/sessions/"+id+"/intents", "application/json", strings.NewReader(`{"kind":"start","extra":1}`))
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	flow, ok := eng.Sessions().Get(id)
	require.True(t, ok)
	flow.Close()
	resp = sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentStart})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGraphMermaid_Overlay(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/graph/mermaid")
	require.NoError(t, err)
	plain, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(plain), "graph TD")
	assert.NotContains(t, string(plain), "classDef current")

	id := createSession(t, srv)
	sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentStart}).Body.Close()

	resp, err = http.Get(srv.URL + "/graph/mermaid?session_id=" + id)
	require.NoError(t, err)
	overlay, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(overlay), "class map current;")
	assert.Contains(t, string(overlay), "class start visited;")

	resp, err = http.Get(srv.URL + "/graph/mermaid?session_id=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetGraph(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/graph")
	require.NoError(t, err)
	defer resp.Body.Close()

	var steps []domain.Step
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&steps))
	require.NotEmpty(t, steps)
	assert.Equal(t, domain.StepID("start"), steps[0].ID)
}

// readEvents collects the data payloads of an SSE stream.
func readEvents(body io.Reader) <-chan string {
	out := make(chan string, 16)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(body)
		for scanner.Scan() {
			line := scanner.Text()
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				out <- data
			}
		}
	}()
	return out
}

func nextEvent(t *testing.T, events <-chan string) string {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "stream ended")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return ""
	}
}

func TestSubscribeEvents_StreamsDiffs(t *testing.T) {
	_, srv := newTestServer(t)
	id := createSession(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/"+id+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(resp.Body)
	assert.Equal(t, "connected", nextEvent(t, events))

	var load domain.ProgressDiff
	require.NoError(t, json.Unmarshal([]byte(nextEvent(t, events)), &load))
	require.NotNil(t, load.CurrentStep)
	assert.Equal(t, domain.StepID("start"), *load.CurrentStep)

	sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentStart}).Body.Close()

	var diff domain.ProgressDiff
	require.NoError(t, json.Unmarshal([]byte(nextEvent(t, events)), &diff))
	require.NotNil(t, diff.CurrentStep)
	assert.Equal(t, domain.StepID("map"), *diff.CurrentStep)
	assert.Equal(t, []domain.StepID{"map"}, diff.History)
	assert.Nil(t, diff.Answer)
}

func TestSubscribeEvents_WatchFilter(t *testing.T) {
	_, srv := newTestServer(t)
	id := createSession(t, srv)
	sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentStart}).Body.Close()
	sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentSelect, Node: "q1"}).Body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/"+id+"/events?watch=completed", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	events := readEvents(resp.Body)
	assert.Equal(t, "connected", nextEvent(t, events))

	// Typing only touches the answer buffer and is filtered out.
	sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentAnswer, Text: "fro"}).Body.Close()
	sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentSubmit, Text: "frog"}).Body.Close()
	sendIntent(t, srv, id, domain.Intent{Kind: domain.IntentContinue}).Body.Close()

	var diff domain.ProgressDiff
	require.NoError(t, json.Unmarshal([]byte(nextEvent(t, events)), &diff))
	assert.Equal(t, []domain.StepID{"q1"}, diff.Completed)
}

func TestSubscribeEvents_InvalidSession(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/sessions/nope/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWatched(t *testing.T) {
	step := domain.StepID("map")
	msg, _ := json.Marshal(domain.ProgressDiff{SessionID: "s", CurrentStep: &step})
	assert.True(t, watched(string(msg), []string{"current_step"}))
	assert.False(t, watched(string(msg), []string{"answer", "games"}))

	rewind, _ := json.Marshal(domain.ProgressDiff{SessionID: "s", Rewind: true})
	assert.True(t, watched(string(rewind), []string{"games"}))
}

func TestStreamManager_CloseSessionEndsStreams(t *testing.T) {
	eng, err := heartsquest.New(heartsquest.WithClock(testutils.NewManualClock()))
	require.NoError(t, err)
	ctx := context.Background()
	id, flow, err := eng.Create(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Shutdown(ctx) })

	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe(id, flow)
	defer cancel()
	assert.Equal(t, 1, sm.Active(id))
	<-ch // full load

	_, err = flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentStart})
	require.NoError(t, err)
	assert.Contains(t, <-ch, `"current_step":"map"`)

	sm.CloseSession(id)
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, sm.Active(id))
}
