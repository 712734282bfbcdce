package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/counselhq/counsel/internal/config"
	"github.com/counselhq/counsel/internal/errors"
	"github.com/counselhq/counsel/internal/reason"
	"github.com/counselhq/counsel/internal/session"
)

// memStore is an in-memory session.Store for tests.
type memStore struct {
	rec   session.Record
	saves int
}

func (m *memStore) Load() session.Record { return m.rec }

func (m *memStore) Save(rec session.Record) error {
	m.rec = rec
	m.saves++
	return nil
}

func (m *memStore) Clear() error {
	m.rec = session.Record{}
	return nil
}

// fakeService plays back one canned response.
type fakeService struct {
	resumed  []string
	response string
}

func (f *fakeService) StartThread(_ reason.ThreadOptions) reason.Thread {
	return &fakeThread{svc: f, id: "thread-new"}
}

func (f *fakeService) ResumeThread(id string, _ reason.ThreadOptions) reason.Thread {
	f.resumed = append(f.resumed, id)
	return &fakeThread{svc: f, id: id}
}

type fakeThread struct {
	svc *fakeService
	id  string
}

func (t *fakeThread) Run(_ context.Context, _ string) (*reason.Turn, error) {
	return &reason.Turn{ThreadID: t.id, Response: t.svc.response}, nil
}

// testHandlers wires handlers around a fake service and in-memory store.
func testHandlers(svc reason.Service) (*Handlers, *memStore) {
	store := &memStore{}
	factory := func() (reason.Service, error) {
		if svc == nil {
			return nil, errors.NewMissingCredential(config.CredentialEnvVar)
		}
		return svc, nil
	}
	return NewHandlers(config.DefaultConfig(), store, factory), store
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultText extracts the text payload from a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

// resultJSON unmarshals the text payload into a map.
func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	return payload
}

// errorCode digs the code out of an error result payload.
func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected an error result")
	}
	payload := resultJSON(t, result)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("error result has no error object: %v", payload)
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestHandleAsk_Success(t *testing.T) {
	svc := &fakeService{response: "looks fine"}
	h, store := testHandlers(svc)

	result, err := h.HandleAsk(context.Background(), makeRequest(map[string]any{
		"action": "new",
		"prompt": "review my diff",
		"topic":  "diff review",
	}))
	if err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	payload := resultJSON(t, result)
	if payload["success"] != true {
		t.Errorf("success = %v, want true", payload["success"])
	}
	if payload["threadId"] != "thread-new" {
		t.Errorf("threadId = %v, want thread-new", payload["threadId"])
	}
	if payload["response"] != "looks fine" {
		t.Errorf("response = %v", payload["response"])
	}
	if store.rec.Topic != "diff review" {
		t.Errorf("session topic = %q, want request topic", store.rec.Topic)
	}
}

func TestHandleAsk_ContinueResumesPersistedThread(t *testing.T) {
	svc := &fakeService{response: "continued"}
	h, store := testHandlers(svc)
	store.rec = session.Record{ThreadID: "thread-7", MessageCount: 1}

	result, err := h.HandleAsk(context.Background(), makeRequest(map[string]any{
		"action": "continue",
		"prompt": "and then?",
	}))
	if err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
	if len(svc.resumed) != 1 || svc.resumed[0] != "thread-7" {
		t.Errorf("resumed = %v, want [thread-7]", svc.resumed)
	}
	if store.rec.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", store.rec.MessageCount)
	}
}

func TestHandleAsk_ValidationError(t *testing.T) {
	h, store := testHandlers(&fakeService{})

	result, err := h.HandleAsk(context.Background(), makeRequest(map[string]any{
		"action": "new",
	}))
	if err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}
	if code := errorCode(t, result); code != string(errors.ErrInvalidRequest) {
		t.Errorf("code = %q, want INVALID_REQUEST", code)
	}
	if store.saves != 0 {
		t.Error("session must not be written on validation failure")
	}
}

func TestHandleAsk_MissingCredential(t *testing.T) {
	h, store := testHandlers(nil)

	result, err := h.HandleAsk(context.Background(), makeRequest(map[string]any{
		"action": "new",
		"prompt": "hi",
	}))
	if err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}
	if code := errorCode(t, result); code != string(errors.ErrMissingCredential) {
		t.Errorf("code = %q, want MISSING_CREDENTIAL", code)
	}
	if store.saves != 0 {
		t.Error("session must not be written without a credential")
	}
}

func TestHandleValidate_WorksWithoutCredential(t *testing.T) {
	h, store := testHandlers(nil) // factory would fail; validate must not call it

	result, err := h.HandleValidate(context.Background(), makeRequest(map[string]any{
		"action":  "new",
		"prompt":  "check 'quotes' and $vars",
		"context": "shell quoting",
	}))
	if err != nil {
		t.Fatalf("HandleValidate failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	payload := resultJSON(t, result)
	if payload["valid"] != true {
		t.Errorf("valid = %v, want true", payload["valid"])
	}
	if payload["promptLength"] != float64(len("check 'quotes' and $vars")) {
		t.Errorf("promptLength = %v", payload["promptLength"])
	}
	if payload["hasContext"] != true {
		t.Errorf("hasContext = %v, want true", payload["hasContext"])
	}
	if payload["hasTopic"] != false {
		t.Errorf("hasTopic = %v, want false", payload["hasTopic"])
	}
	if store.saves != 0 {
		t.Error("validate must never mutate the session record")
	}
}

func TestHandleValidate_InvalidAction(t *testing.T) {
	h, _ := testHandlers(nil)

	result, err := h.HandleValidate(context.Background(), makeRequest(map[string]any{
		"action": "restart",
		"prompt": "hi",
	}))
	if err != nil {
		t.Fatalf("HandleValidate failed: %v", err)
	}
	if code := errorCode(t, result); code != string(errors.ErrInvalidRequest) {
		t.Errorf("code = %q, want INVALID_REQUEST", code)
	}
}

func TestHandleStatusAndReset(t *testing.T) {
	h, store := testHandlers(nil)
	store.rec = session.Record{ThreadID: "thread-3", Topic: "auth", MessageCount: 4}

	result, err := h.HandleStatus(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("HandleStatus failed: %v", err)
	}
	payload := resultJSON(t, result)
	if payload["hasSession"] != true {
		t.Errorf("hasSession = %v, want true", payload["hasSession"])
	}
	if payload["threadId"] != "thread-3" {
		t.Errorf("threadId = %v", payload["threadId"])
	}

	result, err = h.HandleReset(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("HandleReset failed: %v", err)
	}
	payload = resultJSON(t, result)
	if payload["cleared"] != true {
		t.Errorf("cleared = %v, want true", payload["cleared"])
	}
	if store.rec.ThreadID != "" {
		t.Error("record should be cleared")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"counsel_ask", "bogus_tool"})
	if len(unknown) != 1 || unknown[0] != "bogus_tool" {
		t.Errorf("unknown = %v, want [bogus_tool]", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Errorf("len = %d, want %d", len(names), len(toolRegistry))
	}
}

func TestNewServer_WithDisabledTools(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"counsel_reset", fmt.Sprintf("unknown_%d", 1)}
	h, _ := testHandlers(nil)

	if s := NewServer(cfg, h, "test"); s == nil {
		t.Fatal("NewServer returned nil")
	}
}
