package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ironsheep/layout-tools-mcp/internal/config"
)

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ResourcePath = root
	cfg.DesiredImageHeight = 100
	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	if s.session == nil {
		t.Fatal("New() did not create a session")
	}
	if len(s.schemas) != len(GetToolDefinitions()) {
		t.Errorf("compiled %d schemas, want %d", len(s.schemas), len(GetToolDefinitions()))
	}
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New(nil, nil) failed: %v", err)
	}
	cfg, store := s.config()
	if cfg.PageXMLVersion == "" || store == nil {
		t.Error("expected default configuration")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     any
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != "layout-tools-mcp" {
		t.Errorf("serverInfo.name: got %v", info["name"])
	}
}

func TestHandleRequest_Routing(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	ctx := context.Background()

	if resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
		t.Errorf("notification should not be answered, got %+v", resp)
	}

	resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})
	if resp == nil || resp.Error != nil || resp.ID != "ping-1" {
		t.Errorf("ping: got %+v", resp)
	}

	resp = s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: 2, Method: "resources/list"})
	if resp == nil || resp.Error == nil || resp.Error.Code != -32601 {
		t.Errorf("unknown method: got %+v", resp)
	}

	resp = s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: 3, Method: "tools/list"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("tools/list: got %+v", resp)
	}
	tools := resp.Result.(map[string]any)["tools"].([]Tool)
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("tools/list returned %d tools", len(tools))
	}
}

func TestServe(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"layout_status"}}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	dec := json.NewDecoder(&out)
	var ids []float64
	for dec.More() {
		var resp MCPResponse
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("bad response line: %v", err)
		}
		if resp.Error != nil {
			t.Errorf("response %v carries error %+v", resp.ID, resp.Error)
		}
		ids = append(ids, resp.ID.(float64))
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("response ids = %v, want [1 2 3]", ids)
	}
}

func TestServe_CanceledContext(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if err == nil {
		t.Error("expected context error")
	}
	if out.Len() != 0 {
		t.Errorf("no request should be served, got %s", out.String())
	}
}
