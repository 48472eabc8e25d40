package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	s := New(nil, "test")
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.palette == nil {
		t.Fatal("New() did not initialize palette")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
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

func TestHandleRequest_Methods(t *testing.T) {
	s := New(nil, "1.2.3")
	ctx := context.Background()

	tests := []struct {
		method    string
		wantNil   bool
		wantError int
	}{
		{"initialize", false, 0},
		{"notifications/initialized", true, 0},
		{"tools/list", false, 0},
		{"ping", false, 0},
		{"resources/list", false, -32601},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: 1, Method: tt.method})
			if tt.wantNil {
				if resp != nil {
					t.Fatalf("got response %+v, want nil", resp)
				}
				return
			}
			if resp == nil {
				t.Fatal("handleRequest returned nil")
			}
			if tt.wantError == 0 && resp.Error != nil {
				t.Fatalf("unexpected error: %+v", resp.Error)
			}
			if tt.wantError != 0 {
				if resp.Error == nil {
					t.Fatal("expected error response")
				}
				if resp.Error.Code != tt.wantError {
					t.Errorf("error code: got %d, want %d", resp.Error.Code, tt.wantError)
				}
			}
		})
	}
}

func TestHandleInitialize(t *testing.T) {
	s := New(nil, "1.2.3")
	resp := s.handleInitialize(&MCPRequest{JSONRPC: "2.0", ID: 7, Method: "initialize"})

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type: got %T", resp.Result)
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "searchstims" {
		t.Errorf("server name: got %v, want searchstims", info["name"])
	}
	if info["version"] != "1.2.3" {
		t.Errorf("server version: got %v, want 1.2.3", info["version"])
	}
}

func TestServe(t *testing.T) {
	s := New(nil, "test")
	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}, "\n"))
	var out bytes.Buffer

	if err := s.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	dec := json.NewDecoder(&out)
	var ids []interface{}
	for dec.More() {
		var resp MCPResponse
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Error != nil {
			t.Errorf("unexpected error: %+v", resp.Error)
		}
		ids = append(ids, resp.ID)
	}
	if len(ids) != 2 {
		t.Fatalf("responses: got %d, want 2", len(ids))
	}
	if ids[0] != float64(1) || ids[1] != float64(2) {
		t.Errorf("response ids: got %v, want [1 2]", ids)
	}
}

func TestServe_CancelledContext(t *testing.T) {
	s := New(nil, "test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if err != context.Canceled {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %q after cancel", out.String())
	}
}
