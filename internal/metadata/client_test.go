package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"mediasort/internal/hints"
	"mediasort/internal/services"
)

func newLookupServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := mcpserver.NewMCPServer("provider", "test")
	srv.AddTool(mcp.NewTool("lookup_media",
		mcp.WithDescription("resolve a media id"),
		mcp.WithString("id", mcp.Required()),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id required"), nil
		}
		if id == "missing" {
			return mcp.NewToolResultError("no such title"), nil
		}
		return mcp.NewToolResultText(`{"id":"` + id + `","media_type":"tv"}`), nil
	})
	srv.AddTool(mcp.NewTool("lookup_porn",
		mcp.WithString("id", mcp.Required()),
	), func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("not json"), nil
	})
	ts := httptest.NewServer(mcpserver.NewStreamableHTTPServer(srv))
	t.Cleanup(ts.Close)
	return ts
}

func testClient(url string) *Client {
	return NewClient(Config{URL: url + "/mcp", MediaTool: "lookup_media", AdultTool: "lookup_porn", Timeout: 5 * time.Second}, nil)
}

func TestLookupReturnsToolPayload(t *testing.T) {
	ts := newLookupServer(t)
	raw, err := testClient(ts.URL).Lookup(context.Background(), hints.FamilyMedia, "70523")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("payload not JSON: %v (%s)", err, raw)
	}
	if payload["id"] != "70523" || payload["media_type"] != "tv" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestLookupToolError(t *testing.T) {
	ts := newLookupServer(t)
	_, err := testClient(ts.URL).Lookup(context.Background(), hints.FamilyMedia, "missing")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestLookupRejectsNonJSON(t *testing.T) {
	ts := newLookupServer(t)
	_, err := testClient(ts.URL).Lookup(context.Background(), hints.FamilyAdult, "abc")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestLookupRequiresConfiguredTool(t *testing.T) {
	c := NewClient(Config{URL: "http://127.0.0.1:1/mcp"}, nil)
	_, err := c.Lookup(context.Background(), hints.FamilyMedia, "1")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestDecodeResultPrefersStructuredContent(t *testing.T) {
	raw, err := decodeResult(&mcp.CallToolResult{
		Content:           []mcp.Content{mcp.NewTextContent("ignored")},
		StructuredContent: map[string]any{"code": "SSIS-698"},
	})
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	if string(raw) != `{"code":"SSIS-698"}` {
		t.Fatalf("raw = %s", raw)
	}
}
