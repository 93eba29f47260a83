// Package metadata resolves provider identifiers through tools exposed by an
// MCP server.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"mediasort/internal/hints"
	"mediasort/internal/logging"
	"mediasort/internal/services"
)

const (
	defaultTimeout = 20 * time.Second
	clientName     = "mediasort"
	clientVersion  = "0.1.0"
)

// Config names the server and the tool used for each identifier family.
type Config struct {
	URL       string
	MediaTool string
	AdultTool string
	Timeout   time.Duration
}

// Client calls one lookup tool per identifier. Each lookup opens its own
// session so a restarted server never leaves a stale connection behind.
type Client struct {
	cfg    Config
	logger *slog.Logger
}

// NewClient returns a lookup client for cfg.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{cfg: cfg, logger: logging.NewComponentLogger(logger, "metadata")}
}

// Lookup implements hints.Lookup.
func (c *Client) Lookup(ctx context.Context, family hints.Family, identifier string) (json.RawMessage, error) {
	tool := c.toolFor(family)
	if tool == "" {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "lookup", fmt.Sprintf("no tool configured for %s identifiers", family), nil)
	}
	if strings.TrimSpace(c.cfg.URL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "lookup", "mcp url not configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	conn, err := client.NewStreamableHttpClient(c.cfg.URL)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "metadata", "connect", c.cfg.URL, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			c.logger.Debug("mcp session close failed", logging.Error(cerr))
		}
	}()

	if err := conn.Start(ctx); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "metadata", "start", c.cfg.URL, err)
	}
	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}
	if _, err := conn.Initialize(ctx, init); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "metadata", "initialize", c.cfg.URL, err)
	}

	call := mcp.CallToolRequest{}
	call.Params.Name = tool
	call.Params.Arguments = map[string]any{"id": identifier}
	started := time.Now()
	result, err := conn.CallTool(ctx, call)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "metadata", "call "+tool, identifier, err)
	}
	payload, err := decodeResult(result)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "metadata", "call "+tool, identifier, err)
	}

	logging.WithContext(ctx, c.logger).Debug("metadata lookup complete",
		logging.String("tool", tool),
		logging.String("identifier", identifier),
		logging.Int("bytes", len(payload)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return payload, nil
}

func (c *Client) toolFor(family hints.Family) string {
	switch family {
	case hints.FamilyMedia:
		return strings.TrimSpace(c.cfg.MediaTool)
	case hints.FamilyAdult:
		return strings.TrimSpace(c.cfg.AdultTool)
	default:
		return ""
	}
}

// decodeResult prefers structured content and falls back to the concatenated
// text blocks, which must themselves be JSON.
func decodeResult(result *mcp.CallToolResult) (json.RawMessage, error) {
	if result == nil {
		return nil, errors.New("empty tool result")
	}
	text := collectText(result.Content)
	if result.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return nil, errors.New(text)
	}
	if result.StructuredContent != nil {
		raw, err := json.Marshal(result.StructuredContent)
		if err != nil {
			return nil, fmt.Errorf("encode structured content: %w", err)
		}
		return raw, nil
	}
	if text == "" {
		return nil, errors.New("tool returned no content")
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("tool returned non-JSON text %q", truncate(text, 80))
	}
	return json.RawMessage(text), nil
}

func collectText(contents []mcp.Content) string {
	var parts []string
	for _, content := range contents {
		if tc, ok := mcp.AsTextContent(content); ok {
			if s := strings.TrimSpace(tc.Text); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n")
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
