package media

import (
	"encoding/json"
	"maps"
	"strings"
)

// Reserved metadata keys understood by the hint resolver.
const (
	MetaCategory = "category"
	MetaMediaID  = "media_id"
	MetaPornID   = "porn_id"
	MetaLookup   = "_lookup"
)

// Request is one batch of downloaded files plus optional provider metadata.
// File order is preserved and duplicates are allowed.
type Request struct {
	Files    []string       `json:"files"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// WithFiles returns a request for the given files sharing r's metadata.
func (r Request) WithFiles(files ...string) Request {
	return Request{Files: files, Metadata: r.Metadata}
}

// WithMetadata returns a copy of r whose metadata carries key=value. The
// receiver's map is never modified.
func (r Request) WithMetadata(key string, value any) Request {
	meta := make(map[string]any, len(r.Metadata)+1)
	maps.Copy(meta, r.Metadata)
	meta[key] = value
	return Request{Files: r.Files, Metadata: meta}
}

// MetaString returns a trimmed string metadata value.
func (r Request) MetaString(key string) string {
	if r.Metadata == nil {
		return ""
	}
	switch v := r.Metadata[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64, int, int64:
		raw, _ := json.Marshal(v)
		return string(raw)
	default:
		return ""
	}
}

// HasMeta reports whether key carries a non-empty value.
func (r Request) HasMeta(key string) bool {
	if r.Metadata == nil {
		return false
	}
	v, ok := r.Metadata[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}
