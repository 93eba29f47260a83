package hints

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/services"
)

// Family selects which provider catalog an identifier belongs to.
type Family string

const (
	FamilyMedia Family = "media"
	FamilyAdult Family = "adult"
)

// Lookup fetches the raw provider record for an identifier.
type Lookup interface {
	Lookup(ctx context.Context, family Family, identifier string) (json.RawMessage, error)
}

// Resolution is the resolver output. Request is the request later stages
// should use; it differs from the input only by the attached lookup payload.
type Resolution struct {
	Categories []media.Category
	Request    media.Request
	Override   bool
}

// Resolver maps metadata hints to categories.
type Resolver struct {
	lookup Lookup
	logger *slog.Logger
}

// NewResolver builds a resolver. A nil lookup disables identifier resolution.
func NewResolver(lookup Lookup, logger *slog.Logger) *Resolver {
	return &Resolver{lookup: lookup, logger: logging.NewComponentLogger(logger, "hints")}
}

// Resolve inspects req.Metadata. Conflicting keys and unknown override names
// are rejected with ErrMalformedRequest. A failed lookup only costs the hint.
func (r *Resolver) Resolve(ctx context.Context, req media.Request) (Resolution, error) {
	out := Resolution{Request: req}
	hasOverride := req.HasMeta(media.MetaCategory)
	mediaID := req.MetaString(media.MetaMediaID)
	pornID := req.MetaString(media.MetaPornID)

	switch {
	case hasOverride && (mediaID != "" || pornID != ""):
		return out, services.Wrap(services.ErrMalformedRequest, "hints", "resolve", "category override cannot be combined with an identifier", nil)
	case mediaID != "" && pornID != "":
		return out, services.Wrap(services.ErrMalformedRequest, "hints", "resolve", "media_id and porn_id are mutually exclusive", nil)
	}

	if hasOverride {
		categories, err := parseOverride(req.Metadata[media.MetaCategory])
		if err != nil {
			return out, services.Wrap(services.ErrMalformedRequest, "hints", "resolve", "category override", err)
		}
		out.Categories = categories
		out.Override = true
		return out, nil
	}

	family, identifier := FamilyMedia, mediaID
	if pornID != "" {
		family, identifier = FamilyAdult, pornID
	}
	if identifier == "" {
		return out, nil
	}

	logger := logging.WithContext(ctx, r.logger)
	if r.lookup == nil {
		logger.Debug("identifier present but no lookup configured",
			logging.String("family", string(family)),
			logging.String("identifier", identifier),
		)
		return out, nil
	}

	raw, err := r.lookup.Lookup(ctx, family, identifier)
	if err != nil {
		logging.WarnWithContext(logger, "metadata lookup failed; continuing without hints", "hint_lookup_failed",
			logging.String("family", string(family)),
			logging.String("identifier", identifier),
			logging.Error(err),
			logging.String(logging.FieldImpact, "heuristic candidates only"),
		)
		return out, nil
	}
	if !gjson.ValidBytes(raw) {
		logging.WarnWithContext(logger, "metadata lookup returned invalid JSON", "hint_lookup_invalid",
			logging.String("family", string(family)),
			logging.String("identifier", identifier),
		)
		return out, nil
	}

	out.Request = req.WithMetadata(media.MetaLookup, raw)
	out.Categories = Route(family, raw)
	logger.Info("metadata hints resolved",
		logging.String("family", string(family)),
		logging.String("identifier", identifier),
		logging.Any("categories", out.Categories),
	)
	return out, nil
}

// Route classifies a raw lookup payload into one or two categories.
func Route(family Family, raw json.RawMessage) []media.Category {
	doc := gjson.ParseBytes(raw)
	switch family {
	case FamilyAdult:
		if markerPresent(doc, "code") || markerPresent(doc, "bango") {
			return []media.Category{media.CategoryBangoPorn}
		}
		if strings.EqualFold(strings.TrimSpace(doc.Get("type").String()), "western") {
			return []media.Category{media.CategoryPorn}
		}
		return []media.Category{media.CategoryPorn, media.CategoryBangoPorn}
	default:
		switch strings.ToLower(strings.TrimSpace(doc.Get("media_type").String())) {
		case "tv", "series", "tv_series":
			return []media.Category{media.CategoryTVSeries}
		case "movie":
			return []media.Category{media.CategoryMovie}
		}
		if doc.Get("first_air_date").Exists() || doc.Get("number_of_seasons").Exists() {
			return []media.Category{media.CategoryTVSeries}
		}
		if doc.Get("release_date").Exists() {
			return []media.Category{media.CategoryMovie}
		}
		return []media.Category{media.CategoryMovie, media.CategoryTVSeries}
	}
}

func markerPresent(doc gjson.Result, key string) bool {
	v := doc.Get(key)
	return v.Exists() && strings.TrimSpace(v.String()) != ""
}

func parseOverride(value any) ([]media.Category, error) {
	var names []string
	switch v := value.(type) {
	case string:
		names = []string{v}
	case []string:
		names = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("category entries must be strings, got %T", item)
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("category must be a string or list, got %T", value)
	}

	seen := media.NewCategorySet()
	out := make([]media.Category, 0, len(names))
	for _, name := range names {
		category, err := media.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if seen.Has(category) {
			continue
		}
		seen.Add(category)
		out = append(out, category)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("category override is empty")
	}
	return out, nil
}
