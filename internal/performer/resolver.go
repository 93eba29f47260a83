package performer

import (
	"context"
	"log/slog"
	"strings"

	"mediasort/internal/logging"
	"mediasort/internal/oracle"
	"mediasort/internal/textutil"
)

// Searcher finds candidate aliases for a performer name. It is best effort:
// failures yield an empty slice.
type Searcher interface {
	Search(ctx context.Context, name string) []string
}

// Resolver picks or creates the library directory for a list of credited
// performer names.
type Resolver struct {
	store    *Store
	searcher Searcher
	verifier oracle.AliasVerifier
	logger   *slog.Logger
}

// NewResolver wires a resolver. searcher and verifier may be nil.
func NewResolver(store *Store, searcher Searcher, verifier oracle.AliasVerifier, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:    store,
		searcher: searcher,
		verifier: verifier,
		logger:   logging.NewComponentLogger(logger, "performer"),
	}
}

// Resolve returns the directory for names. A known name resolves without any
// external call or lock. Otherwise the first non-empty name seeds a search
// and the store is updated under its lock. The seed is verified together
// with any hits, including when the search found none. An empty result with
// a nil error means no usable name was supplied.
func (r *Resolver) Resolve(ctx context.Context, names []string) (string, oracle.Usage, error) {
	idx, err := r.store.Load()
	if err != nil {
		return "", oracle.Usage{}, err
	}
	if dir, ok := idx.FindAny(names); ok {
		return dir, oracle.Usage{}, nil
	}

	seed := ""
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			seed = name
			break
		}
	}
	if seed == "" {
		return "", oracle.Usage{}, nil
	}
	logger := logging.WithContext(ctx, r.logger)

	raw := []string{seed}
	if r.searcher != nil {
		raw = textutil.Dedupe(append(raw, r.searcher.Search(ctx, seed)...))
	}

	aliases := raw
	var usage oracle.Usage
	if r.verifier != nil {
		verified, u, verr := r.verifier.VerifyAliases(ctx, raw)
		usage = usage.Add(u)
		switch {
		case verr != nil:
			logging.WarnWithContext(logger, "alias verification failed; keeping search results", "alias_verify_failed",
				logging.String("performer", seed),
				logging.Error(verr),
				logging.String(logging.FieldImpact, "unverified aliases stored"),
			)
		default:
			aliases = textutil.Dedupe(append([]string{seed}, verified...))
		}
	}

	dir, err := r.store.Merge(ctx, seed, aliases)
	if err != nil {
		return "", usage, err
	}
	logger.Info("performer directory resolved",
		logging.String("performer", seed),
		logging.String("dir", dir),
		logging.Strings("aliases", aliases),
	)
	return dir, usage, nil
}
