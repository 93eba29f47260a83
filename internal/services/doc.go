// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run correlation IDs, stage names, and the
//     category under evaluation for logging.
//   - Structured error markers plus the Wrap helper so callers can branch on
//     failure kinds with errors.Is and the CLI can pick an exit status.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the pipeline.
package services
