// Package hints turns identifiers and overrides carried in request metadata
// into the categories the dispatcher tries first.
//
// A request may name its category outright under the "category" key, or carry
// a provider identifier ("media_id" or "porn_id") that is resolved through a
// Lookup. The raw lookup payload is attached to a copy of the request under
// "_lookup" so every later oracle call sees it.
package hints
