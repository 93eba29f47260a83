// Package config loads, normalizes, and validates mediasort configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY, METADATA_MCP, and JAV_ACTOR_FILE. The Config type
// centralizes every knob the CLI and pipeline need so the download and library
// roots, oracle credentials, and alias store location are discovered in one
// pass.
package config
