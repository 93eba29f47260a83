// Package llm provides an OpenAI-compatible chat client for the pipeline's
// classification, decision, and alias-verification prompts.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive a JSON payload plus Usage.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: lenient decoding of model output (code fences, leading prose).
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 4
// attempts by default). Context cancellation aborts retries immediately.
package llm
