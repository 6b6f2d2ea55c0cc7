// Package llm provides an OpenRouter-compatible chat client for image diagnosis.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.ClassifyImage: fast food/not-food check on the fast model.
// Client.AnalyzeImage: full repair or nutrition diagnosis on the reasoning model.
// Client.HealthCheck: verify API key and model availability.
//
// Images travel as data URIs inside image_url content parts. Responses are
// requested as JSON objects and decoded with DecodeLLMJSON, which tolerates
// code fences and prose around the payload.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and
// network timeouts with exponential backoff (base 1s, max 10s, up to 3
// attempts by default). Context cancellation aborts retries immediately.
package llm
