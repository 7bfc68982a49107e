// Package openai implements the adapter for OpenAI's chat completions and
// embeddings APIs. Its wire format is the de-facto standard for
// OpenAI-compatible backends, so the adapter doubles as the engine for the
// openrouter package and for custom endpoints via [NewCompatible].
package openai
