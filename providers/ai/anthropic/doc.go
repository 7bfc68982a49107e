// Package anthropic implements the adapter for Anthropic's Messages API,
// including SSE streaming with Anthropic's event lifecycle. The Messages API
// has no embeddings endpoint, so the adapter implements generation and
// streaming only.
package anthropic
