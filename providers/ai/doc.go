// Package ai defines the normalized model shared by every LLM backend
// adapter: generation requests and results, token usage accounting, finish
// reasons, streaming deltas, embeddings, and the error taxonomy.
//
// Adapters in the subpackages (openai, anthropic, openrouter) translate this
// model to and from their provider-specific wire formats. The facade in
// core/client selects an adapter once at construction time and exposes the
// user-facing generate/stream/embed operations on top of it.
package ai
