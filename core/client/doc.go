// Package client is the high-level entry point for talking to LLM backends
// through one uniform API. A Client binds a provider adapter (OpenAI,
// Anthropic, OpenRouter, or any OpenAI-compatible endpoint) to a model and
// wraps every call in a middleware chain that handles retries with
// exponential backoff, per-request deadlines, and optional structured
// logging.
//
// Construction resolves credentials from an explicit option or the
// provider's environment variable, and transport tuning from the MODELFLOW_*
// environment variables:
//
//	c, err := client.OpenAI("gpt-4o-mini")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	text, err := c.GenerateText(ctx, "Say hello in one sentence.")
//
// Streaming yields chunks as the backend produces them; token accounting
// becomes available once the stream is drained:
//
//	stream, err := c.StreamText(ctx, "Tell me a story.")
//	for chunk, err := range stream.Chunks() {
//		...
//	}
//	usage := stream.Usage()
package client
