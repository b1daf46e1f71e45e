// Package ollama provides an Ollama client implementation of llm.Client.
//
// The client talks to a local (or remote) Ollama server through the official
// github.com/ollama/ollama/api package. Structured outputs are requested through
// Ollama's native "format" parameter, so JSON schema response formats are
// enforced by the server rather than by prompting.
//
// The client connects to http://localhost:11434 by default.
package ollama
