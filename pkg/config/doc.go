// Package config holds the runtime configuration of llm-programs: which
// language model backend to talk to, how responses are cached and retried,
// logging, and where the external context blob is fetched from.
//
// Configuration is layered. Default returns the built-in settings (a local
// Ollama server running llama3.2:3b), Load overlays a YAML or TOML file, and
// ApplyEnv overlays environment variables. Command line flags are applied by
// the caller last.
package config
