// Package llm provides the provider-agnostic client contract used by every
// program in this module.
//
// The package defines the Client interface that all backends implement, the
// request and response types exchanged with them, and the small set of helpers
// that sit on top of any client:
//
//   - Client / Pinger: core completion interface and optional health check
//   - Messages: role-tagged text messages
//   - ResponseFormat / JSONSchema: structured output requests
//   - Error: standardized error type shared by all providers
//   - WithRetry: exponential backoff for transient failures
//   - WithMiddleware: request/response interception (logging, usage accounting)
//   - ExtractJSONFromResponse and friends: pulling JSON out of free-form text
//
// Provider implementations are located in separate packages under /pkg/providers/
// to maintain clean separation of concerns and avoid import cycles.
package llm
