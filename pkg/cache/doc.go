// Package cache provides a read-through response cache for llm.Client.
//
// Responses are stored under a hash of the full request, so identical
// prompts sent with identical generation parameters are answered from the
// store. Two backends are available: an in-process MemoryStore and a
// RedisStore shared between runs.
package cache
