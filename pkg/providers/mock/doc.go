// Package mock provides a scripted llm.Client for testing programs without a
// real backend.
//
// Features:
// - Queued responses and errors, consumed in order
// - A responder function computing replies from the request
// - Latency and random failure simulation
// - Call logging and assertions
//
// The mock client is safe for concurrent use, which makes it suitable for
// exercising parallel dispatch.
package mock
