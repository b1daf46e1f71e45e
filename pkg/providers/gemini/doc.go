// Package gemini implements llm.Client for Google's Gemini API using the
// official google.golang.org/genai SDK.
//
// System messages are sent as the request's system instruction and JSON
// response formats switch the response MIME type to application/json.
package gemini
