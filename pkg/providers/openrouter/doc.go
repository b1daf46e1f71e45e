// Package openrouter implements llm.Client for OpenRouter, a gateway that
// routes OpenAI-compatible chat requests to many upstream model vendors.
//
// The optional config extras "site_url" and "app_name" are sent as the
// HTTP-Referer and X-Title headers used for OpenRouter's app rankings.
package openrouter
