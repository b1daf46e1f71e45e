// Package bedrock provides AWS Bedrock integration through the Converse API.
//
// The Converse API gives one request shape for every foundation model family
// hosted on Bedrock (Claude, Titan, Llama, Mistral), so the client does not
// need per-model payload formats.
//
// Usage:
//
//	client, err := bedrock.NewClient(llm.ClientConfig{
//	    Provider: "bedrock",
//	    Model:    "anthropic.claude-3-haiku-20240307-v1:0",
//	    Extra: map[string]string{
//	        "region": "us-east-1",
//	    },
//	})
//
// The client uses the AWS SDK's default credential chain for authentication,
// supporting environment variables, IAM roles, profiles, and other standard
// AWS authentication methods.
package bedrock
