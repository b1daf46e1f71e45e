// Package signature describes language model tasks as typed input and
// output fields plus natural-language instructions.
//
// A signature can be written in shorthand,
//
//	sig := signature.MustParse("context, question -> response")
//	sig := signature.MustParse("question -> answer: float")
//
// or derived from a pair of request/response structs, whose json tags name
// the fields and whose desc tags describe them:
//
//	type Query struct {
//		Question string `json:"question"`
//	}
//	type Answer struct {
//		Answer string `json:"answer" desc:"often between 1 and 5 words"`
//	}
//
//	sig, err := signature.FromStructs(Query{}, Answer{}, "Answer questions with short factoid answers.")
package signature
