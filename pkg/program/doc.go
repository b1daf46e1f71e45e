// Package program implements composable language model programs over
// signatures: Predict, ChainOfThought, ReAct and MultiChainComparison,
// plus helpers to repeat a module or dispatch many calls in parallel.
//
// Every module is built from an explicit Config carrying the client, so
// programs using different models can coexist in one process:
//
//	cfg := program.Config{Client: client, Logger: logger}
//	cot := program.NewChainOfThought(cfg, signature.MustParse("question -> answer: float"))
//
//	pred, err := cot.Forward(ctx, program.Inputs{"question": "..."})
//	answer, err := pred.Float("answer")
//
// Prompts are rendered and parsed by an Adapter. The default ChatAdapter
// lays out fields between [[ ## name ## ]] markers; when a completion cannot
// be parsed, Predict retries once with the JSONAdapter.
package program
