package examples

import (
	"context"
	"encoding/json"

	"github.com/inercia/go-llm-programs/pkg/program"
)

// NarutoCharacter is one record of the typed chain of thought example
type NarutoCharacter struct {
	Name     string `json:"name"`
	ClanName string `json:"clanName" description:"The name of the clan the character belongs to"`
}

type konohaQuestion struct {
	Question string `json:"question"`
}

type konohaFriends struct {
	Friends []NarutoCharacter `json:"friends" desc:"List of Naruto's friends with their names and clans"`
}

// RunTypedChainOfThought returns a list of structured records
func RunTypedChainOfThought(ctx context.Context, env *Env) error {
	cot, err := program.NewTypedChainOfThought[konohaQuestion, konohaFriends](env.program(),
		"Given a question about Naruto's friends, return a list of their names and clans")
	if err != nil {
		return err
	}
	out, _, err := cot.Call(ctx, konohaQuestion{Question: "Who were Naruto's school friends from Konoha?"})
	if err != nil {
		return err
	}

	raw, err := json.Marshal(out.Friends)
	if err != nil {
		return err
	}
	env.printf("\nNaruto's Friends from Konoha:\n%s\n", raw)
	return nil
}
