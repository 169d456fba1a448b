/*
Package markov interprets Markov normal algorithms.

A scheme is an ordered list of substitution formulas. Applying it to a word
repeatedly rewrites the leftmost occurrence of the first formula (in
definition order) whose pattern occurs in the word, until a final formula
fires, no formula applies, or the step budget is spent.

# Definition Format

One formula per line: pattern, delimiter, optional final marker, replacement.
The defaults are '→' and '⋅' over Latin letters, digits and '|':

	a→b
	b→c
	c→⋅4

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/markov"
	)

	func main() {
		eng, err := markov.New("a→b\nb→c\nc→⋅4")
		if err != nil {
			log.Fatal(err)
		}

		res, err := eng.Apply(context.Background(), "aaabc", 10)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.Word, res.Steps, res.Outcome) // 4cccc 8 terminated
	}

For stepwise execution use Iterate, which returns an Iterator whose Next
method performs exactly one rewrite per call.

Reaching the step limit is reported as the StepLimitReached outcome. Use
WithStepLimitPolicy(domain.LimitAsError) to receive a *domain.StepLimitError
instead.
*/
package markov
