/*
Package scheme builds validated Markov algorithm schemes.

A scheme is assembled with a fluent Builder, either from definition lines or
from formulas constructed in Go:

	s, err := scheme.NewBuilder().
		WithAlphabet(domain.MustAlphabet("abc")).
		WithExtension('d').
		AddText("a→b\nb→c\nc→⋅d").
		Build()

Definitions are parsed against the final alphabet and syntax when Build is
called. The resulting Scheme is immutable.
*/
package scheme
