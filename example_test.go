package markov_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/markov"
	"github.com/aretw0/markov/pkg/config"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/scheme"
)

// ExampleNew adds two unary numbers.
func ExampleNew() {
	eng, err := markov.New("|+→+|\n+→⋅", markov.WithConfig(config.Config{Alphabet: "|+"}))
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Apply(context.Background(), "||+|||", 100)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Word, res.Steps, res.Outcome)
	// Output: ||||| 3 terminated
}

// ExampleFromScheme builds a scheme with a custom syntax and an auxiliary marker.
func ExampleFromScheme() {
	alphabet := domain.MustAlphabet("ab")
	s, err := scheme.NewBuilder().
		WithAlphabet(alphabet).
		WithDelimiter('>').
		WithFinalMarker('!').
		WithExtension('*').
		AddDefinitions("*a>b*", "*b>a*", "*>!", ">*").
		Build()
	if err != nil {
		log.Fatal(err)
	}

	res, err := markov.FromScheme(s).Apply(context.Background(), "abba", 50)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Word)
	// Output: baab
}

// ExampleRunner prints every transformation without waiting for input.
func ExampleRunner() {
	eng, err := markov.New("a→b\nb→⋅c")
	if err != nil {
		log.Fatal(err)
	}

	runner := &markov.Runner{Output: os.Stdout, Headless: true}
	if _, err := runner.Run(context.Background(), eng, "ab", 10); err != nil {
		log.Fatal(err)
	}
	// Output:
	// Transformed the word "ab" to the word "bb" by applying the substitution formula "a→b".
	// Transformed the word "bb" to the word "cb" by applying the substitution formula "b→⋅c".
	// The algorithm is finished after taking 2 steps (terminated). The output string is "cb".
}
