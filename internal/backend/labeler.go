package backend

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// Labeler assigns a label to a single text.
type Labeler func(text string) string

// RandomLabeler returns a labeler that picks "code" or "not code" uniformly.
// It is safe for concurrent use.
func RandomLabeler(seed int64) Labeler {
	var mu sync.Mutex
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	return func(string) string {
		mu.Lock()
		defer mu.Unlock()
		if rng.IntN(2) == 0 {
			return LabelCode
		}
		return LabelNotCode
	}
}

// codeMarkers are substrings that rarely appear in prose but are common in
// source code.
var codeMarkers = []string{
	"{", "}", ";", "()", "=>", "==", "!=", ":=", "func ", "def ", "return ",
	"import ", "class ", "#include", "</", "/>",
}

// HeuristicLabeler labels text as code when it contains a typical source code
// marker. Deterministic, which makes it the labeler of choice in tests.
func HeuristicLabeler(text string) string {
	for _, marker := range codeMarkers {
		if strings.Contains(text, marker) {
			return LabelCode
		}
	}
	return LabelNotCode
}

// LabelerByName resolves the --labeler flag value.
func LabelerByName(name string, seed int64) (Labeler, error) {
	switch name {
	case "random", "":
		return RandomLabeler(seed), nil
	case "heuristic":
		return HeuristicLabeler, nil
	default:
		return nil, fmt.Errorf("unknown labeler %q (valid: random, heuristic)", name)
	}
}
