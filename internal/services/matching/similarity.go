package matching

import (
	"math"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// levenshteinOptions uses unit cost for substitutions. The library default
// costs a substitution as delete+insert, which deflates the ratio.
var levenshteinOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// Similarity returns a Levenshtein ratio in [0, 100]:
// 100 * (1 - distance / max(len(a), len(b))), rounded. Equal strings score
// 100; an empty string against a non-empty one scores 0.
func Similarity(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 100
	}

	distance := levenshtein.DistanceForStrings(ra, rb, levenshteinOptions)
	ratio := 100 * (1 - float64(distance)/float64(maxLen))
	return int(math.Round(ratio))
}
