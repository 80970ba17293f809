package sentiment

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var positiveWords = map[string]bool{
	"good": true, "great": true, "positive": true, "up": true, "bull": true,
	"profit": true, "gain": true, "beat": true, "outperform": true, "strong": true,
	"improve": true, "increase": true, "surge": true, "rise": true, "grow": true,
	"growth": true,
}

var negativeWords = map[string]bool{
	"bad": true, "terrible": true, "negative": true, "down": true, "bear": true,
	"loss": true, "drop": true, "miss": true, "weak": true, "decline": true,
	"decrease": true, "fall": true, "plunge": true,
}

// Polarity scores a headline in [-1, 1] as (positive - negative) / words.
// Only exact lowercase word matches count, so "gains" is neutral.
func Polarity(text string) float64 {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0
	}
	score := 0
	for _, w := range words {
		switch {
		case positiveWords[w]:
			score++
		case negativeWords[w]:
			score--
		}
	}
	return float64(score) / float64(len(words))
}
