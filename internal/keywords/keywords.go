// Package keywords extracts salient wellness terms from message text.
package keywords

import (
	"strings"
)

// MaxKeywords caps how many distinct terms a single message contributes,
// bounding per-message keyword storage.
const MaxKeywords = 8

// wellnessTerms is the salience vocabulary. A token matching it is ranked
// ahead of ordinary tokens when the cap applies.
var wellnessTerms = map[string]bool{
	"stress": true, "stressed": true, "anxiety": true, "anxious": true,
	"worried": true, "nervous": true, "tired": true, "exhausted": true,
	"sleep": true, "insomnia": true, "pain": true, "headache": true,
	"energy": true, "fatigue": true, "focus": true, "concentration": true,
	"memory": true, "mood": true, "depression": true, "depressed": true,
	"sad": true, "exercise": true, "workout": true, "diet": true,
	"nutrition": true, "meditation": true, "mindfulness": true,
	"breathing": true, "relaxation": true, "burnout": true,
	"overwhelmed": true, "tension": true, "happy": true, "grateful": true,
	"motivated": true, "calm": true, "peaceful": true, "confident": true,
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"has": true, "have": true, "was": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "with": true, "this": true,
	"that": true, "these": true, "those": true, "about": true, "been": true,
	"being": true, "because": true, "feel": true, "feeling": true,
	"felt": true, "just": true, "like": true, "lately": true, "really": true,
	"some": true, "something": true, "very": true, "much": true, "more": true,
	"your": true, "mine": true, "them": true, "they": true, "from": true,
	"how": true, "why": true, "who": true, "its": true, "his": true,
	"her": true, "him": true, "she": true, "out": true, "get": true,
	"got": true, "will": true, "would": true, "could": true, "should": true,
	"there": true, "here": true, "into": true, "than": true, "then": true,
	"also": true, "any": true, "too": true, "now": true, "help": true,
	"want": true, "need": true, "know": true, "think": true, "going": true,
	"dont": true, "cant": true, "ive": true,
}

// Extract pulls up to MaxKeywords distinct salient terms from text.
// Pure and deterministic: lower-cases, strips punctuation and stop words,
// and prefers wellness vocabulary over ordinary tokens. Empty or
// whitespace-only input yields an empty result; Extract never fails.
func Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})

	seen := make(map[string]bool, len(tokens))
	var salient, ordinary []string
	for _, tok := range tokens {
		if len(tok) < 3 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		if wellnessTerms[tok] {
			salient = append(salient, tok)
		} else {
			ordinary = append(ordinary, tok)
		}
	}

	out := append(salient, ordinary...)
	if len(out) > MaxKeywords {
		out = out[:MaxKeywords]
	}
	if out == nil {
		return []string{}
	}
	return out
}
