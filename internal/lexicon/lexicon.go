// Package lexicon provides the pluggable token-classification and
// word-segmentation capabilities used for lexical metrics. The built-in
// classifier is a suffix-plus-vocabulary heuristic; a fuller tagger can
// be substituted behind the same contract.
package lexicon

import "strings"

// Category is the lexical class assigned to a token.
type Category string

const (
	CategoryAdjective    Category = "adjective"
	CategoryVerb         Category = "verb"
	CategoryAbstractNoun Category = "abstract_noun"
	CategoryOther        Category = "other"
)

// Classifier maps a single token to a lexical category.
type Classifier interface {
	Classify(token string) Category
}

// SuffixClassifier classifies tokens by fixed vocabulary lookup first,
// then by suffix heuristics.
type SuffixClassifier struct {
	adjectiveSuffixes []string
	verbSuffixes      []string
	adjectives        map[string]struct{}
	verbs             map[string]struct{}
	abstractNouns     map[string]struct{}
}

var defaultAdjectiveSuffixes = []string{
	"able", "ible", "ful", "ous", "ive", "less", "ish", "est",
}

var defaultVerbSuffixes = []string{
	"ing", "ize", "ise", "ify", "ate",
}

var defaultAdjectives = []string{
	"good", "bad", "big", "small", "old", "new", "long", "short",
	"high", "low", "hot", "cold", "dark", "bright", "quiet", "loud",
	"soft", "hard", "fast", "slow", "deep", "strange", "beautiful",
	"empty", "heavy", "light", "warm", "pale", "sharp",
}

var defaultVerbs = []string{
	"be", "is", "are", "was", "were", "have", "has", "had", "do",
	"does", "did", "go", "went", "gone", "say", "said", "get", "got",
	"make", "made", "know", "knew", "think", "thought", "take", "took",
	"see", "saw", "come", "came", "want", "look", "looked", "give",
	"gave", "find", "found", "tell", "told", "feel", "felt", "ran",
	"run", "walked", "turned", "stood", "sat", "held",
}

var defaultAbstractNouns = []string{
	"idea", "concept", "thought", "memory", "feeling", "emotion",
	"freedom", "truth", "beauty", "love", "fear", "hope", "dream",
	"sense", "notion", "essence", "spirit", "mind", "soul", "time",
	"silence", "meaning", "desire", "grief", "joy", "doubt", "belief",
	"wisdom", "courage", "loneliness",
}

// NewSuffixClassifier builds the default suffix-plus-vocabulary
// classifier.
func NewSuffixClassifier() *SuffixClassifier {
	return &SuffixClassifier{
		adjectiveSuffixes: defaultAdjectiveSuffixes,
		verbSuffixes:      defaultVerbSuffixes,
		adjectives:        toSet(defaultAdjectives),
		verbs:             toSet(defaultVerbs),
		abstractNouns:     toSet(defaultAbstractNouns),
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Classify assigns a category to one token. Vocabulary wins over suffix
// so short irregular forms ("is", "old") do not fall through to
// heuristics.
func (c *SuffixClassifier) Classify(token string) Category {
	word := normalize(token)
	if word == "" {
		return CategoryOther
	}
	if _, ok := c.abstractNouns[word]; ok {
		return CategoryAbstractNoun
	}
	if _, ok := c.adjectives[word]; ok {
		return CategoryAdjective
	}
	if _, ok := c.verbs[word]; ok {
		return CategoryVerb
	}
	// Suffix heuristics need enough stem to be meaningful.
	if len(word) >= 5 {
		for _, suf := range c.adjectiveSuffixes {
			if strings.HasSuffix(word, suf) {
				return CategoryAdjective
			}
		}
		for _, suf := range c.verbSuffixes {
			if strings.HasSuffix(word, suf) {
				return CategoryVerb
			}
		}
		if strings.HasSuffix(word, "ed") {
			return CategoryVerb
		}
	}
	return CategoryOther
}

func normalize(token string) string {
	return strings.ToLower(strings.Trim(token, ".,;:!?\"'()[]{}«»—–-"))
}
