package preprocess

import (
	"regexp"
	"strings"

	"github.com/quanterra/finassist/config"
)

// contraction expansion pairs. Order matters: "won't" must expand before
// the generic "n't" rule gets a chance at it.
var contractions = []struct {
	from string
	to   string
}{
	{"won't", "will not"},
	{"can't", "cannot"},
	{"n't", " not"},
	{"'re", " are"},
	{"'ve", " have"},
	{"'ll", " will"},
	{"what's", "what is"},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// TextNormalizer canonicalizes sanitized text for downstream matching.
// Normalize is pure and idempotent on already-normalized text.
type TextNormalizer struct {
	lowercase          bool
	collapseWhitespace bool
	expandContractions bool
	expansions         []*regexp.Regexp
}

// NewTextNormalizer builds a normalizer from the configured toggles.
func NewTextNormalizer(cfg config.NormalizationConfig) *TextNormalizer {
	expansions := make([]*regexp.Regexp, len(contractions))
	for i, c := range contractions {
		expansions[i] = regexp.MustCompile("(?i)" + regexp.QuoteMeta(c.from))
	}
	return &TextNormalizer{
		lowercase:          cfg.Lowercase,
		collapseWhitespace: cfg.CollapseWhitespace,
		expandContractions: cfg.ExpandContractions,
		expansions:         expansions,
	}
}

// Normalize expands contractions, lowercases, collapses whitespace runs
// and trims, in that order. Contraction expansion runs before lowercasing
// so the table's casing applies to the original text.
func (n *TextNormalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	if n.expandContractions {
		for i, re := range n.expansions {
			text = re.ReplaceAllString(text, contractions[i].to)
		}
	}

	if n.lowercase {
		text = strings.ToLower(text)
	}

	if n.collapseWhitespace {
		text = whitespaceRun.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}
