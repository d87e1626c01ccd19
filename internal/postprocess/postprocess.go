// Package postprocess implements the §4.8 Contextual Postprocessor: an
// ordered list of deterministic, individually-togglable text transforms
// applied to recognized text, plus the contextual_score heuristic used by
// the ensemble reranker (§4.7).
package postprocess

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/textmetrics"
)

// StepName enumerates the closed set of postprocessing steps, in the fixed
// order they are always applied when enabled.
type StepName string

const (
	StepUppercase       StepName = "uppercase"
	StepRemoveSymbols   StepName = "remove_symbols"
	StepAmbiguityMap    StepName = "ambiguity_mapping"
	StepFuzzyMatching   StepName = "fuzzy_matching"
	StepFixFormats      StepName = "fix_formats"
	StepCleanup         StepName = "cleanup"
)

// Order is the fixed application order.
var Order = []StepName{
	StepUppercase, StepRemoveSymbols, StepAmbiguityMap, StepFuzzyMatching, StepFixFormats, StepCleanup,
}

// Config controls which steps are enabled and their parameters.
type Config struct {
	Enabled map[StepName]bool

	KnownWords      []string // fuzzy_matching dictionary
	FuzzyThreshold  int      // default 2
	ExpectedPatterns []*regexp.Regexp
	UseNativeLevenshtein bool // false => pure-Go fallback, per spec §4.8's degrade-gracefully clause
}

// DefaultConfig enables every step with sensible defaults.
func DefaultConfig() Config {
	enabled := make(map[StepName]bool, len(Order))
	for _, s := range Order {
		enabled[s] = true
	}
	return Config{
		Enabled:              enabled,
		FuzzyThreshold:       2,
		UseNativeLevenshtein: true,
	}
}

// removeSymbolsRe preserves newlines so multi-line recognized text (each
// line from a distinct detected box) keeps its line boundaries intact.
var removeSymbolsRe = regexp.MustCompile(`[^A-Z0-9 /\-.:\n]`)

// numericContextMap disambiguates letter/digit look-alikes toward digits.
// Keyed on lowercase 'l' (not uppercase 'L') per the source rule set; since
// StepUppercase always runs before StepAmbiguityMap, 'l' never actually
// appears in practice — preserved as specified rather than "fixed".
var numericContextMap = map[rune]rune{
	'O': '0', 'I': '1', 'l': '1', 'S': '5', 'B': '8', 'Z': '2', 'G': '6', 'T': '7', '|': '1',
}

var alphaContextMap = map[rune]rune{
	'0': 'O', '1': 'I',
}

// Postprocessor applies the ordered transform chain to recognized text.
type Postprocessor struct {
	cfg Config
}

// New builds a Postprocessor from cfg.
func New(cfg Config) *Postprocessor { return &Postprocessor{cfg: cfg} }

// Process runs every enabled step, in fixed order, over text. Input is
// first folded to NFKC so combining-diacritic and fullwidth variants some
// engines emit collapse to their plain ASCII form before the rest of the
// chain (which only ever expects the ASCII allowed-character set) runs.
func (p *Postprocessor) Process(text string) string {
	cur := norm.NFKC.String(text)
	for _, step := range Order {
		if !p.cfg.Enabled[step] {
			continue
		}
		cur = p.applyStep(step, cur)
	}
	return cur
}

func (p *Postprocessor) applyStep(step StepName, text string) string {
	switch step {
	case StepUppercase:
		return strings.ToUpper(text)
	case StepRemoveSymbols:
		return removeSymbolsRe.ReplaceAllString(text, "")
	case StepAmbiguityMap:
		return applyAmbiguityMap(text)
	case StepFuzzyMatching:
		return p.applyFuzzyMatching(text)
	case StepFixFormats:
		return fixFormats(text)
	case StepCleanup:
		return cleanup(text)
	default:
		return text
	}
}

// applyAmbiguityMap substitutes characters whose flanking context resolves
// the O/0, I/1/L, S/5, B/8, Z/2, G/6, T/7, |/1 ambiguity class.
func applyAmbiguityMap(text string) string {
	runes := []rune(text)
	out := make([]rune, len(runes))
	copy(out, runes)
	for i, r := range runes {
		left, hasLeft := neighbor(runes, i-1)
		right, hasRight := neighbor(runes, i+1)
		switch {
		case hasLeft && hasRight && unicode.IsDigit(left) && unicode.IsDigit(right):
			if mapped, ok := numericContextMap[r]; ok {
				out[i] = mapped
			}
		case hasLeft && hasRight && unicode.IsLetter(left) && unicode.IsLetter(right):
			if mapped, ok := alphaContextMap[r]; ok {
				out[i] = mapped
			}
		}
	}
	return string(out)
}

func neighbor(runes []rune, i int) (rune, bool) {
	if i < 0 || i >= len(runes) {
		return 0, false
	}
	return runes[i], true
}

func (p *Postprocessor) applyFuzzyMatching(text string) string {
	if len(p.cfg.KnownWords) == 0 {
		return text
	}
	tokens := strings.Fields(text)
	for i, tok := range tokens {
		if match, ok := textmetrics.FuzzyMatch(tok, p.cfg.KnownWords, p.cfg.FuzzyThreshold, p.cfg.UseNativeLevenshtein); ok {
			tokens[i] = match
		}
	}
	return strings.Join(tokens, " ")
}

var (
	spacedLoteRe   = regexp.MustCompile(`\bL\s*O\s*T\s*E\b`)
	lot3Re         = regexp.MustCompile(`\bLOT3\b`)
	dateSepRe      = regexp.MustCompile(`(\d{1,4})[.\-](\d{1,2})[.\-](\d{1,4})`)
	multiSpaceRe   = regexp.MustCompile(`\s{2,}`)
)

// fixFormats performs regex-driven repairs: collapsing spaced-out known
// tokens, repairing the common LOT3 -> LOTE misrecognition, and
// normalizing date separators to '/'.
func fixFormats(text string) string {
	text = spacedLoteRe.ReplaceAllString(text, "LOTE")
	text = lot3Re.ReplaceAllString(text, "LOTE")
	text = dateSepRe.ReplaceAllString(text, "$1/$2/$3")
	return text
}

func cleanup(text string) string {
	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ContextualScore returns a [0,1] heuristic combining expected-pattern
// matches, dictionary hit rate and symbol-density penalty, used by the
// ensemble reranker's weighted scoring formula.
func (p *Postprocessor) ContextualScore(text string) float64 {
	if text == "" {
		return 0
	}
	var score float64
	upper := strings.ToUpper(text)

	var patternHits int
	for _, re := range p.cfg.ExpectedPatterns {
		if re.MatchString(upper) {
			patternHits++
		}
	}
	if len(p.cfg.ExpectedPatterns) > 0 {
		score += 0.5 * float64(patternHits) / float64(len(p.cfg.ExpectedPatterns))
	}

	if len(p.cfg.KnownWords) > 0 {
		tokens := strings.Fields(upper)
		var hits int
		for _, tok := range tokens {
			for _, known := range p.cfg.KnownWords {
				if tok == known {
					hits++
					break
				}
			}
		}
		if len(tokens) > 0 {
			score += 0.3 * float64(hits) / float64(len(tokens))
		}
	}

	score += 0.2 * (1 - symbolRatio(text))

	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return score
}

// symbolRatio returns the fraction of characters outside [A-Z0-9 /.\-:].
func symbolRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	var bad int
	for _, r := range text {
		if !isAllowedRune(r) {
			bad++
		}
	}
	return float64(bad) / float64(len([]rune(text)))
}

func isAllowedRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '/' || r == '.' || r == '-' || r == ':':
		return true
	default:
		return false
	}
}

// SpaceRatio returns whitespace / length, used directly by the reranker's
// scoring formula (§4.7).
func SpaceRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	var spaces int
	for _, r := range text {
		if unicode.IsSpace(r) {
			spaces++
		}
	}
	return float64(spaces) / float64(len([]rune(text)))
}

// SymbolRatio exposes symbolRatio for the reranker.
func SymbolRatio(text string) float64 { return symbolRatio(text) }
