// Package dateparse implements the §4.9 Date Parser: scanning recognized
// text for one of a configurable subset of date formats, validating the
// year range and optionally rejecting past dates.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Format names one of the closed-set supported date formats.
type Format string

const (
	FormatDMYSlash  Format = "DD/MM/YYYY"
	FormatDMYSlash2 Format = "DD/MM/YY"
	FormatDMYDot    Format = "DD.MM.YYYY"
	FormatDMYDash   Format = "DD-MM-YYYY"
	FormatYMDDash   Format = "YYYY-MM-DD"
)

// AllFormats is the closed set, in match-priority order.
var AllFormats = []Format{FormatDMYSlash, FormatDMYSlash2, FormatDMYDot, FormatDMYDash, FormatYMDDash}

var formatPatterns = map[Format]*regexp.Regexp{
	FormatDMYSlash:  regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`),
	FormatDMYSlash2: regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{2})\b`),
	FormatDMYDot:    regexp.MustCompile(`\b(\d{2})\.(\d{2})\.(\d{4})\b`),
	FormatDMYDash:   regexp.MustCompile(`\b(\d{2})-(\d{2})-(\d{4})\b`),
	FormatYMDDash:   regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`),
}

// Canonical returns the canonical re-formatting of t using format f, the
// same layout a successful match of f would have produced.
func Canonical(t time.Time, f Format) string {
	switch f {
	case FormatDMYSlash:
		return t.Format("02/01/2006")
	case FormatDMYSlash2:
		return t.Format("02/01/06")
	case FormatDMYDot:
		return t.Format("02.01.2006")
	case FormatDMYDash:
		return t.Format("02-01-2006")
	case FormatYMDDash:
		return t.Format("2006-01-02")
	default:
		return t.Format("02/01/2006")
	}
}

// Config controls which formats are tried, the accepted year range, and
// whether dates in the past are rejected.
type Config struct {
	Formats   []Format
	MinYear   int
	MaxYear   int
	AllowPast bool
	Now       time.Time // injected "now" for AllowPast checks; zero value uses time.Now
}

// DefaultConfig tries every format, accepts any year 1900-2100, and allows
// past dates.
func DefaultConfig() Config {
	return Config{
		Formats:   AllFormats,
		MinYear:   1900,
		MaxYear:   2100,
		AllowPast: true,
	}
}

// Candidate is a single parsed date candidate.
type Candidate struct {
	DateStr          string // canonical reformat, e.g. "02/01/2026"
	Format           Format
	Time             time.Time
	MatchedSubstring string
	ParseConfidence  float64
}

// Parser is the Date Parser.
type Parser struct {
	cfg Config
}

// New builds a Parser from cfg.
func New(cfg Config) *Parser { return &Parser{cfg: cfg} }

// numericLookalike carries the same letter-to-digit entries as postprocess's
// numeric ambiguity map; duplicated here (rather than imported) to keep
// dateparse dependency-free of postprocess's dictionary/regex machinery,
// without a package cycle. Unlike postprocess, it is applied to every
// character of the text, without looking at neighbouring characters.
var numericLookalike = strings.NewReplacer(
	"O", "0", "I", "1", "l", "1", "S", "5", "B", "8", "Z", "2", "G", "6", "T", "7", "|", "1",
)

func normalizeDigits(s string) string { return numericLookalike.Replace(s) }

// Parse scans text for the most confident date candidate across all
// configured formats, returning nil if none validates.
func (p *Parser) Parse(text string) *Candidate {
	normalized := normalizeDigits(text)
	var best *Candidate
	for _, f := range p.cfg.Formats {
		re, ok := formatPatterns[f]
		if !ok {
			continue
		}
		for _, loc := range re.FindAllStringSubmatchIndex(normalized, -1) {
			matched := normalized[loc[0]:loc[1]]
			cand := p.tryParse(f, matched)
			if cand == nil {
				continue
			}
			if best == nil || cand.ParseConfidence > best.ParseConfidence {
				best = cand
			}
		}
	}
	return best
}

func (p *Parser) tryParse(f Format, matched string) *Candidate {
	day, month, year, ok := splitFields(f, matched)
	if !ok {
		return nil
	}
	if f == FormatDMYSlash2 {
		year = expandTwoDigitYear(year)
	}
	if year < p.cfg.MinYear || year > p.cfg.MaxYear {
		return nil
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return nil // e.g. Feb 30 normalized away by time.Date
	}
	if !p.cfg.AllowPast {
		now := p.cfg.Now
		if now.IsZero() {
			now = time.Now()
		}
		if t.Before(now.Truncate(24 * time.Hour)) {
			return nil
		}
	}
	canonical := Canonical(t, f)
	return &Candidate{
		DateStr:          canonical,
		Format:           f,
		Time:             t,
		MatchedSubstring: matched,
		ParseConfidence:  confidence(matched, canonical),
	}
}

func splitFields(f Format, matched string) (day, month, year int, ok bool) {
	re := formatPatterns[f]
	m := re.FindStringSubmatch(matched)
	if m == nil {
		return 0, 0, 0, false
	}
	atoi := func(s string) int { v, _ := strconv.Atoi(s); return v }
	switch f {
	case FormatYMDDash:
		return atoi(m[3]), atoi(m[2]), atoi(m[1]), true
	default:
		return atoi(m[1]), atoi(m[2]), atoi(m[3]), true
	}
}

func expandTwoDigitYear(y int) int {
	if y < 70 {
		return 2000 + y
	}
	return 1900 + y
}

// confidence is 1.0 - edit_distance/len between the matched substring and
// its canonical reformat.
func confidence(matched, canonical string) float64 {
	d := levenshtein(matched, canonical)
	l := len(matched)
	if l == 0 {
		return 0
	}
	c := 1 - float64(d)/float64(l)
	if c < 0 {
		c = 0
	}
	return c
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// String implements fmt.Stringer for log messages.
func (c Candidate) String() string {
	return fmt.Sprintf("%s (%s, confidence=%.2f)", c.DateStr, c.Format, c.ParseConfidence)
}
