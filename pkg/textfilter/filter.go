package textfilter

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// suspiciousPatterns are markers of markup or script injection that must not
// appear in short control replies from the model. Matches reports them in
// this order.
var suspiciousPatterns = []struct {
	name    string
	pattern string
}{
	{"script_tag", `<script`},
	{"js_scheme", `javascript:`},
	{"dom_handler", `on\w+=`},
	{"eval_call", `eval\(`},
}

type namedRegex struct {
	name string
	re   *regexp.Regexp
}

// InjectionFilter detects injection-indicative fragments in model output
type InjectionFilter struct {
	regexes []namedRegex
}

// NewInjectionFilter creates a new injection filter
func NewInjectionFilter() *InjectionFilter {
	f := &InjectionFilter{
		regexes: make([]namedRegex, 0, len(suspiciousPatterns)),
	}

	for _, p := range suspiciousPatterns {
		f.regexes = append(f.regexes, namedRegex{name: p.name, re: regexp.MustCompile(`(?i)` + p.pattern)})
	}

	return f
}

// ContainsSuspicious reports whether text matches any suspicious pattern.
// Text is normalized first so full-width variants are caught too.
func (f *InjectionFilter) ContainsSuspicious(text string) bool {
	return len(f.Matches(text)) > 0
}

// Matches returns the names of the patterns found in text, for logging.
func (f *InjectionFilter) Matches(text string) []string {
	normalized := Normalize(text)
	var names []string
	for _, r := range f.regexes {
		if r.re.MatchString(normalized) {
			names = append(names, r.name)
		}
	}
	return names
}

var folder = cases.Fold()

// Normalize trims text, folds full-width ASCII to its narrow form and applies
// Unicode case folding, so "＃＃ｄｏｎｅ＃＃" and "##DONE##" compare equal.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	text = width.Fold.String(text)
	return folder.String(text)
}
