// Package tokens implements literal placeholder substitution for the
// {{{name}}} token syntax used by page templates and emitted assets.
package tokens

import (
	"regexp"
	"strings"
)

// Reserved token names resolved from run state rather than from page rules.
const (
	BasePath          = "CDN_BASEPATH"
	CacheBust         = "NO_CACHE_VAR"
	SiteTitle         = "site_title"
	BaseURLProduction = "baseUrlProduction"
)

const (
	tokenOpen  = "{{{"
	tokenClose = "}}}"
)

// leftoverToken matches any run of three or more opening braces, a body
// without braces, and three or more closing braces.
var leftoverToken = regexp.MustCompile(`\{{3,}[^{}]+\}{3,}`)

// Rule is one ordered find/replace pair. Find is the literal text to match,
// usually a wrapped token.
type Rule struct {
	Find    string
	Replace string
}

// Wrap returns the placeholder form of name.
func Wrap(name string) string {
	return tokenOpen + name + tokenClose
}

// Substitute replaces every non-overlapping occurrence of token in text with
// value in a single left-to-right pass. Inserted values are never rescanned.
// An empty token or an empty value leaves text unchanged.
func Substitute(text, token, value string) string {
	if token == "" || value == "" {
		return text
	}
	return strings.ReplaceAll(text, token, value)
}

// Apply runs rules in order, each as one Substitute pass.
func Apply(text string, rules []Rule) string {
	for _, r := range rules {
		text = Substitute(text, r.Find, r.Replace)
	}
	return text
}

// Strip removes every remaining triple-brace token.
func Strip(text string) string {
	return leftoverToken.ReplaceAllString(text, "")
}

// Contains reports whether text still holds a triple-brace token.
func Contains(text string) bool {
	return leftoverToken.MatchString(text)
}

// Reserved builds the rules for the reserved tokens. Empty values produce
// no-op rules.
func Reserved(basePath, cacheBust, baseURLProduction string) []Rule {
	return []Rule{
		{Find: Wrap(BaseURLProduction), Replace: baseURLProduction},
		{Find: Wrap(BasePath), Replace: basePath},
		{Find: Wrap(CacheBust), Replace: cacheBust},
	}
}
