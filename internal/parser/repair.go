package parser

import "regexp"

// Pass is a single best-effort rewrite of near-JSON model output. Passes are
// lossy and regex based; each one is kept separate so a bad rewrite can be
// traced to the pass that made it.
type Pass struct {
	Name  string
	Apply func(string) string
}

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)\s*:`)
	singleQuotedRe  = regexp.MustCompile(`:\s*'([^']*)'`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Repairs are applied in this order.
var Repairs = []Pass{
	{Name: "trailing-commas", Apply: RemoveTrailingCommas},
	{Name: "bare-keys", Apply: QuoteBareKeys},
	{Name: "single-quotes", Apply: DoubleQuoteValues},
	{Name: "whitespace", Apply: CollapseWhitespace},
}

// RemoveTrailingCommas drops a comma directly before a closing brace or bracket.
func RemoveTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// QuoteBareKeys wraps unquoted object keys in double quotes.
func QuoteBareKeys(s string) string {
	return bareKeyRe.ReplaceAllString(s, `$1"$2":`)
}

// DoubleQuoteValues converts single-quoted string values to double-quoted ones.
func DoubleQuoteValues(s string) string {
	return singleQuotedRe.ReplaceAllString(s, `: "$1"`)
}

// CollapseWhitespace turns newlines and runs of whitespace into single spaces,
// which also removes raw newlines that would be illegal inside JSON strings.
func CollapseWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(s, " ")
}

// Repair applies every pass in order.
func Repair(s string) string {
	for _, p := range Repairs {
		s = p.Apply(s)
	}
	return s
}
