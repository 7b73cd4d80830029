// Package extract provides regex-based field extraction from configuration,
// unit, and environment file text. All functions are pure: no I/O, no side
// effects, and no failure modes beyond "not present".
package extract

import (
	"regexp"
	"strings"
)

var (
	proxyTargetPattern = regexp.MustCompile(`proxy_pass\s+https?://((?:\d{1,3}\.){3}\d{1,3}):(\d{1,5})`)

	// Port patterns tried in fixed order, first match wins: an environment
	// directive, a bind-address form, and a command-line flag form.
	portPatterns = []*regexp.Regexp{
		regexp.MustCompile(`PORT=(\d+)`),
		regexp.MustCompile(`(?:\d{1,3}\.){3}\d{1,3}:(\d+)`),
		regexp.MustCompile(`--port[=\s]+(\d+)`),
	}
)

// DirectiveValue returns the trimmed right-hand side of the first
// line-anchored NAME=value directive in text. ok is false when no line
// carries the directive.
func DirectiveValue(text, name string) (value string, ok bool) {
	re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(name) + `=(.*)$`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// DirectiveTokens collects the whitespace-separated tokens following every
// occurrence of a directive keyword up to the terminator character,
// de-duplicated in first-seen order.
func DirectiveTokens(text, keyword string, terminator rune) []string {
	term := regexp.QuoteMeta(string(terminator))
	re := regexp.MustCompile(regexp.QuoteMeta(keyword) + `\s+([^` + term + `]+)` + term)

	var tokens []string
	seen := make(map[string]struct{})
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		for _, tok := range strings.Fields(m[1]) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// ProxyTarget returns the IP and port of the first proxy-target directive in
// text, matched by a fixed dotted-quad + colon-digits pattern.
func ProxyTarget(text string) (ip, port string, ok bool) {
	m := proxyTargetPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Port returns the digit run captured by the first matching port pattern.
// The caller owns length validation; absence of any match is not an error.
func Port(text string) (digits string, ok bool) {
	for _, re := range portPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}
