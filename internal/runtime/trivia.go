package runtime

import (
	"strings"

	"github.com/aretw0/heartsquest/pkg/content"
)

// Normalize lowercases s, drops every character that is not a lowercase
// ASCII letter, a digit or a space, and trims the result. Normalize is
// idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), " ")
}

// Match reports whether a normalized answer satisfies the rule.
func Match(rule *content.Rule, normalized string) bool {
	if rule == nil {
		return false
	}
	switch rule.Type {
	case content.RuleExact:
		return len(rule.Values) == 1 && normalized == rule.Values[0]
	case content.RuleContains:
		return len(rule.Values) == 1 && strings.Contains(normalized, rule.Values[0])
	case content.RuleAny:
		for _, v := range rule.Values {
			if strings.Contains(normalized, v) {
				return true
			}
		}
	}
	return false
}
