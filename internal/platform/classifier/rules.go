// internal/platform/classifier/rules.go
package classifier

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternRule pairs an identifier (site key or pipeline kind) with a filename pattern.
// The pattern is anchored at the start of the filename only, so `buoy\..*` matches
// "buoy.z05.zip" but not "old.buoy.z05.zip", while trailing text is allowed.
type PatternRule struct {
	Key     string `yaml:"key"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// NewRule compiles a rule. Empty keys and invalid patterns are rejected.
func NewRule(key, pattern string) (PatternRule, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return PatternRule{}, fmt.Errorf("rule key cannot be empty")
	}
	if pattern == "" {
		return PatternRule{}, fmt.Errorf("rule %s: pattern cannot be empty", key)
	}
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return PatternRule{}, fmt.Errorf("rule %s: invalid pattern %q: %w", key, pattern, err)
	}
	return PatternRule{Key: key, Pattern: pattern, re: re}, nil
}

// MustRule is like NewRule but panics on error. Used for built-in rule tables.
func MustRule(key, pattern string) PatternRule {
	r, err := NewRule(key, pattern)
	if err != nil {
		panic(err)
	}
	return r
}

// Match reports whether the rule applies to filename.
func (r PatternRule) Match(filename string) bool {
	if r.re == nil {
		return false
	}
	return r.re.MatchString(filename)
}

// RuleSet is an ordered list of rules evaluated first-match.
// An earlier rule shadows a later one matching the same filename.
type RuleSet struct {
	rules []PatternRule
}

// NewRuleSet validates and orders rules. Duplicate keys are rejected because a
// second rule with the same key could never be selected.
func NewRuleSet(rules ...PatternRule) (RuleSet, error) {
	seen := make(map[string]struct{}, len(rules))
	out := make([]PatternRule, 0, len(rules))
	for _, r := range rules {
		if r.re == nil {
			compiled, err := NewRule(r.Key, r.Pattern)
			if err != nil {
				return RuleSet{}, err
			}
			r = compiled
		}
		if _, dup := seen[r.Key]; dup {
			return RuleSet{}, fmt.Errorf("duplicate rule key %s", r.Key)
		}
		seen[r.Key] = struct{}{}
		out = append(out, r)
	}
	return RuleSet{rules: out}, nil
}

// First returns the key of the first matching rule.
func (s RuleSet) First(filename string) (string, bool) {
	for _, r := range s.rules {
		if r.Match(filename) {
			return r.Key, true
		}
	}
	return "", false
}

// All returns the keys of every matching rule, in rule order.
func (s RuleSet) All(filename string) []string {
	var keys []string
	for _, r := range s.rules {
		if r.Match(filename) {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// Rules returns a copy of the ordered rules.
func (s RuleSet) Rules() []PatternRule {
	return append([]PatternRule(nil), s.rules...)
}

// Len returns the number of rules.
func (s RuleSet) Len() int {
	return len(s.rules)
}
