package mapping

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule binds a set of alternative patterns to one value. The alternatives
// are compiled into a single expression, so a rule matches when any of its
// patterns does.
type Rule[T any] struct {
	Patterns []string
	Value    T
}

// RegexList is an ordered list of (pattern, value) rules with
// first-match-wins lookup. Patterns are anchored at the start of the key:
// "Transfer" matches "Transfer to savings" but not "Wire Transfer".
type RegexList[T any] struct {
	rules []compiledRule[T]
}

type compiledRule[T any] struct {
	re    *regexp.Regexp
	value T
}

// Compile builds a RegexList from rules, preserving their order. Rules with
// no patterns are skipped.
func Compile[T any](rules []Rule[T]) (*RegexList[T], error) {
	l := &RegexList[T]{}
	for _, r := range rules {
		if len(r.Patterns) == 0 {
			continue
		}
		expr := "^(?:" + strings.Join(r.Patterns, "|") + ")"
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", expr, err)
		}
		l.rules = append(l.rules, compiledRule[T]{re: re, value: r.Value})
	}
	return l, nil
}

// Lookup returns the value of the earliest rule whose pattern matches key
// and whose value satisfies cond. A nil cond accepts every value. A nil or
// empty list never matches.
func (l *RegexList[T]) Lookup(key string, cond func(T) bool) (T, bool) {
	if l != nil {
		for _, r := range l.rules {
			if r.re.MatchString(key) && (cond == nil || cond(r.value)) {
				return r.value, true
			}
		}
	}
	var zero T
	return zero, false
}

// Get returns the value of the earliest matching rule, or def.
func (l *RegexList[T]) Get(key string, def T) T {
	if v, ok := l.Lookup(key, nil); ok {
		return v
	}
	return def
}
