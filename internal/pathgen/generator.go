// Package pathgen turns display names into URL path segments.
package pathgen

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule names accepted by New
const (
	RuleSimplified      = "simplified"
	RuleLowercase       = "lowercase"
	RuleStripDiacritics = "strip_diacritics"
)

// DefaultRules is the chain used when no rules are configured
var DefaultRules = []string{RuleSimplified}

// simplified maps the characters the alias engine always rewrites.
// Everything else passes through unchanged.
var simplified = map[rune]rune{
	' ': '-',
	'²': '2',
	'³': '3',
}

// Generator rewrites names into path segments through a chain of transformers
type Generator struct {
	rules []string
	build func() transform.Transformer
}

// New builds a Generator from named rules, applied in order
func New(rules ...string) (*Generator, error) {
	if len(rules) == 0 {
		rules = DefaultRules
	}

	factories := make([]func() transform.Transformer, 0, len(rules))
	for _, name := range rules {
		f, err := ruleFactory(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		factories = append(factories, f)
	}

	return &Generator{
		rules: rules,
		build: func() transform.Transformer {
			ts := make([]transform.Transformer, len(factories))
			for i, f := range factories {
				ts[i] = f()
			}
			return transform.Chain(ts...)
		},
	}, nil
}

// Default returns the simplified generator
func Default() *Generator {
	g, _ := New(DefaultRules...)
	return g
}

// Rules returns the rule names in application order
func (g *Generator) Rules() []string {
	return append([]string(nil), g.rules...)
}

// Generate returns the path segment for name. If the rule chain fails on
// the input, name is returned unchanged and no error is reported.
func (g *Generator) Generate(name string) string {
	// transformers are stateful, build a fresh chain per call
	out, _, err := transform.String(g.build(), name)
	if err != nil {
		return name
	}
	return out
}

func ruleFactory(name string) (func() transform.Transformer, error) {
	switch name {
	case RuleSimplified:
		return func() transform.Transformer {
			return runes.Map(func(r rune) rune {
				if m, ok := simplified[r]; ok {
					return m
				}
				return r
			})
		}, nil
	case RuleLowercase:
		return func() transform.Transformer {
			return cases.Lower(language.Und)
		}, nil
	case RuleStripDiacritics:
		return func() transform.Transformer {
			return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		}, nil
	default:
		return nil, fmt.Errorf("unknown path rule %q", name)
	}
}
