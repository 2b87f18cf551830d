package pathgen

import (
	"errors"
	"testing"

	"golang.org/x/text/transform"
)

func TestGenerateDefault(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "Products", "Products"},
		{"single space", "Contact Us", "Contact-Us"},
		{"several spaces", "A  B C", "A--B-C"},
		{"superscript two", "Café²", "Café2"},
		{"superscript three", "m³ pricing", "m3-pricing"},
		{"unknown characters pass through", "Über/Straße?", "Über/Straße?"},
		{"mixed", "Area ² and ³", "Area-2-and-3"},
	}

	g := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := g.Generate(tt.input)
			if result != tt.expected {
				t.Errorf("Generate(%q) = %q; want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGenerateChains(t *testing.T) {
	tests := []struct {
		name     string
		rules    []string
		input    string
		expected string
	}{
		{"lowercase", []string{RuleSimplified, RuleLowercase}, "Contact Us", "contact-us"},
		{"strip diacritics", []string{RuleSimplified, RuleStripDiacritics}, "Café Crème", "Cafe-Creme"},
		{"all rules", []string{RuleSimplified, RuleStripDiacritics, RuleLowercase}, "Élan Vital²", "elan-vital2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.rules...)
			if err != nil {
				t.Fatalf("New(%v) failed: %v", tt.rules, err)
			}
			result := g.Generate(tt.input)
			if result != tt.expected {
				t.Errorf("Generate(%q) = %q; want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewUnknownRule(t *testing.T) {
	if _, err := New("simplified", "rot13"); err == nil {
		t.Error("Expected error for unknown rule")
	}
}

func TestGenerateIsRepeatable(t *testing.T) {
	g := Default()
	for i := 0; i < 3; i++ {
		if got := g.Generate("Café² Bar"); got != "Café2-Bar" {
			t.Fatalf("call %d: got %q", i, got)
		}
	}
}

type failingTransformer struct{ transform.NopResetter }

func (failingTransformer) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	return 0, 0, errors.New("broken rule")
}

func TestGenerateFallsBackOnTransformError(t *testing.T) {
	g := &Generator{build: func() transform.Transformer { return failingTransformer{} }}
	if got := g.Generate("Contact Us"); got != "Contact Us" {
		t.Errorf("got %q, want name unchanged", got)
	}
}
