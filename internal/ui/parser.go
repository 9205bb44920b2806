package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ParseCSS parses a small CSS subset: rules whose selectors are .class or #id (comma lists allowed)
// and blocks of "key: value;". At-rules and other selectors are skipped. Later rules override
// earlier ones for the same selector.
func ParseCSS(content string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	p := css.NewParser(parse.NewInputString(content), false)

	var current []string // selectors of the open ruleset; nil when skipping
	var props map[string]string
	atDepth := 0
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); !errors.Is(err, io.EOF) {
				return sheet, fmt.Errorf("ui: parse css: %w", err)
			}
			return sheet, nil
		case css.BeginAtRuleGrammar:
			atDepth++
		case css.EndAtRuleGrammar:
			atDepth--
		case css.BeginRulesetGrammar:
			current, props = nil, nil
			if atDepth > 0 {
				continue
			}
			current = selectors(p.Values())
			props = make(map[string]string)
		case css.DeclarationGrammar:
			if props != nil {
				props[strings.ToLower(string(data))] = joinTokens(p.Values())
			}
		case css.EndRulesetGrammar:
			for _, sel := range current {
				sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Props: props})
			}
			current, props = nil, nil
		}
	}
}

// selectors splits the selector tokens on commas and keeps the simple .class and #id ones.
func selectors(tokens []css.Token) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		sel := strings.TrimSpace(b.String())
		b.Reset()
		if len(sel) >= 2 && (sel[0] == '.' || sel[0] == '#') && !strings.ContainsAny(sel, " >+~:[") {
			out = append(out, sel)
		}
	}
	for _, t := range tokens {
		if t.TokenType == css.CommaToken {
			flush()
			continue
		}
		b.Write(t.Data)
	}
	flush()
	return out
}

// joinTokens rebuilds a declaration value, collapsing whitespace.
func joinTokens(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			b.WriteByte(' ')
			continue
		}
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}
