// Package asmtoken is the (test-only) script-text parser collaborator
// spec.md §6 describes: it turns script source into a token.Stream plus
// the `bsst-assume($ident): ...` directive table, exercising the grammar
// scenarios_test.go drives the engine with.
package asmtoken

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgpv/bsst-go/symval"
	"github.com/dgpv/bsst-go/token"
)

// Result bundles the parser's full output: the token stream plus any
// bsst-assume directives keyed by the placeholder identifier they target.
type Result struct {
	Stream    token.Stream
	Assumes   map[string]*symval.AssumeDirective
}

// Parse tokenizes src per spec.md §6's grammar.
func Parse(src string, minimalDataStrict bool) (*Result, error) {
	res := &Result{Assumes: map[string]*symval.AssumeDirective{}}
	res.Stream.DataReferences = map[int]string{}

	lineNo := 1
	runes := []rune(src)
	i := 0
	n := len(runes)

	lastRef := -1

	for i < n {
		c := runes[i]
		switch {
		case c == '\n':
			lineNo++
			i++
			continue
		case c == ' ' || c == '\t' || c == '\r':
			i++
			continue
		case c == '/' && i+1 < n && runes[i+1] == '/':
			start := i + 2
			j := start
			for j < n && runes[j] != '\n' {
				j++
			}
			comment := strings.TrimSpace(string(runes[start:j]))
			if err := handleComment(res, comment, lastRef, lineNo); err != nil {
				return nil, err
			}
			i = j
			continue
		}

		start := i
		for i < n && !isSpace(runes[i]) && !(runes[i] == '/' && i+1 < n && runes[i+1] == '/') {
			i++
		}
		word := string(runes[start:i])
		if word == "" {
			continue
		}

		tok, err := parseWord(word, lineNo, minimalDataStrict)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		res.Stream.Tokens = append(res.Stream.Tokens, tok)
		lastRef = len(res.Stream.Tokens) - 1
	}

	return res, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// handleComment attaches a trailing `=>name` to the most recently emitted
// token, or parses a `bsst-assume($ident): ...` directive.
func handleComment(res *Result, comment string, lastRef int, lineNo int) error {
	if strings.HasPrefix(comment, "=>") {
		name := strings.TrimSpace(comment[2:])
		if lastRef >= 0 && name != "" {
			res.Stream.DataReferences[lastRef] = name
		}
		return nil
	}
	if strings.HasPrefix(comment, "bsst-assume(") {
		rest := comment[len("bsst-assume("):]
		close := strings.Index(rest, ")")
		if close < 0 {
			return fmt.Errorf("unterminated bsst-assume directive")
		}
		ident := strings.TrimSpace(rest[:close])
		ident = strings.TrimPrefix(ident, "$")
		tail := rest[close+1:]
		colon := strings.Index(tail, ":")
		if colon < 0 {
			return fmt.Errorf("bsst-assume directive missing ':'")
		}
		d, err := symval.ParseAssumeDirective(strings.TrimSpace(tail[colon+1:]))
		if err != nil {
			return fmt.Errorf("bsst-assume($%s): %w", ident, err)
		}
		res.Assumes[ident] = d
		return nil
	}
	return nil
}

func parseWord(word string, lineNo int, minimalDataStrict bool) (token.Token, error) {
	inner := strings.TrimPrefix(strings.TrimSuffix(word, ">"), "<")
	if inner != word {
		word = inner
	}

	switch {
	case strings.HasPrefix(word, "$"):
		return token.Token{Kind: token.ScriptData, Data: token.Placeholder, Placeholder: word[1:], Line: lineNo}, nil

	case strings.HasPrefix(word, "'") && strings.HasSuffix(word, "'") && len(word) >= 2:
		b := []byte(word[1 : len(word)-1])
		return token.Token{Kind: token.ScriptData, Data: token.ByteString, Bytes: b, NonMinimal: minimalDataStrict && hasSmallIntOpcode(b), Line: lineNo}, nil

	case strings.HasPrefix(word, "x('") && strings.HasSuffix(word, "')"):
		hex := word[3 : len(word)-2]
		b, err := decodeHex(hex)
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Kind: token.ScriptData, Data: token.RawHex, Bytes: b, NonMinimal: minimalDataStrict && hasSmallIntOpcode(b), Line: lineNo}, nil

	case strings.HasPrefix(word, "0x"):
		b, err := decodeHex(word[2:])
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Kind: token.ScriptData, Data: token.RawHex, Bytes: b, NonMinimal: minimalDataStrict && hasSmallIntOpcode(b), Line: lineNo}, nil

	case strings.HasPrefix(word, "le64("):
		inner := strings.TrimSuffix(strings.TrimPrefix(word, "le64("), ")")
		v, err := strconv.ParseInt(inner, 10, 64)
		if err != nil {
			return token.Token{}, fmt.Errorf("bad le64 literal %q: %w", word, err)
		}
		return token.Token{Kind: token.ScriptData, Data: token.LE64Literal, IntValue: v, Line: lineNo}, nil

	case isDecimalInteger(word):
		v, err := strconv.ParseInt(word, 10, 64)
		if err != nil {
			return token.Token{}, fmt.Errorf("integer literal %q out of range: %w", word, err)
		}
		return token.Token{Kind: token.ScriptData, Data: token.Integer, IntValue: v, Line: lineNo}, nil
	}

	op := strings.ToUpper(word)
	op = strings.TrimPrefix(op, "OP_")
	return token.Token{Kind: token.OpCode, Op: op, Line: lineNo}, nil
}

// hasSmallIntOpcode reports whether b is a value with a dedicated
// single-byte opcode (empty for OP_0, 0x01..0x10 for OP_1..OP_16, 0x81 for
// OP_1NEGATE): pushing such a value as raw data is non-minimal. Decimal
// literals stand for those opcodes and are never flagged.
func hasSmallIntOpcode(b []byte) bool {
	switch len(b) {
	case 0:
		return true
	case 1:
		return (b[0] >= 0x01 && b[0] <= 0x10) || b[0] == 0x81
	}
	return false
}

func isDecimalInteger(word string) bool {
	w := word
	if strings.HasPrefix(w, "-") {
		w = w[1:]
	}
	if w == "" {
		return false
	}
	if len(w) > 1 && w[0] == '0' {
		return false
	}
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func decodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string %q", s)
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, err := hexNibble(s[2*i])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[2*i+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("invalid hex digit %q", c)
}
