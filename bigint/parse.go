package bigint

import (
	"fmt"
	"math/big"
	"strings"

	"intbridge/errors"
)

// ParseResult is the outcome of ParseWithBase. Consumed is the byte offset
// just past the last digit of the numeral; Remainder is the unparsed tail.
type ParseResult struct {
	Value     Int
	Consumed  int
	Remainder string
}

// Complete reports whether nothing but ASCII whitespace follows the numeral.
func (r ParseResult) Complete() bool {
	return skipSpace(r.Remainder, 0) == len(r.Remainder)
}

// ParseWithBase parses the integer numeral at the start of text.
//
// Leading ASCII whitespace, a sign and a 0x/0o/0b prefix (when base is 0 or
// matches the prefix) are skipped. Digits are read until the first byte that
// is not a digit of the base; single underscores between digits are
// allowed. Base 0 selects the base from the prefix and defaults to 10, in
// which case a nonzero numeral may not start with 0.
//
// Parsing fails only when no digit is found or the base is invalid; trailing
// text is left in the result for the caller to judge.
func ParseWithBase(text string, base int) (ParseResult, error) {
	if base != 0 && (base < 2 || base > 36) {
		return ParseResult{}, errors.NewValueError(errors.CodeInvalidBase,
			"int() base must be >= 2 and <= 36, or 0",
			errors.WithContextOption("base", base))
	}
	requested := base

	i := skipSpace(text, 0)
	negative := false
	if i < len(text) && (text[i] == '+' || text[i] == '-') {
		negative = text[i] == '-'
		i++
	}

	if i+1 < len(text) && text[i] == '0' {
		if pb := prefixBase(text[i+1]); pb != 0 && (base == 0 || base == pb) {
			j := i + 2
			if j < len(text) && text[j] == '_' {
				j++
			}
			if j >= len(text) || digitValue(text[j]) >= pb {
				return ParseResult{}, invalidLiteral(text, requested)
			}
			i, base = j, pb
		}
	}

	autoDecimal := false
	if base == 0 {
		base, autoDecimal = 10, true
	}

	start := i
	end := i
	var digits strings.Builder
	for i < len(text) {
		c := text[i]
		if digitValue(c) < base {
			digits.WriteByte(c)
			i++
			end = i
			continue
		}
		if c == '_' && i > start && i+1 < len(text) && digitValue(text[i+1]) < base {
			i++
			continue
		}
		break
	}

	numeral := digits.String()
	if numeral == "" {
		return ParseResult{}, invalidLiteral(text, requested)
	}
	if autoDecimal && numeral[0] == '0' && strings.Trim(numeral, "0") != "" {
		return ParseResult{}, invalidLiteral(text, requested)
	}

	value, ok := new(big.Int).SetString(numeral, base)
	if !ok {
		return ParseResult{}, invalidLiteral(text, requested)
	}
	if negative {
		value.Neg(value)
	}

	return ParseResult{
		Value:     fromOwned(value),
		Consumed:  end,
		Remainder: text[end:],
	}, nil
}

// ParseFull parses text as a whole: only ASCII whitespace may surround the
// numeral.
func ParseFull(text string, base int) (Int, error) {
	result, err := ParseWithBase(text, base)
	if err != nil {
		return Int{}, err
	}
	if !result.Complete() {
		return Int{}, invalidLiteral(text, base)
	}
	return result.Value, nil
}

// MustParse is ParseFull with base 0 that panics on error. It is meant for
// constants and tests.
func MustParse(text string) Int {
	x, err := ParseFull(text, 0)
	if err != nil {
		panic(err)
	}
	return x
}

func invalidLiteral(text string, base int) error {
	return errors.NewValueError(errors.CodeInvalidLiteral,
		fmt.Sprintf("invalid literal for int() with base %d: '%s'", base, text),
		errors.WithContextOption("base", base))
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func prefixBase(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

// digitValue returns the value of c as a digit, or 99 for non-digits.
func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return 99
}
