// Package clantag validates clan tags. A tag is a short string of ascii
// letters and digits annotated with in-game color codes of the form "^" plus
// exactly three digits, e.g. "^900AB^009CD".
package clantag

import (
	"errors"
	"regexp"
	"strings"
)

const (
	maxColors  = 4
	maxLetters = 4
)

var (
	ErrBadCharacter  = errors.New("only ascii letters, numbers and '^' allowed")
	ErrBadColorCode  = errors.New("'^' must always be followed by exactly three numbers")
	ErrTooManyColors = errors.New("clan tags can contain at most 4 colors")
	ErrTooLong       = errors.New("clan tags can contain at most 4 letters")
)

var colorCode = regexp.MustCompile(`\^[0-9]{3}`)

// Validate checks tag against the tag rules and returns the trimmed tag.
func Validate(tag string) (string, error) {
	tag = strings.TrimSpace(tag)

	for _, r := range tag {
		if !isTagRune(r) {
			return "", ErrBadCharacter
		}
	}

	for i := 0; i < len(tag); i++ {
		if tag[i] != '^' {
			continue
		}
		if i+3 >= len(tag) || !isDigits(tag[i+1:i+4]) {
			return "", ErrBadColorCode
		}
	}

	if strings.Count(tag, "^") > maxColors {
		return "", ErrTooManyColors
	}
	if len(colorCode.ReplaceAllString(tag, "")) > maxLetters {
		return "", ErrTooLong
	}
	return tag, nil
}

func isTagRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '^':
		return true
	}
	return false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
