package main

import (
	"errors"
	"strings"
	"unicode"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs cuts a console line into arguments. A token that starts with a
// double or single quote runs to the matching quote, so "" is an empty
// argument. Inside double quotes \" and \\ are escapes. Quotes in the middle
// of a token are literal, which keeps XPath like //a[@id='x'] usable as is.
func splitArgs(line string) ([]string, error) {
	var (
		args []string
		cur  strings.Builder
		in   bool // inside a token
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			if in {
				args = append(args, cur.String())
				cur.Reset()
				in = false
			}
		case !in && (r == '"' || r == '\''):
			in = true
			end := -1
			for j := i + 1; j < len(runes); j++ {
				c := runes[j]
				if r == '"' && c == '\\' && j+1 < len(runes) && (runes[j+1] == '"' || runes[j+1] == '\\') {
					cur.WriteRune(runes[j+1])
					j++
					continue
				}
				if c == r {
					end = j
					break
				}
				cur.WriteRune(c)
			}
			if end < 0 {
				return nil, errUnterminatedQuote
			}
			i = end
		default:
			in = true
			cur.WriteRune(r)
		}
	}
	if in {
		args = append(args, cur.String())
	}
	return args, nil
}

// quoteArg renders s so that splitArgs reads it back unchanged
func quoteArg(s string) string {
	if s != "" && !strings.ContainsFunc(s, unicode.IsSpace) && s[0] != '"' && s[0] != '\'' {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func joinArgs(args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}
	return strings.Join(quoted, " ")
}
