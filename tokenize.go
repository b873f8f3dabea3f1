package folio

import "strings"

// Tokenize splits a command line into tokens.
//
// Tokens are separated by spaces, except inside brackets: a '[' opens a bracketed
// literal when it starts the line or follows a space or '=', and a ']' closes it
// when followed by a space or the end of line. The bracket content is kept
// verbatim (spaces included) and the brackets are dropped, so that
//
//	Note=[multi word note]
//
// yields the single token "Note=multi word note". Unbalanced brackets are not an
// error, the rest of the line is then part of the last token.
func Tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	bracket := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case bracket:
			if c == ']' && (i+1 == len(line) || line[i+1] == ' ') {
				bracket = false
				continue
			}
			cur.WriteByte(c)
		case c == '[' && (i == 0 || line[i-1] == ' ' || line[i-1] == '='):
			bracket = true
		case c == ' ':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens
}

// splitToken splits a "Name=value" token.
func splitToken(tok string) (name, value string, ok bool) {
	return strings.Cut(tok, "=")
}
