package bal

import (
	"strings"
	"unicode"
)

// TokenKind identifies a lexical token class.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenString
	TokenNumber
	TokenLBrace
	TokenRBrace
	TokenColon
	TokenComma
)

// Token is one lexical token with its source position (1-based).
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Col  int
}

// Tokenize splits BAL source into tokens. It is the lexer half of the
// external-grammar contract; Parse consumes its output. Malformed input
// (an unterminated string, a stray character) returns a *SyntaxError.
func Tokenize(text string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 1

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]

		switch {
		case r == '\n':
			line++
			col = 1
			i++
			continue
		case unicode.IsSpace(r):
			i++
			col++
			continue
		case r == '#':
			// Comment runs to end of line.
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			continue
		case r == '{':
			tokens = append(tokens, Token{TokenLBrace, "{", line, col})
			i++
			col++
		case r == '}':
			tokens = append(tokens, Token{TokenRBrace, "}", line, col})
			i++
			col++
		case r == ':':
			tokens = append(tokens, Token{TokenColon, ":", line, col})
			i++
			col++
		case r == ',':
			tokens = append(tokens, Token{TokenComma, ",", line, col})
			i++
			col++
		case r == '"':
			startLine, startCol := line, col
			var sb strings.Builder
			i++
			col++
			closed := false
			for i < len(runes) {
				c := runes[i]
				if c == '\\' && i+1 < len(runes) {
					next := runes[i+1]
					switch next {
					case 'n':
						sb.WriteRune('\n')
					case '"':
						sb.WriteRune('"')
					case '\\':
						sb.WriteRune('\\')
					default:
						sb.WriteRune('\\')
						sb.WriteRune(next)
					}
					i += 2
					col += 2
					continue
				}
				if c == '"' {
					closed = true
					i++
					col++
					break
				}
				if c == '\n' {
					line++
					col = 1
				} else {
					col++
				}
				sb.WriteRune(c)
				i++
			}
			if !closed {
				return nil, syntaxErrorf(startLine, startCol, "unterminated string")
			}
			tokens = append(tokens, Token{TokenString, sb.String(), startLine, startCol})
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			startCol := col
			start := i
			i++
			col++
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
				col++
			}
			tokens = append(tokens, Token{TokenNumber, string(runes[start:i]), line, startCol})
		case unicode.IsLetter(r) || r == '_':
			startCol := col
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_' || runes[i] == '-') {
				i++
				col++
			}
			tokens = append(tokens, Token{TokenIdent, string(runes[start:i]), line, startCol})
		default:
			return nil, syntaxErrorf(line, col, "unexpected character %q", string(r))
		}
	}

	tokens = append(tokens, Token{TokenEOF, "", line, col})
	return tokens, nil
}
