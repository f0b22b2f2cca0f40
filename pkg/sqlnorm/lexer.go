package sqlnorm

import "fmt"

// Lexer tokenizes Snowflake SQL input. Comments and whitespace are skipped.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

var twoCharSymbols = map[string]Kind{
	"||": Operator,
	"!=": Operator,
	"<>": Operator,
	"<=": Operator,
	">=": Operator,
	"=>": Operator,
	"->": Operator,
	"::": Punct,
}

var oneCharSymbols = map[byte]Kind{
	'+': Operator,
	'-': Operator,
	'*': Operator,
	'/': Operator,
	'%': Operator,
	'=': Operator,
	'<': Operator,
	'>': Operator,
	'~': Operator,
	'^': Operator,
	'&': Operator,
	'|': Operator,
	'@': Operator,
	'.': Punct,
	',': Punct,
	'(': Punct,
	')': Punct,
	'[': Punct,
	']': Punct,
	'{': Punct,
	'}': Punct,
	':': Punct,
	';': Punct,
}

// NextToken returns the next token. At end of input it returns a token of
// kind EOF.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	pos := l.currentPos()
	if l.atEOF() {
		return Token{Kind: EOF, Pos: pos, End: l.pos}, nil
	}

	switch {
	case l.ch == '\'':
		if err := l.readString(pos); err != nil {
			return Token{}, err
		}
		return l.tokenFrom(String, pos), nil
	case l.ch == '"':
		if err := l.readQuotedIdentifier(pos); err != nil {
			return Token{}, err
		}
		return l.tokenFrom(QuotedIdent, pos), nil
	case l.ch == '$' && l.peekChar() == '$':
		if err := l.readDollarString(pos); err != nil {
			return Token{}, err
		}
		return l.tokenFrom(String, pos), nil
	case l.ch == '$' && isDigit(l.peekChar()):
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		return l.tokenFrom(Variable, pos), nil
	case l.ch == '?':
		l.readChar()
		return l.tokenFrom(Variable, pos), nil
	case isLetter(l.ch) || l.ch == '_':
		l.readIdentifier()
		return l.tokenFrom(Word, pos), nil
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		l.readNumber()
		return l.tokenFrom(Number, pos), nil
	}

	if l.readPos < len(l.input) {
		if kind, ok := twoCharSymbols[l.input[l.pos:l.readPos+1]]; ok {
			l.readChar()
			l.readChar()
			return l.tokenFrom(kind, pos), nil
		}
	}
	if kind, ok := oneCharSymbols[l.ch]; ok {
		l.readChar()
		return l.tokenFrom(kind, pos), nil
	}

	return Token{}, &LexError{Pos: pos, Message: fmt.Sprintf(errIllegalChar, l.ch)}
}

// tokenFrom builds a token spanning from start to the current position.
func (l *Lexer) tokenFrom(kind Kind, start Position) Token {
	return Token{
		Kind: kind,
		Text: l.input[start.Offset:l.pos],
		Pos:  start,
		End:  l.pos,
	}
}

// skipWhitespaceAndComments skips whitespace and -- // /* */ comments.
func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		for {
			if l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
				l.readChar()
				continue
			}
			if l.atNoBreakSpace() {
				l.readChar()
				l.readChar()
				continue
			}
			break
		}

		if (l.ch == '-' && l.peekChar() == '-') || (l.ch == '/' && l.peekChar() == '/') {
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			if err := l.skipBlockComment(); err != nil {
				return err
			}
			continue
		}

		return nil
	}
}

// skipBlockComment skips a /* */ comment. Snowflake does not nest them.
func (l *Lexer) skipBlockComment() error {
	start := l.currentPos()
	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return nil
		}
		l.readChar()
	}
	return &LexError{Pos: start, Message: errUnterminatedComment}
}

// readString reads a single-quoted string literal. Both doubled quotes and
// backslash escapes are accepted.
func (l *Lexer) readString(start Position) error {
	l.readChar() // skip opening quote

	for !l.atEOF() {
		switch {
		case l.ch == '\\' && l.readPos < len(l.input):
			l.readChar()
			l.readChar()
		case l.ch == '\'' && l.peekChar() == '\'':
			l.readChar()
			l.readChar()
		case l.ch == '\'':
			l.readChar() // skip closing quote
			return nil
		default:
			l.readChar()
		}
	}
	return &LexError{Pos: start, Message: errUnterminatedString}
}

// readDollarString reads a $$...$$ string literal.
func (l *Lexer) readDollarString(start Position) error {
	l.readChar()
	l.readChar()

	for !l.atEOF() {
		if l.ch == '$' && l.peekChar() == '$' {
			l.readChar()
			l.readChar()
			return nil
		}
		l.readChar()
	}
	return &LexError{Pos: start, Message: errUnterminatedString}
}

// readQuotedIdentifier reads a double-quoted identifier.
// Doubled double quotes are an escape: "col""name".
func (l *Lexer) readQuotedIdentifier(start Position) error {
	l.readChar() // skip opening quote

	for !l.atEOF() {
		if l.ch == '"' {
			if l.peekChar() == '"' {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			return nil
		}
		l.readChar()
	}
	return &LexError{Pos: start, Message: errUnterminatedQuoted}
}

// readIdentifier reads an unquoted identifier or keyword.
func (l *Lexer) readIdentifier() {
	for (isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$') && !l.atNoBreakSpace() {
		l.readChar()
	}
}

// atNoBreakSpace reports whether the lexer is at U+00A0, encoded C2 A0.
func (l *Lexer) atNoBreakSpace() bool {
	return l.ch == 0xC2 && l.peekChar() == 0xA0
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() {
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
}

// isLetter treats every non-ASCII byte as a letter so multi-byte UTF-8
// identifiers stay in one token.
func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch >= 0x80
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize returns all tokens of input, excluding the trailing EOF token.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}
