package syntax

// Parse tokenizes and parses a line. An empty or comment-only line yields a
// nil Node and nil error. On failure no partial tree is returned.
func Parse(line string) (Node, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses a token sequence terminated by TokenEOF.
//
// Grammar, lowest precedence first:
//
//	list      := logical ( ('&' | ';') [logical] )*
//	logical   := pipeline ( ('&&' | '||') pipeline )*
//	pipeline  := factor ( ('|' | '|&') factor )*
//	factor    := '(' list ')' | '{' list '}' | command
//	command   := (WORD | redirection)+
func ParseTokens(tokens []Token) (Node, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		tokens = append(tokens, Token{Kind: TokenEOF})
	}

	p := &parser{tokens: tokens}
	if p.peek().Kind == TokenEOF {
		return nil, nil
	}

	n, err := p.list()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return n, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) unexpected(tok Token) error {
	if tok.Kind == TokenEOF {
		return &SyntaxError{Pos: tok.Pos, Err: ErrUnexpectedEOF}
	}
	near := tok.Text
	if near == "" {
		near = tok.Kind.String()
	}
	return &SyntaxError{Pos: tok.Pos, Near: near, Err: ErrUnexpectedToken}
}

func isOpenBrace(tok Token) bool {
	return tok.Kind == TokenWord && tok.Word.IsBare("{")
}

func isCloseBrace(tok Token) bool {
	return tok.Kind == TokenWord && tok.Word.IsBare("}")
}

// atListEnd reports whether the next token closes the current list.
func (p *parser) atListEnd() bool {
	tok := p.peek()
	return tok.Kind == TokenEOF || tok.Kind == TokenRParen || isCloseBrace(tok)
}

func sequence(acc, n Node) Node {
	if acc == nil {
		return n
	}
	return &Sequence{Left: acc, Right: n}
}

func (p *parser) list() (Node, error) {
	var acc Node

	cur, err := p.logical()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().Kind {
		case TokenAmpersand:
			p.next()
			cur = &Background{Child: cur}
			// "a & ;" is the same as "a &".
			if p.peek().Kind == TokenSemicolon {
				p.next()
			}
		case TokenSemicolon:
			p.next()
		default:
			return sequence(acc, cur), nil
		}

		acc = sequence(acc, cur)
		if p.atListEnd() {
			return acc, nil
		}

		if cur, err = p.logical(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) logical() (Node, error) {
	left, err := p.pipeline()
	if err != nil {
		return nil, err
	}

	for {
		kind := p.peek().Kind
		if kind != TokenAnd && kind != TokenOr {
			return left, nil
		}
		p.next()

		right, err := p.pipeline()
		if err != nil {
			return nil, err
		}

		if kind == TokenAnd {
			left = &And{Left: left, Right: right}
		} else {
			left = &Or{Left: left, Right: right}
		}
	}
}

func (p *parser) pipeline() (Node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}

	for {
		kind := p.peek().Kind
		if kind != TokenPipe && kind != TokenPipeBoth {
			return left, nil
		}
		p.next()

		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = &Pipe{StderrMerged: kind == TokenPipeBoth, Left: left, Right: right}
	}
}

func (p *parser) factor() (Node, error) {
	tok := p.peek()
	switch {
	case tok.Kind == TokenLParen:
		p.next()
		if p.peek().Kind == TokenRParen {
			return nil, p.unexpected(p.peek())
		}
		child, err := p.list()
		if err != nil {
			return nil, err
		}
		if p.peek().Kind != TokenRParen {
			return nil, p.closeError(tok, ErrUnmatchedParen)
		}
		p.next()
		return &Subshell{Child: child}, nil

	case isOpenBrace(tok):
		p.next()
		if isCloseBrace(p.peek()) {
			return nil, p.unexpected(p.peek())
		}
		child, err := p.list()
		if err != nil {
			return nil, err
		}
		if !isCloseBrace(p.peek()) {
			return nil, p.closeError(tok, ErrUnmatchedBrace)
		}
		p.next()
		return &Group{Child: child}, nil
	}

	return p.command()
}

func (p *parser) closeError(open Token, cause error) error {
	if tok := p.peek(); tok.Kind != TokenEOF {
		return p.unexpected(tok)
	}
	return &SyntaxError{Pos: open.Pos, Near: open.Text, Err: cause}
}

func (p *parser) command() (Node, error) {
	cmd := &Command{}

	for {
		tok := p.peek()
		switch {
		case tok.Kind.IsWord():
			// A bare } can only close a group when it starts a command.
			if isCloseBrace(tok) && len(cmd.Args) == 0 && len(cmd.Redirects) == 0 {
				return p.finishCommand(cmd)
			}
			p.next()
			cmd.Args = append(cmd.Args, tok.Word)

		case tok.Kind.IsRedirect():
			p.next()
			target := p.peek()
			if !target.Kind.IsWord() {
				return nil, &SyntaxError{Pos: tok.Pos, Near: tok.Text, Err: ErrMissingRedirectTarget}
			}
			p.next()
			cmd.Redirects = append(cmd.Redirects, Redirect{Kind: redirKindOf(tok.Kind), Target: target.Word})

		default:
			return p.finishCommand(cmd)
		}
	}
}

func (p *parser) finishCommand(cmd *Command) (Node, error) {
	if len(cmd.Args) == 0 && len(cmd.Redirects) == 0 {
		return nil, p.unexpected(p.peek())
	}
	return cmd, nil
}
