package bal

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ParseText tokenizes and parses BAL source in one call.
func ParseText(text string) (*Program, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, text)
}

// Parse builds a Program from a token stream. It is the parser half of the
// external-grammar contract. The source text is retained on the Program so
// downstream layers can echo it without re-tokenizing.
//
// Composition blocks (chain, parallel, when, loop) parse into structured
// CompositionExpr nodes; resolution and graph derivation read only that tree.
func Parse(tokens []Token, source string) (*Program, error) {
	p := &parser{tokens: tokens}

	prog := &Program{
		ID:       uuid.NewString(),
		Entities: make(map[string]*Entity),
		Source:   source,
	}

	for p.peek().Kind != TokenEOF {
		tok := p.peek()
		if tok.Kind != TokenIdent {
			return nil, syntaxErrorf(tok.Line, tok.Col, "expected entity or composition, got %q", tok.Text)
		}

		switch tok.Text {
		case "chain", "parallel", "when", "loop":
			expr, err := p.parseComposition()
			if err != nil {
				return nil, err
			}
			if prog.Root != nil {
				return nil, syntaxErrorf(tok.Line, tok.Col, "multiple composition blocks")
			}
			prog.Root = expr
		default:
			entity, err := p.parseEntity()
			if err != nil {
				return nil, err
			}
			if _, exists := prog.Entities[entity.Name]; exists {
				return nil, syntaxErrorf(tok.Line, tok.Col, "duplicate entity %q", entity.Name)
			}
			prog.Names = append(prog.Names, entity.Name)
			prog.Entities[entity.Name] = entity
		}
	}

	return prog, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *parser) expect(kind TokenKind, what string) (Token, error) {
	tok := p.next()
	if tok.Kind != kind {
		return tok, syntaxErrorf(tok.Line, tok.Col, "expected %s, got %q", what, tok.Text)
	}
	return tok, nil
}

// parseEntity parses `name{"prop":value,...}`.
func (p *parser) parseEntity() (*Entity, error) {
	nameTok, err := p.expect(TokenIdent, "entity name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
		return nil, err
	}

	entity := &Entity{Name: nameTok.Text, History: "inherit"}

	for p.peek().Kind != TokenRBrace {
		keyTok, err := p.expect(TokenString, "property name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenColon, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := assignProp(entity, keyTok, val); err != nil {
			return nil, err
		}
		if p.peek().Kind == TokenComma {
			p.next()
		}
	}
	p.next() // consume '}'

	return entity, nil
}

// propValue is the generic parsed form of one property value. Exactly one
// field is populated.
type propValue struct {
	str    *string
	num    *float64
	set    []string
	pairs  []propPair
	isSet  bool
	isPair bool
}

type propPair struct {
	key, val string
}

// parseValue parses a string, number, string set `{"a","b"}`, or string map
// `{"k":"v"}`. Sets and maps are both brace-delimited; the colon after the
// first element tells them apart.
func (p *parser) parseValue() (propValue, error) {
	tok := p.next()
	switch tok.Kind {
	case TokenString:
		s := tok.Text
		return propValue{str: &s}, nil
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return propValue{}, syntaxErrorf(tok.Line, tok.Col, "invalid number %q", tok.Text)
		}
		return propValue{num: &f}, nil
	case TokenLBrace:
		return p.parseBraceValue()
	default:
		return propValue{}, syntaxErrorf(tok.Line, tok.Col, "expected value, got %q", tok.Text)
	}
}

func (p *parser) parseBraceValue() (propValue, error) {
	if p.peek().Kind == TokenRBrace {
		p.next()
		return propValue{isSet: true}, nil
	}

	first, err := p.expect(TokenString, "string")
	if err != nil {
		return propValue{}, err
	}

	if p.peek().Kind == TokenColon {
		// Map form.
		p.next()
		valTok, err := p.expect(TokenString, "string value")
		if err != nil {
			return propValue{}, err
		}
		pairs := []propPair{{first.Text, valTok.Text}}
		for p.peek().Kind == TokenComma {
			p.next()
			keyTok, err := p.expect(TokenString, "string key")
			if err != nil {
				return propValue{}, err
			}
			if _, err := p.expect(TokenColon, "':'"); err != nil {
				return propValue{}, err
			}
			vTok, err := p.expect(TokenString, "string value")
			if err != nil {
				return propValue{}, err
			}
			pairs = append(pairs, propPair{keyTok.Text, vTok.Text})
		}
		if _, err := p.expect(TokenRBrace, "'}'"); err != nil {
			return propValue{}, err
		}
		return propValue{pairs: pairs, isPair: true}, nil
	}

	// Set form. Commas between elements are optional.
	set := []string{first.Text}
	for {
		tok := p.peek()
		if tok.Kind == TokenComma {
			p.next()
			continue
		}
		if tok.Kind == TokenString {
			p.next()
			set = append(set, tok.Text)
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBrace, "'}'"); err != nil {
		return propValue{}, err
	}
	return propValue{set: set, isSet: true}, nil
}

// assignProp maps a generically parsed property onto the entity. Unknown
// property names are skipped so newer sources still parse on older cores.
func assignProp(e *Entity, key Token, val propValue) error {
	switch key.Text {
	case "goal":
		if val.str != nil {
			e.Goal = *val.str
		}
	case "model":
		if val.str != nil {
			e.Model = *val.str
		}
	case "tools":
		if val.isSet {
			e.Tools = val.set
		} else if val.str != nil {
			e.Tools = []string{*val.str}
		}
	case "output":
		if !val.isPair {
			return syntaxErrorf(key.Line, key.Col, "output must be a field map")
		}
		for _, pair := range val.pairs {
			field, err := parseOutputField(pair, key)
			if err != nil {
				return err
			}
			e.Output = append(e.Output, field)
		}
	case "temperature":
		if val.num != nil {
			t := *val.num
			e.Temperature = &t
		}
	case "reasoning":
		if val.str != nil {
			e.Reasoning = *val.str
		}
	case "retries":
		if val.num != nil {
			e.Retries = int(*val.num)
		}
	case "stopWhen":
		if val.str != nil {
			e.StopWhen = *val.str
		}
	case "canRequest":
		if val.isSet {
			e.CanRequest = val.set
		} else if val.str != nil {
			e.CanRequest = []string{*val.str}
		}
	case "history":
		if val.str != nil && (*val.str == "none" || *val.str == "inherit") {
			e.History = *val.str
		}
	case "trigger":
		if val.str != nil {
			e.Trigger = ParseTriggerString(*val.str)
		} else if val.isPair {
			e.Trigger = parseTriggerPairs(val.pairs)
		}
	}
	return nil
}

var outputTypes = map[string]bool{
	"string": true, "number": true, "boolean": true, "array": true, "object": true,
}

func parseOutputField(pair propPair, key Token) (OutputField, error) {
	typ := pair.val
	nullable := strings.HasSuffix(typ, "?")
	typ = strings.TrimSuffix(typ, "?")
	if !outputTypes[typ] {
		return OutputField{}, syntaxErrorf(key.Line, key.Col, "unknown output type %q for field %q", pair.val, pair.key)
	}
	return OutputField{Name: pair.key, Type: typ, Nullable: nullable}, nil
}

// parseComposition parses one of the chain/parallel/when/loop blocks.
func (p *parser) parseComposition() (*CompositionExpr, error) {
	kw := p.next() // already known to be a composition keyword
	if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
		return nil, err
	}

	switch kw.Text {
	case "chain":
		expr := &CompositionExpr{Kind: CompositionChain}
		for p.peek().Kind == TokenIdent {
			expr.Children = append(expr.Children, &CompositionExpr{
				Kind: CompositionRef,
				Name: p.next().Text,
			})
		}
		if len(expr.Children) == 0 {
			return nil, syntaxErrorf(kw.Line, kw.Col, "chain requires at least one entity")
		}
		if _, err := p.expect(TokenRBrace, "'}'"); err != nil {
			return nil, err
		}
		return expr, nil

	case "parallel":
		expr := &CompositionExpr{Kind: CompositionParallel}
		for p.peek().Kind == TokenIdent {
			first := p.next()
			branch := ParallelBranch{Target: first.Text}
			if p.peek().Kind == TokenColon {
				p.next()
				target, err := p.expect(TokenIdent, "branch target")
				if err != nil {
					return nil, err
				}
				branch = ParallelBranch{Label: first.Text, Target: target.Text}
			}
			expr.Branches = append(expr.Branches, branch)
			if p.peek().Kind == TokenComma {
				p.next()
			}
		}
		if len(expr.Branches) == 0 {
			return nil, syntaxErrorf(kw.Line, kw.Col, "parallel requires at least one branch")
		}
		if _, err := p.expect(TokenRBrace, "'}'"); err != nil {
			return nil, err
		}
		return expr, nil

	case "when":
		cond, err := p.expect(TokenIdent, "condition entity")
		if err != nil {
			return nil, err
		}
		pass, err := p.expect(TokenIdent, "pass target")
		if err != nil {
			return nil, err
		}
		fail, err := p.expect(TokenIdent, "fail target")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRBrace, "'}'"); err != nil {
			return nil, err
		}
		return &CompositionExpr{
			Kind: CompositionConditional,
			Cond: cond.Text,
			Pass: pass.Text,
			Fail: fail.Text,
		}, nil

	case "loop":
		body, err := p.expect(TokenIdent, "loop body entity")
		if err != nil {
			return nil, err
		}
		expr := &CompositionExpr{
			Kind: CompositionLoop,
			Body: &CompositionExpr{Kind: CompositionRef, Name: body.Text},
		}
		for p.peek().Kind == TokenIdent {
			mod := p.next()
			if _, err := p.expect(TokenColon, "':'"); err != nil {
				return nil, err
			}
			switch mod.Text {
			case "until":
				tok, err := p.expect(TokenString, "until condition")
				if err != nil {
					return nil, err
				}
				expr.Until = tok.Text
			case "max":
				tok, err := p.expect(TokenNumber, "max iterations")
				if err != nil {
					return nil, err
				}
				n, convErr := strconv.Atoi(tok.Text)
				if convErr != nil {
					return nil, syntaxErrorf(tok.Line, tok.Col, "invalid max %q", tok.Text)
				}
				expr.Max = n
			default:
				return nil, syntaxErrorf(mod.Line, mod.Col, "unknown loop modifier %q", mod.Text)
			}
		}
		if _, err := p.expect(TokenRBrace, "'}'"); err != nil {
			return nil, err
		}
		return expr, nil
	}

	return nil, syntaxErrorf(kw.Line, kw.Col, "unknown composition %q", kw.Text)
}
