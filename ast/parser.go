package ast

import (
	"github.com/oxy-lang/pngb/diag"
	"github.com/oxy-lang/pngb/token"
)

// ParserOption is a functional option for configuring a parse.
// Use the With* functions to create options that are applied directly to
// the parser instance.
type ParserOption func(*parser)

// WithMaxDepth overrides the default nesting depth cap (64). Exceeding it
// produces a TooDeep diagnostic instead of unbounded stack growth; there
// is no recursion to overflow in the first place, but a very deep scene is
// still a diagnostic, not an unbounded allocation.
func WithMaxDepth(depth int) ParserOption {
	return func(p *parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

const defaultMaxDepth = 64

// macroPending records the two tokens a MacroDecl needs that don't fit in
// a single frame's "owner" slot: the macro keyword and the declared name.
type macroPending struct {
	macroTok token.Index
	nameTok  token.Index
}

// frameKind distinguishes a bracketed value list from a brace-delimited
// field list; both close to a List node (see node.go's Tag docs).
type frameKind uint8

const (
	frameList frameKind = iota
	frameFields
)

// frame is one level of the parser's explicit work stack, the mechanism
// that replaces recursion: every nested record or list enters the stack
// instead of the call stack.
type frame struct {
	kind        frameKind
	openTok     token.Index
	children    []uint32 // NodeIds of Field (frameFields) or value nodes (frameList)
	macro       *macroPending
	hasPending  bool
	pendingTok  token.Index // field-name token awaiting its '=' value
}

// parser holds all mutable state for one parse. There is no recursion
// anywhere in this type's methods; Parse drives a single loop over an
// explicit stack.
type parser struct {
	tokens    []token.Token
	src       []byte
	pos       token.Index
	maxDepth  int
	stack     []frame
	extra     []uint32
	nodes     []Node
	topLevel  []uint32 // NodeIds of top-level MacroDecls, becomes the root's range
}

// Parse consumes a token stream (with its source, for diagnostics and
// later text recovery) and builds a Tree. Parse fails fast on the first
// syntax error, returning it as a Diagnostic.
func Parse(src []byte, tokens []token.Token, opts ...ParserOption) (*Tree, *diag.Diagnostic) {
	p := &parser{
		tokens:   tokens,
		src:      src,
		maxDepth: defaultMaxDepth,
		nodes:    make([]Node, 1, len(tokens)/3+1), // reserve index 0 for the root
	}
	for _, o := range opts {
		o(p)
	}

	if err := p.run(); err != nil {
		return nil, err
	}

	start := uint32(len(p.extra))
	p.extra = append(p.extra, p.topLevel...)
	p.nodes[0] = Node{Tag: List, SourceToken: 0, Lhs: start, Rhs: uint32(len(p.extra))}

	return &Tree{Source: src, Tokens: tokens, Nodes: p.nodes, ExtraData: p.extra}, nil
}

func (p *parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token.Token {
	t := p.tokens[p.pos]
	if t.Tag != token.EOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(tag token.Tag) (token.Index, *diag.Diagnostic) {
	if p.peek().Tag != tag {
		d := diag.New(diag.UnexpectedToken, p.peek().Range, "expected %s, got %s", tag, p.peek().Tag)
		return 0, &d
	}
	idx := p.pos
	p.advance()
	return idx, nil
}

func (p *parser) newNode(n Node) NodeId {
	p.nodes = append(p.nodes, n)
	return NodeId(len(p.nodes) - 1)
}

// run drives the whole token stream to completion via the explicit stack.
func (p *parser) run() *diag.Diagnostic {
	for {
		if len(p.stack) == 0 {
			if p.peek().Tag == token.EOF {
				return nil
			}
			if err := p.beginMacroDecl(); err != nil {
				return err
			}
			continue
		}

		top := &p.stack[len(p.stack)-1]
		switch top.kind {
		case frameFields:
			if err := p.stepFields(top); err != nil {
				return err
			}
		case frameList:
			if err := p.stepList(top); err != nil {
				return err
			}
		}
	}
}

func (p *parser) push(f frame) *diag.Diagnostic {
	if len(p.stack) >= p.maxDepth {
		d := diag.New(diag.TooDeep, p.peek().Range, "nesting exceeds maximum depth %d", p.maxDepth)
		return &d
	}
	p.stack = append(p.stack, f)
	return nil
}

func (p *parser) pop() frame {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return f
}

// beginMacroDecl parses the `#keyword name {` header at depth 0 and pushes
// the frame that will accumulate its fields.
func (p *parser) beginMacroDecl() *diag.Diagnostic {
	tok := p.peek()
	if !tok.Tag.IsMacro() {
		d := diag.New(diag.UnexpectedToken, tok.Range, "expected a macro declaration, got %s", tok.Tag)
		return &d
	}
	macroTok := p.pos
	p.advance()

	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	openTok, err := p.expect(token.LBrace)
	if err != nil {
		return err
	}

	return p.push(frame{
		kind:    frameFields,
		openTok: openTok,
		macro:   &macroPending{macroTok: macroTok, nameTok: nameTok},
	})
}

// stepFields advances a frameFields frame by one token's worth of work:
// either closing it out, consuming a separating comma, starting a new
// field's name/'=', or (when a field name is already pending) parsing its
// value.
func (p *parser) stepFields(top *frame) *diag.Diagnostic {
	if top.hasPending {
		return p.beginValue()
	}

	if p.peek().Tag == token.RBrace {
		p.advance()
		return p.closeFields()
	}

	if len(top.children) > 0 {
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		if p.peek().Tag == token.RBrace {
			p.advance()
			return p.closeFields()
		}
	}

	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Equals); err != nil {
		return err
	}
	top.hasPending = true
	top.pendingTok = nameTok
	return nil
}

// stepList advances a frameList frame: close it, consume a comma, or parse
// the next element value.
func (p *parser) stepList(top *frame) *diag.Diagnostic {
	if p.peek().Tag == token.RBracket {
		p.advance()
		return p.closeList()
	}

	if len(top.children) > 0 {
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		if p.peek().Tag == token.RBracket {
			p.advance()
			return p.closeList()
		}
	}

	return p.beginValue()
}

// beginValue parses one `value` production. An atomic value (literal,
// reference, bare ident) is built and delivered immediately. A nested list
// or record pushes a new frame instead; delivery for that frame happens
// later, when it closes.
func (p *parser) beginValue() *diag.Diagnostic {
	tok := p.peek()
	switch tok.Tag {
	case token.LBracket:
		p.advance()
		return p.push(frame{kind: frameList, openTok: p.pos - 1})
	case token.LBrace:
		p.advance()
		return p.push(frame{kind: frameFields, openTok: p.pos - 1})
	case token.String:
		p.advance()
		p.deliver(p.newNode(Node{Tag: String, SourceToken: p.pos - 1}))
		return nil
	case token.Integer, token.Float:
		p.advance()
		p.deliver(p.newNode(Node{Tag: Number, SourceToken: p.pos - 1}))
		return nil
	case token.Reference:
		p.advance()
		p.deliver(p.newNode(Node{Tag: Reference, SourceToken: p.pos - 1}))
		return nil
	case token.Ident:
		p.advance()
		p.deliver(p.newNode(Node{Tag: Ident, SourceToken: p.pos - 1}))
		return nil
	default:
		d := diag.New(diag.UnexpectedToken, tok.Range, "expected a value, got %s", tok.Tag)
		return &d
	}
}

// deliver routes a just-built value NodeId to whatever is waiting for it:
// the pending field of the (now) top frame, or a list frame's next
// element. beginValue calls this directly for atomic values; closeList and
// closeFields call it for a value that was itself a nested construct.
func (p *parser) deliver(id NodeId) {
	if len(p.stack) == 0 {
		// Only reachable for a macro_decl built at depth 0, handled by
		// closeFields directly, never for a bare value.
		return
	}
	top := &p.stack[len(p.stack)-1]
	switch top.kind {
	case frameFields:
		fieldNode := p.newNode(Node{Tag: Field, SourceToken: top.pendingTok, Lhs: uint32(id)})
		top.children = append(top.children, uint32(fieldNode))
		top.hasPending = false
	case frameList:
		top.children = append(top.children, uint32(id))
	}
}

// closeList pops a frameList, builds its List node, and delivers it.
func (p *parser) closeList() *diag.Diagnostic {
	f := p.pop()
	id := p.buildList(f)
	p.deliver(id)
	return nil
}

// closeFields pops a frameFields frame. If it was a macro body, it builds
// the MacroDecl node and appends it to the top-level list instead of
// delivering (macro declarations only ever occur at depth 0, so there is
// no enclosing frame to deliver into). Otherwise it is a record value and
// is delivered like any other value.
func (p *parser) closeFields() *diag.Diagnostic {
	f := p.pop()
	listID := p.buildList(f)

	if f.macro != nil {
		decl := p.newNode(Node{
			Tag:         MacroDecl,
			SourceToken: f.macro.macroTok,
			Lhs:         uint32(f.macro.nameTok),
			Rhs:         uint32(listID),
		})
		p.topLevel = append(p.topLevel, uint32(decl))
		return nil
	}

	p.deliver(listID)
	return nil
}

func (p *parser) buildList(f frame) NodeId {
	start := uint32(len(p.extra))
	p.extra = append(p.extra, f.children...)
	end := uint32(len(p.extra))
	return p.newNode(Node{Tag: List, SourceToken: f.openTok, Lhs: start, Rhs: end})
}
