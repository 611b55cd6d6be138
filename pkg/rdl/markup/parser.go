package markup

import "strings"

// parseState is the state of the parsing engine
type parseState int

const (
	stateStart parseState = iota
	stateBeforeTagName
	stateAfterTagName
	stateAfterTag
	stateInContent
	stateBeforeClosingTagName
	stateAfterClosingTagName
	stateInClosingTag
	stateDone
)

func (s parseState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateBeforeTagName:
		return "before tag name"
	case stateAfterTagName:
		return "after tag name"
	case stateAfterTag:
		return "after tag"
	case stateInContent:
		return "in content"
	case stateBeforeClosingTagName:
		return "before closing tag name"
	case stateAfterClosingTagName:
		return "after closing tag name"
	case stateInClosingTag:
		return "in closing tag"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

const byteOrderMark = "\xef\xbb\xbf"

// parser holds the engine state for a single Parse call.
//
// Sub-parsers (names, attributes, quoted strings, the declaration) consume several
// bytes and leave pos on the last byte they consumed; the main loop then advances
// one position.
type parser struct {
	src   string
	pos   int
	state parseState

	root    *Node
	current *Node

	// parents and states grow together: when a child opens, its parent and the
	// state to resume the parent in are pushed.
	parents []*Node
	states  []parseState
}

// Parse parses restricted XML text into a Document.
//
// Every failure is a *MalformedDocumentError.
func Parse(text string) (*Document, error) {
	p := &parser{src: text, state: stateStart}
	if strings.HasPrefix(text, byteOrderMark) {
		p.pos = len(byteOrderMark)
	}

	root, err := p.run()
	if err != nil {
		return nil, err
	}
	return &Document{Root: root, Source: text}, nil
}

func (p *parser) run() (*Node, error) {
	for p.pos < len(p.src) {
		if err := p.step(p.src[p.pos]); err != nil {
			return nil, err
		}
		p.pos++
	}

	if p.current != nil {
		return nil, p.fail("unexpected end of document inside <%s>", p.current.Name)
	}
	if p.root == nil {
		return nil, p.fail("document has no root element")
	}
	return p.root, nil
}

// step advances the state machine over the byte at p.pos.
func (p *parser) step(c byte) error {
	switch p.state {
	case stateStart:
		if c == '<' {
			p.state = stateBeforeTagName
		} else if !isWhiteSpace(c) {
			return p.fail("unexpected character %q before root element", c)
		}

	case stateBeforeTagName:
		switch {
		case c == '?':
			return p.skipDeclaration()
		case isNameStart(c):
			return p.openNode()
		case c == '/':
			if p.current == nil {
				return p.fail("closing tag without an open element")
			}
			p.state = stateBeforeClosingTagName
		default:
			return p.fail("unexpected character %q after '<'", c)
		}

	case stateAfterTagName:
		switch {
		case c == '>':
			p.state = stateAfterTag
		case c == '/':
			p.state = stateInClosingTag
		case isWhiteSpace(c):
		case isNameStart(c):
			return p.parseAttribute()
		default:
			return p.fail("unexpected character %q in tag <%s>", c, p.current.Name)
		}

	case stateAfterTag:
		switch {
		case c == '<':
			p.state = stateBeforeTagName
		case isWhiteSpace(c):
		default:
			if p.current.ContentStart == 0 {
				p.current.ContentStart = p.pos
			}
			p.current.ContentEnd = p.pos
			p.state = stateInContent
		}

	case stateInContent:
		// the end offset is exclusive, so it lands on the '<' that stops the content
		p.current.ContentEnd = p.pos
		if c == '<' {
			p.state = stateBeforeTagName
		}

	case stateBeforeClosingTagName:
		if !isNameStart(c) {
			return p.fail("unexpected character %q in closing tag", c)
		}
		name, err := p.parseName()
		if err != nil {
			return err
		}
		if name != p.current.Name {
			return p.fail("closing tag </%s> does not match open element <%s>", name, p.current.Name)
		}
		p.state = stateAfterClosingTagName

	case stateAfterClosingTagName:
		switch {
		case c == '>':
			p.closeNode()
		case isWhiteSpace(c):
		default:
			return p.fail("unexpected character %q in closing tag </%s>", c, p.current.Name)
		}

	case stateInClosingTag:
		if c != '>' {
			return p.fail("malformed self-closing tag <%s/>", p.current.Name)
		}
		p.closeNode()

	case stateDone:
		if !isWhiteSpace(c) {
			return p.fail("unexpected character %q after root element", c)
		}
	}
	return nil
}

// openNode parses an element name and makes the new element current.
func (p *parser) openNode() error {
	name, err := p.parseName()
	if err != nil {
		return err
	}

	node := &Node{Name: name}
	if p.current != nil {
		p.current.Children = append(p.current.Children, node)
		p.parents = append(p.parents, p.current)
		p.states = append(p.states, stateAfterTag)
	} else {
		p.root = node
	}
	p.current = node
	p.state = stateAfterTagName
	return nil
}

// closeNode finishes the current element and resumes its parent.
func (p *parser) closeNode() {
	last := len(p.parents) - 1
	if last < 0 {
		p.current = nil
		p.state = stateDone
		return
	}
	p.current = p.parents[last]
	p.state = p.states[last]
	p.parents = p.parents[:last]
	p.states = p.states[:last]
}

// skipDeclaration skips a leading <?...?> processing instruction.
func (p *parser) skipDeclaration() error {
	if p.root != nil {
		return p.fail("processing instruction is only allowed before the root element")
	}
	end := strings.Index(p.src[p.pos+1:], "?>")
	if end < 0 {
		p.pos = len(p.src)
		return p.fail("unexpected end of document while parsing processing instruction")
	}
	p.pos += 1 + end + 1
	p.state = stateStart
	return nil
}

// parseName reads a name starting at p.pos.
func (p *parser) parseName() (string, error) {
	start := p.pos
	for p.pos+1 < len(p.src) && isNameChar(p.src[p.pos+1]) {
		p.pos++
	}
	if p.pos+1 >= len(p.src) {
		p.pos = len(p.src)
		return "", p.fail("unexpected end of document while parsing name %q", p.src[start:])
	}
	return p.src[start : p.pos+1], nil
}

// parseAttribute reads name="value" and attaches it to the current element.
func (p *parser) parseAttribute() error {
	name, err := p.parseName()
	if err != nil {
		return err
	}

	if err := p.skipWhiteSpace(); err != nil {
		return err
	}
	if p.src[p.pos] != '=' {
		return p.fail("attribute %s is missing '='", name)
	}
	if err := p.skipWhiteSpace(); err != nil {
		return err
	}
	if !isQuote(p.src[p.pos]) {
		return p.fail("value of attribute %s is not quoted", name)
	}
	value, err := p.parseQuotedString()
	if err != nil {
		return err
	}

	if _, exists := p.current.Attr(name); exists {
		return p.fail("duplicate attribute %s on <%s>", name, p.current.Name)
	}
	p.current.Attributes = append(p.current.Attributes, Attribute{Name: name, Value: value})
	return nil
}

// skipWhiteSpace moves p.pos to the next non-whitespace byte after the current one.
func (p *parser) skipWhiteSpace() error {
	p.pos++
	for p.pos < len(p.src) && isWhiteSpace(p.src[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return p.fail("unexpected end of document inside tag <%s>", p.current.Name)
	}
	return nil
}

// parseQuotedString reads a value delimited by the quote at p.pos and leaves
// p.pos on the closing quote.
func (p *parser) parseQuotedString() (string, error) {
	quote := p.src[p.pos]
	start := p.pos + 1
	for i := start; i < len(p.src); i++ {
		c := p.src[i]
		if c == quote {
			p.pos = i
			return p.src[start:i], nil
		}
		if isIllegalStringChar(c) {
			p.pos = i
			return "", p.fail("illegal character %q in quoted string", c)
		}
	}
	p.pos = len(p.src)
	return "", p.fail("unexpected end of document while parsing quoted string")
}

func (p *parser) fail(format string, args ...interface{}) error {
	return newMalformed(p.src, p.pos, format, args...)
}
