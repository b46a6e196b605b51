package ifc

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Ref is a reference to another instance.
type Ref int

// Enum is an enumeration value, without its dots.
type Enum string

// Derived is the '*' placeholder for a derived attribute.
type Derived struct{}

// Typed is a value wrapped in its defined type, such as IFCLABEL('x').
type Typed struct {
	Type  string
	Value any
}

// Instance is one entity instance of the DATA section. Attribute values
// are nil (unset), Ref, Enum, Derived, Typed, string, int64, float64 or
// []any.
type Instance struct {
	ID   int
	Type string
	Args []any
}

// File is a parsed STEP physical file.
type File struct {
	Schema    string
	Header    map[string][]any
	Instances map[int]*Instance
	Order     []int // instance ids in file order
}

// Get returns the instance named id, or nil.
func (f *File) Get(id Ref) *Instance { return f.Instances[int(id)] }

// ByType returns the instances of typ in file order.
func (f *File) ByType(typ string) []*Instance {
	var out []*Instance
	for _, id := range f.Order {
		if inst := f.Instances[id]; inst.Type == typ {
			out = append(out, inst)
		}
	}
	return out
}

// Parse reads a STEP physical file. Every reference must resolve to an
// instance of the file.
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read step file: %w", err)
	}
	p := &parser{src: string(data)}
	f, err := p.file()
	if err != nil {
		return nil, fmt.Errorf("step: %w", err)
	}
	for _, id := range f.Order {
		if err := checkRefs(f, id, f.Instances[id].Args); err != nil {
			return nil, fmt.Errorf("step: %w", err)
		}
	}
	return f, nil
}

func checkRefs(f *File, owner int, v any) error {
	switch v := v.(type) {
	case Ref:
		if f.Get(v) == nil {
			return fmt.Errorf("#%d references missing instance #%d", owner, int(v))
		}
	case Typed:
		return checkRefs(f, owner, v.Value)
	case []any:
		for _, item := range v {
			if err := checkRefs(f, owner, item); err != nil {
				return err
			}
		}
	}
	return nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	line := 1 + strings.Count(p.src[:p.pos], "\n")
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

// skip advances past whitespace and comments.
func (p *parser) skip() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.pos++
		case strings.HasPrefix(p.src[p.pos:], "/*"):
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 4
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	p.skip()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(tok string) error {
	p.skip()
	if !strings.HasPrefix(p.src[p.pos:], tok) {
		return p.errorf("expected %q", tok)
	}
	p.pos += len(tok)
	return nil
}

func isKeyword(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func (p *parser) keyword() string {
	p.skip()
	start := p.pos
	for p.pos < len(p.src) && isKeyword(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) file() (*File, error) {
	if err := p.expect("ISO-10303-21;"); err != nil {
		return nil, err
	}
	if err := p.expect("HEADER;"); err != nil {
		return nil, err
	}
	f := &File{Header: make(map[string][]any), Instances: make(map[int]*Instance)}
	for {
		kw := p.keyword()
		if kw == "ENDSEC" {
			break
		}
		if kw == "" {
			return nil, p.errorf("expected header entity")
		}
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		f.Header[kw] = args
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	if schema, ok := f.Header["FILE_SCHEMA"]; ok && len(schema) == 1 {
		if names, ok := schema[0].([]any); ok && len(names) > 0 {
			f.Schema, _ = names[0].(string)
		}
	}

	if err := p.expect("DATA;"); err != nil {
		return nil, err
	}
	for p.peek() == '#' {
		inst, err := p.instance()
		if err != nil {
			return nil, err
		}
		if _, dup := f.Instances[inst.ID]; dup {
			return nil, p.errorf("duplicate instance #%d", inst.ID)
		}
		f.Instances[inst.ID] = inst
		f.Order = append(f.Order, inst.ID)
	}
	if err := p.expect("ENDSEC;"); err != nil {
		return nil, err
	}
	if err := p.expect("END-ISO-10303-21;"); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *parser) instance() (*Instance, error) {
	if err := p.expect("#"); err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(p.keyword())
	if err != nil {
		return nil, p.errorf("bad instance name: %v", err)
	}
	if err := p.expect("="); err != nil {
		return nil, err
	}
	typ := p.keyword()
	if typ == "" {
		return nil, p.errorf("#%d: complex instances are not supported", id)
	}
	args, err := p.args()
	if err != nil {
		return nil, err
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}
	return &Instance{ID: id, Type: strings.ToUpper(typ), Args: args}, nil
}

// args parses a parenthesized parameter list.
func (p *parser) args() ([]any, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	out := []any{}
	if p.peek() == ')' {
		p.pos++
		return out, nil
	}
	for {
		v, err := p.param()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or ')'")
		}
	}
}

func (p *parser) param() (any, error) {
	switch c := p.peek(); {
	case c == '$':
		p.pos++
		return nil, nil
	case c == '*':
		p.pos++
		return Derived{}, nil
	case c == '#':
		p.pos++
		n, err := strconv.Atoi(p.keyword())
		if err != nil {
			return nil, p.errorf("bad reference: %v", err)
		}
		return Ref(n), nil
	case c == '\'':
		return p.str()
	case c == '.':
		p.pos++
		end := strings.IndexByte(p.src[p.pos:], '.')
		if end < 0 {
			return nil, p.errorf("unterminated enumeration")
		}
		v := Enum(p.src[p.pos : p.pos+end])
		p.pos += end + 1
		return v, nil
	case c == '(':
		return p.args()
	case c == '-' || c == '+' || c >= '0' && c <= '9':
		return p.number()
	case c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z':
		typ := strings.ToUpper(p.keyword())
		inner, err := p.args()
		if err != nil {
			return nil, err
		}
		if len(inner) != 1 {
			return nil, p.errorf("%s: want one value, got %d", typ, len(inner))
		}
		return Typed{Type: typ, Value: inner[0]}, nil
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *parser) number() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("+-0123456789.Ee", p.src[p.pos]) >= 0 {
		p.pos++
	}
	tok := p.src[start:p.pos]
	if !strings.ContainsAny(tok, ".Ee") {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, p.errorf("bad integer %q", tok)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, p.errorf("bad real %q", tok)
	}
	return f, nil
}

// str parses a quoted string, undoing the escapes written by the encoder.
func (p *parser) str() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\'':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
				sb.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return sb.String(), nil
		case strings.HasPrefix(p.src[p.pos:], `\\`):
			sb.WriteByte('\\')
			p.pos += 2
		case strings.HasPrefix(p.src[p.pos:], `\X2\`):
			p.pos += 4
			end := strings.Index(p.src[p.pos:], `\X0\`)
			if end < 0 || end%4 != 0 {
				return "", p.errorf("bad \\X2\\ escape")
			}
			units := make([]uint16, 0, end/4)
			for i := 0; i < end; i += 4 {
				u, err := strconv.ParseUint(p.src[p.pos+i:p.pos+i+4], 16, 16)
				if err != nil {
					return "", p.errorf("bad \\X2\\ escape: %v", err)
				}
				units = append(units, uint16(u))
			}
			sb.WriteString(string(utf16.Decode(units)))
			p.pos += end + 4
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}
