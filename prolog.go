package fsmio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Prolog clauses, one per line:
//
//	network(Name).
//	symbol(Name, "Str").
//	arc(Name, Src, Tgt, "In").
//	arc(Name, Src, Tgt, "In":"Out").
//	final(Name, State).
//
// In labels "0" is epsilon and "%0" the literal symbol 0. "?" is the identity
// symbol in a single label and the unknown symbol in an In:Out pair.
const (
	prologZero    = "0"
	prologZeroEsc = "%0"
	prologAny     = "?"
)

var prologFunctors = []string{"network", "symbol", "arc", "final"}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokAtom
	tokString
	tokLParen
	tokRParen
	tokComma
	tokColon
	tokDot
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of line"
	case tokAtom:
		return "atom"
	case tokString:
		return "string"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokColon:
		return "':'"
	case tokDot:
		return "'.'"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
}

// prologLexer splits one clause into tokens.
type prologLexer struct {
	s   string
	pos int
}

func isPunct(c byte) bool {
	switch c {
	case '(', ')', ',', ':', '.', '"':
		return true
	}
	return false
}

func (l *prologLexer) skipSpace() {
	for l.pos < len(l.s) && (isSpace(l.s[l.pos]) || l.s[l.pos] == '\n') {
		l.pos++
	}
}

func (l *prologLexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.s) {
		return token{kind: tokEOF}, nil
	}
	c := l.s[l.pos]
	switch c {
	case '(':
		l.pos++
		return token{kind: tokLParen}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen}, nil
	case ',':
		l.pos++
		return token{kind: tokComma}, nil
	case ':':
		l.pos++
		return token{kind: tokColon}, nil
	case '.':
		l.pos++
		return token{kind: tokDot}, nil
	case '"':
		return l.quoted()
	}
	start := l.pos
	for l.pos < len(l.s) && !isSpace(l.s[l.pos]) {
		if c := l.s[l.pos]; isPunct(c) && (c != '.' || l.endsClause(l.pos)) {
			break
		}
		l.pos++
	}
	return token{kind: tokAtom, text: l.s[start:l.pos]}, nil
}

// endsClause reports whether the '.' at i is the clause terminator, so that
// atoms such as "lexicon.v2" keep their dots.
func (l *prologLexer) endsClause(i int) bool {
	return strings.TrimSpace(l.s[i+1:]) == ""
}

// quoted scans a string. Symbols are not escaped, so the closing quote is the
// first one followed by ')', ':' or ','.
func (l *prologLexer) quoted() (token, error) {
	open := l.pos
	for i := open + 1; i < len(l.s); i++ {
		if l.s[i] != '"' {
			continue
		}
		j := i + 1
		for j < len(l.s) && isSpace(l.s[j]) {
			j++
		}
		if j < len(l.s) && (l.s[j] == ')' || l.s[j] == ':' || l.s[j] == ',') {
			l.pos = i + 1
			return token{kind: tokString, text: l.s[open+1 : i]}, nil
		}
	}
	return token{}, fmt.Errorf("unterminated string at column %d", open+1)
}

// prologArg is one clause argument: an atom, a string, or an In:Out string pair.
type prologArg struct {
	kind tokenKind // tokAtom or tokString
	text string
	out  string
	pair bool
}

type prologClause struct {
	functor string
	args    []prologArg
}

// prologParser is a recursive-descent parser for a single clause:
//
//	clause := atom '(' arg { ',' arg } ')' '.'
//	arg    := atom | string [ ':' string ]
type prologParser struct {
	lex prologLexer
	tok token
}

func parseClause(line string) (prologClause, error) {
	p := &prologParser{lex: prologLexer{s: line}}
	if err := p.advance(); err != nil {
		return prologClause{}, err
	}
	return p.clause()
}

func (p *prologParser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *prologParser) expect(kind tokenKind) (token, error) {
	t := p.tok
	if t.kind != kind {
		return t, fmt.Errorf("expected %s, got %s", kind, t.kind)
	}
	return t, p.advance()
}

func (p *prologParser) clause() (prologClause, error) {
	functor, err := p.expect(tokAtom)
	if err != nil {
		return prologClause{}, err
	}
	if _, err := p.expect(tokLParen); err != nil {
		return prologClause{}, err
	}
	c := prologClause{functor: functor.text}
	for {
		arg, err := p.arg()
		if err != nil {
			return prologClause{}, err
		}
		c.args = append(c.args, arg)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return prologClause{}, err
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return prologClause{}, err
	}
	if _, err := p.expect(tokDot); err != nil {
		return prologClause{}, err
	}
	if p.tok.kind != tokEOF {
		return prologClause{}, fmt.Errorf("trailing %s after clause", p.tok.kind)
	}
	return c, nil
}

func (p *prologParser) arg() (prologArg, error) {
	switch p.tok.kind {
	case tokAtom:
		a := prologArg{kind: tokAtom, text: p.tok.text}
		return a, p.advance()
	case tokString:
		a := prologArg{kind: tokString, text: p.tok.text}
		if err := p.advance(); err != nil {
			return a, err
		}
		if p.tok.kind != tokColon {
			return a, nil
		}
		if err := p.advance(); err != nil {
			return a, err
		}
		out, err := p.expect(tokString)
		if err != nil {
			return a, err
		}
		a.out, a.pair = out.text, true
		return a, nil
	}
	return prologArg{}, fmt.Errorf("unexpected %s in argument list", p.tok.kind)
}

// ReadProlog reads the first network of a Prolog file.
func ReadProlog(path string, opts *Options) (*Network, error) {
	//nolint:gosec // G304: see IsGzip.
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	o := resolveOptions(opts)
	o.Logger = o.Logger.WithField("file", path)
	n, err := ParseProlog(f, o)
	if err != nil {
		return nil, errors.Wrapf(err, "read prolog %s", path)
	}
	return n, nil
}

// ParseProlog reads Prolog clauses from r. Lines that do not start with one of
// the four clause names are ignored. A second network clause ends the input
// with a warning. ErrNoNetwork is returned if no network clause is found.
func ParseProlog(r io.Reader, opts *Options) (*Network, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	o := resolveOptions(opts)

	var b *Builder
	sc, release := newLineScanner(r)
	defer release()
	lineNo := 0
scan:
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if !isClause(line) {
			continue
		}
		c, err := parseClause(line)
		if err != nil {
			return nil, formatErrorf("prolog", lineNo, "%v", err)
		}
		if c.functor == "network" {
			if b != nil {
				o.Logger.WithFields(logrus.Fields{"line": lineNo}).Warn(ErrMultipleNetworks.Error())
				break scan
			}
			if len(c.args) != 1 || c.args[0].pair {
				return nil, formatErrorf("prolog", lineNo, "network takes one name")
			}
			b = NewBuilder(c.args[0].text)
			continue
		}
		if b == nil {
			return nil, formatErrorf("prolog", lineNo, "%s clause before network clause", c.functor)
		}
		if err := applyClause(b, c); err != nil {
			return nil, atLine(err, lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return nil, formatErrorf("prolog", lineNo+1, "line longer than %d bytes", MAX_LINE_SIZE)
		}
		return nil, ioError("read", "prolog", err)
	}
	if b == nil {
		return nil, ErrNoNetwork
	}

	b.SetInitial(0)
	return TopSort(b.Done()), nil
}

func isClause(line string) bool {
	for _, f := range prologFunctors {
		if strings.HasPrefix(line, f+"(") {
			return true
		}
	}
	return false
}

func applyClause(b *Builder, c prologClause) error {
	switch c.functor {
	case "symbol":
		if len(c.args) != 2 || c.args[1].kind != tokString || c.args[1].pair {
			return formatErrorf("prolog", 0, "symbol takes a name and a string")
		}
		sym := c.args[1].text
		if sym == prologZeroEsc {
			sym = prologZero
		}
		if _, reserved := reservedID(sym); reserved {
			return formatErrorf("prolog", 0, "symbol %s is reserved", sym)
		}
		if !b.HasSymbol(sym) {
			b.AddSymbol(sym)
		}
		return nil

	case "arc":
		if len(c.args) != 4 || c.args[3].kind != tokString {
			return formatErrorf("prolog", 0, "arc takes a name, two states and a label")
		}
		src, err := prologState(c.args[1])
		if err != nil {
			return err
		}
		tgt, err := prologState(c.args[2])
		if err != nil {
			return err
		}
		label := c.args[3]
		if !label.pair {
			in := label.text
			if in == prologAny {
				in = IdentitySymbol
			}
			in = prologSymbol(in)
			b.AddArc(src, tgt, in, in)
			return nil
		}
		in, out := label.text, label.out
		if in == prologAny {
			in = UnknownSymbol
		}
		if out == prologAny {
			out = UnknownSymbol
		}
		b.AddArc(src, tgt, prologSymbol(in), prologSymbol(out))
		return nil

	case "final":
		if len(c.args) != 2 {
			return formatErrorf("prolog", 0, "final takes a name and a state")
		}
		s, err := prologState(c.args[1])
		if err != nil {
			return err
		}
		b.SetFinal(s)
		return nil
	}
	return formatErrorf("prolog", 0, "unknown clause %s", c.functor)
}

func prologState(a prologArg) (int, error) {
	if a.kind != tokAtom {
		return 0, formatErrorf("prolog", 0, "state must be a number, got %q", a.text)
	}
	s, ok := parseState(a.text)
	if !ok {
		return 0, formatErrorf("prolog", 0, "invalid state %q", a.text)
	}
	return s, nil
}

// prologSymbol maps the "0" and "%0" label conventions to symbol strings.
func prologSymbol(s string) string {
	switch s {
	case prologZero:
		return EpsilonSymbol
	case prologZeroEsc:
		return prologZero
	}
	return s
}

// WriteProlog writes n as Prolog clauses: the network, the symbols not used by
// any arc, the arcs and the final states.
func WriteProlog(w io.Writer, n *Network) error {
	if n == nil || n.Sigma == nil {
		return ErrNilIO
	}
	bw, err := NewWriter(w)
	if err != nil {
		return err
	}
	name := n.Name

	maxSigma := n.Sigma.Max()
	used := make([]bool, max(maxSigma+1, 0))
	for _, t := range n.States {
		for _, id := range [2]int{t.In, t.Out} {
			if id >= 0 && id <= maxSigma {
				used[id] = true
			}
		}
	}

	_, _ = fmt.Fprintf(bw, "network(%s).\n", name)
	for id := len(reservedSymbols); id <= maxSigma; id++ {
		sym, ok := n.Sigma.String(id)
		if used[id] || !ok {
			continue
		}
		if sym == prologZero {
			sym = prologZeroEsc
		}
		_, _ = fmt.Fprintf(bw, "symbol(%s, \"%s\").\n", name, sym)
	}

	label := func(id int) (string, error) {
		switch id {
		case Epsilon:
			return prologZero, nil
		case Unknown, Identity:
			return prologAny, nil
		}
		sym, ok := n.Sigma.String(id)
		if !ok {
			return "", formatErrorf("prolog", 0, "symbol id %d not in sigma", id)
		}
		if sym == prologZero {
			return prologZeroEsc, nil
		}
		return sym, nil
	}

	for _, t := range n.States {
		if !t.HasArc() {
			continue
		}
		in, err := label(t.In)
		if err != nil {
			return err
		}
		out, err := label(t.Out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(bw, "arc(%s, %d, %d, ", name, t.State, t.Target)
		switch {
		case n.Arity == 2 && t.In == Identity && t.Out == Identity:
			bw.WriteLine(`"?").`)
		case n.Arity == 2 && t.In == t.Out && t.In != Unknown:
			bw.WriteLine(`"` + in + `").`)
		case n.Arity == 2:
			bw.WriteLine(`"` + in + `":"` + out + `").`)
		default:
			bw.WriteLine(`"` + in + `").`)
		}
	}
	for _, s := range n.Finals() {
		_, _ = fmt.Fprintf(bw, "final(%s, %d).\n", name, s)
	}

	if _, err := bw.Result(); err != nil {
		return ioError("write prolog", name, err)
	}
	return nil
}

// WritePrologFile writes n to path, or to stdout when path is empty.
func WritePrologFile(path string, n *Network) error {
	if path == "" {
		return WriteProlog(os.Stdout, n)
	}
	out, err := createOutput(path, false, 0)
	if err != nil {
		return err
	}
	if err := WriteProlog(out, n); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "write prolog %s", path)
	}
	return out.Close()
}
