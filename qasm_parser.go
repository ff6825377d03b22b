package qcir

import (
	"io"
	"math"
)

// expr is a parameter-expression node, evaluated against the formal-parameter
// environment of the enclosing gate declaration (empty at top level).
type expr interface {
	eval(env map[string]float64) (float64, error)
}

type numExpr float64

func (e numExpr) eval(map[string]float64) (float64, error) { return float64(e), nil }

type nameExpr string

func (e nameExpr) eval(env map[string]float64) (float64, error) {
	if v, ok := env[string(e)]; ok {
		return v, nil
	}
	return 0, parseErrorf("undefined parameter %q in expression", string(e))
}

type negExpr struct{ x expr }

func (e negExpr) eval(env map[string]float64) (float64, error) {
	v, err := e.x.eval(env)
	return -v, err
}

type binExpr struct {
	op   TokenKind
	l, r expr
}

func (e binExpr) eval(env map[string]float64) (float64, error) {
	l, err := e.l.eval(env)
	if err != nil {
		return 0, err
	}
	r, err := e.r.eval(env)
	if err != nil {
		return 0, err
	}
	switch e.op {
	case TokPlus:
		return l + r, nil
	case TokMinus:
		return l - r, nil
	case TokTimes:
		return l * r, nil
	case TokDiv:
		if r == 0 {
			return 0, parseErrorf("division by zero in parameter expression")
		}
		return l / r, nil
	case TokPower:
		return math.Pow(l, r), nil
	}
	return 0, parseErrorf("bad operator in parameter expression")
}

type callExpr struct {
	fn TokenKind
	x  expr
}

func (e callExpr) eval(env map[string]float64) (float64, error) {
	v, err := e.x.eval(env)
	if err != nil {
		return 0, err
	}
	switch e.fn {
	case TokSin:
		return math.Sin(v), nil
	case TokCos:
		return math.Cos(v), nil
	case TokTan:
		return math.Tan(v), nil
	case TokExp:
		return math.Exp(v), nil
	case TokLn:
		return math.Log(v), nil
	case TokSqrt:
		return math.Sqrt(v), nil
	}
	return 0, parseErrorf("bad function in parameter expression")
}

// gateStmt is one statement inside a gate-declaration body, with formal
// parameter expressions and formal qubit names.
type gateStmt struct {
	name   string
	params []expr
	args   []string
}

// gateDecl is a registered gate (or opaque-gate) declaration.
type gateDecl struct {
	name   string
	params []string
	qubits []string
	opaque bool
	body   []gateStmt
}

// builtinGate describes a gate the parser knows natively (the qelib1.inc set).
type builtinGate struct {
	kind      OpKind
	ncontrols int
	nparams   int
	twoTarget bool
}

var builtinGates = map[string]builtinGate{
	"id":    {kind: I},
	"u0":    {kind: I},
	"h":     {kind: H},
	"x":     {kind: X},
	"y":     {kind: Y},
	"z":     {kind: Z},
	"s":     {kind: S},
	"sdg":   {kind: Sdg},
	"t":     {kind: T},
	"tdg":   {kind: Tdg},
	"sx":    {kind: SX},
	"sxdg":  {kind: SXdg},
	"rx":    {kind: RX, nparams: 1},
	"ry":    {kind: RY, nparams: 1},
	"rz":    {kind: RZ, nparams: 1},
	"p":     {kind: U1, nparams: 1},
	"u1":    {kind: U1, nparams: 1},
	"u2":    {kind: U2, nparams: 2},
	"u":     {kind: U3, nparams: 3},
	"u3":    {kind: U3, nparams: 3},
	"cx":    {kind: X, ncontrols: 1},
	"cy":    {kind: Y, ncontrols: 1},
	"cz":    {kind: Z, ncontrols: 1},
	"ch":    {kind: H, ncontrols: 1},
	"csx":   {kind: SX, ncontrols: 1},
	"ccx":   {kind: X, ncontrols: 2},
	"crx":   {kind: RX, ncontrols: 1, nparams: 1},
	"cry":   {kind: RY, ncontrols: 1, nparams: 1},
	"crz":   {kind: RZ, ncontrols: 1, nparams: 1},
	"cp":    {kind: U1, ncontrols: 1, nparams: 1},
	"cu1":   {kind: U1, ncontrols: 1, nparams: 1},
	"cu3":   {kind: U3, ncontrols: 1, nparams: 3},
	"swap":  {kind: SWAP, twoTarget: true},
	"cswap": {kind: SWAP, ncontrols: 1, twoTarget: true},
	"iswap": {kind: ISWAP, twoTarget: true},
}

// argRange is a resolved argument: a contiguous run of absolute bit indices.
type argRange struct {
	Start int
	Size  int
}

// Parser is the statement-level collaborator for the OpenQASM-family
// grammar. The register tables are shared with the importing circuit, which
// mutates them on qreg/creg declarations.
type Parser struct {
	scanner *Scanner

	// Sym is the lookahead token the statement dispatch switches on; T is
	// the most recently accepted token.
	Sym Token
	T   Token

	Qregs     RegisterMap
	Cregs     RegisterMap
	NumQubits int

	gates map[string]*gateDecl
}

// NewParser builds a parser over the given source sharing the circuit's
// register tables.
func NewParser(r io.Reader, qregs, cregs RegisterMap) *Parser {
	return &Parser{
		scanner: NewScanner(r),
		Qregs:   qregs,
		Cregs:   cregs,
		gates:   map[string]*gateDecl{},
	}
}

// Scan advances the lookahead token.
func (p *Parser) Scan() {
	p.T = p.Sym
	p.Sym = p.scanner.Next()
}

// Check accepts the lookahead if it has the expected kind and advances.
func (p *Parser) Check(k TokenKind) error {
	if p.Sym.Kind != k {
		return parseErrorf("line %d: expected %v, got %v", p.Sym.Line, k, p.Sym.Kind)
	}
	p.Scan()
	return nil
}

// AddInput splices additional source text into the token stream.
func (p *Parser) AddInput(r io.Reader) {
	p.scanner.AddInput(r)
	p.Scan()
}

// ---- expressions ----

func (p *Parser) exp() (expr, error) {
	var e expr
	var err error
	if p.Sym.Kind == TokMinus {
		p.Scan()
		e, err = p.term()
		if err != nil {
			return nil, err
		}
		e = negExpr{e}
	} else {
		e, err = p.term()
		if err != nil {
			return nil, err
		}
	}
	for p.Sym.Kind == TokPlus || p.Sym.Kind == TokMinus {
		op := p.Sym.Kind
		p.Scan()
		r, err := p.term()
		if err != nil {
			return nil, err
		}
		e = binExpr{op: op, l: e, r: r}
	}
	return e, nil
}

func (p *Parser) term() (expr, error) {
	e, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.Sym.Kind == TokTimes || p.Sym.Kind == TokDiv {
		op := p.Sym.Kind
		p.Scan()
		r, err := p.factor()
		if err != nil {
			return nil, err
		}
		e = binExpr{op: op, l: e, r: r}
	}
	return e, nil
}

func (p *Parser) factor() (expr, error) {
	e, err := p.base()
	if err != nil {
		return nil, err
	}
	if p.Sym.Kind == TokPower {
		p.Scan()
		r, err := p.factor()
		if err != nil {
			return nil, err
		}
		e = binExpr{op: TokPower, l: e, r: r}
	}
	return e, nil
}

func (p *Parser) base() (expr, error) {
	switch p.Sym.Kind {
	case TokReal:
		v := p.Sym.ValReal
		p.Scan()
		return numExpr(v), nil
	case TokNNInteger:
		v := p.Sym.ValReal
		p.Scan()
		return numExpr(v), nil
	case TokPi:
		p.Scan()
		return numExpr(math.Pi), nil
	case TokIdentifier:
		name := p.Sym.Str
		p.Scan()
		return nameExpr(name), nil
	case TokMinus:
		p.Scan()
		e, err := p.base()
		if err != nil {
			return nil, err
		}
		return negExpr{e}, nil
	case TokLParen:
		p.Scan()
		e, err := p.exp()
		if err != nil {
			return nil, err
		}
		if err := p.Check(TokRParen); err != nil {
			return nil, err
		}
		return e, nil
	case TokSin, TokCos, TokTan, TokExp, TokLn, TokSqrt:
		fn := p.Sym.Kind
		p.Scan()
		if err := p.Check(TokLParen); err != nil {
			return nil, err
		}
		e, err := p.exp()
		if err != nil {
			return nil, err
		}
		if err := p.Check(TokRParen); err != nil {
			return nil, err
		}
		return callExpr{fn: fn, x: e}, nil
	}
	return nil, parseErrorf("line %d: unexpected token %v in expression", p.Sym.Line, p.Sym.Kind)
}

// ---- arguments ----

// argument parses `name` or `name[idx]` and resolves it against regs.
func (p *Parser) argument(regs RegisterMap) (argRange, error) {
	if err := p.Check(TokIdentifier); err != nil {
		return argRange{}, err
	}
	name := p.T.Str
	reg, ok := regs[name]
	if !ok {
		return argRange{}, parseErrorf("line %d: argument %q is not a declared register", p.T.Line, name)
	}
	if p.Sym.Kind != TokLBrack {
		return argRange{Start: reg.Start, Size: reg.Size}, nil
	}
	p.Scan()
	if err := p.Check(TokNNInteger); err != nil {
		return argRange{}, err
	}
	idx := p.T.Val
	if idx >= reg.Size {
		return argRange{}, parseErrorf("line %d: index %d out of range for register %q of size %d", p.T.Line, idx, name, reg.Size)
	}
	if err := p.Check(TokRBrack); err != nil {
		return argRange{}, err
	}
	return argRange{Start: reg.Start + idx, Size: 1}, nil
}

// ArgList parses a comma-separated qubit argument list.
func (p *Parser) ArgList() ([]argRange, error) {
	var args []argRange
	for {
		a, err := p.argument(p.Qregs)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.Sym.Kind != TokComma {
			return args, nil
		}
		p.Scan()
	}
}

// ---- declarations ----

// GateDecl registers a gate declaration; no operations are emitted.
func (p *Parser) GateDecl() error {
	if err := p.Check(TokGate); err != nil {
		return err
	}
	decl := &gateDecl{}
	if err := p.Check(TokIdentifier); err != nil {
		return err
	}
	decl.name = p.T.Str

	if p.Sym.Kind == TokLParen {
		p.Scan()
		for p.Sym.Kind == TokIdentifier {
			decl.params = append(decl.params, p.Sym.Str)
			p.Scan()
			if p.Sym.Kind == TokComma {
				p.Scan()
			}
		}
		if err := p.Check(TokRParen); err != nil {
			return err
		}
	}
	for p.Sym.Kind == TokIdentifier {
		decl.qubits = append(decl.qubits, p.Sym.Str)
		p.Scan()
		if p.Sym.Kind == TokComma {
			p.Scan()
		}
	}
	if err := p.Check(TokLBrace); err != nil {
		return err
	}
	for p.Sym.Kind != TokRBrace {
		stmt, err := p.gateBodyStmt()
		if err != nil {
			return err
		}
		decl.body = append(decl.body, stmt)
	}
	p.Scan() // closing brace
	p.gates[decl.name] = decl
	return nil
}

func (p *Parser) gateBodyStmt() (gateStmt, error) {
	var stmt gateStmt
	switch p.Sym.Kind {
	case TokUGate:
		stmt.name = "U"
		p.Scan()
		if err := p.Check(TokLParen); err != nil {
			return stmt, err
		}
		for i := 0; i < 3; i++ {
			e, err := p.exp()
			if err != nil {
				return stmt, err
			}
			stmt.params = append(stmt.params, e)
			if i < 2 {
				if err := p.Check(TokComma); err != nil {
					return stmt, err
				}
			}
		}
		if err := p.Check(TokRParen); err != nil {
			return stmt, err
		}
	case TokCXGate:
		stmt.name = "CX"
		p.Scan()
	case TokBarrier:
		stmt.name = "barrier"
		p.Scan()
	case TokIdentifier:
		stmt.name = p.Sym.Str
		p.Scan()
		if p.Sym.Kind == TokLParen {
			p.Scan()
			for p.Sym.Kind != TokRParen {
				e, err := p.exp()
				if err != nil {
					return stmt, err
				}
				stmt.params = append(stmt.params, e)
				if p.Sym.Kind == TokComma {
					p.Scan()
				}
			}
			p.Scan()
		}
	default:
		return stmt, parseErrorf("line %d: unexpected token %v in gate body", p.Sym.Line, p.Sym.Kind)
	}

	for p.Sym.Kind == TokIdentifier {
		stmt.args = append(stmt.args, p.Sym.Str)
		p.Scan()
		if p.Sym.Kind == TokComma {
			p.Scan()
		}
	}
	return stmt, p.Check(TokSemicolon)
}

// OpaqueGateDecl registers an opaque gate signature.
func (p *Parser) OpaqueGateDecl() error {
	if err := p.Check(TokOpaque); err != nil {
		return err
	}
	decl := &gateDecl{opaque: true}
	if err := p.Check(TokIdentifier); err != nil {
		return err
	}
	decl.name = p.T.Str
	if p.Sym.Kind == TokLParen {
		p.Scan()
		for p.Sym.Kind == TokIdentifier {
			decl.params = append(decl.params, p.Sym.Str)
			p.Scan()
			if p.Sym.Kind == TokComma {
				p.Scan()
			}
		}
		if err := p.Check(TokRParen); err != nil {
			return err
		}
	}
	for p.Sym.Kind == TokIdentifier {
		decl.qubits = append(decl.qubits, p.Sym.Str)
		p.Scan()
		if p.Sym.Kind == TokComma {
			p.Scan()
		}
	}
	p.gates[decl.name] = decl
	return p.Check(TokSemicolon)
}

// ---- statements ----

// Qop builds the operations for one quantum statement (gate invocation,
// measurement, or reset). Whole-register arguments broadcast elementwise.
func (p *Parser) Qop() ([]*Operation, error) {
	switch p.Sym.Kind {
	case TokMeasure:
		p.Scan()
		q, err := p.argument(p.Qregs)
		if err != nil {
			return nil, err
		}
		if err := p.Check(TokArrow); err != nil {
			return nil, err
		}
		cl, err := p.argument(p.Cregs)
		if err != nil {
			return nil, err
		}
		if err := p.Check(TokSemicolon); err != nil {
			return nil, err
		}
		if q.Size != cl.Size {
			return nil, parseErrorf("measure: mismatched register sizes %d and %d", q.Size, cl.Size)
		}
		ops := make([]*Operation, 0, q.Size)
		for i := 0; i < q.Size; i++ {
			ops = append(ops, NewMeasure(p.NumQubits, q.Start+i, cl.Start+i))
		}
		return ops, nil

	case TokReset:
		p.Scan()
		q, err := p.argument(p.Qregs)
		if err != nil {
			return nil, err
		}
		if err := p.Check(TokSemicolon); err != nil {
			return nil, err
		}
		qubits := make([]int, 0, q.Size)
		for i := 0; i < q.Size; i++ {
			qubits = append(qubits, q.Start+i)
		}
		return []*Operation{NewReset(p.NumQubits, qubits)}, nil

	case TokUGate:
		p.Scan()
		params, err := p.paramList(3)
		if err != nil {
			return nil, err
		}
		args, err := p.ArgList()
		if err != nil {
			return nil, err
		}
		if err := p.Check(TokSemicolon); err != nil {
			return nil, err
		}
		return p.emitGate(builtinGates["u3"], params, args)

	case TokCXGate:
		p.Scan()
		args, err := p.ArgList()
		if err != nil {
			return nil, err
		}
		if err := p.Check(TokSemicolon); err != nil {
			return nil, err
		}
		return p.emitGate(builtinGates["cx"], nil, args)

	case TokSwap:
		p.Scan()
		args, err := p.ArgList()
		if err != nil {
			return nil, err
		}
		if err := p.Check(TokSemicolon); err != nil {
			return nil, err
		}
		return p.emitGate(builtinGates["swap"], nil, args)

	case TokIdentifier:
		name := p.Sym.Str
		p.Scan()
		var params []float64
		if p.Sym.Kind == TokLParen {
			var err error
			params, err = p.paramList(-1)
			if err != nil {
				return nil, err
			}
		}
		args, err := p.ArgList()
		if err != nil {
			return nil, err
		}
		if err := p.Check(TokSemicolon); err != nil {
			return nil, err
		}
		return p.applyGate(name, params, args)
	}
	return nil, parseErrorf("line %d: expected a quantum operation, got %v", p.Sym.Line, p.Sym.Kind)
}

// paramList parses "(exp, exp, …)" and evaluates it over the empty
// environment. want < 0 accepts any arity.
func (p *Parser) paramList(want int) ([]float64, error) {
	if err := p.Check(TokLParen); err != nil {
		return nil, err
	}
	var params []float64
	for p.Sym.Kind != TokRParen {
		e, err := p.exp()
		if err != nil {
			return nil, err
		}
		v, err := e.eval(nil)
		if err != nil {
			return nil, err
		}
		params = append(params, v)
		if p.Sym.Kind == TokComma {
			p.Scan()
		}
	}
	p.Scan()
	if want >= 0 && len(params) != want {
		return nil, parseErrorf("expected %d parameters, got %d", want, len(params))
	}
	return params, nil
}

// applyGate resolves a named gate invocation: builtins are emitted directly,
// declared gates expand recursively through their bodies.
func (p *Parser) applyGate(name string, params []float64, args []argRange) ([]*Operation, error) {
	if bg, ok := builtinGates[name]; ok {
		if len(params) != bg.nparams {
			return nil, parseErrorf("gate %q expects %d parameters, got %d", name, bg.nparams, len(params))
		}
		return p.emitGate(bg, params, args)
	}

	decl, ok := p.gates[name]
	if !ok {
		return nil, parseErrorf("gate %q is not declared", name)
	}
	if decl.opaque {
		return nil, parseErrorf("opaque gate %q has no definition", name)
	}
	if len(args) != len(decl.qubits) {
		return nil, parseErrorf("gate %q expects %d qubit arguments, got %d", name, len(decl.qubits), len(args))
	}
	if len(params) != len(decl.params) {
		return nil, parseErrorf("gate %q expects %d parameters, got %d", name, len(decl.params), len(params))
	}

	// Broadcast whole-register arguments before expanding the body.
	return p.broadcast(args, func(single []argRange) ([]*Operation, error) {
		env := map[string]float64{}
		for i, formal := range decl.params {
			env[formal] = params[i]
		}
		formalArg := map[string]argRange{}
		for i, formal := range decl.qubits {
			formalArg[formal] = single[i]
		}

		var ops []*Operation
		for _, stmt := range decl.body {
			if stmt.name == "barrier" {
				continue
			}
			stmtParams := make([]float64, len(stmt.params))
			for i, e := range stmt.params {
				v, err := e.eval(env)
				if err != nil {
					return nil, err
				}
				stmtParams[i] = v
			}
			stmtArgs := make([]argRange, len(stmt.args))
			for i, formal := range stmt.args {
				a, ok := formalArg[formal]
				if !ok {
					return nil, parseErrorf("gate %q references undeclared qubit %q", decl.name, formal)
				}
				stmtArgs[i] = a
			}
			var sub []*Operation
			var err error
			switch stmt.name {
			case "U":
				sub, err = p.emitGate(builtinGates["u3"], stmtParams, stmtArgs)
			case "CX":
				sub, err = p.emitGate(builtinGates["cx"], nil, stmtArgs)
			default:
				sub, err = p.applyGate(stmt.name, stmtParams, stmtArgs)
			}
			if err != nil {
				return nil, err
			}
			ops = append(ops, sub...)
		}
		return ops, nil
	})
}

// emitGate builds the operations for a builtin gate invocation.
func (p *Parser) emitGate(bg builtinGate, params []float64, args []argRange) ([]*Operation, error) {
	ntargets := 1
	if bg.twoTarget {
		ntargets = 2
	}
	if len(args) != bg.ncontrols+ntargets {
		return nil, parseErrorf("gate expects %d qubit arguments, got %d", bg.ncontrols+ntargets, len(args))
	}
	return p.broadcast(args, func(single []argRange) ([]*Operation, error) {
		controls := make([]Control, bg.ncontrols)
		for i := 0; i < bg.ncontrols; i++ {
			controls[i] = Control{Qubit: single[i].Start}
		}
		if bg.twoTarget {
			t0 := single[len(single)-2].Start
			t1 := single[len(single)-1].Start
			return []*Operation{NewTwoTarget(p.NumQubits, controls, t0, t1, bg.kind, params...)}, nil
		}
		target := single[len(single)-1].Start
		return []*Operation{NewStandard(p.NumQubits, controls, target, bg.kind, params...)}, nil
	})
}

// broadcast expands whole-register arguments elementwise: every register
// argument must have the same size, single bits are repeated.
func (p *Parser) broadcast(args []argRange, emit func([]argRange) ([]*Operation, error)) ([]*Operation, error) {
	n := 1
	for _, a := range args {
		if a.Size > 1 {
			if n > 1 && a.Size != n {
				return nil, parseErrorf("mismatched register sizes %d and %d in gate arguments", n, a.Size)
			}
			n = a.Size
		}
	}
	var ops []*Operation
	for i := 0; i < n; i++ {
		single := make([]argRange, len(args))
		for j, a := range args {
			if a.Size > 1 {
				single[j] = argRange{Start: a.Start + i, Size: 1}
			} else {
				single[j] = a
			}
		}
		sub, err := emit(single)
		if err != nil {
			return nil, err
		}
		ops = append(ops, sub...)
	}
	return ops, nil
}
