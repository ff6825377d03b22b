package qcir

import (
	"io"
	"os"

	"go.uber.org/zap"
)

// ImportOpenQASM parses OpenQASM-family source into the circuit. Lexing and
// statement-level construction are delegated to the Parser collaborator; this
// loop owns the top-level statement dispatch.
func (c *Circuit) ImportOpenQASM(r io.Reader) error {
	p := NewParser(r, c.QubitRegisters, c.ClassicalRegisters)
	p.NumQubits = c.NumQubits

	p.Scan()
	if err := p.Check(TokOpenQASM); err != nil {
		return err
	}
	if err := p.Check(TokReal); err != nil {
		return err
	}
	if err := p.Check(TokSemicolon); err != nil {
		return err
	}

	for p.Sym.Kind != TokEOF {
		switch p.Sym.Kind {
		case TokQreg:
			p.Scan()
			if err := p.Check(TokIdentifier); err != nil {
				return err
			}
			name := p.T.Str
			n, err := c.qasmRegisterSize(p)
			if err != nil {
				return err
			}
			c.QubitRegisters[name] = Register{Start: c.NumQubits, Size: n}
			c.NumQubits += n
			p.NumQubits = c.NumQubits
			for _, op := range c.Operations {
				op.SetNumQubits(c.NumQubits)
			}

		case TokCreg:
			p.Scan()
			if err := p.Check(TokIdentifier); err != nil {
				return err
			}
			name := p.T.Str
			n, err := c.qasmRegisterSize(p)
			if err != nil {
				return err
			}
			c.ClassicalRegisters[name] = Register{Start: c.NumClassicalBits, Size: n}
			c.NumClassicalBits += n

		case TokUGate, TokCXGate, TokSwap, TokIdentifier, TokMeasure, TokReset:
			ops, err := p.Qop()
			if err != nil {
				return err
			}
			for _, op := range ops {
				c.Append(op)
			}

		case TokGate:
			if err := p.GateDecl(); err != nil {
				return err
			}

		case TokOpaque:
			if err := p.OpaqueGateDecl(); err != nil {
				return err
			}

		case TokInclude:
			p.Scan()
			if err := p.Check(TokString); err != nil {
				return err
			}
			name := p.T.Str
			if p.Sym.Kind != TokSemicolon {
				return parseErrorf("line %d: expected ; after include", p.Sym.Line)
			}
			// The standard library header is covered by the parser's builtin
			// gate set; anything else is spliced into the token stream. The
			// splice must happen while the semicolon is still the lookahead,
			// before any token past the include point has been lexed.
			if name == "qelib1.inc" {
				p.Scan()
			} else {
				f, err := os.Open(name)
				if err != nil {
					return fileErrorf("opening include %q: %v", name, err)
				}
				defer f.Close()
				p.AddInput(f)
			}

		case TokBarrier:
			p.Scan()
			args, err := p.ArgList()
			if err != nil {
				return err
			}
			if err := p.Check(TokSemicolon); err != nil {
				return err
			}
			var qubits []int
			for _, a := range args {
				for i := 0; i < a.Size; i++ {
					qubits = append(qubits, a.Start+i)
				}
			}
			c.Append(NewBarrier(c.NumQubits, qubits))

		case TokIf:
			p.Scan()
			if err := p.Check(TokLParen); err != nil {
				return err
			}
			if err := p.Check(TokIdentifier); err != nil {
				return err
			}
			creg := p.T.Str
			if err := p.Check(TokEq); err != nil {
				return err
			}
			if err := p.Check(TokNNInteger); err != nil {
				return err
			}
			n := p.T.Val
			if err := p.Check(TokRParen); err != nil {
				return err
			}

			reg, ok := c.ClassicalRegisters[creg]
			ops, err := p.Qop()
			if err != nil {
				return err
			}
			if !ok {
				zap.L().Error("if statement references an undeclared classical register; statement dropped",
					zap.String("creg", creg))
				continue
			}
			for _, op := range ops {
				c.Append(NewClassicControlled(op, reg.Start+n, n))
			}

		case TokSnapshot:
			p.Scan()
			if err := p.Check(TokLParen); err != nil {
				return err
			}
			if err := p.Check(TokNNInteger); err != nil {
				return err
			}
			id := p.T.Val
			if err := p.Check(TokRParen); err != nil {
				return err
			}
			args, err := p.ArgList()
			if err != nil {
				return err
			}
			if err := p.Check(TokSemicolon); err != nil {
				return err
			}
			var qubits []int
			for _, a := range args {
				if a.Size != 1 {
					zap.L().Error("snapshot arguments must be single qubits", zap.Int("size", a.Size))
				}
				qubits = append(qubits, a.Start)
			}
			c.Append(NewSnapshot(c.NumQubits, qubits, id))

		case TokProbabilities:
			c.Append(NewShowProbabilities(c.NumQubits))
			p.Scan()
			if err := p.Check(TokSemicolon); err != nil {
				return err
			}

		default:
			return parseErrorf("line %d: unexpected statement: started with %v", p.Sym.Line, p.Sym.Kind)
		}
	}

	c.identityPermutations()
	return nil
}

// qasmRegisterSize parses the "[n];" tail of a register declaration.
func (c *Circuit) qasmRegisterSize(p *Parser) (int, error) {
	if err := p.Check(TokLBrack); err != nil {
		return 0, err
	}
	if err := p.Check(TokNNInteger); err != nil {
		return 0, err
	}
	n := p.T.Val
	if err := p.Check(TokRBrack); err != nil {
		return 0, err
	}
	return n, p.Check(TokSemicolon)
}
