package qcir

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// TokenKind enumerates the typed tokens of the OpenQASM-family grammar.
type TokenKind int

const (
	TokNone TokenKind = iota
	TokEOF
	TokOpenQASM
	TokReal
	TokNNInteger
	TokIdentifier
	TokString
	TokSemicolon
	TokComma
	TokLParen
	TokRParen
	TokLBrack
	TokRBrack
	TokLBrace
	TokRBrace
	TokArrow
	TokEq
	TokPlus
	TokMinus
	TokTimes
	TokDiv
	TokPower
	TokPi
	TokSin
	TokCos
	TokTan
	TokExp
	TokLn
	TokSqrt
	TokQreg
	TokCreg
	TokGate
	TokOpaque
	TokInclude
	TokBarrier
	TokMeasure
	TokReset
	TokIf
	TokSnapshot
	TokProbabilities
	TokUGate
	TokCXGate
	TokSwap
)

var tokenNames = map[TokenKind]string{
	TokNone: "none", TokEOF: "eof", TokOpenQASM: "OPENQASM", TokReal: "real",
	TokNNInteger: "integer", TokIdentifier: "identifier", TokString: "string",
	TokSemicolon: ";", TokComma: ",", TokLParen: "(", TokRParen: ")",
	TokLBrack: "[", TokRBrack: "]", TokLBrace: "{", TokRBrace: "}",
	TokArrow: "->", TokEq: "==", TokPlus: "+", TokMinus: "-", TokTimes: "*",
	TokDiv: "/", TokPower: "^", TokPi: "pi", TokSin: "sin", TokCos: "cos",
	TokTan: "tan", TokExp: "exp", TokLn: "ln", TokSqrt: "sqrt",
	TokQreg: "qreg", TokCreg: "creg", TokGate: "gate", TokOpaque: "opaque",
	TokInclude: "include", TokBarrier: "barrier", TokMeasure: "measure",
	TokReset: "reset", TokIf: "if", TokSnapshot: "snapshot",
	TokProbabilities: "probabilities", TokUGate: "U", TokCXGate: "CX",
	TokSwap: "swap",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return "unknown"
}

var qasmKeywords = map[string]TokenKind{
	"OPENQASM":      TokOpenQASM,
	"qreg":          TokQreg,
	"creg":          TokCreg,
	"gate":          TokGate,
	"opaque":        TokOpaque,
	"include":       TokInclude,
	"barrier":       TokBarrier,
	"measure":       TokMeasure,
	"reset":         TokReset,
	"if":            TokIf,
	"snapshot":      TokSnapshot,
	"probabilities": TokProbabilities,
	"U":             TokUGate,
	"CX":            TokCXGate,
	"swap":          TokSwap,
	"pi":            TokPi,
	"sin":           TokSin,
	"cos":           TokCos,
	"tan":           TokTan,
	"exp":           TokExp,
	"ln":            TokLn,
	"sqrt":          TokSqrt,
}

// Token is one lexical unit with its decoded payload.
type Token struct {
	Kind    TokenKind
	Str     string
	Val     int
	ValReal float64
	Line    int
}

// Scanner turns OpenQASM-family source into a token stream. Included files
// are spliced in by pushing additional inputs onto a stack.
type Scanner struct {
	inputs []*bufio.Reader
	ch     rune
	eof    bool
	line   int
}

// NewScanner wraps a source reader.
func NewScanner(r io.Reader) *Scanner {
	s := &Scanner{inputs: []*bufio.Reader{bufio.NewReader(r)}, line: 1}
	s.nextCh()
	return s
}

// AddInput splices another source in front of the remaining token stream.
// The pending character lookahead belongs to the current source and is
// re-queued behind the spliced content.
func (s *Scanner) AddInput(r io.Reader) {
	pending := ""
	if !s.eof {
		pending = string(s.ch)
	}
	var rest io.Reader = strings.NewReader("")
	if len(s.inputs) > 0 {
		rest = multiBufReader{s.inputs[len(s.inputs)-1]}
		s.inputs = s.inputs[:len(s.inputs)-1]
	}
	s.inputs = append(s.inputs, bufio.NewReader(io.MultiReader(r, strings.NewReader(pending), rest)))
	s.eof = false
	s.nextCh()
}

// multiBufReader adapts a *bufio.Reader as a plain io.Reader for re-wrapping.
type multiBufReader struct{ r *bufio.Reader }

func (m multiBufReader) Read(p []byte) (int, error) { return m.r.Read(p) }

func (s *Scanner) nextCh() {
	for len(s.inputs) > 0 {
		r := s.inputs[len(s.inputs)-1]
		ch, _, err := r.ReadRune()
		if err != nil {
			s.inputs = s.inputs[:len(s.inputs)-1]
			continue
		}
		if ch == '\n' {
			s.line++
		}
		s.ch = ch
		return
	}
	s.eof = true
	s.ch = 0
}

// Next scans and returns the next token.
func (s *Scanner) Next() Token {
	for !s.eof && unicode.IsSpace(s.ch) {
		s.nextCh()
	}
	if s.eof {
		return Token{Kind: TokEOF, Line: s.line}
	}

	t := Token{Line: s.line}
	switch {
	case unicode.IsLetter(s.ch):
		var sb strings.Builder
		for !s.eof && (unicode.IsLetter(s.ch) || unicode.IsDigit(s.ch) || s.ch == '_') {
			sb.WriteRune(s.ch)
			s.nextCh()
		}
		t.Str = sb.String()
		if kind, ok := qasmKeywords[t.Str]; ok {
			t.Kind = kind
		} else {
			t.Kind = TokIdentifier
		}
		return t

	case unicode.IsDigit(s.ch) || s.ch == '.':
		var sb strings.Builder
		isReal := false
		for !s.eof && (unicode.IsDigit(s.ch) || s.ch == '.' || s.ch == 'e' || s.ch == 'E' ||
			((s.ch == '+' || s.ch == '-') && sb.Len() > 0 && (sb.String()[sb.Len()-1] == 'e' || sb.String()[sb.Len()-1] == 'E'))) {
			if !unicode.IsDigit(s.ch) {
				isReal = true
			}
			sb.WriteRune(s.ch)
			s.nextCh()
		}
		t.Str = sb.String()
		if isReal {
			t.Kind = TokReal
			t.ValReal, _ = strconv.ParseFloat(t.Str, 64)
		} else {
			t.Kind = TokNNInteger
			t.Val, _ = strconv.Atoi(t.Str)
			t.ValReal = float64(t.Val)
		}
		return t

	case s.ch == '"':
		var sb strings.Builder
		s.nextCh()
		for !s.eof && s.ch != '"' {
			sb.WriteRune(s.ch)
			s.nextCh()
		}
		s.nextCh() // closing quote
		t.Kind = TokString
		t.Str = sb.String()
		return t
	}

	ch := s.ch
	s.nextCh()
	switch ch {
	case ';':
		t.Kind = TokSemicolon
	case ',':
		t.Kind = TokComma
	case '(':
		t.Kind = TokLParen
	case ')':
		t.Kind = TokRParen
	case '[':
		t.Kind = TokLBrack
	case ']':
		t.Kind = TokRBrack
	case '{':
		t.Kind = TokLBrace
	case '}':
		t.Kind = TokRBrace
	case '+':
		t.Kind = TokPlus
	case '*':
		t.Kind = TokTimes
	case '^':
		t.Kind = TokPower
	case '-':
		if !s.eof && s.ch == '>' {
			s.nextCh()
			t.Kind = TokArrow
		} else {
			t.Kind = TokMinus
		}
	case '=':
		if !s.eof && s.ch == '=' {
			s.nextCh()
			t.Kind = TokEq
		} else {
			t.Kind = TokNone
		}
	case '/':
		if !s.eof && s.ch == '/' {
			// line comment
			for !s.eof && s.ch != '\n' {
				s.nextCh()
			}
			return s.Next()
		}
		t.Kind = TokDiv
	default:
		t.Kind = TokNone
		t.Str = string(ch)
	}
	return t
}
