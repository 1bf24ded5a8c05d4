// Package repl is the interactive token-stream driver for the grammar
// toolkit: type whitespace-separated tokens, watch the chosen recognizer
// step through them live.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/parsesmith/internal/diag"
	"github.com/dekarrin/parsesmith/internal/firstfollow"
	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/dekarrin/parsesmith/internal/ll1"
	"github.com/dekarrin/parsesmith/internal/lr0"
	"github.com/dekarrin/parsesmith/internal/trace"
)

// mode selects which recognizer live input is run through.
type mode int

const (
	modeLL1 mode = iota
	modeLR0
)

func (m mode) String() string {
	if m == modeLR0 {
		return "lr0"
	}
	return "ll1"
}

// Session drives one interactive REPL over a loaded grammar. Construct with
// NewSession and call Run.
type Session struct {
	g       *grammar.Grammar
	ff      firstfollow.Result
	llTable ll1.Table
	lrTable *lr0.Table
	cur     mode
	out     io.Writer
	rl      *readline.Instance
}

// NewSession precomputes every table once, up front, and returns a Session
// ready to Run.
func NewSession(g *grammar.Grammar, out io.Writer) (*Session, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "ll1> ",
		Stdout: out,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	ff := firstfollow.Compute(g)
	return &Session{
		g:       g,
		ff:      ff,
		llTable: ll1.Build(g, ff),
		lrTable: lr0.BuildSLRTable(g, ff),
		cur:     modeLL1,
		out:     out,
		rl:      rl,
	}, nil
}

// Close releases readline resources.
func (s *Session) Close() error {
	return s.rl.Close()
}

// Run reads lines until EOF or an explicit ":quit", dispatching each one to
// handleLine.
func (s *Session) Run() error {
	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return nil
		}

		s.handleLine(line)
	}
}

func (s *Session) handleLine(line string) {
	switch {
	case line == ":ll":
		s.cur = modeLL1
		s.rl.SetPrompt("ll1> ")
	case line == ":lr":
		s.cur = modeLR0
		s.rl.SetPrompt("lr0> ")
	case line == ":table":
		s.printTable()
	default:
		s.parseLine(line)
	}
}

func (s *Session) printTable() {
	if s.cur == modeLR0 {
		fmt.Fprintln(s.out, diag.ActionGotoTable(s.lrTable))
		return
	}
	fmt.Fprintln(s.out, diag.LL1Table(s.llTable))
}

func (s *Session) parseLine(line string) {
	tokens := strings.Fields(line)
	mem := trace.NewMemorySink()
	sink := trace.Multi(mem, trace.Default())

	var err error
	switch s.cur {
	case modeLR0:
		err = lr0.NewRecognizer(s.lrTable).Parse(tokens, sink)
	default:
		err = ll1.NewRecognizer(s.llTable, s.g).Parse(tokens, sink)
	}

	for _, l := range mem.Lines {
		fmt.Fprintln(s.out, l)
	}
	if err != nil {
		fmt.Fprintln(s.out, "rejected:", err)
	} else {
		fmt.Fprintln(s.out, "accepted")
	}
}
