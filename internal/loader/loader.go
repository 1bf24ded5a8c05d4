// Package loader parses a plain-text BNF-ish grammar file into a
// *grammar.Grammar.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/parsesmith/internal/gerrors"
	"github.com/dekarrin/parsesmith/internal/grammar"
	"golang.org/x/text/unicode/norm"
)

// Warning is one skipped-line notice produced while loading. Malformed lines
// are not fatal; the caller decides what to do with the warnings (print
// them, log them, ignore them).
type Warning struct {
	Line int
	Text string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Text)
}

// arrow is the two-character ASCII arrow; unicodeArrow is the single-rune
// alternative also accepted in grammar files.
const (
	arrow        = "->"
	unicodeArrow = "→"
)

// LoadFile opens path and parses it as a grammar file. A missing or
// unopenable file is fatal.
func LoadFile(path string) (*grammar.Grammar, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, gerrors.Wrap(gerrors.GrammarFileMissing, err,
			"could not open grammar file",
			"the grammar file at "+path+" does not exist or is not readable")
	}
	defer f.Close()

	return Load(f)
}

// Load parses a grammar file from r. Source text is NFC-normalized first
// (golang.org/x/text/unicode/norm) so a precomposed "→" and its decomposed
// combining-character equivalent scan identically, and so do accented symbol
// names.
//
// Format, one production per line:
//
//	LHS ARROW RHS1 | RHS2 | ...
//
// where ARROW is "->" or "→", tokens are whitespace-separated, "#" begins a
// comment that runs to end of line, and an empty alternative is written as
// the single token "ε". The first production's LHS becomes the start
// symbol. Malformed lines are skipped with a Warning; they do not abort the
// load.
func Load(r io.Reader) (*grammar.Grammar, []Warning, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, gerrors.Wrap(gerrors.GrammarFileMissing, err,
			"could not read grammar source", "failed reading grammar source")
	}
	normalized := norm.NFC.String(string(raw))

	g := grammar.New()
	var warnings []Warning

	scanner := bufio.NewScanner(strings.NewReader(normalized))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lhs, rhsText, ok := splitArrow(line)
		if !ok {
			warnings = append(warnings, Warning{Line: lineNo, Text: "no arrow (\"->\" or \"→\") found: " + line})
			continue
		}
		lhsFields := strings.Fields(lhs)
		if len(lhsFields) != 1 {
			warnings = append(warnings, Warning{Line: lineNo, Text: "left-hand side must be a single symbol: " + line})
			continue
		}
		lhs = lhsFields[0]

		alts := strings.Split(rhsText, "|")
		if len(alts) == 0 {
			warnings = append(warnings, Warning{Line: lineNo, Text: "no alternatives given: " + line})
			continue
		}

		var productions [][]string
		malformed := false
		for _, alt := range alts {
			fields := strings.Fields(alt)
			if len(fields) == 0 {
				warnings = append(warnings, Warning{Line: lineNo, Text: "empty alternative (use ε explicitly): " + line})
				malformed = true
				break
			}
			if len(fields) == 1 && fields[0] == grammar.Epsilon {
				productions = append(productions, nil)
				continue
			}
			productions = append(productions, fields)
		}
		if malformed {
			continue
		}

		for _, prod := range productions {
			g.AddRule(lhs, prod)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, gerrors.Wrap(gerrors.GrammarFileMissing, err,
			"could not read grammar source", "failed scanning grammar source")
	}

	if err := g.Validate(); err != nil {
		return nil, warnings, gerrors.Newf(gerrors.GrammarMalformedLine,
			"the grammar file produced no usable grammar",
			"%s", err.Error())
	}

	return g, warnings, nil
}

// stripComment removes a "#"-to-end-of-line comment, if present.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// splitArrow finds the first occurrence of either accepted arrow and splits
// line around it. An RHS symbol that never appears as an LHS is not an
// error here at all: it is silently classified as a terminal by
// grammar.Grammar.Terminals.
func splitArrow(line string) (lhs, rhs string, ok bool) {
	if i := strings.Index(line, arrow); i >= 0 {
		return line[:i], line[i+len(arrow):], true
	}
	if i := strings.Index(line, unicodeArrow); i >= 0 {
		return line[:i], line[i+len(unicodeArrow):], true
	}
	return "", "", false
}
