/*
Psmith loads a grammar file and analyzes it: FIRST/FOLLOW/NULLABLE, the
LL(1) table, the LR(0) canonical collection and SLR(1) ACTION/GOTO table,
and any conflicts found. Given a token stream it will additionally run that
stream through either recognizer and print the step-by-step trace.

Usage:

	psmith [flags] [tokens...]

The flags are:

	-v, --version
		Give the current version of parsesmith and then exit.

	-g, --grammar FILE
		Use the provided grammar file. Required unless a config file names
		one.

	-c, --config FILE
		Load configuration from the given TOML file. Flags override config
		values where both are given.

	-i, --interactive
		Start an interactive REPL over the loaded grammar instead of running
		once and exiting.

	-r, --recognizer NAME
		Which recognizer to run trailing tokens through in one-shot mode:
		"ll1" (default) or "lr0".
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/parsesmith/internal/config"
	"github.com/dekarrin/parsesmith/internal/conflict"
	"github.com/dekarrin/parsesmith/internal/diag"
	"github.com/dekarrin/parsesmith/internal/firstfollow"
	"github.com/dekarrin/parsesmith/internal/grammar"
	"github.com/dekarrin/parsesmith/internal/ll1"
	"github.com/dekarrin/parsesmith/internal/loader"
	"github.com/dekarrin/parsesmith/internal/lr0"
	"github.com/dekarrin/parsesmith/internal/repl"
	"github.com/dekarrin/parsesmith/internal/trace"
	"github.com/dekarrin/parsesmith/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates the grammar file could not be loaded.
	ExitInitError

	// ExitParseError indicates the trailing token stream was rejected.
	ExitParseError
)

var (
	returnCode     = ExitSuccess
	flagVersion    = pflag.BoolP("version", "v", false, "Gives the version info")
	flagConfig     = pflag.StringP("config", "c", "", "Load configuration from the given TOML file")
	grammarFile    = pflag.StringP("grammar", "g", "", "The grammar file to load")
	interactive    = pflag.BoolP("interactive", "i", false, "Start an interactive REPL over the loaded grammar")
	recognizerFlag = pflag.StringP("recognizer", "r", "ll1", `Which recognizer to run trailing tokens through: "ll1" or "lr0"`)
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	var cfg config.Config
	if *flagConfig != "" {
		var err error
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}
	cfg = cfg.FillDefaults()

	gramPath := cfg.GrammarFile
	if *grammarFile != "" {
		gramPath = *grammarFile
	}
	if gramPath == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -g/--grammar is required")
		returnCode = ExitInitError
		return
	}

	sink, closeSink, err := cfg.BuildSink()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer closeSink()
	trace.SetDefault(sink)

	g, warnings, err := loader.LoadFile(gramPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", diag.ExplainError(err))
		returnCode = ExitInitError
		return
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w.String())
	}

	if *interactive {
		runInteractive(g)
		return
	}

	runOnce(g, pflag.Args())
}

func runOnce(g *grammar.Grammar, tokens []string) {
	ff := firstfollow.Compute(g)
	llTable := ll1.Build(g, ff)
	lrTable := lr0.BuildSLRTable(g, ff)

	fmt.Println("=== FIRST / FOLLOW / NULLABLE ===")
	for _, nt := range g.NonTerminals() {
		fmt.Printf("FIRST(%s) = %v  FOLLOW(%s) = %v  NULLABLE(%s) = %v\n",
			nt, ff.First[nt].Elements(), nt, ff.Follow[nt].Elements(), nt, ff.Nullable[nt])
	}

	fmt.Println("\n=== LL(1) TABLE ===")
	fmt.Println(diag.LL1Table(llTable))

	fmt.Printf("\n=== LR(0) CANONICAL COLLECTION (%d states) ===\n", len(lrTable.Collection.States))
	fmt.Println(diag.ActionGotoTable(lrTable))

	conflicts := append(conflict.DetectLL1(llTable), conflict.DetectLR(lrTable)...)
	fmt.Printf("\n=== CONFLICTS (%d) ===\n", len(conflicts))
	for _, c := range conflicts {
		fmt.Println(diag.Explain(c))
	}

	if len(tokens) == 0 {
		return
	}

	mem := trace.NewMemorySink()
	sink := trace.Multi(mem, trace.Default())
	var parseErr error
	switch strings.ToLower(*recognizerFlag) {
	case "lr0":
		parseErr = lr0.NewRecognizer(lrTable).Parse(tokens, sink)
	default:
		parseErr = ll1.NewRecognizer(llTable, g).Parse(tokens, sink)
	}

	fmt.Println("\n=== TRACE ===")
	for _, l := range mem.Lines {
		fmt.Println(l)
	}
	if parseErr != nil {
		fmt.Fprintf(os.Stderr, "REJECTED: %s\n", diag.ExplainError(parseErr))
		returnCode = ExitParseError
	} else {
		fmt.Println("ACCEPTED")
	}
}

func runInteractive(g *grammar.Grammar) {
	session, err := repl.NewSession(g, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer session.Close()

	if err := session.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitParseError
	}
}
