package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/paredros/session"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
)

// main() starts an interactive CLI, where users may step through the
// decisions a parser took while parsing an input file.
func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	grammarFile := flag.String("grammar", "", "Grammar file (EBNF)")
	inputFile := flag.String("input", "", "Input file")
	start := flag.String("start", "", "Start production")
	maxK := flag.Int("k", 0, "Maximum lookahead for backtracking decisions")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelInfo)
	pterm.Info.Println("Welcome to pdb")
	tracer().Infof("Trace level is %s", *tlevel)
	if *grammarFile == "" || *inputFile == "" {
		pterm.Error.Println("Usage: pdb -grammar G.ebnf -input file")
		os.Exit(1)
	}
	setTraceLevel(traceLevel(*tlevel))
	//
	// parse input and record the traversal
	intp, err := load(*grammarFile, *inputFile, *start, *maxK)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	//
	// set up REPL
	repl, err := readline.New("pdb> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp.repl = repl
	tracer().Infof("Quit with <ctrl>D")
	intp.REPL()
}

func load(grammarFile, inputFile, start string, maxK int) (*Intp, error) {
	grammar, err := os.ReadFile(grammarFile)
	if err != nil {
		return nil, err
	}
	input, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, err
	}
	var opts []session.Option
	if start != "" {
		opts = append(opts, session.WithStart(start))
	}
	if maxK > 0 {
		opts = append(opts, session.WithMaxLookahead(maxK))
	}
	name := strings.TrimSuffix(filepath.Base(grammarFile), filepath.Ext(grammarFile))
	result, err := session.Debug(name, string(grammar), inputFile, string(input), opts...)
	if result == nil {
		return nil, err
	}
	if err != nil {
		pterm.Error.Println(err.Error())
	}
	for _, e := range result.SyntaxErrors {
		pterm.Warning.Println(e.Error())
	}
	for _, e := range result.LexErrors {
		pterm.Warning.Println(e.Error())
	}
	pterm.Info.Println(fmt.Sprintf("%s: accepted=%v, %d nodes", inputFile,
		result.Accepted, result.Traversal.Size()))
	return NewIntp(result), nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setTraceLevel(level tracing.TraceLevel) {
	for _, key := range []string{"paredros.pdb", "paredros.session", "paredros.debug",
		"paredros.traversal", "paredros.ll", "paredros.lr", "paredros.lang", "paredros.scanner"} {
		tracing.Select(key).SetTraceLevel(level)
	}
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
