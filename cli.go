package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".raccoon_history"
	replPrompt  = ">> "
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `Raccoon - semantic analyzer for the Raccoon scripting language

Usage:
    raccoon <command> [arguments]

Commands:
    check <file>    Parse and semantically check a .rac file
    ast <file>      Parse a .rac file and print its AST as an s-expression
    eval <code>     Check inline code and report the type of its result
    repl            Start an interactive checking session
    help            Show this help message

Examples:
    raccoon check examples/narrowing.rac
    raccoon ast myfile.rac
    raccoon eval 'let x: int = 42; x + 1'
    raccoon repl

Use "raccoon <command> -h" for more information about a command.
`)
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show the parsed AST after checking")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: raccoon check [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Parse and semantically check a .rac file\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	filename := fs.Arg(0)
	input, err := readSource(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}

	prog, err := ParseProgram(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", stampFile(err, filename))
		os.Exit(1)
	}
	if err := NewAnalyzer(filename).Analyze(prog); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: no errors found\n", filename)
	if *verbose {
		fmt.Printf("AST: %s\n", ToSExpr(prog))
	}
}

func astCommand(args []string) {
	fs := flag.NewFlagSet("ast", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: raccoon ast <file>\n")
		fmt.Fprintf(os.Stderr, "Parse a .rac file and print its AST as an s-expression\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	filename := fs.Arg(0)
	input, err := readSource(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}

	prog, err := ParseProgram(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", stampFile(err, filename))
		os.Exit(1)
	}
	fmt.Println(ToSExpr(prog))
}

func evalCommand(args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show the parsed AST before the result")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: raccoon eval [-v] <code>\n")
		fmt.Fprintf(os.Stderr, "Check inline code and report the type of its result\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one code argument\n")
		fs.Usage()
		os.Exit(1)
	}

	input := []byte(fs.Arg(0) + "\x00")
	prog, err := ParseProgram(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Printf("AST: %s\n", ToSExpr(prog))
	}

	resultType, err := NewAnalyzer("").CheckChunk(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if resultType != nil {
		fmt.Println(TypeToString(resultType))
	} else {
		fmt.Println("no errors found")
	}
}

func replCommand(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: raccoon repl\n")
		fmt.Fprintf(os.Stderr, "Start an interactive checking session\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	fmt.Println("Raccoon checker REPL. Ctrl+D exits. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	// Declarations accumulate across inputs in one analyzer.
	analyzer := NewAnalyzer("")

	for {
		line, err := ln.Prompt(replPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.ToLower(trimmed) == ":quit" {
				return
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		prog, err := ParseProgram([]byte(line + "\x00"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		resultType, err := analyzer.CheckChunk(prog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		if resultType != nil {
			fmt.Printf(": %s\n", TypeToString(resultType))
		} else {
			fmt.Println("ok")
		}
		ln.AppendHistory(line)
	}
}

// readSource loads a source file and null-terminates it as required by the
// lexer.
func readSource(filename string) ([]byte, error) {
	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return append(sourceBytes, '\x00'), nil
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "check":
		checkCommand(args)
	case "ast":
		astCommand(args)
	case "eval":
		evalCommand(args)
	case "repl":
		replCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
