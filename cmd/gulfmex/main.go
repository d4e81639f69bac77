package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mcgru/gulfmex/internal/diagnostics"
	"github.com/mcgru/gulfmex/internal/pipeline"
	"github.com/mcgru/gulfmex/internal/runtimestore"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	sourceCode, filePath, err := readInputFromArgs(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if sourceCode == "" {
		return
	}

	ctx := pipeline.New(sourceCode, filePath, os.Stdout, os.Stdin)

	baseDir := "."
	if filePath != "" {
		baseDir = filepath.Dir(filePath)
	}
	if store, err := runtimestore.Open(baseDir); err == nil {
		ctx.Store = store
	}

	_, runErr := ctx.Run()

	if len(ctx.Errors) > 0 {
		fmt.Fprintln(os.Stderr, "Parsing failed with errors:")
		for _, e := range ctx.Errors {
			printDiagnostic(e, sourceCode)
		}
		os.Exit(1)
	}

	if runErr != nil {
		if exitErr, ok := runErr.(*pipeline.ExitError); ok {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Runtime error: %s\n", runErr)
		os.Exit(1)
	}
}

func printDiagnostic(e *diagnostics.Error, source string) {
	fmt.Fprintf(os.Stderr, "- %s\n", e.Error())
	lines := splitLines(source)
	fmt.Fprint(os.Stderr, diagnostics.Caret(e, lines))
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func readInputFromArgs(args []string) (source, path string, err error) {
	if len(args) == 1 {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", "", fmt.Errorf("Usage: %s <file.gmx> or pipe from stdin", args[0])
		}
		data, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return "", "", fmt.Errorf("reading stdin: %w", readErr)
		}
		return string(data), "", nil
	}

	path = args[1]
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, readErr)
	}
	abs, absErr := filepath.Abs(path)
	if absErr == nil {
		path = abs
	}
	return string(data), path, nil
}
