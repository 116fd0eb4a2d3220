package cmd

import (
	"fmt"
	"os"
)

// readSource resolves a subcommand's input: an inline -e expression
// wins over a file argument; exactly one of the two must be present.
// Returns the source text and a display name used for error messages
// and caret rendering.
func readSource(evalExpr string, args []string) (source, name string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e/--eval for inline source")
}
