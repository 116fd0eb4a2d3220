package cmd

import (
	"fmt"
	"os"

	"github.com/matthew-healy/uplp/internal/driver"
	"github.com/spf13/cobra"
)

var typecheckEval string

var typecheckCmd = &cobra.Command{
	Use:   "typecheck [file]",
	Short: "Parse, scope-check, and type-check source, printing the inferred type",
	Long: `Run parse, scope resolution, and bidirectional type inference, then
print the resulting, fully context-applied type.

Examples:
  uplp typecheck program.uplp
  uplp typecheck -e "|x: Num| x + 1"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTypecheck,
}

func init() {
	rootCmd.AddCommand(typecheckCmd)

	typecheckCmd.Flags().StringVarP(&typecheckEval, "eval", "e", "", "type-check an inline expression instead of reading from file")
}

func runTypecheck(_ *cobra.Command, args []string) error {
	source, name, err := readSource(typecheckEval, args)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[uplp] type checking %s\n", name)
	}

	t, derr := driver.Typecheck(source)
	if derr != nil {
		fmt.Fprintln(os.Stderr, derr.WithSource(source, name).Format())
		return fmt.Errorf("type checking failed for %s", name)
	}
	fmt.Println(t.String())
	return nil
}
