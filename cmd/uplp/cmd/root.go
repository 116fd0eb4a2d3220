package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "uplp",
	Short: "A bidirectionally-typed expression language interpreter",
	Long: `uplp parses, type-checks, and evaluates a small expression language:
let-bindings (including let rec), curried lambdas with optional parameter
type annotations, type ascriptions, if/then/else, and arithmetic, equality,
and boolean operators. Type checking uses bidirectional inference over a
simply-typed core (no polymorphic types) with existential unification
variables; evaluation
compiles the checked program to a small stack-and-environment bytecode
and runs it on a ZAM-style abstract machine.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
