package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/maruel/natural"
	"github.com/matthew-healy/uplp/internal/driver"
	"github.com/spf13/cobra"
)

var (
	astDumpEval string
	astDumpDir  string
)

var astDumpCmd = &cobra.Command{
	Use:   "ast-dump [file]",
	Short: "Parse source and print the named AST",
	Long: `Parse a program and print its named, s-expression-rendered AST.

Examples:
  uplp ast-dump program.uplp
  uplp ast-dump -e "let x = 1 in x + 1"
  uplp ast-dump --dir examples`,
	Args: cobra.MaximumNArgs(1),
	RunE: runASTDump,
}

func init() {
	rootCmd.AddCommand(astDumpCmd)

	astDumpCmd.Flags().StringVarP(&astDumpEval, "eval", "e", "", "dump the AST of an inline expression instead of reading from file")
	astDumpCmd.Flags().StringVar(&astDumpDir, "dir", "", "dump every .uplp file under dir, in natural sort order")
}

func runASTDump(_ *cobra.Command, args []string) error {
	if astDumpDir != "" {
		return dumpDir(astDumpDir)
	}

	source, name, err := readSource(astDumpEval, args)
	if err != nil {
		return err
	}
	return dumpOne(source, name)
}

func dumpOne(source, name string) error {
	raw, derr := driver.Parse(source)
	if derr != nil {
		fmt.Fprintln(os.Stderr, derr.WithSource(source, name).Format())
		return fmt.Errorf("parsing failed for %s", name)
	}
	fmt.Println(raw.String())
	return nil
}

func dumpDir(dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".uplp" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	natural.Sort(files)

	failed := false
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		fmt.Printf("=== %s ===\n", path)
		if err := dumpOne(string(content), path); err != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more files failed to parse")
	}
	return nil
}
