// Command uplp is the command-line front end for the pipeline internal/driver
// sequences: parse, type-check, and evaluate source text or fixture files.
package main

import (
	"os"

	"github.com/matthew-healy/uplp/cmd/uplp/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
