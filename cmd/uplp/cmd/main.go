package cmd

// Main runs the CLI and returns a process exit code, rather than calling
// os.Exit itself, so it can be registered as a subcommand entry point for
// github.com/rogpeppe/go-internal/testscript's RunMain, which executes
// it in a forked copy of the test binary per script line.
func Main() int {
	if err := Execute(); err != nil {
		return 1
	}
	return 0
}
