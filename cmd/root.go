package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "manseek",
	Short:        "manseek — semantic search over installed manual pages",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `manseek indexes the manual pages installed on this machine into a local
TF-IDF model at ~/.manseek/index/ and ranks them against free-text queries,
for when you know what a command does but not what it is called.`,
}

// checkGroffAvailable returns a clear error if groff is not found on PATH.
func checkGroffAvailable() error {
	if _, err := exec.LookPath("groff"); err != nil {
		return fmt.Errorf("groff is not installed or not on PATH\n" +
			"  manseek needs groff to render manual pages into plain text.\n" +
			"  Install groff from your package manager and try again.")
	}
	return nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
