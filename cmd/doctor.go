package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manseek/manseek/internal/config"
	"github.com/manseek/manseek/internal/index"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that manseek's dependencies and environment are correctly
configured. Run this command when something seems wrong, or before filing
a bug report.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected issues in the manseek environment.

Currently fixes:
  - Leftover temp build directories under ~/.manseek/tmp/
  - A stale index.lock from an interrupted build

Run 'manseek doctor' first to see what will be fixed.`,
	RunE: runDoctorFix,
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("manseek doctor")
	fmt.Println()

	// ── Check 1: groff installed ──────────────────────────────────────────
	fmt.Println("[ groff ]")
	if out, err := exec.Command("groff", "--version").Output(); err != nil {
		failD("groff not found — install it from your package manager")
	} else {
		printOK("", firstLine(string(out)))
	}
	fmt.Println()

	// ── Check 2: manpath installed ────────────────────────────────────────
	fmt.Println("[ manpath ]")
	if out, err := exec.Command("manpath").Output(); err != nil {
		failD("manpath not found — set manpaths in manseek.yaml or install man-db")
	} else {
		roots := strings.Split(strings.TrimSpace(string(out)), ":")
		printOK("", fmt.Sprintf("%d manual-page roots reported", len(roots)))
	}
	fmt.Println()

	// ── Check 3: manseek.yaml is valid ────────────────────────────────────
	fmt.Println("[ manseek.yaml ]")
	cfgPath, _ := config.ConfigPath()
	cfg, loadErr := config.Load()
	if loadErr != nil {
		failD("cannot parse %s: %v — run 'manseek init'", cfgPath, loadErr)
	} else {
		printOK("", fmt.Sprintf("valid YAML: %s", cfgPath))
		w := cfg.EffectiveWeighting()
		if !index.Scheme(w).Valid() {
			failD("unknown weighting %q — expected raw or log", w)
		}
	}
	fmt.Println()

	// ── Check 4: index loads ──────────────────────────────────────────────
	fmt.Println("[ index ]")
	indexDir, err := config.IndexDir()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(indexDir); os.IsNotExist(statErr) {
		printWarn("", "no index built yet — run 'manseek index'")
	} else if snap, err := index.Load(indexDir); err != nil {
		failD("index is unusable: %v — rebuild with 'manseek index'", err)
	} else {
		printOK("", fmt.Sprintf("%d documents, %d terms", snap.Manifest.DocCount, snap.Manifest.TermCount))
	}
	fmt.Println()

	// ── Check 5: stale build leftovers ────────────────────────────────────
	fmt.Println("[ leftovers ]")
	stale := findStaleBuildDirs()
	if len(stale) == 0 {
		printOK("", "no stale build directories")
	} else {
		for _, d := range stale {
			printWarn("", fmt.Sprintf("leftover build dir %s (run 'manseek doctor fix')", d))
		}
	}
	fmt.Println()

	if !allOK {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("All checks passed.")
	return nil
}

func runDoctorFix(_ *cobra.Command, _ []string) error {
	printSection("manseek doctor fix")
	fmt.Println()

	stale := findStaleBuildDirs()
	if len(stale) == 0 {
		printOK("", "nothing to fix")
		return nil
	}

	// Refuse to clean up under a running build.
	unlock, err := acquireIndexLock(0)
	if err != nil {
		return err
	}
	defer unlock()

	var failed int
	for _, d := range stale {
		if err := os.RemoveAll(d); err != nil {
			printErr("", fmt.Sprintf("cannot delete %s: %v", d, err))
			failed++
		} else {
			printOK("", fmt.Sprintf("deleted %s", d))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d item(s) could not be deleted", failed)
	}
	return nil
}

// findStaleBuildDirs reports temp build dirs under ~/.manseek/tmp left by
// interrupted builds. Only manseek's own artifacts are ever touched.
func findStaleBuildDirs() []string {
	manseekDir, err := config.ManseekDir()
	if err != nil {
		return nil
	}
	matches, _ := filepath.Glob(filepath.Join(manseekDir, "tmp", "index-build-*"))
	return matches
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
