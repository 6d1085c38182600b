package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/manseek/manseek/internal/config"
	"github.com/manseek/manseek/internal/index"
	"github.com/manseek/manseek/internal/manpage"
)

var flagIndexVerbose bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the local manual-page index",
	Long: `Discover installed manual pages, build a TF-IDF model over them and
install it at ~/.manseek/index/. The build is all-or-nothing: a failed
build leaves any previous index untouched.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagIndexVerbose, "verbose", false, "Log every page as it is parsed")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, _ []string) error {
	if flagIndexVerbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if err := checkGroffAvailable(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'manseek init' first.", err)
	}

	scheme := index.Scheme(cfg.EffectiveWeighting())
	if !scheme.Valid() {
		return fmt.Errorf("invalid weighting %q in config: want %q or %q", cfg.Weighting, index.SchemeRaw, index.SchemeLog)
	}

	unlock, err := acquireIndexLock(10 * time.Second)
	if err != nil {
		return err
	}
	defer unlock()

	roots, err := cfg.EffectiveManpaths()
	if err != nil {
		return err
	}
	printInfo("", fmt.Sprintf("scanning %d manual-page roots", len(roots)))

	start := time.Now()
	pages, err := manpage.Discover(roots, cfg.EffectiveSections())
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no manual pages found under %v", roots)
	}

	// Ordinals follow id order so rebuilds over the same page set are
	// deterministic.
	sort.Slice(pages, func(i, j int) bool { return pages[i].ID() < pages[j].ID() })

	builder := index.NewBuilder(index.NewTokenizer(cfg.StopWords))
	for _, p := range pages {
		if err := builder.AddSource(p.ID(), p.Source(), p.Text()); err != nil {
			return fmt.Errorf("index build failed: %w", err)
		}
	}
	snap, err := builder.Build(scheme)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"docs":    snap.Manifest.DocCount,
		"terms":   snap.Manifest.TermCount,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("model built")

	installed, err := installSnapshot(snap)
	if err != nil {
		return err
	}

	printOK("", fmt.Sprintf("indexed %d pages, %d terms (%s weighting)", snap.Manifest.DocCount, snap.Manifest.TermCount, snap.Manifest.Scheme))
	printOK("", fmt.Sprintf("index written: %s", installed))
	return nil
}

// installSnapshot writes snap into a temp dir and swaps it into place so
// readers never observe a half-written index.
func installSnapshot(snap *index.Snapshot) (string, error) {
	manseekDir, err := config.ManseekDir()
	if err != nil {
		return "", err
	}
	indexDir, err := config.IndexDir()
	if err != nil {
		return "", err
	}

	tmpBase := filepath.Join(manseekDir, "tmp")
	if err := os.MkdirAll(tmpBase, 0o755); err != nil {
		return "", fmt.Errorf("cannot create temp dir %s: %w", tmpBase, err)
	}
	tmpDir, err := os.MkdirTemp(tmpBase, "index-build-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temp index dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := index.Write(tmpDir, snap); err != nil {
		return "", err
	}
	if err := index.AtomicSwap(tmpDir, indexDir); err != nil {
		return "", fmt.Errorf("cannot install index: %w", err)
	}
	return indexDir, nil
}

// acquireIndexLock serializes concurrent 'manseek index' runs.
func acquireIndexLock(timeout time.Duration) (func(), error) {
	manseekDir, err := config.ManseekDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(manseekDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", manseekDir, err)
	}
	lockPath := filepath.Join(manseekDir, "index.lock")
	l := flock.New(lockPath)

	deadline := time.Now().Add(timeout)
	for {
		ok, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire index lock %s: %w", lockPath, err)
		}
		if ok {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another index build is running (lock %s)", lockPath)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
