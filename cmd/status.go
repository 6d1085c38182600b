package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manseek/manseek/internal/config"
	"github.com/manseek/manseek/internal/index"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and configuration state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'manseek init' first.", err)
	}

	printSection("Configuration")
	printInfo("", fmt.Sprintf("weighting:    %s", cfg.EffectiveWeighting()))
	printInfo("", fmt.Sprintf("sections:     %s", strings.Join(cfg.EffectiveSections(), ", ")))
	printInfo("", fmt.Sprintf("stop words:   %d", len(cfg.StopWords)))
	printInfo("", fmt.Sprintf("result limit: %d", cfg.ResultLimit))
	if len(cfg.Manpaths) > 0 {
		printInfo("", fmt.Sprintf("manpaths:     %s", strings.Join(cfg.Manpaths, ":")))
	} else {
		printInfo("", "manpaths:     from manpath(1)")
	}

	printSection("Index")
	indexDir, err := config.IndexDir()
	if err != nil {
		return err
	}
	snap, err := index.Load(indexDir)
	if err != nil {
		printWarn("", fmt.Sprintf("no usable index at %s (%v)", indexDir, err))
		printInfo("", "run 'manseek index' to build one")
		return nil
	}

	m := snap.Manifest
	printOK("", fmt.Sprintf("location:   %s", indexDir))
	printInfo("", fmt.Sprintf("built:      %s", m.CreatedAt))
	printInfo("", fmt.Sprintf("documents:  %d", m.DocCount))
	printInfo("", fmt.Sprintf("terms:      %d", m.TermCount))
	printInfo("", fmt.Sprintf("weighting:  %s", m.Scheme))
	if size, err := dirSize(indexDir); err == nil {
		printInfo("", fmt.Sprintf("size:       %.1f MiB", float64(size)/(1024*1024)))
	}

	if m.Scheme != cfg.EffectiveWeighting() {
		printWarn("", fmt.Sprintf("config weighting %q differs from index %q — rerun 'manseek index'", cfg.EffectiveWeighting(), m.Scheme))
	}
	return nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
