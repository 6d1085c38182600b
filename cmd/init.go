package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manseek/manseek/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.manseek and write the default configuration",
	Long: `Initialize manseek: create ~/.manseek/, write a default manseek.yaml
and a .env template. Existing files are left alone, so init is safe to
re-run.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	manseekDir, err := config.ManseekDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(manseekDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", manseekDir, err)
	}
	printOK("", fmt.Sprintf("manseek directory ready: %s", manseekDir))

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(config.DefaultConfig()); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  manseek index            build the manual-page index")
	fmt.Println("  manseek search <terms>   find pages by what they do")
	return nil
}
