package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manseek/manseek/internal/config"
	"github.com/manseek/manseek/internal/index"
)

var (
	flagSearchK      int
	flagSearchScores bool
)

var searchCmd = &cobra.Command{
	Use:   "search <terms>...",
	Short: "Rank manual pages against a free-text query",
	Long: `Rank indexed manual pages by cosine similarity to the query and print
one "name (section)" line per match, best first. Pages whose name contains
the query are promoted; an exact name match always comes first.`,
	Args: cobra.MinimumNArgs(0),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchK, "k", 0, "Maximum results to show (overrides config; 0 = unlimited)")
	searchCmd.Flags().BoolVar(&flagSearchScores, "scores", false, "Show cosine similarity scores")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'manseek init' first.", err)
	}
	if len(args) == 0 {
		return cmd.Help()
	}
	query := strings.Join(args, " ")

	indexDir, err := config.IndexDir()
	if err != nil {
		return err
	}
	snap, err := index.Load(indexDir)
	if err != nil {
		return fmt.Errorf("cannot load index: %w\nRun 'manseek index' first.", err)
	}

	limit, err := resolveResultLimit(cmd, cfg)
	if err != nil {
		return err
	}

	results := snap.Search(query, limit)
	results = promoteNameMatches(query, results)

	for _, r := range results {
		if flagSearchScores {
			fmt.Printf("[%.3f] %s\n", r.Score, r.ID)
		} else {
			fmt.Println(r.ID)
		}
	}
	return nil
}

// resolveResultLimit picks the result cap: --k beats MANSEEK_RESULT_LIMIT
// beats the config, which already defaults on init. A value ≤ 0 anywhere
// means unlimited.
func resolveResultLimit(cmd *cobra.Command, cfg *config.Config) (int, error) {
	if cmd.Flags().Changed("k") {
		return flagSearchK, nil
	}
	if v, err := config.GetConfigValue(config.EnvResultLimit); err == nil && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q", config.EnvResultLimit, v)
		}
		return n, nil
	}
	return cfg.ResultLimit, nil
}

// promoteNameMatches reorders ranked results so pages whose name contains
// the query come before purely semantic matches, with exact name matches
// at the very front. Relative order inside each group is preserved, so
// cosine ranking still decides within the groups.
func promoteNameMatches(query string, results []index.Result) []index.Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return results
	}

	var exact, partial, rest []index.Result
	for _, r := range results {
		name := r.ID
		if i := strings.IndexByte(name, ' '); i >= 0 {
			name = name[:i]
		}
		name = strings.ToLower(name)
		switch {
		case name == query:
			exact = append(exact, r)
		case strings.Contains(name, query):
			partial = append(partial, r)
		default:
			rest = append(rest, r)
		}
	}

	out := make([]index.Result, 0, len(results))
	out = append(out, exact...)
	out = append(out, partial...)
	out = append(out, rest...)
	return out
}
