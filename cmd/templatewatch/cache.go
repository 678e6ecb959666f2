package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/templatewatch/pkg/cli"
	"mercator-hq/templatewatch/pkg/registry"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show template cache statistics",
	Long: `Load the template cache and print record counts by category, severity and
status. The mirror is not touched.

Examples:
  # Statistics for the configured cache
  templatewatch cache

  # Statistics for another cache file
  templatewatch cache --config other.yml`,
	SilenceUsage: true,
	RunE:         runCache,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

func runCache(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	store, err := registry.OpenStore(cfg.CacheFile, cfg.ResolvedCacheBackend())
	if err != nil {
		return cli.NewConfigError("cache_file", err.Error(), err)
	}
	defer store.Close()

	reg := registry.New()
	if err := reg.Load(cmd.Context(), store); err != nil {
		return cli.NewCommandError("cache", err)
	}

	printStats(cmd.OutOrStdout(), store, reg.Stats())
	return nil
}

func printStats(w io.Writer, store registry.Store, stats registry.Stats) {
	kv := cli.NewKeyValue(w, noColor)
	kv.Add("Cache", store.Location())
	kv.Add("Backend", store.Backend())
	kv.Add("Templates", stats.Total)
	kv.Add("Without creation time", stats.NoCreatedAt)
	if !stats.LatestCommit.IsZero() {
		kv.Add("Latest commit", stats.LatestCommit.Format(time.RFC3339))
	}
	kv.Render()

	for _, group := range []struct {
		title  string
		counts map[string]int
	}{
		{"CATEGORY", stats.ByCategory},
		{"SEVERITY", stats.BySeverity},
		{"STATUS", stats.ByStatus},
	} {
		if len(group.counts) == 0 {
			continue
		}
		fmt.Fprintln(w)
		table := cli.NewTable(w, []string{group.title, "COUNT"}, noColor)
		if group.title == "SEVERITY" {
			table.ColorColumn(0, severityColor)
		}
		for _, key := range sortedByCount(group.counts) {
			table.AddRow(key, strconv.Itoa(group.counts[key]))
		}
		table.Render()
	}
}

// sortedByCount orders keys by descending count, then by name.
func sortedByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
