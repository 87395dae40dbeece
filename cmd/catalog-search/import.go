package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/renderinc/catalog-search/internal/query"
	"github.com/renderinc/catalog-search/internal/sync"
)

var importConcurrency int

var importCmd = &cobra.Command{
	Use:   "import [seed-file-or-url]",
	Short: "Import catalogs into the SQLite or Redis store",
	Long: `Import writes every catalog of a seed file or URL (YAML or JSON) into the
configured store. Unchanged items are skipped, items missing from the seed
are removed, and the suggestion index is rebuilt. Without an argument the
configured seed, or the built-in catalogs, are imported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the suggestion index from the store",
	Args:  cobra.NoArgs,
	RunE:  runReindex,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show item counts per catalog",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", sync.DefaultConcurrency, "Items written in parallel")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	location := ""
	if len(args) == 1 {
		location = args[0]
	}
	seed, err := loadSeed(ctx, location)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	idx, err := openDiskIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	conn, err := dialBroker()
	if err != nil {
		return err
	}
	if conn != nil {
		defer conn.Close()
	}
	pub, err := newPublisher(conn)
	if err != nil {
		return err
	}

	worker := sync.NewWorker(st, idx, pub, logger)
	worker.SetConcurrency(importConcurrency)

	stats, err := worker.Import(ctx, seed)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Import Complete ===")
	fmt.Fprintf(out, "Total:    %d\n", stats.Total)
	fmt.Fprintf(out, "New:      %d\n", stats.New)
	fmt.Fprintf(out, "Updated:  %d\n", stats.Updated)
	fmt.Fprintf(out, "Skipped:  %d\n", stats.Skipped)
	fmt.Fprintf(out, "Removed:  %d\n", stats.Removed)
	fmt.Fprintf(out, "Errors:   %d\n", stats.Errors)
	fmt.Fprintf(out, "Duration: %v\n", stats.Duration)
	return nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	names, err := st.Catalogs(ctx)
	if err != nil {
		return err
	}

	idx, err := openDiskIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	n, err := idx.Rebuild(ctx, st, names)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reindexed %d items from %d catalogs\n", n, len(names))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	names, err := src.names(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Catalog Statistics (%s) ===\n", cfg.Storage.Driver)
	total := 0
	for _, name := range names {
		items, err := src.List(ctx, name)
		if err != nil {
			return fmt.Errorf("list %s: %w", name, err)
		}
		featured, _ := query.Partition(items)
		fmt.Fprintf(out, "%-8s %3d items, %d featured\n", name, len(items), len(featured))
		total += len(items)
	}
	fmt.Fprintf(out, "Total:   %3d items\n", total)

	if src.memory == nil {
		idx, err := openDiskIndex()
		if err != nil {
			return err
		}
		defer idx.Close()
		n, err := idx.Count()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Indexed: %3d items\n", n)
	}
	return nil
}
