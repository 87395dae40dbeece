package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/query"
	"github.com/renderinc/catalog-search/internal/web"
)

var (
	querySearch   string
	queryCategory string
	queryFilters  []string
	queryPage     int
	querySize     int
	jsonOutput    bool

	suggestCatalog string
	suggestLimit   int
)

var queryCmd = &cobra.Command{
	Use:   "query <catalog>",
	Short: "Run a catalog query",
	Example: `  catalog-search query search --category "Web Development"
  catalog-search query search -f skills=Beginner||Advanced --size 2 --page 2
  catalog-search query blog -q react --json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var facetsCmd = &cobra.Command{
	Use:   "facets <catalog>",
	Short: "List categories and facet options with match counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runFacets,
}

var getItemCmd = &cobra.Command{
	Use:   "get-item <catalog> <id>",
	Short: "Show one item",
	Args:  cobra.ExactArgs(2),
	RunE:  runGetItem,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <term>",
	Short: "Typeahead suggestions for a partial term",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&querySearch, "search", "q", "", "Search term")
	cmd.Flags().StringVar(&queryCategory, "category", query.All, "Category")
	cmd.Flags().StringArrayVarP(&queryFilters, "filter", "f", nil, "Facet selection as dimension=value, values joined by ||")
}

func init() {
	addQueryFlags(queryCmd)
	queryCmd.Flags().IntVar(&queryPage, "page", 1, "Page number")
	queryCmd.Flags().IntVar(&querySize, "size", 0, "Page size (default: catalog's)")
	queryCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	addQueryFlags(facetsCmd)
	facetsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the facets as JSON")

	getItemCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the item as JSON")

	suggestCmd.Flags().StringVar(&suggestCatalog, "catalog", "", "Only suggest from this catalog")
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "Maximum suggestions (default: config)")
}

// parseFilters turns dimension=value flags into facet selections
func parseFilters(flags []string, cfg query.Config) (map[string][]string, error) {
	filters := make(map[string][]string)
	for _, f := range flags {
		dim, values, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q, want dimension=value", f)
		}
		if _, known := cfg.Dimension(dim); !known {
			return nil, fmt.Errorf("catalog %s has no facet %q", cfg.Name, dim)
		}
		for _, v := range strings.Split(values, "||") {
			if v = strings.TrimSpace(v); v != "" {
				filters[dim] = append(filters[dim], v)
			}
		}
	}
	return filters, nil
}

// buildQuery loads a catalog and the sanitized query given on the command line
func buildQuery(cmd *cobra.Command, name string) (query.Config, []catalog.Item, query.Query, error) {
	qcfg, err := catalogConfig(name)
	if err != nil {
		return qcfg, nil, query.Query{}, err
	}
	filters, err := parseFilters(queryFilters, qcfg)
	if err != nil {
		return qcfg, nil, query.Query{}, err
	}

	src, err := openSource(cmd.Context())
	if err != nil {
		return qcfg, nil, query.Query{}, err
	}
	defer src.Close()

	items, err := src.List(cmd.Context(), name)
	if err != nil {
		return qcfg, nil, query.Query{}, fmt.Errorf("list %s: %w", name, err)
	}

	q := query.Query{
		Search:   querySearch,
		Category: queryCategory,
		Filters:  filters,
		Page:     queryPage,
		PageSize: querySize,
	}
	return qcfg, items, query.Sanitize(q, qcfg, items), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runQuery(cmd *cobra.Command, args []string) error {
	qcfg, items, q, err := buildQuery(cmd, args[0])
	if err != nil {
		return err
	}
	res := query.Run(items, qcfg, q)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, web.QueryResponse{Result: res, Summary: web.Summarize(qcfg, res)})
	}

	fmt.Fprintln(out, web.Summarize(qcfg, res))
	if res.NoResults {
		fmt.Fprintln(out, "Try a different search term or clear the filters.")
		return nil
	}

	if len(res.Featured) > 0 {
		fmt.Fprintln(out, "\nFeatured:")
		for _, it := range res.Featured {
			printItemLine(out, it)
		}
		fmt.Fprintln(out)
	}
	for _, it := range res.Page.Items {
		printItemLine(out, it)
	}
	if res.Page.Paginated {
		fmt.Fprintf(out, "\nPage %d of %d\n", res.Page.Number, res.Page.TotalPages)
	}
	return nil
}

func printItemLine(w io.Writer, it catalog.Item) {
	fmt.Fprintf(w, "%3d. %s", it.ID, it.Title)
	if it.Provider != "" {
		fmt.Fprintf(w, " (%s)", it.Provider)
	}
	if it.Category != "" {
		fmt.Fprintf(w, " [%s]", it.Category)
	}
	fmt.Fprintln(w)
}

func runFacets(cmd *cobra.Command, args []string) error {
	qcfg, items, q, err := buildQuery(cmd, args[0])
	if err != nil {
		return err
	}
	set := query.Facets(items, qcfg, q)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, set)
	}

	fmt.Fprintf(out, "Categories: %s\n", strings.Join(set.Categories, ", "))
	for _, f := range set.Facets {
		fmt.Fprintf(out, "\n%s:\n", f.Name)
		for _, o := range f.Options {
			mark := " "
			if o.Selected {
				mark = "x"
			}
			fmt.Fprintf(out, "  [%s] %s (%d)\n", mark, o.Value, o.Count)
		}
	}
	return nil
}

func runGetItem(cmd *cobra.Command, args []string) error {
	if _, err := catalogConfig(args[0]); err != nil {
		return err
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[1])
	}

	src, err := openSource(cmd.Context())
	if err != nil {
		return err
	}
	defer src.Close()

	it, err := src.Get(cmd.Context(), args[0], id)
	if err != nil {
		return fmt.Errorf("get %s/%d: %w", args[0], id, err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, it)
	}

	fmt.Fprintf(out, "%s\n", it.Title)
	for _, row := range [][2]string{
		{"Provider", it.Provider},
		{"Category", it.Category},
		{"Level", it.Level},
		{"School", it.School},
		{"Tags", strings.Join(it.Tags, ", ")},
		{"Price", it.Price},
		{"Duration", it.Duration},
		{"Published", it.PublishedAt},
	} {
		if row[1] != "" {
			fmt.Fprintf(out, "  %-10s %s\n", row[0]+":", row[1])
		}
	}
	if it.Description != "" {
		fmt.Fprintf(out, "\n%s\n", it.Description)
	}
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if suggestCatalog != "" {
		if _, err := catalogConfig(suggestCatalog); err != nil {
			return err
		}
	}
	limit := suggestLimit
	if limit <= 0 {
		limit = cfg.Search.SuggestLimit
	}

	src, err := openSource(cmd.Context())
	if err != nil {
		return err
	}
	defer src.Close()

	idx, err := openIndex(cmd.Context(), src)
	if err != nil {
		return err
	}
	defer idx.Close()

	suggestions, err := idx.Suggest(strings.Join(args, " "), suggestCatalog, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(suggestions) == 0 {
		fmt.Fprintln(out, "No suggestions")
		return nil
	}
	for _, s := range suggestions {
		fmt.Fprintf(out, "%-8s %3d  %s\n", s.Catalog, s.ID, s.Title)
	}
	return nil
}
