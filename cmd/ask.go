package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"districtlens/internal/access"
	"districtlens/internal/ai"
	"districtlens/internal/config"
	"districtlens/internal/query"
	"districtlens/internal/registry"
	"districtlens/internal/routing"
)

var (
	askDistrict     string
	askAllDistricts bool
	askVerbose      bool
	askPlain        bool
	askLimit        int
	askFilters      []string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a natural-language question about software usage",
	Long: `Ask classifies the question, routes it to the best materialized view, and
prints the answer. Results are always scoped to the district given with
--district; --all-districts runs in elevated cross-district mode.`,
	Example: `  districtlens ask --district D1 "show me the top 5 most used software"
  districtlens ask --district D1 --filter roi_status=low "which software is underperforming"
  districtlens ask --all-districts "unauthorized software usage by school"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askDistrict, "district", "", "district id to scope the question to")
	askCmd.Flags().BoolVar(&askAllDistricts, "all-districts", false, "run in elevated cross-district mode")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "include intent scores and routing details")
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "skip the AI narration and print raw rows")
	askCmd.Flags().IntVar(&askLimit, "limit", 0, "maximum rows to return (default from config)")
	askCmd.Flags().StringArrayVar(&askFilters, "filter", nil, "extra filter as column=value (repeatable)")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	ctx := cmd.Context()

	scope, err := resolveScope(askDistrict, askAllDistricts)
	if err != nil {
		return err
	}

	filters, err := parseFilters(askFilters)
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	settings := config.LoadSettings()

	pg, err := config.PostgresConnection("")
	if err != nil {
		return err
	}
	exec, err := query.NewPostgresExecutor(ctx, pg, settings.MaxRows, log)
	if err != nil {
		return err
	}
	defer exec.Close()

	reg, err := registry.Default()
	if err != nil {
		return err
	}

	router := routing.New(reg, exec, log, routing.Options{
		MaxRows:             settings.MaxRows,
		RequestTimeout:      settings.RequestTimeout,
		ConfidenceThreshold: settings.ConfidenceThreshold,
		CacheSize:           settings.CacheSize,
		DefaultView:         settings.DefaultView,
	})

	res, err := router.RouteAndExecute(ctx, routing.Request{
		Query:        question,
		Scope:        scope,
		ExtraFilters: filters,
		Verbose:      askVerbose,
		Limit:        askLimit,
	})
	if err != nil {
		if errors.Is(err, routing.ErrNoData) {
			fmt.Println("No matching data found.")
			return nil
		}
		return err
	}

	if askVerbose {
		fmt.Printf("intent: %s  view: %s  fallback depth: %d  took: %s\n",
			res.Intent, res.ViewUsed, res.FallbackDepth, res.ExecutionTime)
		for _, sc := range res.Intents {
			fmt.Printf("  %s: %d\n", sc.Intent, sc.Points)
		}
	}

	if askPlain {
		fmt.Print(ai.RenderPlain(res))
		return nil
	}

	composer, err := ai.NewComposer(ctx, log)
	if err != nil {
		return err
	}
	fmt.Println(composer.Narrate(ctx, question, res))
	return nil
}

func resolveScope(district string, allDistricts bool) (access.Scope, error) {
	if allDistricts {
		if district != "" {
			return access.Scope{}, fmt.Errorf("--district and --all-districts are mutually exclusive")
		}
		return access.Elevated(), nil
	}
	if district == "" {
		return access.Scope{}, fmt.Errorf("either --district or --all-districts is required")
	}
	return access.Tenant(district)
}

func parseFilters(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(raw))
	for _, f := range raw {
		column, value, ok := strings.Cut(f, "=")
		if !ok || column == "" || value == "" {
			return nil, fmt.Errorf("invalid filter %q, expected column=value", f)
		}
		filters[column] = value
	}
	return filters, nil
}
