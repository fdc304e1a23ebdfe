package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"districtlens/internal/registry"
)

var viewsOutput string

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "Inspect the materialized view catalog",
}

var viewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every view and the intents it answers",
	RunE:  runViewsList,
}

var viewsDescribeCmd = &cobra.Command{
	Use:   "describe [view-name]",
	Short: "Show the full descriptor for one view",
	Args:  cobra.ExactArgs(1),
	RunE:  runViewsDescribe,
}

func init() {
	viewsDescribeCmd.Flags().StringVarP(&viewsOutput, "output", "o", "text", "output format: text or yaml")

	viewsCmd.AddCommand(viewsListCmd)
	viewsCmd.AddCommand(viewsDescribeCmd)
	rootCmd.AddCommand(viewsCmd)
}

func runViewsList(cmd *cobra.Command, args []string) error {
	reg, err := registry.Default()
	if err != nil {
		return err
	}

	titler := cases.Title(language.English)
	for _, v := range reg.Views() {
		scope := "district"
		if v.Global {
			scope = "global"
		}
		intents := make([]string, len(v.PrimaryIntents))
		for i, in := range v.PrimaryIntents {
			intents[i] = titler.String(strings.ReplaceAll(string(in), "_", " "))
		}
		fmt.Printf("%-42s p%d  %-8s %s\n", v.Name, v.Priority, scope, strings.Join(intents, ", "))
	}
	return nil
}

func runViewsDescribe(cmd *cobra.Command, args []string) error {
	reg, err := registry.Default()
	if err != nil {
		return err
	}
	v, err := reg.Describe(args[0])
	if err != nil {
		return err
	}

	switch viewsOutput {
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
	case "text":
		fmt.Printf("Name:        %s\n", v.Name)
		fmt.Printf("Description: %s\n", v.Description)
		fmt.Printf("Priority:    %d\n", v.Priority)
		fmt.Printf("Scope:       %s\n", map[bool]string{true: "global (elevated only)", false: "district"}[v.Global])
		fmt.Printf("Intents:     %s\n", joinIntents(v.PrimaryIntents))
		fmt.Printf("Filters:     %s\n", strings.Join(v.AvailableFilters, ", "))
		fmt.Printf("Aggregates:  %s\n", strings.Join(v.AggregationColumns, ", "))
		fmt.Printf("Columns:     %s\n", strings.Join(v.KeyColumns, ", "))
	default:
		return fmt.Errorf("unknown output format %q", viewsOutput)
	}
	return nil
}

func joinIntents(intents []registry.Intent) string {
	out := make([]string, len(intents))
	for i, in := range intents {
		out[i] = string(in)
	}
	return strings.Join(out, ", ")
}
