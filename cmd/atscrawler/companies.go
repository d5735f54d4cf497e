package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SamDev98/ats-crawler/internal/metrics"
	"github.com/SamDev98/ats-crawler/internal/source"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List all configured companies",
	Long:  "Reads the config and prints a table of configured companies per source.",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	client := source.NewClient(&http.Client{}, metrics.NewNop())
	sources := buildSources(cfg, client)

	fmt.Printf("%-18s %s\n", "Source", "Companies")
	fmt.Println(strings.Repeat("─", 60))

	for _, s := range sources {
		fmt.Printf("%-18s %s\n", s.Name(), strings.Join(s.Companies(), ", "))
	}

	fmt.Printf("\nTotal: %d companies across %d sources\n", cfg.Sources.Total(), len(sources))
	return nil
}
