package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

var (
	importURL    string
	importPages  int
	importStatus string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Add new products from catalog pages",
	Long: `Reads the configured [[catalog]] queries and adds every product not yet
in the ledger. Existing products are never modified.

Use --url to import a single catalog instead of the configured ones.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importURL, "url", "", "catalog URL to import instead of the configured queries")
	importCmd.Flags().IntVar(&importPages, "pages", 1, "number of pages to read with --url")
	importCmd.Flags().StringVar(&importStatus, "status", string(domain.StatusInStock), "status assumed for products found with --url")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	queries, err := importQueries()
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return errors.New("no catalog queries configured; add [[catalog]] entries or pass --url")
	}

	cmd.Printf("Importing from %d catalog queries...\n", len(queries))

	result, err := importService.Import(context.Background(), queries)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Seen %d listings: %d added, %d already tracked", result.Seen, result.Added, result.Duplicates)
	if result.FetchErrors > 0 {
		cmd.Printf(", %d fetch errors", result.FetchErrors)
	}
	cmd.Println()
	return nil
}

// importQueries returns the --url query or the configured catalog.
func importQueries() ([]domain.CatalogQuery, error) {
	if importURL != "" {
		status := domain.ParseStockStatus(importStatus)
		if !status.IsKnown() {
			return nil, fmt.Errorf("invalid --status %q", importStatus)
		}
		return []domain.CatalogQuery{{
			Name:          importURL,
			URL:           importURL,
			Kind:          domain.QueryCatalog,
			Pages:         importPages,
			DefaultStatus: status,
		}}, nil
	}

	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var queries []domain.CatalogQuery
	for _, q := range settings.Source.Catalog {
		if q.Kind == domain.QueryCatalog {
			queries = append(queries, q)
		}
	}
	return queries, nil
}
