package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

var (
	productsStatus string
	productsSearch string
	productsSort   string
	productsLimit  int
	productsJSON   bool
	productsFollow bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse tracked products",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked products",
	Long: `Lists the products in the ledger.

Filter by status (all, in-stock, out-of-stock) or by name, and sort by
name, price, price-desc or change. With --follow the list is redrawn each
time a pass publishes a new ledger.`,
	Args: cobra.NoArgs,
	RunE: runProductsList,
}

var productsShowCmd = &cobra.Command{
	Use:   "show [url]",
	Short: "Show one product and its price history",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductsShow,
}

func init() {
	flags := productsListCmd.Flags()
	flags.StringVar(&productsStatus, "status", string(domain.FilterAll), "status filter: all, in-stock, out-of-stock")
	flags.StringVarP(&productsSearch, "search", "s", "", "match product names")
	flags.StringVar(&productsSort, "sort", "", "sort order: name, price, price-desc, change")
	flags.IntVarP(&productsLimit, "limit", "n", 0, "maximum number of products")
	flags.BoolVar(&productsJSON, "json", false, "output products as JSON")
	flags.BoolVarP(&productsFollow, "follow", "f", false, "redraw when the ledger changes")

	productsShowCmd.Flags().BoolVar(&productsJSON, "json", false, "output the product as JSON")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsShowCmd)
	rootCmd.AddCommand(productsCmd)
}

func productsFilter() domain.CatalogFilter {
	return domain.CatalogFilter{
		Status: domain.StatusFilter(productsStatus),
		Search: productsSearch,
		Sort:   domain.SortOrder(productsSort),
		Limit:  productsLimit,
	}
}

func runProductsList(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	if !productsFollow {
		return listProducts(context.Background(), cmd)
	}

	if catalogWatcher == nil {
		return errors.New("ledger watching not supported by this store")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return followProducts(ctx, cmd)
}

// followProducts redraws the list after every published ledger until ctx ends.
func followProducts(ctx context.Context, cmd *cobra.Command) error {
	changes, err := catalogWatcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch ledger: %w", err)
	}

	if err := listProducts(ctx, cmd); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			cmd.Println()
			if err := listProducts(ctx, cmd); err != nil {
				return err
			}
		}
	}
}

func listProducts(ctx context.Context, cmd *cobra.Command) error {
	products, err := catalogService.List(ctx, productsFilter())
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	if productsJSON {
		return writeJSON(cmd.OutOrStdout(), products)
	}
	outputProductsTable(cmd, products)
	return nil
}

func outputProductsTable(cmd *cobra.Command, products []domain.Product) {
	if len(products) == 0 {
		cmd.Println("No products found.")
		return
	}

	cmd.Println(styles.Title.Render(fmt.Sprintf("%d products", len(products))))
	for i := range products {
		p := &products[i]
		line := fmt.Sprintf("  %-60s %10s  %s", truncateText(p.DisplayName(), 60), formatPrice(p.LastPrice), styles.Status(p.LastStatus))
		if p.TargetMet(p.LastPrice) {
			line += " " + styles.Target.Render("target met")
		}
		cmd.Println(line)
	}
}

func runProductsShow(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	product, err := catalogService.Get(context.Background(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("product not tracked: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	if productsJSON {
		return writeJSON(cmd.OutOrStdout(), product)
	}

	cmd.Println(styles.Title.Render(product.DisplayName()))
	cmd.Printf("  URL:      %s\n", product.URL)
	if product.Image != "" {
		cmd.Printf("  Image:    %s\n", product.Image)
	}
	cmd.Printf("  Status:   %s\n", styles.Status(product.LastStatus))
	cmd.Printf("  Price:    %s\n", formatPrice(product.LastPrice))
	cmd.Printf("  Target:   %s\n", formatPrice(product.TargetPrice))
	if change := product.PriceChange(); change != 0 {
		cmd.Printf("  Change:   %+.1f%%\n", change*100)
	}
	cmd.Printf("  Restock:  %t\n", product.NotifyRestock)

	if len(product.History) == 0 {
		cmd.Println(styles.Muted.Render("  No price history"))
		return nil
	}
	cmd.Println()
	cmd.Println("  History:")
	for _, point := range product.History {
		cmd.Printf("    %s  %s\n", point.At.Format(domain.HistoryKeyLayout), formatPrice(point.Price))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func formatPrice(p float64) string {
	if p <= 0 {
		return "-"
	}
	return fmt.Sprintf("$%.2f", p)
}

func truncateText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
