package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trader-storefront/app"
	"trader-storefront/models"
	"trader-storefront/render"
	"trader-storefront/service"
	"trader-storefront/state"
)

var (
	catalogFilter string
	catalogMode   string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load the catalog once and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, err := loadConfig(logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		endpoint := service.NewEndpointClient(cfg.Endpoint.URL,
			service.WithTimeout(cfg.Endpoint.Timeout),
			service.WithLogger(logger),
		)
		source, err := app.NewCatalogSource(ctx, cfg, endpoint)
		if err != nil {
			return err
		}

		store := state.NewStore()
		catalog := service.NewCatalogLoader(store, source, cfg.Catalog.Fallback, logger).Load(ctx)
		view := render.Render(catalog, store.Quantities(), catalogFilter, models.ParsePriceMode(catalogMode))

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, store.Status().Message)

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "ITEM\tWE BUY\tTO BUY\tTO SELL\t")
		for _, row := range view.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", row.Item, row.WeBuyText(), row.ToBuyText(), row.ToSellText())
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(out, "%d of %d items\n", len(view.Rows), view.Summary.CatalogSize)
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFilter, "filter", "", "case-insensitive item filter")
	catalogCmd.Flags().StringVar(&catalogMode, "mode", string(models.PriceModeWeBuy), "price basis: weBuy, toBuy or toSell")
}
