package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"snackstack/internal/commerce"
	"snackstack/internal/domain"
	"snackstack/internal/repos"
	"snackstack/internal/services"
)

type packRow struct {
	domain.VarietyPack
	DiscountPercent float64 `json:"discountPercent"`
}

func newPacksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packs",
		Short: "List variety packs with their effective per-item discount",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			db, err := repos.OpenDB(a.cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			catalog := services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewProductRepo(db), repos.NewPackRepo(db))
			products, err := catalog.AllProducts()
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			packs, err := catalog.VarietyPacks()
			if err != nil {
				return fmt.Errorf("load packs: %w", err)
			}

			idx := make(map[string]domain.Product, len(products))
			for _, p := range products {
				idx[p.ID] = p
			}
			rows := make([]packRow, 0, len(packs))
			for _, p := range packs {
				rows = append(rows, packRow{VarietyPack: p, DiscountPercent: commerce.PackDiscountPercent(p, idx)})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tITEMS\tPRICE\tSAVINGS\tDISCOUNT\tMEMBERS")
			for _, r := range rows {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t$%.2f\t$%.2f\t%.1f%%\t%s\n",
					r.ID, r.Name, r.ItemCount, r.Price, r.Savings, r.DiscountPercent, strings.Join(r.ProductIDs, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "print JSON instead of a table")
	return cmd
}
