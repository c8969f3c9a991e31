package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"snackstack/internal/apiclient"
	"snackstack/internal/commerce"
	"snackstack/internal/domain"
	"snackstack/internal/nudge"
	"snackstack/internal/repos"
	"snackstack/internal/services"
)

func newReplenishCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replenish",
		Short: "Show the products a customer is due to reorder",
		Long:  "replenish evaluates a customer's order history against the catalog and prints the due replenishment items, most urgent first. Order history comes from --api when set, otherwise from the local database.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			if email == "" {
				return errors.New("--email is required")
			}

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

			var history nudge.OrderHistory = services.LocalHistory{Svc: services.NewOrderService(repos.NewOrderRepo(db))}
			if a.cfg.BackendURL != "" {
				client := apiclient.New(a.cfg.BackendURL)
				client.Token = a.cfg.ServiceToken
				history = client
			}
			orders, err := history.Orders(cmd.Context(), email)
			if err != nil {
				return err
			}

			items := commerce.DueReplenishments(products, orders, time.Now(), nil)
			if items == nil {
				items = []domain.ReplenishmentItem{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}
	cmd.Flags().String("email", "", "customer email")
	return cmd
}
