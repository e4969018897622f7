package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marketskt/marketskt/internal/app"
	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/validate"
)

var productFlags struct {
	barcode  string
	name     string
	category string
	expiry   string
	quantity int
	price    float64
	supplier string
}

var productQuery struct {
	text     string
	category string
	status   string
}

// validationError flattens a validate.Struct result, fields sorted.
func validationError(errs map[string]string) error {
	if !validate.HasErrors(errs) {
		return nil
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, errs[k])
	}
	return errors.New(strings.Join(msgs, " "))
}

// marketskt product:add
var productAddCmd = &cobra.Command{
	Use:   "product:add",
	Short: "Add a product",
	Example: `  marketskt product:add --name "Milk" --category "Süt & Kahvaltılık" \
    --expiry 2026-10-20 --quantity 12 --price 24.90 --barcode 8690001`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := model.NewProduct{
			Barcode:  productFlags.barcode,
			Name:     productFlags.name,
			Category: productFlags.category,
			Quantity: productFlags.quantity,
			Price:    productFlags.price,
		}
		if productFlags.expiry != "" {
			d, err := model.ParseDate(productFlags.expiry)
			if err != nil {
				return err
			}
			in.ExpiryDate = d
		}
		if productFlags.supplier != "" {
			in.Supplier = &productFlags.supplier
		}
		if err := validationError(validate.Struct(in)); err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			p, err := a.Engine.AddProduct(ctx, in)
			if err != nil && p.ID == "" {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q (%s, %s)\n", p.ID, p.Name,
				p.ExpiryDate, a.Engine.ExpiryStatus(p.ExpiryDate))
			return err
		})
	},
}

// marketskt product:list
var productListCmd = &cobra.Command{
	Use:   "product:list",
	Short: "List products by expiry date",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := inventory.Query{Text: productQuery.text, Category: productQuery.category}
		if productQuery.status != "" {
			s, ok := model.ParseExpiryStatus(productQuery.status)
			if !ok {
				return fmt.Errorf("unknown status %q (want good, warning or expired)", productQuery.status)
			}
			q.Status = s
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printProducts(cmd, a.Engine, a.Engine.Filter(q))
		})
	},
}

func printProducts(cmd *cobra.Command, e *inventory.Engine, ps []model.Product) error {
	out := cmd.OutOrStdout()
	if len(ps) == 0 {
		fmt.Fprintln(out, "No products.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tEXPIRY\tDAYS\tSTATUS\tQTY\tPRICE")
	for _, p := range ps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\t%.2f\n",
			p.ID, p.Name, p.Category, p.ExpiryDate,
			e.DaysRemaining(p.ExpiryDate), e.ExpiryStatus(p.ExpiryDate), p.Quantity, p.Price)
	}
	return w.Flush()
}

// marketskt product:update <id>
var productUpdateCmd = &cobra.Command{
	Use:   "product:update <id>",
	Short: "Change fields of a product; only the flags given are applied",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch model.ProductPatch
		f := cmd.Flags()
		if f.Changed("barcode") {
			patch.Barcode = &productFlags.barcode
		}
		if f.Changed("name") {
			patch.Name = &productFlags.name
		}
		if f.Changed("category") {
			patch.Category = &productFlags.category
		}
		if f.Changed("expiry") {
			d, err := model.ParseDate(productFlags.expiry)
			if err != nil {
				return err
			}
			patch.ExpiryDate = &d
		}
		if f.Changed("quantity") {
			patch.Quantity = &productFlags.quantity
		}
		if f.Changed("price") {
			patch.Price = &productFlags.price
		}
		if f.Changed("supplier") {
			patch.Supplier = &productFlags.supplier
		}
		if err := validationError(validate.Struct(patch)); err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			p, ok, err := a.Engine.UpdateProduct(ctx, args[0], patch)
			if !ok && err == nil {
				return fmt.Errorf("product %s not found", args[0])
			}
			if err != nil && p.ID == "" {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %q\n", p.ID, p.Name)
			return err
		})
	},
}

// marketskt product:remove <id>...
var productRemoveCmd = &cobra.Command{
	Use:   "product:remove <id>...",
	Short: "Remove one or more products",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if len(args) > 1 {
				if err := a.Engine.BulkRemove(ctx, args); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d products.\n", len(args))
				return nil
			}
			ok, err := a.Engine.RemoveProduct(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("product %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", args[0])
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{productAddCmd, productUpdateCmd} {
		f := c.Flags()
		f.StringVar(&productFlags.barcode, "barcode", "", "barcode")
		f.StringVar(&productFlags.name, "name", "", "product name")
		f.StringVar(&productFlags.category, "category", "", "category name")
		f.StringVar(&productFlags.expiry, "expiry", "", "expiry date, YYYY-MM-DD")
		f.IntVar(&productFlags.quantity, "quantity", 0, "units in stock")
		f.Float64Var(&productFlags.price, "price", 0, "unit price")
		f.StringVar(&productFlags.supplier, "supplier", "", "supplier name")
	}

	f := productListCmd.Flags()
	f.StringVarP(&productQuery.text, "query", "q", "", "match name or barcode")
	f.StringVar(&productQuery.category, "category", "", "exact category name")
	f.StringVar(&productQuery.status, "status", "", "good, warning or expired")
}
