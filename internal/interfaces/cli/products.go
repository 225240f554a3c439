package cli

import (
	"fmt"

	"github.com/erp/adminpanel/internal/application/form"
	"github.com/erp/adminpanel/internal/domain/catalog"
	"github.com/erp/adminpanel/internal/domain/shared"
	"github.com/spf13/cobra"
)

type productFlags struct {
	name    string
	price   string
	inStock bool
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.price, "price", "", "price, greater than 0")
	cmd.Flags().BoolVar(&f.inStock, "in-stock", false, "product is in stock")
}

func (f *productFlags) apply(cmd *cobra.Command, c *form.Controller[catalog.ProductInput], onlyChanged bool) error {
	fields := []struct {
		flag  string
		field string
		value any
	}{
		{"name", "name", f.name},
		{"price", "price", f.price},
		{"in-stock", "inStock", f.inStock},
	}
	for _, fl := range fields {
		if onlyChanged && !cmd.Flags().Changed(fl.flag) {
			continue
		}
		if err := c.Set(fl.field, fl.value); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List and edit products",
	}
	cmd.AddCommand(c.newProductsListCmd())
	cmd.AddCommand(c.newProductsGetCmd())
	cmd.AddCommand(c.newProductsCreateCmd())
	cmd.AddCommand(c.newProductsUpdateCmd())
	cmd.AddCommand(c.newProductsDeleteCmd())
	return cmd
}

func (c *CLI) newProductsListCmd() *cobra.Command {
	var (
		search   string
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Long: `List fetches all products and shows one page of them.

Example:
  adminctl products list --search lamp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageSize != 0 && !shared.IsValidPageSize(pageSize) {
				return fmt.Errorf("--page-size must be one of %v", shared.PageSizeOptions)
			}
			svc := c.app.Products
			size := c.pageSize(pageSize)
			view := NewListView(c.app.Cache, svc.ListKey(), svc.ReadList, func(products []catalog.Product) string {
				return renderPage(shared.Paginate(catalog.Filter(products, search), page, size), "products", renderProducts)
			}, "Error loading products", cmd.OutOrStdout())

			view.Mount()
			defer view.Unmount()
			return view.Wait(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (5, 10 or 20; default ui.page_size)")
	return cmd
}

func (c *CLI) newProductsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			product, err := c.app.Products.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading product %d: %w", id, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProducts([]catalog.Product{product}))
			return nil
		},
	}
}

func (c *CLI) newProductsCreateCmd() *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Long: `Create validates the fields and sends them to the backend.

Example:
  adminctl products create --name Lamp --price 19.50 --in-stock`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.app.Products
			f := svc.CreateForm()
			if err := flags.apply(cmd, f, false); err != nil {
				return err
			}
			product, err := submit(cmd.Context(), f, svc.NewCreateRunner())
			if err != nil {
				reportValidation(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProducts([]catalog.Product{product}))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) newProductsUpdateCmd() *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a product",
		Long: `Update loads the product, applies the given flags and sends the full record back.

Example:
  adminctl products update 3 --price 99.90 --in-stock=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc := c.app.Products
			f, err := svc.EditForm(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading product %d: %w", id, err)
			}
			if err := flags.apply(cmd, f, true); err != nil {
				return err
			}
			product, err := submit(cmd.Context(), f, svc.NewUpdateRunner(id))
			if err != nil {
				reportValidation(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProducts([]catalog.Product{product}))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) newProductsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc := c.app.Products
			ok, err := svc.ConfirmDelete(cmd.Context(), NewPromptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr(), yes))
			if err != nil || !ok {
				return err
			}
			_, err = svc.NewDeleteRunner().Run(cmd.Context(), id)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}
