package cli

import (
	"fmt"
	"strconv"

	"github.com/erp/adminpanel/internal/application/form"
	"github.com/erp/adminpanel/internal/domain/identity"
	"github.com/erp/adminpanel/internal/domain/shared"
	"github.com/spf13/cobra"
)

type userFlags struct {
	name  string
	email string
	role  string
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "user name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.role, "role", "", "role (admin, manager, user)")
}

// apply copies flags into c. With onlyChanged set, flags the user did not pass
// leave the loaded values alone.
func (f *userFlags) apply(cmd *cobra.Command, c *form.Controller[identity.UserInput], onlyChanged bool) error {
	values := map[string]string{"name": f.name, "email": f.email, "role": f.role}
	for _, field := range c.Fields() {
		if onlyChanged && !cmd.Flags().Changed(field.Name) {
			continue
		}
		if err := c.Set(field.Name, values[field.Name]); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and edit users",
	}
	cmd.AddCommand(c.newUsersListCmd())
	cmd.AddCommand(c.newUsersGetCmd())
	cmd.AddCommand(c.newUsersCreateCmd())
	cmd.AddCommand(c.newUsersUpdateCmd())
	cmd.AddCommand(c.newUsersDeleteCmd())
	return cmd
}

func (c *CLI) newUsersListCmd() *cobra.Command {
	var (
		search   string
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long: `List fetches all users and shows one page of them.

Example:
  adminctl users list
  adminctl users list --search ann
  adminctl users list --page 2 --page-size 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageSize != 0 && !shared.IsValidPageSize(pageSize) {
				return fmt.Errorf("--page-size must be one of %v", shared.PageSizeOptions)
			}
			svc := c.app.Users
			size := c.pageSize(pageSize)
			view := NewListView(c.app.Cache, svc.ListKey(), svc.ReadList, func(users []identity.User) string {
				return renderPage(shared.Paginate(identity.Filter(users, search), page, size), "users", renderUsers)
			}, "Error loading users", cmd.OutOrStdout())

			view.Mount()
			defer view.Unmount()
			return view.Wait(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name, email or role")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (5, 10 or 20; default ui.page_size)")
	return cmd
}

func (c *CLI) newUsersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := c.app.Users.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading user %d: %w", id, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderUsers([]identity.User{user}))
			return nil
		},
	}
}

func (c *CLI) newUsersCreateCmd() *cobra.Command {
	var flags userFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Create validates the fields and sends them to the backend.

Example:
  adminctl users create --name Ann --email ann@example.com --role admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.app.Users
			f := svc.CreateForm()
			if err := flags.apply(cmd, f, false); err != nil {
				return err
			}
			user, err := submit(cmd.Context(), f, svc.NewCreateRunner())
			if err != nil {
				reportValidation(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderUsers([]identity.User{user}))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) newUsersUpdateCmd() *cobra.Command {
	var flags userFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a user",
		Long: `Update loads the user, applies the given flags and sends the full record back.

Example:
  adminctl users update 3 --role manager`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc := c.app.Users
			f, err := svc.EditForm(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading user %d: %w", id, err)
			}
			if err := flags.apply(cmd, f, true); err != nil {
				return err
			}
			user, err := submit(cmd.Context(), f, svc.NewUpdateRunner(id))
			if err != nil {
				reportValidation(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderUsers([]identity.User{user}))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) newUsersDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc := c.app.Users
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

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
