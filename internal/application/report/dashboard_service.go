// Package report computes the dashboard aggregates shown by the admin panel.
package report

import (
	"context"
	"fmt"

	"github.com/erp/adminpanel/internal/domain/catalog"
	"github.com/erp/adminpanel/internal/domain/identity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RoleCounts is the user-role breakdown. Users with a role outside
// identity.Roles are not counted.
type RoleCounts struct {
	Admin   int `json:"admin"`
	Manager int `json:"manager"`
	User    int `json:"user"`
}

// Total returns the number of counted users
func (r RoleCounts) Total() int {
	return r.Admin + r.Manager + r.User
}

// Series returns the counts in identity.Roles order
func (r RoleCounts) Series() []int {
	return []int{r.Admin, r.Manager, r.User}
}

// ProductSummary aggregates the product list
type ProductSummary struct {
	Total   int `json:"total"`
	InStock int `json:"in_stock"`
	// ListedValue is the sum of prices of products in stock
	ListedValue decimal.Decimal `json:"listed_value"`
}

// Summary is everything the dashboard shows
type Summary struct {
	Roles    RoleCounts     `json:"roles"`
	Products ProductSummary `json:"products"`
}

// CountRoles tallies users by role
func CountRoles(users []identity.User) RoleCounts {
	var counts RoleCounts
	for _, u := range users {
		switch u.Role {
		case identity.RoleAdmin:
			counts.Admin++
		case identity.RoleManager:
			counts.Manager++
		case identity.RoleUser:
			counts.User++
		}
	}
	return counts
}

// SummarizeProducts totals the product list
func SummarizeProducts(products []catalog.Product) ProductSummary {
	summary := ProductSummary{Total: len(products), ListedValue: decimal.Zero}
	for _, p := range products {
		if !p.InStock {
			continue
		}
		summary.InStock++
		summary.ListedValue = summary.ListedValue.Add(decimal.NewFromFloat(p.Price))
	}
	return summary
}

// UserLister reads the user list, normally through the query cache
type UserLister interface {
	List(ctx context.Context) ([]identity.User, error)
}

// ProductLister reads the product list, normally through the query cache
type ProductLister interface {
	List(ctx context.Context) ([]catalog.Product, error)
}

// DashboardService loads the lists the dashboard needs
type DashboardService struct {
	users    UserLister
	products ProductLister
	logger   *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(users UserLister, products ProductLister, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{users: users, products: products, logger: logger}
}

// RoleCounts loads users and tallies their roles
func (s *DashboardService) RoleCounts(ctx context.Context) (RoleCounts, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return RoleCounts{}, fmt.Errorf("loading users: %w", err)
	}
	return CountRoles(users), nil
}

// Summary loads users and products concurrently. The first failure
// cancels the other load's wait and is returned.
func (s *DashboardService) Summary(ctx context.Context) (Summary, error) {
	var (
		users    []identity.User
		products []catalog.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if users, err = s.users.List(gctx); err != nil {
			return fmt.Errorf("loading users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if products, err = s.products.List(gctx); err != nil {
			return fmt.Errorf("loading products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Dashboard summary failed", zap.Error(err))
		return Summary{}, err
	}

	summary := Summary{
		Roles:    CountRoles(users),
		Products: SummarizeProducts(products),
	}
	s.logger.Debug("Dashboard summary loaded",
		zap.Int("users", summary.Roles.Total()),
		zap.Int("products", summary.Products.Total))
	return summary, nil
}
