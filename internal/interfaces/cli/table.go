package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/erp/adminpanel/internal/application/report"
	"github.com/erp/adminpanel/internal/domain/catalog"
	"github.com/erp/adminpanel/internal/domain/identity"
	"github.com/erp/adminpanel/internal/domain/shared"
	"github.com/shopspring/decimal"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func renderUsers(users []identity.User) string {
	t := newTable("ID", "Name", "Email", "Role")
	for _, u := range users {
		t.Row(strconv.FormatInt(u.ID, 10), u.Name, u.Email, string(u.Role))
	}
	return t.String()
}

func formatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(2)
}

func formatStock(inStock bool) string {
	if inStock {
		return "yes"
	}
	return "no"
}

func renderProducts(products []catalog.Product) string {
	t := newTable("ID", "Name", "Price", "In stock")
	for _, p := range products {
		t.Row(strconv.FormatInt(p.ID, 10), p.Name, formatPrice(p.Price), formatStock(p.InStock))
	}
	return t.String()
}

// renderPage renders one page of a list followed by a footer line
func renderPage[T any](page shared.Paginated[T], noun string, rows func([]T) string) string {
	var b strings.Builder
	if page.Total == 0 {
		b.WriteString(mutedStyle.Render("No " + noun + " found"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(rows(page.Items))
	b.WriteString("\n")
	pages := page.TotalPages
	if pages == 0 {
		pages = 1
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Page %d of %d, %d %s", page.Page, pages, page.Total, noun)))
	b.WriteString("\n")
	return b.String()
}

func renderSummary(s report.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("User Roles Overview"))
	b.WriteString("\n")
	roles := newTable("Role", "Users")
	roles.Row("Admin", strconv.Itoa(s.Roles.Admin))
	roles.Row("Manager", strconv.Itoa(s.Roles.Manager))
	roles.Row("User", strconv.Itoa(s.Roles.User))
	b.WriteString(roles.String())
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Products"))
	b.WriteString("\n")
	products := newTable("Total", "In stock", "Listed value")
	products.Row(strconv.Itoa(s.Products.Total), strconv.Itoa(s.Products.InStock), s.Products.ListedValue.StringFixed(2))
	b.WriteString(products.String())
	b.WriteString("\n")
	return b.String()
}
