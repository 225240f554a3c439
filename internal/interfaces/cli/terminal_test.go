package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/erp/adminpanel/internal/application/report"
	"github.com/erp/adminpanel/internal/domain/catalog"
	"github.com/erp/adminpanel/internal/domain/identity"
	"github.com/erp/adminpanel/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTerminalNotifier(t *testing.T) {
	var out bytes.Buffer
	n := NewTerminalNotifier(&out, zaptest.NewLogger(t))

	n.Success(context.Background(), "User created successfully")
	n.Failure(context.Background(), "Error!", "User could not be deleted.")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], iconCheck+" User created successfully")
	assert.Contains(t, lines[1], iconCross+" Error!")
	assert.Equal(t, "  User could not be deleted.", lines[2])
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"yes", "y\n", true},
		{"long yes", "YES\n", true},
		{"no", "n\n", false},
		{"empty", "\n", false},
		{"eof", "", false},
		{"no newline", "y", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPromptConfirmer(strings.NewReader(tt.answer), &out, false)
			ok, err := p.Confirm(context.Background(), "Are you sure?", "This user will be deleted!")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "Are you sure?")
			assert.Contains(t, out.String(), "This user will be deleted! [y/N]: ")
		})
	}
}

func TestPromptConfirmer_AssumeYes(t *testing.T) {
	var out bytes.Buffer
	p := NewPromptConfirmer(strings.NewReader(""), &out, true)
	ok, err := p.Confirm(context.Background(), "Are you sure?", "gone")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.String())
}

func TestPromptConfirmer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPromptConfirmer(strings.NewReader("y\n"), &bytes.Buffer{}, false)
	ok, err := p.Confirm(ctx, "Are you sure?", "gone")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}

func TestRenderPage(t *testing.T) {
	users := []identity.User{
		{ID: 1, Name: "Ann", Email: "ann@example.com", Role: identity.RoleAdmin},
		{ID: 2, Name: "Bob", Email: "bob@example.com", Role: identity.RoleUser},
	}

	got := renderPage(shared.Paginate(users, 1, 5), "users", renderUsers)
	assert.Contains(t, got, "Ann")
	assert.Contains(t, got, "admin")
	assert.Contains(t, got, "Page 1 of 1, 2 users")

	got = renderPage(shared.Paginate([]identity.User{}, 1, 5), "users", renderUsers)
	assert.Contains(t, got, "No users found")
	assert.NotContains(t, got, "Page")
}

func TestRenderProducts(t *testing.T) {
	got := renderProducts([]catalog.Product{
		{ID: 7, Name: "Lamp", Price: 19.5, InStock: false},
		{ID: 3, Name: "Desk", Price: 120, InStock: true},
	})
	assert.Contains(t, got, "19.50")
	assert.Contains(t, got, "120.00")
	assert.Contains(t, got, "yes")
	assert.Contains(t, got, "no")
}

func TestRenderSummary(t *testing.T) {
	got := renderSummary(report.Summary{
		Roles:    report.RoleCounts{Admin: 2, Manager: 1, User: 4},
		Products: report.ProductSummary{Total: 3, InStock: 2, ListedValue: decimal.RequireFromString("155.5")},
	})
	assert.Contains(t, got, "User Roles Overview")
	assert.Contains(t, got, "Manager")
	assert.Contains(t, got, "155.50")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0.10", formatPrice(0.1))
	assert.Equal(t, "19.99", formatPrice(19.99))
	assert.Equal(t, "3.00", formatPrice(3))
}
