package cli

import (
	"context"
	"testing"

	appshared "github.com/erp/adminpanel/internal/application/shared"
	"github.com/erp/adminpanel/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewApp_TelemetryDisabled(t *testing.T) {
	fake := seededAPI(t)
	t.Setenv("ADMIN_API_BASE_URL", fake.URL())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.False(t, cfg.Telemetry.Enabled)

	ctx := context.Background()
	app, err := NewApp(ctx, cfg, zaptest.NewLogger(t), &appshared.RecordingNotifier{})
	require.NoError(t, err)

	assert.NotNil(t, app.Logger)
	assert.False(t, app.logs.IsEnabled())
	assert.False(t, app.tracer.IsEnabled())
	assert.False(t, app.meter.IsEnabled())

	users, err := app.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	require.NoError(t, app.Close(ctx))
}

