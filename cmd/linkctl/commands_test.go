package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paylinks/internal/auth"
	"paylinks/internal/config"
	"paylinks/internal/db"
	"paylinks/internal/handler"
	"paylinks/internal/model"
	"paylinks/internal/repository"
)

func testEnv(t *testing.T, repo *repository.MemoryLinkRepository, cfg *config.Config) (env, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	if cfg == nil {
		cfg = &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory, TableName: "links"}}
	}
	return env{
		out:     out,
		loadCfg: func() (*config.Config, error) { return cfg, nil },
		openStore: func(context.Context, config.StoreConfig, bool, *zap.Logger) (*db.Store, error) {
			return &db.Store{Links: repo, Close: func() error { return nil }}, nil
		},
		logger: func(*config.Config) (*zap.Logger, error) { return zap.NewNop(), nil },
	}, out
}

func run(t *testing.T, e env, args ...string) error {
	t.Helper()
	cmd := newRootCmd(e)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func putLink(t *testing.T, repo *repository.MemoryLinkRepository, id string) {
	t.Helper()
	require.NoError(t, repo.Put(context.Background(), &model.PaymentLink{
		ID:        id,
		User:      "u",
		Amount:    decimal.RequireFromString("12.34"),
		Status:    model.LinkStatusCreated,
		CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func TestGetCommand(t *testing.T) {
	repo := repository.NewMemoryLinkRepository()
	putLink(t, repo, "abc")
	e, out := testEnv(t, repo, nil)

	require.NoError(t, run(t, e, "get", "abc"))
	var link handler.LinkResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &link))
	assert.Equal(t, "abc", link.ID)
	assert.Equal(t, "12.34", link.Amount.String())

	assert.ErrorContains(t, run(t, e, "get", "missing"), "not found")
}

func TestListCommand(t *testing.T) {
	repo := repository.NewMemoryLinkRepository()
	for _, id := range []string{"a", "b", "c"} {
		putLink(t, repo, id)
	}
	e, out := testEnv(t, repo, nil)

	require.NoError(t, run(t, e, "list", "--limit", "2"))
	var page handler.ListLinksResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	assert.Len(t, page.Items, 2)
}

func TestMigrateCommand(t *testing.T) {
	e, out := testEnv(t, repository.NewMemoryLinkRepository(), nil)

	require.NoError(t, run(t, e, "migrate"))
	assert.Contains(t, out.String(), "store memory ready")
}

func TestTokenCommand(t *testing.T) {
	cfg := &config.Config{Webhook: config.WebhookConfig{SimulationSecret: "s3cret"}}
	e, out := testEnv(t, nil, cfg)

	require.NoError(t, run(t, e, "token", "--subject", "qa", "--ttl", "5m"))
	claims, err := auth.NewJWTService("s3cret").ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "qa", claims.Subject)
	assert.Equal(t, auth.ScopeSimulation, claims.Scope)
}

func TestTokenCommandNeedsSecret(t *testing.T) {
	e, _ := testEnv(t, nil, &config.Config{})
	assert.ErrorContains(t, run(t, e, "token"), "WEBHOOK_SIMULATION_SECRET")
}
