//go:build integration

// Integration tests run against a pgvector-enabled PostgreSQL container and
// require Docker.
package repositories_test

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BillWilson/pat-checker/internal/config"
	"github.com/BillWilson/pat-checker/internal/domain/patent"
	"github.com/BillWilson/pat-checker/internal/domain/product"
	"github.com/BillWilson/pat-checker/internal/domain/report"
	"github.com/BillWilson/pat-checker/internal/infrastructure/database/postgres"
	"github.com/BillWilson/pat-checker/internal/infrastructure/database/postgres/repositories"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	appErrors "github.com/BillWilson/pat-checker/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test helpers
// ─────────────────────────────────────────────────────────────────────────────

// startPostgres launches pgvector on PostgreSQL 16, applies the embedded
// migrations and returns a connected pool.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "pat_checker_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     portNum,
		User:     "test",
		Password: "test",
		DBName:   "pat_checker_test",
		SSLMode:  "disable",
		MaxConns: 4,
	}
	log := logging.NewNopLogger()

	m, err := postgres.NewMigrator(ctx, cfg, log)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(4), version)
	assert.False(t, dirty)
	require.NoError(t, m.Close())

	// The ivfflat index is built on an empty table; probing every list keeps
	// the ordering assertions exact.
	admin, err := pgx.Connect(ctx, "postgres://test:test@"+host+":"+port.Port()+"/pat_checker_test?sslmode=disable")
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "ALTER DATABASE pat_checker_test SET ivfflat.probes = 100")
	require.NoError(t, err)
	require.NoError(t, admin.Close(ctx))

	conn, err := postgres.NewConnection(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	require.NoError(t, conn.HealthCheck(ctx))
	return conn
}

// vec returns a full-width embedding whose first two components are x and y.
func vec(x, y float32) pgvector.Vector {
	v := make([]float32, product.EmbeddingDimensions)
	v[0], v[1] = x, y
	return pgvector.NewVector(v)
}

func samplePatent(number string) *patent.Patent {
	date := func(s string) time.Time {
		d, _ := patent.ParseDate(s)
		return d
	}
	summary := "A smart shopping list."
	return &patent.Patent{
		PublicationNumber: number,
		Title:             "Shopping list generation",
		AISummary:         &summary,
		RawSourceURL:      "https://patents.example.com/" + number,
		Assignee:          "Example Corp",
		Inventors:         []patent.Inventor{{RawMessage: json.RawMessage(`{"name":"Jane Doe"}`)}},
		PriorityDate:      date("2019-01-02"),
		ApplicationDate:   date("2019-03-04"),
		GrantDate:         date("2021-05-06"),
		Abstract:          "Abstract text",
		Description:       "Description text",
		Claims: []patent.Claim{
			{Num: "00001", Text: "1. A method comprising..."},
			{Num: "00002", Text: "2. The method of claim 1..."},
		},
		Jurisdictions: "US",
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestRepositories_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	conn := startPostgres(t)
	ctx := context.Background()
	log := logging.NewNopLogger()

	patents := repositories.NewPatentRepository(conn.Pool(), log)
	products := repositories.NewProductRepository(conn.Pool(), log)
	reports := repositories.NewReportRepository(conn.Pool(), log)

	t.Run("patent save and find", func(t *testing.T) {
		first := samplePatent("US-RE49889-E1")
		id, err := patents.Save(ctx, first)
		require.NoError(t, err)
		assert.Positive(t, id)

		// A duplicate number is accepted; lookups return the oldest row.
		dup := samplePatent("US-RE49889-E1")
		dup.Title = "Later duplicate"
		_, err = patents.Save(ctx, dup)
		require.NoError(t, err)

		got, err := patents.FindByPublicationNumber(ctx, "US-RE49889-E1")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "Shopping list generation", got.Title)
		assert.Equal(t, []string{"1. A method comprising...", "2. The method of claim 1..."}, got.ClaimTexts())
		require.Len(t, got.Inventors, 1)
		assert.Equal(t, "Jane Doe", got.Inventors[0].Name())
		assert.Nil(t, got.Citations)
		assert.Equal(t, "2021-05-06", got.GrantDate.Format(patent.DateLayout))

		n, err := patents.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = patents.FindByPublicationNumber(ctx, "US-0000000-X")
		assert.True(t, appErrors.IsCode(err, appErrors.ErrCodePatentNotFound))
	})

	t.Run("nearest products by company", func(t *testing.T) {
		mk := func(company, name string, v *pgvector.Vector) int64 {
			p, err := product.New(company, name, name+" description")
			require.NoError(t, err)
			p.Vector = v
			id, err := products.Create(ctx, p)
			require.NoError(t, err)
			return id
		}

		far := vec(10, 0)
		near := vec(1, 0)
		tieA := vec(0, 3)
		tieB := vec(3, 0)
		mk("Walmart Inc.", "Far product", &far)
		nearID := mk("Walmart Inc.", "Near product", &near)
		tieAID := mk("Walmart Inc.", "Tie A", &tieA)
		tieBID := mk("Walmart Inc.", "Tie B", &tieB)
		mk("Walmart Inc.", "Not embedded", nil)
		other := vec(0, 0)
		mk("Target", "Other company", &other)

		got, err := products.NearestByCompany(ctx, "Walmart Inc.", vec(0, 0), 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, nearID, got[0].ID)
		// Equal distances fall back to insertion order.
		assert.Equal(t, tieAID, got[1].ID)
		assert.Equal(t, tieBID, got[2].ID)

		none, err := products.NearestByCompany(ctx, "Nobody", vec(0, 0), 2)
		require.NoError(t, err)
		assert.Empty(t, none)

		all, err := products.ListByCompany(ctx, "Walmart Inc.")
		require.NoError(t, err)
		assert.Len(t, all, 5)

		unembedded := all[4]
		require.NoError(t, products.UpdateVector(ctx, unembedded.ID, vec(0, 0)))
		got, err = products.NearestByCompany(ctx, "Walmart Inc.", vec(0, 0), 1)
		require.NoError(t, err)
		assert.Equal(t, unembedded.ID, got[0].ID)

		err = products.UpdateVector(ctx, 999999, vec(0, 0))
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("reports create list count", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			rep, err := report.New("US-RE49889-E1", "Walmart Inc.",
				json.RawMessage(`{"overall_risk_assessment":"High","n":`+strconv.Itoa(i)+`}`))
			require.NoError(t, err)
			require.NoError(t, reports.Create(ctx, rep))
			assert.Positive(t, rep.ID)
			assert.False(t, rep.CreatedAt.IsZero())
		}

		n, err := reports.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		page, err := reports.List(ctx, 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Greater(t, page[0].ID, page[1].ID)

		flat, err := page[0].Flatten()
		require.NoError(t, err)
		assert.Equal(t, json.Number("2"), flat["n"])
		assert.Equal(t, "Walmart Inc.", flat[report.KeyCompanyName])

		rest, err := reports.List(ctx, 2, 2)
		require.NoError(t, err)
		assert.Len(t, rest, 1)
	})
}
