// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"territory-workers/internal/assignment"
	"territory-workers/internal/common/config"
	"territory-workers/internal/common/database"
	"territory-workers/internal/common/logger"
	"territory-workers/internal/geo/geocode"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	if os.Getenv("E2E") == "" {
		fmt.Println("⚠️  E2E not set, skipping end-to-end suite")
		os.Exit(0)
	}

	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	_, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting FULL E2E Test with real services...")

	assertAllServicesConnectivity(t, cfg)
	createDatabaseTables(t, cfg)
	runAssignmentFlow(t, cfg, zapLog)

	t.Log("✅ ALL TESTS PASSED — Full E2E workflow successful!")
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	t.Log("🔍 Checking service connectivity...")

	// 🔧 FORCE LOCALHOST FOR E2E TESTS
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"

	// --- PostgreSQL ---
	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "❌ PostgreSQL ping failed")
	db.Close()
	t.Log("✅ PostgreSQL connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "❌ Redis ping failed")
	t.Log("✅ Redis connected")

	// --- Elasticsearch ---
	esURL := cfg.Database.Elasticsearch.GetURL()
	t.Logf("🔗 Elasticsearch URL: %s", esURL)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	require.NoError(t, err, "❌ Elasticsearch client creation failed")

	res, err := es.Info()
	require.NoError(t, err, "❌ Elasticsearch info request failed")
	assert.False(t, res.IsError(), "❌ Elasticsearch returned error")
	res.Body.Close()
	t.Log("✅ Elasticsearch connected")

	// --- Zeebe ---
	_, err = zeebeClient.NewTopologyCommand().Send(context.Background())
	assert.NoError(t, err, "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

// ==========================
// 2. Database Tables Setup + Test Data
// ==========================
func createDatabaseTables(t *testing.T, cfg *config.Config) {
	t.Log("🔧 Creating database tables and inserting test data...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS representatives (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			phone VARCHAR(50),
			territory JSONB,
			territory_active BOOLEAN DEFAULT true,
			active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS business_locations (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			street VARCHAR(255),
			neighborhood VARCHAR(255),
			city VARCHAR(100),
			state VARCHAR(50),
			postal_code VARCHAR(20),
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			coordinate_source VARCHAR(50),
			assigned_representative_id VARCHAR(255),
			assigned_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS assignment_events (
			id VARCHAR(255) PRIMARY KEY,
			location_id VARCHAR(255) NOT NULL,
			representative_id VARCHAR(255),
			distance_km DOUBLE PRECISION,
			method VARCHAR(50),
			success BOOLEAN,
			error_code VARCHAR(100),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to create table: %v", err)
		}
	}

	testData := []string{
		`INSERT INTO representatives (id, name, email, territory, territory_active, active)
		 VALUES ('rep-sorocaba', 'Ana Lima', 'ana@example.com',
		 '{"kind": "radius", "center": {"latitude": -23.5015, "longitude": -47.4526}, "radiusKm": 40}',
		 true, true)
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO representatives (id, name, email, territory, territory_active, active)
		 VALUES ('rep-capital', 'Bruno Souza', 'bruno@example.com',
		 '{"kind": "multiArea", "areas": [{"center": {"latitude": -23.5505, "longitude": -46.6333}, "radiusKm": 30, "label": "capital"}]}',
		 true, true)
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO business_locations (id, name, city, state, postal_code)
		 VALUES ('loc-padaria', 'Padaria Central', 'Sorocaba', 'SP', '18030-310')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO business_locations (id, name, city, state, latitude, longitude, coordinate_source)
		 VALUES ('loc-restaurante', 'Restaurante Paulista', 'São Paulo', 'SP', -23.5614, -46.6559, 'geocoder')
		 ON CONFLICT (id) DO NOTHING`,
	}

	for _, query := range testData {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to insert test data: %v", err)
		}
	}

	t.Log("✅ Database tables created/verified with test data")
}

// ==========================
// 3. Assignment Flow Against Real Services
// ==========================
func runAssignmentFlow(t *testing.T, cfg *config.Config, zlog *zap.Logger) {
	t.Log("🧪 Running the assignment flow against real services...")

	log := logger.NewZapAdapter(zlog)
	ctx := context.Background()

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	esURL := cfg.Database.Elasticsearch.GetURL()
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{esURL}})
	require.NoError(t, err)

	store := assignment.NewPostgresStore(ctx, dbClient.GetDB(), log)
	cache := assignment.NewCoordinateCache(rdbClient.GetClient(), 24*time.Hour, log)
	indexer := assignment.NewIndexer(es, log)

	// No geocoding credentials in CI: the engine must fall back to the
	// CEP estimator for loc-padaria and use the stored coordinate for
	// loc-restaurante.
	geocoder := geocode.NewClient(geocode.Config{BaseURL: "http://localhost:1/geocode"}, log)

	engine := assignment.NewEngine(store, geocoder, cache, indexer, log, assignment.Options{})

	t.Run("assign-with-cep-fallback", func(t *testing.T) {
		result, err := engine.Assign(ctx, "loc-padaria")
		require.NoError(t, err)
		require.True(t, result.Success, "expected assignment, got %s: %s", result.ErrorCode, result.Error)
		assert.Equal(t, "rep-sorocaba", result.RepresentativeID)
		assert.Equal(t, "cep_fallback", result.CoordinateSource)
	})

	t.Run("assign-with-stored-coordinate", func(t *testing.T) {
		result, err := engine.Assign(ctx, "loc-restaurante")
		require.NoError(t, err)
		require.True(t, result.Success)
		assert.Equal(t, "rep-capital", result.RepresentativeID)
		assert.Equal(t, "capital", result.Label)
	})

	t.Run("resync-representative", func(t *testing.T) {
		summary, err := engine.Resync(ctx, "rep-sorocaba", assignment.ResyncOptions{Reassign: true})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, summary.Scanned, 1)
		assert.Equal(t, 0, summary.Failed)
	})

	t.Run("unknown-location", func(t *testing.T) {
		result, err := engine.Assign(ctx, "loc-ghost")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "LOCATION_NOT_FOUND", result.ErrorCode)
	})
}
