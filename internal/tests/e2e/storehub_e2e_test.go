// Package e2e provides end-to-end tests for the StoreHub application.
// The suite leverages `testcontainers-go` to spin up a real PostgreSQL instance in a Docker container,
// ensuring tests run against a production-like environment. It uses `testify/suite` for better structure
// and lifecycle management (`SetupSuite`, `TearDownSuite`, `SetupTest`).
//
// Key features of the test suite:
//   - A PostgreSQL container is started and database migrations are applied before tests run.
//   - The actual application handler is run in an `httptest.Server`.
//   - Each test case is fully isolated by truncating the database tables before it runs.
//   - Test coverage includes store creation with product plans, the sale stock
//     thresholds, and the register/login/link/visit flow.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/storehub/storehub/internal/app"
	"github.com/storehub/storehub/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "STOREHUB_SKIP_E2E_TESTS"

// StoreHubE2ESuite is a test suite for end-to-end tests of the application.
type StoreHubE2ESuite struct {
	suite.Suite                             // Embedding testify's suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for E2E tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for E2E tests
	server      *httptest.Server            // HTTP server for the application
	httpClient  *http.Client                // HTTP client for making requests to the server
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite, used for cancellation and timeouts
}

// testConfig creates a configuration for the application under test.
func testConfig() *config.Config {
	var cfg config.Config
	cfg.JWT.Secret = "e2e-test-secret-at-least-32-chars"
	cfg.JWT.TTL = time.Hour
	cfg.JWT.Issuer = "storehub"
	cfg.App.Env = "dev"
	return &cfg
}

// SetupSuite initializes the test suite by setting up the PostgreSQL container, database connection, and application configuration.
func (s *StoreHubE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "storehub"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgx pool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging E2E PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	// Build path to migrations directory
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "..", "..", "..", "db", "migrations")
	sourceURL := "file://" + migrationsPath
	// Create a new migrate instance with the source URL and connection string
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	// Apply all available migrations
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for E2E tests")

	// 5. Wire the application without Redis and start the test server
	deps := app.SetupDependencies(s.dbPool, nil, testConfig(), s.logger)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
	// Redirects are asserted explicitly, never followed
	s.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	s.logger.Info("E2E test server started", "url", s.server.URL)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *StoreHubE2ESuite) TearDownSuite() {
	s.logger.Info("Tearing down E2E suite...")
	if s.server != nil {
		s.server.Close()
		s.logger.Info("E2E test server closed.")
	}
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("E2E DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating E2E PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("Failed to terminate E2E PostgreSQL container", "error", err)
		} else {
			s.logger.Info("E2E PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating every table.
func (s *StoreHubE2ESuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE store_product, links, stores, products, users RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

// TestStoreHubE2E runs the end-to-end test suite.
func TestStoreHubE2E(t *testing.T) {
	// Skip E2E tests if the environment variable is set
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(StoreHubE2ESuite))
}

// --------------------------------------------------------------------------
// ---------- Payload structures and Helper methods for E2E tests -----------
// --------------------------------------------------------------------------

// envelope mirrors the uniform {success: 0|1, ...} response body.
type envelope struct {
	Success          int               `json:"success"`
	Message          string            `json:"message"`
	Token            string            `json:"token"`
	ValidationErrors map[string]string `json:"validation_errors"`
	Store            *storePayload     `json:"store"`
	Product          *productPayload   `json:"product"`
	Link             *linkPayload      `json:"link"`
	Links            []linkPayload     `json:"links"`
}

type storePayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Products []struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Stock int32  `json:"stock"`
	} `json:"products"`
}

type productPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type linkPayload struct {
	ID        int64  `json:"id"`
	ShortLink string `json:"short_link"`
	FullLink  string `json:"full_link"`
	Views     int64  `json:"views"`
}

// doRequest makes an HTTP request to the application.
// Returns the response and the parsed envelope when the body is JSON.
func (s *StoreHubE2ESuite) doRequest(method, path string, payload any, token string) (*http.Response, envelope) {
	s.T().Helper()
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		require.NoError(s.T(), err)
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, body)
	require.NoError(s.T(), err, "Failed to create HTTP request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err, "HTTP request failed")
	defer func() {
		require.NoError(s.T(), resp.Body.Close(), "Failed to close response body")
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err, "Failed to read response body")

	var env envelope
	if len(bodyBytes) > 0 && resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(s.T(), json.Unmarshal(bodyBytes, &env), "Failed to decode response body: %s", string(bodyBytes))
	}
	return resp, env
}

// createProduct creates a product and returns its ID.
func (s *StoreHubE2ESuite) createProduct(name string) int64 {
	s.T().Helper()
	resp, env := s.doRequest(http.MethodPost, "/api/v1/products", map[string]any{"name": name}, "")
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	require.NotNil(s.T(), env.Product)
	return env.Product.ID
}

// register creates an account and returns its access token.
func (s *StoreHubE2ESuite) register(email string) string {
	s.T().Helper()
	resp, env := s.doRequest(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"name":     "E2E User",
		"email":    email,
		"password": "secret-password",
	}, "")
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	require.NotEmpty(s.T(), env.Token)
	return env.Token
}

// pivotStock reads the persisted stock for (storeID, productID).
func (s *StoreHubE2ESuite) pivotStock(storeID, productID int64) int32 {
	s.T().Helper()
	var stock int32
	err := s.dbPool.QueryRow(s.ctx,
		"SELECT stock FROM store_product WHERE store_id = $1 AND product_id = $2", storeID, productID).Scan(&stock)
	require.NoError(s.T(), err, "pivot row should exist")
	return stock
}

// sell posts one sale request and returns the outcome message.
func (s *StoreHubE2ESuite) sell(storeID, productID int64) (int, string) {
	s.T().Helper()
	resp, env := s.doRequest(http.MethodPost, "/api/v1/products/sell", map[string]any{
		"storeId":   storeID,
		"productId": productID,
	}, "")
	return resp.StatusCode, env.Message
}

// --------------------------------------------------------------
// ---------------------- E2E test methods ----------------------
// --------------------------------------------------------------

func (s *StoreHubE2ESuite) TestCreateStoreWithProductIDs_E2E() {
	s.T().Run("Create Store - productIds attach with zero stock", func(t *testing.T) {
		s.SetupTest()
		// given
		id1 := s.createProduct("Widget")
		id2 := s.createProduct("Gadget")
		id3 := s.createProduct("Gizmo")

		// when
		resp, env := s.doRequest(http.MethodPost, "/api/v1/stores", map[string]any{
			"name":       "Main Street",
			"productIds": []int64{id1, id2, id3},
		}, "")

		// then
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.Equal(t, 1, env.Success)
		require.Equal(t, "Store created successfully", env.Message)
		require.NotNil(t, env.Store)
		require.Len(t, env.Store.Products, 3)
		for _, p := range env.Store.Products {
			require.Equal(t, int32(0), p.Stock, "productIds attach with zero stock")
		}
	})
}

func (s *StoreHubE2ESuite) TestCreateStoreWithStockPlan_E2E() {
	s.T().Run("Create Store - duplicate entries sum, unknown products dropped", func(t *testing.T) {
		s.SetupTest()
		// given
		id1 := s.createProduct("Widget")
		id2 := s.createProduct("Gadget")

		// when: id1 appears in both lists and twice in the stock plan
		resp, env := s.doRequest(http.MethodPost, "/api/v1/stores", map[string]any{
			"name":       "Main Street",
			"productIds": []int64{id1},
			"products": []map[string]any{
				{"id": id1, "stock": 3},
				{"id": id2, "stock": 5},
				{"id": id1, "stock": 4},
				{"id": 99999, "stock": 8},
			},
		}, "")

		// then
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.NotNil(t, env.Store)
		require.Len(t, env.Store.Products, 2, "unknown product should be dropped")
		stocks := make(map[int64]int32)
		for _, p := range env.Store.Products {
			stocks[p.ID] = p.Stock
		}
		require.Equal(t, int32(7), stocks[id1], "duplicate stock entries should sum")
		require.Equal(t, int32(5), stocks[id2])
	})
}

func (s *StoreHubE2ESuite) TestSellThresholds_E2E() {
	testCases := []struct {
		name            string
		initialStock    int32
		expectedMessage string
		expectedStock   int32
	}{
		{
			name:            "Sell - plenty of stock",
			initialStock:    100,
			expectedMessage: "Product sold successfully.",
			expectedStock:   99,
		},
		{
			name:            "Sell - crosses into running low",
			initialStock:    6,
			expectedMessage: "Product sold successfully. The store is running low on stock of this product, remaining: 5 units",
			expectedStock:   5,
		},
		{
			name:            "Sell - last unit",
			initialStock:    1,
			expectedMessage: "Product sold successfully. The store run out of this product",
			expectedStock:   0,
		},
		{
			name:            "Sell - no stock at all",
			initialStock:    0,
			expectedMessage: "The store does not have any stock of this product.",
			expectedStock:   0,
		},
	}

	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			s.SetupTest()
			// given
			productID := s.createProduct("Widget")
			resp, env := s.doRequest(http.MethodPost, "/api/v1/stores", map[string]any{
				"name":     "Main Street",
				"products": []map[string]any{{"id": productID, "stock": tc.initialStock}},
			}, "")
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			storeID := env.Store.ID

			// when
			statusCode, message := s.sell(storeID, productID)

			// then: every sale attempt against an existing pair is a 200
			require.Equal(t, http.StatusOK, statusCode)
			require.Equal(t, tc.expectedMessage, message)
			require.Equal(t, tc.expectedStock, s.pivotStock(storeID, productID), "persisted stock should match")
		})
	}
}

func (s *StoreHubE2ESuite) TestSellUnknownPair_E2E() {
	s.T().Run("Sell - unknown store and product are 404s", func(t *testing.T) {
		s.SetupTest()
		// given
		productID := s.createProduct("Widget")
		resp, env := s.doRequest(http.MethodPost, "/api/v1/stores", map[string]any{"name": "Main Street"}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		storeID := env.Store.ID

		// when / then: store is checked before the product
		statusCode, _ := s.sell(99999, productID)
		require.Equal(t, http.StatusNotFound, statusCode)

		statusCode, _ = s.sell(storeID, 99999)
		require.Equal(t, http.StatusNotFound, statusCode)

		// an existing pair without a pivot row reads as zero stock
		statusCode, message := s.sell(storeID, productID)
		require.Equal(t, http.StatusOK, statusCode)
		require.Equal(t, "The store does not have any stock of this product.", message)
	})
}

func (s *StoreHubE2ESuite) TestAuthAndLinks_E2E() {
	s.T().Run("Register, save a link, visit it, delete it", func(t *testing.T) {
		s.SetupTest()
		// given
		token := s.register("alice@example.com")

		// link routes require a token
		resp, _ := s.doRequest(http.MethodGet, "/api/v1/links", nil, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		// when: save a link
		resp, env := s.doRequest(http.MethodPost, "/api/v1/links", map[string]any{
			"link": "https://www.example.com/",
		}, token)

		// then
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.NotNil(t, env.Link)
		require.Equal(t, "https://www.example.com", env.Link.FullLink)
		require.Equal(t, "example.com", env.Link.ShortLink)

		// saving the same url again is rejected
		resp, env = s.doRequest(http.MethodPost, "/api/v1/links", map[string]any{
			"link": "https://www.example.com/",
		}, token)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Equal(t, "The link is already saved", env.Message)

		// visiting the short link is public and counts the view
		resp, _ = s.doRequest(http.MethodGet, "/visit/example.com", nil, "")
		require.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
		require.Equal(t, "https://www.example.com", resp.Header.Get("Location"))

		resp, env = s.doRequest(http.MethodGet, "/api/v1/links", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, env.Links, 1)
		require.Equal(t, int64(1), env.Links[0].Views)

		// when: delete everything
		resp, env = s.doRequest(http.MethodDelete, "/api/v1/links", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "All links deleted successfully", env.Message)

		resp, env = s.doRequest(http.MethodGet, "/api/v1/links", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, env.Links, 0)
	})
}

func (s *StoreHubE2ESuite) TestLogin_E2E() {
	s.T().Run("Login - wrong password is a message, not an error", func(t *testing.T) {
		s.SetupTest()
		// given
		s.register("alice@example.com")

		// when
		resp, env := s.doRequest(http.MethodPost, "/api/v1/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong-password",
		}, "")

		// then
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 1, env.Success)
		require.Equal(t, "Check email & password", env.Message)
		require.Empty(t, env.Token)

		// and duplicate registration is a validation error
		resp, env = s.doRequest(http.MethodPost, "/api/v1/auth/register", map[string]any{
			"name":     "E2E User",
			"email":    "alice@example.com",
			"password": "secret-password",
		}, "")
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Equal(t, "failed on rule: unique", env.ValidationErrors["email"])
	})
}
