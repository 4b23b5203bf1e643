package repo

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	productrepo "github.com/storehub/storehub/internal/product/repo"
	storeerrors "github.com/storehub/storehub/internal/store/errors"

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

const skipIntegrationTests = "STOREHUB_SKIP_INTEGRATION_TESTS"

// StoreRepoSuite is a test suite for the store and inventory repositories.
type StoreRepoSuite struct {
	suite.Suite                             // Embedding testify suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for integration tests
	stores      StoreRepository             //
	products    productrepo.ProductRepository
	logger      *slog.Logger    // Logger for the test suite
	ctx         context.Context // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container,
func (s *StoreRepoSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "storehub_db"
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
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
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
	migrationsPath := filepath.Join(wd, "../../../db/migrations")
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
	s.logger.Info("Migrations applied for integration tests")

	s.stores = NewPgRepository(s.dbPool)
	s.products = productrepo.NewPgRepository(s.dbPool)
	s.logger.Info("Initialization complete for StoreRepoSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *StoreRepoSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating every table.
func (s *StoreRepoSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE store_product, stores, products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

// TestStoreRepoIntegration runs the store repository integration tests.
func TestStoreRepoIntegration(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(StoreRepoSuite))
}

// createStoreWithProduct is a helper that creates a store, a product and a
// pivot row with the given stock.
func (s *StoreRepoSuite) createStoreWithProduct(stock int32) (*Store, *productrepo.Product) {
	s.T().Helper()
	store, err := s.stores.Create(s.ctx, "Main Street")
	require.NoError(s.T(), err, "failed to create store")
	product, err := s.products.Create(s.ctx, "Widget")
	require.NoError(s.T(), err, "failed to create product")
	err = s.stores.AttachProduct(s.ctx, store.ID, ProductAttachment{ProductID: product.ID, Stock: stock})
	require.NoError(s.T(), err, "failed to attach product")
	return store, product
}

func (s *StoreRepoSuite) TestCreateAndFind() {
	s.SetupTest()
	// given
	created, err := s.stores.Create(s.ctx, "Main Street")
	require.NoError(s.T(), err, "Create should not return an error")
	require.NotZero(s.T(), created.ID, "Created store ID should not be zero")
	require.NotZero(s.T(), created.CreatedAt, "CreatedAt should be set")

	// when
	fetched, err := s.stores.FindByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "FindByID should not return an error")
	require.Equal(s.T(), created.ID, fetched.ID)
	require.Equal(s.T(), "Main Street", fetched.Name)
	require.Nil(s.T(), fetched.DeletedAt)
}

func (s *StoreRepoSuite) TestFindByID_NotFound() {
	s.SetupTest()
	// given (no stores created)

	// when
	_, err := s.stores.FindByID(s.ctx, 12345)

	// then
	require.ErrorIs(s.T(), err, storeerrors.ErrStoreNotFound, "Expected ErrStoreNotFound for non-existent store")
}

func (s *StoreRepoSuite) TestSoftDelete() {
	s.SetupTest()
	// given
	created, err := s.stores.Create(s.ctx, "Main Street")
	require.NoError(s.T(), err)

	// when
	deleted, err := s.stores.SoftDelete(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "SoftDelete should not return an error")
	require.NotNil(s.T(), deleted.DeletedAt, "deleted_at should be set")

	// the store is invisible afterwards
	_, err = s.stores.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, storeerrors.ErrStoreNotFound)
	exists, err := s.stores.Exists(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.False(s.T(), exists, "soft-deleted store should not exist")
}

func (s *StoreRepoSuite) TestFindWithProducts() {
	s.SetupTest()
	// given
	store, product := s.createStoreWithProduct(7)

	// when
	fetched, err := s.stores.FindWithProducts(s.ctx, store.ID)

	// then
	require.NoError(s.T(), err, "FindWithProducts should not return an error")
	require.Equal(s.T(), store.ID, fetched.ID)
	require.Len(s.T(), fetched.Products, 1)
	require.Equal(s.T(), product.ID, fetched.Products[0].ID)
	require.Equal(s.T(), int32(7), fetched.Products[0].Stock)
}

func (s *StoreRepoSuite) TestFindWithProducts_NoProducts() {
	s.SetupTest()
	// given
	store, err := s.stores.Create(s.ctx, "Empty Store")
	require.NoError(s.T(), err)

	// when
	fetched, err := s.stores.FindWithProducts(s.ctx, store.ID)

	// then
	require.NoError(s.T(), err)
	require.NotNil(s.T(), fetched.Products, "products should be an empty slice, not nil")
	require.Len(s.T(), fetched.Products, 0)
}

func (s *StoreRepoSuite) TestFindAllWithProductsCount() {
	s.SetupTest()
	// given
	s.createStoreWithProduct(3)
	_, err := s.stores.Create(s.ctx, "Empty Store")
	require.NoError(s.T(), err)

	// when
	list, err := s.stores.FindAllWithProductsCount(s.ctx, 10, 0)

	// then
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	counts := make(map[string]int64)
	for _, sc := range list {
		counts[sc.Name] = sc.ProductsCount
	}
	require.Equal(s.T(), int64(1), counts["Main Street"])
	require.Equal(s.T(), int64(0), counts["Empty Store"])
}

func (s *StoreRepoSuite) TestAttachProduct_DuplicateFails() {
	s.SetupTest()
	// given
	store, product := s.createStoreWithProduct(1)

	// when
	err := s.stores.AttachProduct(s.ctx, store.ID, ProductAttachment{ProductID: product.ID, Stock: 2})

	// then
	require.Error(s.T(), err, "attaching an already attached product should fail")
}

func (s *StoreRepoSuite) TestSyncProducts_ReplacesPivotSet() {
	s.SetupTest()
	// given
	store, product := s.createStoreWithProduct(1)
	other, err := s.products.Create(s.ctx, "Gadget")
	require.NoError(s.T(), err)

	// when: the plan drops the old product and introduces the new one
	err = s.stores.SyncProducts(s.ctx, store.ID, []ProductAttachment{{ProductID: other.ID, Stock: 9}})

	// then
	require.NoError(s.T(), err, "SyncProducts should not return an error")
	fetched, err := s.stores.FindWithProducts(s.ctx, store.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), fetched.Products, 1)
	require.Equal(s.T(), other.ID, fetched.Products[0].ID)
	require.Equal(s.T(), int32(9), fetched.Products[0].Stock)

	// the old pivot row is gone
	_, err = s.products.FindStock(s.ctx, store.ID, product.ID)
	require.Error(s.T(), err)
}

func (s *StoreRepoSuite) TestDetachAll() {
	s.SetupTest()
	// given
	store, _ := s.createStoreWithProduct(4)

	// when
	err := s.stores.DetachAll(s.ctx, store.ID)

	// then
	require.NoError(s.T(), err)
	fetched, err := s.stores.FindWithProducts(s.ctx, store.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), fetched.Products, 0)
}

func (s *StoreRepoSuite) TestDecrementStock() {
	s.SetupTest()
	// given
	store, product := s.createStoreWithProduct(2)

	// when: take units one by one
	remaining, err := s.products.DecrementStock(s.ctx, store.ID, product.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(1), remaining)

	remaining, err = s.products.DecrementStock(s.ctx, store.ID, product.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(0), remaining)

	// then: the row is at zero and cannot go negative
	_, err = s.products.DecrementStock(s.ctx, store.ID, product.ID)
	require.Error(s.T(), err, "decrementing at zero stock should fail")

	stock, err := s.products.FindStock(s.ctx, store.ID, product.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(0), stock, "stock should never go below zero")
}
