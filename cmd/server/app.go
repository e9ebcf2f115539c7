package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/openbank/openbank-api/internal/config"
	"github.com/openbank/openbank-api/internal/events"
	"github.com/openbank/openbank-api/internal/platform/postgres"
	"github.com/openbank/openbank-api/internal/platform/rabbitmq"
	"github.com/openbank/openbank-api/internal/platform/rates"
	"github.com/openbank/openbank-api/internal/service"
	"github.com/openbank/openbank-api/internal/service/auth"
	"github.com/openbank/openbank-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore        store.UserStore
	accountStore     store.AccountStore
	cardStore        store.CardStore
	transactionStore store.TransactionStore

	// Platform services
	rates     *rates.Service
	publisher *rabbitmq.Publisher

	// Application services
	jwtService         auth.JWTService
	userService        *service.UserService
	ledgerService      *service.LedgerService
	cardService        *service.CardService
	transactionService *service.TransactionService
}

// newApplication wires up every dependency of the server: database, stores,
// rate refresher, optional event publisher and the application services.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := openDatabase(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := postgres.RunMigrations(db); err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.userStore = postgres.NewPostgresUserStore(db)
	app.accountStore = postgres.NewPostgresAccountStore(db)
	app.cardStore = postgres.NewPostgresCardStore(db)
	app.transactionStore = postgres.NewPostgresTransactionStore(db)
	runner := store.NewSQLRunner(db)

	app.rates = rates.NewService(
		rates.NewClient(rates.DefaultBaseURL, cfg.Rates.APIKey),
		logger,
	)

	// Events go to RabbitMQ when configured, otherwise to the in-process
	// emitter so local handlers can still observe committed operations.
	var emitter events.EventEmitter = events.NewInMemoryEventEmitter(logger)
	if cfg.AMQP.URL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			closeQuietly(db, logger)
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		app.publisher = publisher
		emitter = publisher
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	app.userService, err = service.NewUserService(
		app.userStore,
		auth.NewBcryptHasher(0),
		auth.NewBcryptVerifier(),
		app.jwtService,
		logger,
	)
	if err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.ledgerService, err = service.NewLedgerService(
		runner,
		app.userStore,
		app.accountStore,
		app.transactionStore,
		app.rates,
		emitter,
		logger,
	)
	if err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("failed to create ledger service: %w", err)
	}

	app.cardService, err = service.NewCardService(
		runner,
		app.userStore,
		app.accountStore,
		app.cardStore,
		app.transactionStore,
		emitter,
		logger,
	)
	if err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.transactionService, err = service.NewTransactionService(app.transactionStore, logger)
	if err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("failed to create transaction service: %w", err)
	}

	return app, nil
}

// Close releases the application's long-lived resources.
func (app *application) Close() {
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("failed to close event publisher", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		closeQuietly(app.db, app.logger)
	}
}

// openDatabase opens and verifies the Postgres connection pool.
func openDatabase(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		closeQuietly(db, slog.Default())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func closeQuietly(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}
