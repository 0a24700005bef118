package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	logger_adapter "property-publishing-service/internal/adapters/logger"
	postgres_adapter "property-publishing-service/internal/adapters/postgres"
	rabbitmq_adapter "property-publishing-service/internal/adapters/rabbitmq"
	"property-publishing-service/internal/adapters/rest"
	s3_adapter "property-publishing-service/internal/adapters/s3"
	"property-publishing-service/internal/configs"
	"property-publishing-service/internal/constants"
	"property-publishing-service/internal/core/port"
	"property-publishing-service/internal/core/usecase"
	fluentlogger "property-publishing-service/pkg/fluent_logger"
	"property-publishing-service/pkg/postgres"
	"property-publishing-service/pkg/rabbitmq/rabbitmq_common"
	"property-publishing-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 15 * time.Second

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	apiServer    *rest.Server
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	connManager         *rabbitmq_common.ConnectionManager
	publicationProducer *rabbitmq_producer.Publisher
}

// NewApp - composition root: все зависимости создаются и связываются здесь.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. Логгеры ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	app := &App{config: appConfig, fluentClient: fluentClient, logger: appLogger}

	// --- 2. Исходящие адаптеры ---
	app.dbPool, err = postgres.NewClient(context.Background(), postgres.Config{
		DatabaseURL: appConfig.Database.URL,
		MaxConns:    int32(appConfig.Database.MaxConns),
	})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		app.closeResources()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	propertyRepo, err := postgres_adapter.NewPostgresPropertyRepository(app.dbPool)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to create property repository: %w", err)
	}
	ownerRepo, err := postgres_adapter.NewPostgresOwnerRepository(app.dbPool)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to create owner repository: %w", err)
	}

	s3Cfg := s3_adapter.Config{
		Bucket:          appConfig.S3.Bucket,
		Region:          appConfig.S3.Region,
		Endpoint:        appConfig.S3.Endpoint,
		PublicBaseURL:   appConfig.S3.PublicBaseURL,
		UsePathStyle:    appConfig.S3.UsePathStyle,
		AccessKeyID:     appConfig.S3.AccessKeyID,
		SecretAccessKey: appConfig.S3.SecretAccessKey,
	}
	s3Client, err := s3_adapter.NewS3Client(context.Background(), s3Cfg)
	if err != nil {
		appLogger.Error("Failed to create S3 client", err, nil)
		app.closeResources()
		return nil, err
	}
	uploadService, err := s3_adapter.NewS3UploadService(s3Client, s3Cfg)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to create upload service: %w", err)
	}
	appLogger.Info("S3 upload service initialized.", port.Fields{"bucket": appConfig.S3.Bucket})

	rabbitCfg := rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL}
	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	app.connManager, err = rabbitmq_common.GetManager(rabbitCfg, connManagerBridge)
	if err != nil {
		appLogger.Error("Failed to create connection manager", err, nil)
		app.closeResources()
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

	app.publicationProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitCfg,
		ExchangeName:             appConfig.RabbitMQ.PublicationExchange,
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, app.connManager)
	if err != nil {
		appLogger.Error("Failed to create publication producer", err, nil)
		app.closeResources()
		return nil, fmt.Errorf("failed to create publication producer: %w", err)
	}

	notifier, err := rabbitmq_adapter.NewPublicationNotifierAdapter(app.publicationProducer, constants.RoutingKeyPropertyPublished)
	if err != nil {
		app.closeResources()
		return nil, err
	}
	appLogger.Info("All outgoing adapters initialized.", nil)

	// --- 3. Use cases ---
	validateDraftUseCase := usecase.NewValidateDraftUseCase()
	publishPropertyUseCase := usecase.NewPublishPropertyUseCase(propertyRepo, ownerRepo, uploadService, notifier)
	uploadOwnerDocumentUseCase := usecase.NewUploadOwnerDocumentUseCase(ownerRepo, uploadService, appConfig.Rest.UploadMaxBytes)
	appLogger.Info("All use cases initialized.", nil)

	// --- 4. REST API ---
	router := rest.NewRouter(
		rest.NewDraftHandler(validateDraftUseCase),
		rest.NewPublicationHandler(publishPropertyUseCase, uploadOwnerDocumentUseCase, appConfig.Rest.UploadMaxBytes),
		appConfig.Rest.CORSAllowedOrigins,
		baseLogger,
	)
	app.apiServer = rest.NewServer(appConfig.Rest.PORT, router, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return app, nil
}

// Run запускает HTTP-сервер и ждет сигнала завершения.
func (a *App) Run() error {
	defer a.closeResources()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil {
			errorsCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.apiServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}
	return runErr
}

// closeResources закрывает все, что успело открыться. Безопасен при частичной инициализации.
func (a *App) closeResources() {
	if a.publicationProducer != nil {
		if err := a.publicationProducer.Close(); err != nil {
			a.logger.Error("Error closing publication producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен, поэтому пишем в stdout.
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}
