package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/application/orders"
	"github.com/jhoicas/Almacen-api/internal/application/transactions"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/blob"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/outbox"
	infrapdf "github.com/jhoicas/Almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	stockRepo := postgres.NewStockRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	attachmentRepo := postgres.NewAttachmentRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Almacén de binarios (GCS) con metadatos en PostgreSQL
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente de Cloud Storage")
	}
	defer storageClient.Close()
	attachmentStore := blob.NewGCSStore(storageClient, cfg.Blob.Bucket, attachmentRepo)

	// Cola local duradera + log de transacciones con respaldo
	queue, err := outbox.OpenQueue(cfg.Outbox.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir cola local de transacciones")
	}
	defer queue.Close()
	txLog := outbox.NewFallbackLog(transactionRepo, queue, log)

	// Reprocesador: reenvía las entradas locales al registro autoritativo
	replayer := outbox.NewReplayer(queue, transactionRepo, log)
	replayer.Interval = time.Duration(cfg.Outbox.ReplayInterval) * time.Second
	replayer.BatchSize = cfg.Outbox.ReplayBatchSize
	replayCtx, stopReplayer := context.WithCancel(ctx)
	defer stopReplayer()
	go replayer.Run(replayCtx)

	reconciler := orders.NewReconciler(txRunner, stockRepo, supplierRepo, attachmentStore, txLog, log)
	ledgerView := ledger.NewViewUseCase(stockRepo, log)
	pdfGenerator := infrapdf.NewMarotoReceiptGenerator()
	history := transactions.NewHistoryUseCase(txLog, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    10 * 1024 * 1024, // adjuntos multipart
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Reconciler:   reconciler,
		LedgerView:   ledgerView,
		History:      history,
		Attachments:  attachmentStore,
		SupplierRepo: supplierRepo,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
