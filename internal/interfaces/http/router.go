package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/application/orders"
	"github.com/jhoicas/Almacen-api/internal/application/transactions"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reconciler   *orders.Reconciler
	LedgerView   *ledger.ViewUseCase
	History      *transactions.HistoryUseCase
	Attachments  orders.AttachmentStore
	SupplierRepo repository.SupplierRepository
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Pedidos
	ordersGroup := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Reconciler)
	ordersGroup.Post("/batch", orderHandler.SubmitBatch)

	// Libro de stock
	ledgerGroup := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerView)
	ledgerGroup.Get("/", ledgerHandler.List)
	ledgerGroup.Get("/alerts", ledgerHandler.Alerts)

	// Proveedores
	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierRepo)
	suppliers.Get("/", supplierHandler.List)

	// Adjuntos
	attachments := api.Group("/attachments")
	attachmentHandler := NewAttachmentHandler(deps.Attachments)
	attachments.Post("/", attachmentHandler.Upload)
	attachments.Get("/", attachmentHandler.ListByTransaction)
	attachments.Get("/:id/download", attachmentHandler.Download)

	// Transacciones
	txGroup := api.Group("/transactions")
	txHandler := NewTransactionHandler(deps.History)
	txGroup.Get("/", txHandler.List)
	txGroup.Get("/:id/receipt", txHandler.Receipt)
}
