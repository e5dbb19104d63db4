package orders_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/orders"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para los puertos
// ──────────────────────────────────────────────────────────────────────────────

type memStockRepo struct {
	items         map[string]*entity.StockItem
	failUpdateFor map[string]bool // por nombre de artículo
	listErr       error
}

var _ repository.StockRepository = (*memStockRepo)(nil)

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{items: map[string]*entity.StockItem{}, failUpdateFor: map[string]bool{}}
}

func (r *memStockRepo) LookupByCode(code string) (*entity.StockItem, error) {
	for _, it := range r.items {
		if it.ItemCode == code {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memStockRepo) LookupByName(name string) (*entity.StockItem, error) {
	for _, it := range r.items {
		if it.Name == name {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memStockRepo) List() ([]*entity.StockItem, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*entity.StockItem, 0, len(r.items))
	for _, it := range r.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memStockRepo) LowStock() ([]*entity.StockItem, error) {
	return nil, domain.ErrUnavailable
}

func (r *memStockRepo) GetForUpdate(id string) (*entity.StockItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *memStockRepo) Create(item *entity.StockItem) error {
	if r.failUpdateFor[item.Name] {
		return errors.New("almacén no disponible")
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *memStockRepo) Update(item *entity.StockItem) error {
	if r.failUpdateFor[item.Name] {
		return errors.New("almacén no disponible")
	}
	if _, ok := r.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

// fakeTxRunner ejecuta el callback directamente contra el repo en memoria.
type fakeTxRunner struct {
	repo *memStockRepo
}

func (f *fakeTxRunner) Run(_ context.Context, fn func(stockRepo repository.StockRepository) error) error {
	return fn(f.repo)
}

type fakeSupplierRepo struct {
	registered map[string]*entity.Supplier
	failFor    map[string]bool
}

var _ repository.SupplierRepository = (*fakeSupplierRepo)(nil)

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{registered: map[string]*entity.Supplier{}, failFor: map[string]bool{}}
}

func (f *fakeSupplierRepo) UpsertByName(s *entity.Supplier) (*entity.Supplier, error) {
	if f.failFor[s.Name] {
		return nil, errors.New("registro de proveedor no disponible")
	}
	if existing, ok := f.registered[s.Name]; ok {
		if s.Contact != "" {
			existing.Contact = s.Contact
		}
		return existing, nil
	}
	cp := *s
	cp.ID = uuid.New().String()
	f.registered[s.Name] = &cp
	return &cp, nil
}

func (f *fakeSupplierRepo) GetByName(name string) (*entity.Supplier, error) {
	return f.registered[name], nil
}

func (f *fakeSupplierRepo) List(limit, offset int) ([]*entity.Supplier, error) {
	out := make([]*entity.Supplier, 0, len(f.registered))
	for _, s := range f.registered {
		out = append(out, s)
	}
	return out, nil
}

type fakeAttachmentStore struct {
	uploads    []orders.UploadInput
	uploaded   []*entity.Attachment
	linked     map[string]string // attachmentID -> entityID
	failUpload bool
}

var _ orders.AttachmentStore = (*fakeAttachmentStore)(nil)

func newFakeAttachmentStore() *fakeAttachmentStore {
	return &fakeAttachmentStore{linked: map[string]string{}}
}

func (f *fakeAttachmentStore) Upload(_ context.Context, in orders.UploadInput) (*entity.Attachment, error) {
	if f.failUpload {
		return nil, errors.New("bucket no disponible")
	}
	f.uploads = append(f.uploads, in)
	att := &entity.Attachment{
		ID:            uuid.New().String(),
		EntityType:    in.EntityType,
		TransactionID: in.TransactionID,
		FileName:      in.File.FileName,
		MimeType:      in.File.MimeType,
		Size:          in.File.Size,
	}
	f.uploaded = append(f.uploaded, att)
	return att, nil
}

func (f *fakeAttachmentStore) Link(_ context.Context, attachmentID, entityType, entityID string) error {
	f.linked[attachmentID] = entityID
	return nil
}

func (f *fakeAttachmentStore) Download(_ context.Context, _ string) (io.ReadCloser, *entity.Attachment, error) {
	return nil, nil, domain.ErrNotFound
}

func (f *fakeAttachmentStore) ListByTransaction(_ context.Context, _ string) ([]*entity.Attachment, error) {
	return nil, nil
}

type fakeTxLog struct {
	recorded  []*entity.Transaction
	recordErr error
}

var _ orders.TransactionLog = (*fakeTxLog)(nil)

func (f *fakeTxLog) Record(_ context.Context, tx *entity.Transaction) (*entity.Transaction, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	f.recorded = append(f.recorded, tx)
	return tx, nil
}

func (f *fakeTxLog) List(_ context.Context, _, _ int) ([]*entity.Transaction, error) {
	return f.recorded, nil
}

func (f *fakeTxLog) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	for _, tx := range f.recorded {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

type fixture struct {
	stock       *memStockRepo
	suppliers   *fakeSupplierRepo
	attachments *fakeAttachmentStore
	txLog       *fakeTxLog
	reconciler  *orders.Reconciler
}

func newFixture() *fixture {
	stock := newMemStockRepo()
	suppliers := newFakeSupplierRepo()
	attachments := newFakeAttachmentStore()
	txLog := &fakeTxLog{}
	return &fixture{
		stock:       stock,
		suppliers:   suppliers,
		attachments: attachments,
		txLog:       txLog,
		reconciler: orders.NewReconciler(
			&fakeTxRunner{repo: stock}, stock, suppliers, attachments, txLog, logger.Nop(),
		),
	}
}

func seedItem(f *fixture, name, code string, stock int64, cost, selling string) *entity.StockItem {
	item := &entity.StockItem{
		ID:              uuid.New().String(),
		ItemCode:        code,
		Name:            name,
		AvgCostPrice:    dec(cost),
		AvgSellingPrice: dec(selling),
		CurrentStock:    stock,
		ReorderLevel:    entity.DefaultReorderLevel,
	}
	item.Recompute()
	f.stock.items[item.ID] = item
	return item
}

// ──────────────────────────────────────────────────────────────────────────────
// ProcessBatch
// ──────────────────────────────────────────────────────────────────────────────

// Lote {Soda, costo 50, venta 80, cant 10} contra un almacén vacío: rama de
// creación, derivados correctos y una transacción con total_items=10 y
// total_value=500.
func TestProcessBatch_ArticuloNuevo(t *testing.T) {
	f := newFixture()

	result, err := f.reconciler.ProcessBatch(context.Background(), []entity.OrderLine{
		{ItemName: "Soda", CostPrice: dec("50"), SellingPrice: dec("80"), Quantity: 10},
	})
	require.NoError(t, err)

	require.Len(t, result.Lines, 1)
	require.Equal(t, orders.LineOK, result.Lines[0].Status)
	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, 0, result.Failed)

	item := result.Lines[0].Item
	require.NotNil(t, item)
	assert.NotEmpty(t, item.ID, "el artículo nuevo debe recibir identidad del almacén")
	assert.Equal(t, int64(10), item.CurrentStock)
	assert.True(t, dec("50").Equal(item.AvgCostPrice))
	assert.True(t, dec("80").Equal(item.AvgSellingPrice))
	assert.True(t, dec("500").Equal(item.StockValue))
	assert.True(t, dec("300").Equal(item.ProjectedProfit))

	require.Len(t, f.txLog.recorded, 1)
	tx := f.txLog.recorded[0]
	assert.Equal(t, int64(10), tx.TotalItems)
	assert.True(t, dec("500").Equal(tx.TotalValue))
	assert.Equal(t, entity.TransactionStatusCompleted, tx.Status)
	require.Len(t, tx.Items, 1)
	assert.Equal(t, entity.DefaultSupplierName, tx.Items[0].Supplier,
		"proveedor vacío se registra como compra directa en el resumen")

	// Sin proveedor real no debe haber registro en el directorio.
	assert.Empty(t, f.suppliers.registered)
}

// Segunda compra contra un artículo existente: promedio ponderado
// (10×5 + 20×5)/10 = 15.
func TestProcessBatch_PromedioPonderadoContraExistente(t *testing.T) {
	f := newFixture()
	seeded := seedItem(f, "Aceite", "SKU-77", 5, "10", "14")

	result, err := f.reconciler.ProcessBatch(context.Background(), []entity.OrderLine{
		{ItemCode: "SKU-77", ItemName: "Aceite", CostPrice: dec("20"), SellingPrice: dec("30"), Quantity: 5},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Merged)

	updated := f.stock.items[seeded.ID]
	assert.Equal(t, int64(10), updated.CurrentStock)
	assert.True(t, dec("15").Equal(updated.AvgCostPrice), "promedio esperado 15, obtenido %s", updated.AvgCostPrice)
	assert.True(t, dec("22").Equal(updated.AvgSellingPrice))
	assert.True(t, dec("150").Equal(updated.StockValue))
}

// Dos líneas del mismo artículo en un lote se fusionan en orden, la segunda
// viendo el resultado de la primera.
func TestProcessBatch_DosLineasMismoArticulo(t *testing.T) {
	f := newFixture()

	result, err := f.reconciler.ProcessBatch(context.Background(), []entity.OrderLine{
		{ItemName: "Café", CostPrice: dec("10"), SellingPrice: dec("15"), Quantity: 5},
		{ItemName: "Café", CostPrice: dec("20"), SellingPrice: dec("25"), Quantity: 5},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Merged)

	require.Len(t, f.stock.items, 1, "ambas líneas deben fusionar en el mismo registro")
	for _, item := range f.stock.items {
		assert.Equal(t, int64(10), item.CurrentStock)
		assert.True(t, dec("15").Equal(item.AvgCostPrice))
	}
}

// El fallo de registro de proveedor en la línea 2 de un lote de 3 no detiene
// nada: las 3 líneas fusionan y la transacción cubre las 3 líneas originales.
func TestProcessBatch_FalloDeProveedorNoDetieneElLote(t *testing.T) {
	f := newFixture()
	f.suppliers.failFor["Proveedor Caído"] = true

	batch := []entity.OrderLine{
		{ItemName: "A", CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: 1, SupplierName: "Proveedor Uno", SupplierContact: "uno@mail.com"},
		{ItemName: "B", CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: 1, SupplierName: "Proveedor Caído"},
		{ItemName: "C", CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: 1, SupplierName: "Proveedor Tres"},
	}
	result, err := f.reconciler.ProcessBatch(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Merged, "todas las líneas deben fusionar")
	assert.Equal(t, 0, result.Failed)
	assert.NotEmpty(t, result.Lines[1].Warnings, "el fallo de proveedor queda como advertencia")
	assert.Empty(t, result.Lines[0].Warnings)

	assert.Len(t, f.suppliers.registered, 2)
	require.Len(t, f.txLog.recorded, 1)
	assert.Len(t, f.txLog.recorded[0].Items, 3, "la transacción cubre el lote original completo")
	assert.Equal(t, entity.TransactionStatusCompleted, f.txLog.recorded[0].Status)
}

// El proveedor por defecto (compra directa) nunca se registra.
func TestProcessBatch_CompraDirectaNoRegistraProveedor(t *testing.T) {
	f := newFixture()

	_, err := f.reconciler.ProcessBatch(context.Background(), []entity.OrderLine{
		{ItemName: "X", CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: 1, SupplierName: entity.DefaultSupplierName},
	})
	require.NoError(t, err)
	assert.Empty(t, f.suppliers.registered)
}

// El fallo de fusión marca la línea como fallida, el resto del lote continúa
// y la transacción queda en estado partial.
func TestProcessBatch_FalloDeFusionMarcaLineaYContinua(t *testing.T) {
	f := newFixture()
	f.stock.failUpdateFor["B"] = true

	result, err := f.reconciler.ProcessBatch(context.Background(), []entity.OrderLine{
		{ItemName: "A", CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: 1},
		{ItemName: "B", CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: 1},
		{ItemName: "C", CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Merged)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, orders.LineFailed, result.Lines[1].Status)
	assert.NotEmpty(t, result.Lines[1].Reason)
	assert.Nil(t, result.Lines[1].Item)

	require.Len(t, f.txLog.recorded, 1)
	assert.Equal(t, entity.TransactionStatusPartial, f.txLog.recorded[0].Status)
	assert.Len(t, f.txLog.recorded[0].Items, 3)
}

// La validación rechaza el lote antes de cualquier efecto lateral.
func TestProcessBatch_ValidacionRechazaAntesDeFusionar(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name  string
		batch []entity.OrderLine
		want  error
	}{
		{"lote vacío", nil, domain.ErrEmptyBatch},
		{"cantidad cero", []entity.OrderLine{{ItemName: "X", Quantity: 0}}, domain.ErrInvalidInput},
		{"cantidad negativa", []entity.OrderLine{{ItemName: "X", Quantity: -3}}, domain.ErrInvalidInput},
		{"sin nombre", []entity.OrderLine{{Quantity: 1}}, domain.ErrInvalidInput},
		{"precio negativo", []entity.OrderLine{{ItemName: "X", Quantity: 1, CostPrice: dec("-1")}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.reconciler.ProcessBatch(context.Background(), tc.batch)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Empty(t, f.stock.items, "no debe haber efectos laterales tras rechazos")
	assert.Empty(t, f.txLog.recorded)
}

// El adjunto se sube sin enlazar correlacionado por el id del lote y se enlaza
// al artículo una vez que su identidad existe.
func TestProcessBatch_AdjuntoSeSubeYEnlaza(t *testing.T) {
	f := newFixture()

	result, err := f.reconciler.ProcessBatch(context.Background(), []entity.OrderLine{
		{
			ItemName: "Vino", CostPrice: dec("30"), SellingPrice: dec("55"), Quantity: 6,
			Attachment: &entity.FileUpload{FileName: "factura.pdf", MimeType: "application/pdf", Size: 4, Content: []byte("%PDF")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Merged)

	require.Len(t, f.attachments.uploads, 1)
	up := f.attachments.uploads[0]
	assert.Equal(t, entity.AttachmentEntityStock, up.EntityType)
	assert.Equal(t, result.TransactionID, up.TransactionID, "el adjunto se correlaciona por el id del lote")

	require.Len(t, f.attachments.uploaded, 1)
	attID := f.attachments.uploaded[0].ID
	assert.Equal(t, result.Lines[0].Item.ID, f.attachments.linked[attID],
		"el enlace debe apuntar al artículo fusionado")
}

// El fallo de carga del adjunto es advertencia, no fallo de línea.
func TestProcessBatch_FalloDeAdjuntoEsAdvertencia(t *testing.T) {
	f := newFixture()
	f.attachments.failUpload = true

	result, err := f.reconciler.ProcessBatch(context.Background(), []entity.OrderLine{
		{
			ItemName: "Queso", CostPrice: dec("8"), SellingPrice: dec("12"), Quantity: 2,
			Attachment: &entity.FileUpload{FileName: "nota.png", MimeType: "image/png", Size: 1, Content: []byte{0x89}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, orders.LineOK, result.Lines[0].Status)
	assert.NotEmpty(t, result.Lines[0].Warnings)
	assert.Empty(t, f.attachments.linked)
}

// Aunque el log primario falle, ProcessBatch devuelve el resultado del lote;
// el marcador de la transacción queda en manos del adaptador con respaldo.
func TestProcessBatch_FalloDelLogNoPierdeElResultado(t *testing.T) {
	f := newFixture()
	f.txLog.recordErr = fmt.Errorf("log autoritativo caído")

	result, err := f.reconciler.ProcessBatch(context.Background(), []entity.OrderLine{
		{ItemName: "Pan", CostPrice: dec("2"), SellingPrice: dec("3"), Quantity: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	require.NotNil(t, result.Transaction, "el resumen del lote sobrevive aunque el log falle")
	assert.Equal(t, result.TransactionID, result.Transaction.ID)
}

// Tras el lote se relee la lista completa para resincronizar la vista.
func TestProcessBatch_ResincronizaElLibro(t *testing.T) {
	f := newFixture()
	seedItem(f, "Previo", "", 9, "3", "5")

	result, err := f.reconciler.ProcessBatch(context.Background(), []entity.OrderLine{
		{ItemName: "Nuevo", CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: 1},
	})
	require.NoError(t, err)
	assert.Len(t, result.Ledger, 2, "la vista releída incluye lo previo y lo nuevo")
}
