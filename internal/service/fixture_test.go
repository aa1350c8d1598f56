package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	codeReceipt = "GR"
	codeSale    = "INV"
	codeCredit  = "CN"
	codeQuote   = "QT"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) NotifyTenant(tenantID uuid.UUID, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

type fixture struct {
	store        *memStore
	tenantID     uuid.UUID
	admin        Actor
	mainWH       uuid.UUID
	backWH       uuid.UUID
	product      uuid.UUID
	bolts        uuid.UUID
	counterparty uuid.UUID
	notifier     *recordingNotifier

	finalizer  FinalizationService
	valuation  ValuationService
	ledger     LedgerService
	documents  DocumentService
	payments   PaymentService
	conditions PaymentConditionService
	numbering  NumberingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: newMemStore(), notifier: &recordingNotifier{}}

	err := f.store.Transaction(context.Background(), func(repos *repository.Repositories) error {
		tenant := &model.Tenant{Name: "Acme", IsActive: true}
		if err := repos.Tenants.Create(tenant); err != nil {
			return err
		}
		f.tenantID = tenant.ID

		for _, wh := range []*model.Warehouse{{Code: "MAIN", Name: "Main"}, {Code: "BACK", Name: "Back store"}} {
			wh.TenantID = tenant.ID
			wh.IsActive = true
			if err := repos.Warehouses.Create(wh); err != nil {
				return err
			}
			if wh.Code == "MAIN" {
				f.mainWH = wh.ID
			} else {
				f.backWH = wh.ID
			}
		}

		widget := &model.Product{Code: "W-1", Description: "Widget", QuantityScale: 4}
		widget.TenantID = tenant.ID
		if err := repos.Products.Create(widget); err != nil {
			return err
		}
		f.product = widget.ID

		bolts := &model.Product{Code: "B-7", Description: "Bolts", QuantityScale: 0, DefaultWarehouseID: &f.backWH}
		bolts.TenantID = tenant.ID
		if err := repos.Products.Create(bolts); err != nil {
			return err
		}
		f.bolts = bolts.ID

		cp := &model.Counterparty{Name: "Rossi Srl", VatNumber: "IT01234567890", City: "Milano", Country: "IT"}
		cp.TenantID = tenant.ID
		if err := repos.Counterparties.Create(cp); err != nil {
			return err
		}
		f.counterparty = cp.ID

		policies := []model.DocumentTypePolicy{
			{Code: codeReceipt, MovesStock: true, ImpactsValuation: true, OperationSign: model.SignInbound, NumeratorCode: codeReceipt, MovementType: model.MovementSupplierReceipt},
			{Code: codeSale, MovesStock: true, ImpactsValuation: true, OperationSign: model.SignOutbound, NumeratorCode: codeSale},
			{Code: codeCredit, MovesStock: true, ImpactsValuation: true, OperationSign: model.SignInbound, NumeratorCode: codeCredit, MovementType: model.MovementCustomerReturn},
			{Code: codeQuote, NumeratorCode: codeQuote, OperationSign: model.SignOutbound},
		}
		for i := range policies {
			policies[i].TenantID = tenant.ID
			if err := repos.Policies.Create(&policies[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	f.admin = Actor{
		TenantID:   f.tenantID,
		UserID:     "admin-1",
		Role:       model.RoleTenantAdmin,
		Privileges: model.DefaultRolePrivileges[model.RoleTenantAdmin],
	}
	f.numbering = NewNumberingService(f.store)
	f.finalizer = NewFinalizationService(f.store, f.numbering, FinalizationOptions{
		MaxDueBackdateDays: DefaultMaxDueBackdateDays,
		Notifier:           f.notifier,
	})
	f.valuation = NewValuationService(f.store, nil)
	f.ledger = NewLedgerService(f.store)
	f.documents = NewDocumentService(f.store)
	f.payments = NewPaymentService(f.store)
	f.conditions = NewPaymentConditionService(f.store)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(productID uuid.UUID, qty, price, rate string) LineInput {
	id := productID
	return LineInput{ProductID: &id, Quantity: dec(qty), UnitPrice: dec(price), VatRate: dec(rate)}
}

func (f *fixture) input(code, date string, lines ...LineInput) CreateDocumentInput {
	main := f.mainWH
	return CreateDocumentInput{
		DocumentTypeCode: code,
		Date:             day(date),
		MainWarehouseID:  &main,
		Lines:            lines,
	}
}

func (f *fixture) finalize(t *testing.T, code, date string, lines ...LineInput) *model.Document {
	t.Helper()
	doc, err := f.finalizer.Finalize(context.Background(), f.admin, f.input(code, date, lines...))
	require.NoError(t, err)
	return doc
}

func (f *fixture) stat(t *testing.T, productID uuid.UUID, year int) *model.ProductAnnualStat {
	t.Helper()
	stat, err := f.valuation.GetStat(context.Background(), f.admin, productID, year)
	require.NoError(t, err)
	return stat
}

func (f *fixture) stock(t *testing.T, productID uuid.UUID, warehouseID *uuid.UUID) decimal.Decimal {
	t.Helper()
	qty, err := f.ledger.CurrentStock(context.Background(), f.admin, productID, warehouseID)
	require.NoError(t, err)
	return qty
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, got.Equal(dec(want)), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

// statValues projects the folded columns so two stat sets can be compared exactly.
type statValues struct {
	ProductID         uuid.UUID
	PurchasedQuantity string
	PurchasedAmount   string
	SoldQuantity      string
	SoldAmount        string
	Cost              string
	LastCost          string
	LastDocumentDate  string
	LastPostingSeq    int64
}

func projectStats(stats []model.ProductAnnualStat) []statValues {
	out := make([]statValues, 0, len(stats))
	for _, s := range stats {
		v := statValues{
			ProductID:         s.ProductID,
			PurchasedQuantity: s.PurchasedQuantity.String(),
			PurchasedAmount:   s.PurchasedAmount.String(),
			SoldQuantity:      s.SoldQuantity.String(),
			SoldAmount:        s.SoldAmount.String(),
			Cost:              s.WeightedAverageCost.String(),
			LastCost:          s.LastCost.String(),
			LastPostingSeq:    s.LastPostingSeq,
		}
		if s.LastDocumentDate != nil {
			v.LastDocumentDate = s.LastDocumentDate.Format("2006-01-02")
		}
		out = append(out, v)
	}
	return out
}

func movementFilterFor(documentID uuid.UUID) repository.MovementFilter {
	id := documentID
	return repository.MovementFilter{DocumentID: &id}
}

func pageAll() repository.Pagination {
	return repository.Pagination{PageSize: repository.MaxPageSize}
}
