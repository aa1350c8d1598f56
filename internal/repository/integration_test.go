package repository_test

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"
	"go-doc-ledger/internal/service"
	"go-doc-ledger/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Run with INTEGRATION_TESTS=1 DATABASE_URL=postgres://... go test ./internal/repository/...
func openIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if os.Getenv("INTEGRATION_TESTS") != "1" || dsn == "" {
		t.Skip("set INTEGRATION_TESTS=1 and DATABASE_URL to run")
	}
	db, err := database.ConnectDB(database.Options{
		DSN:             dsn,
		MaxIdleConns:    5,
		MaxOpenConns:    30,
		ConnMaxLifetime: time.Minute,
		LogLevel:        "silent",
		StrictTenant:    true,
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type seeded struct {
	tenant    uuid.UUID
	warehouse uuid.UUID
	product   uuid.UUID
	admin     service.Actor
}

func seedTenant(t *testing.T, uow repository.UnitOfWork) seeded {
	t.Helper()
	var s seeded
	err := uow.Transaction(database.SkipTenantScope(context.Background()), func(repos *repository.Repositories) error {
		tenant := &model.Tenant{Name: "it-" + uuid.NewString()[:8], IsActive: true}
		if err := repos.Tenants.Create(tenant); err != nil {
			return err
		}
		s.tenant = tenant.ID

		wh := &model.Warehouse{Code: "MAIN", Name: "Main", IsActive: true}
		wh.TenantID = tenant.ID
		if err := repos.Warehouses.Create(wh); err != nil {
			return err
		}
		s.warehouse = wh.ID

		p := &model.Product{Code: "W-1", Description: "Widget", QuantityScale: 4}
		p.TenantID = tenant.ID
		if err := repos.Products.Create(p); err != nil {
			return err
		}
		s.product = p.ID

		for _, pol := range []model.DocumentTypePolicy{
			{Code: "GR", MovesStock: true, ImpactsValuation: true, OperationSign: model.SignInbound, NumeratorCode: "GR", MovementType: model.MovementSupplierReceipt},
			{Code: "INV", MovesStock: true, ImpactsValuation: true, OperationSign: model.SignOutbound, NumeratorCode: "INV"},
		} {
			pol := pol
			pol.TenantID = tenant.ID
			if err := repos.Policies.Create(&pol); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	s.admin = service.Actor{
		TenantID:   s.tenant,
		UserID:     "it",
		Role:       model.RoleTenantAdmin,
		Privileges: model.DefaultRolePrivileges[model.RoleTenantAdmin],
	}
	return s
}

func invoice(s seeded, code, date, qty, price string) service.CreateDocumentInput {
	d, _ := time.Parse("2006-01-02", date)
	product, wh := s.product, s.warehouse
	return service.CreateDocumentInput{
		DocumentTypeCode: code,
		Date:             d,
		MainWarehouseID:  &wh,
		Lines: []service.LineInput{{
			ProductID: &product,
			Quantity:  decimal.RequireFromString(qty),
			UnitPrice: decimal.RequireFromString(price),
			VatRate:   decimal.RequireFromString("0.22"),
		}},
	}
}

func TestConcurrentFinalizeIssuesGaplessNumbers(t *testing.T) {
	db := openIntegrationDB(t)
	uow := repository.NewUnitOfWork(db)
	s := seedTenant(t, uow)
	finalizer := service.NewFinalizationService(uow, nil, service.FinalizationOptions{MaxDueBackdateDays: service.DefaultMaxDueBackdateDays})

	const n = 25
	numbers := make([]int64, 0, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := finalizer.FinalizeWithRetry(context.Background(), s.admin, invoice(s, "GR", "2024-05-10", "1", "2.00"))
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			numbers = append(numbers, doc.Number)
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		// only a second conflict in a row may surface
		assert.ErrorIs(t, err, service.ErrConflict)
	}

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, got := range numbers {
		assert.Equal(t, int64(i+1), got)
	}

	stat, err := service.NewValuationService(uow, nil).GetStat(context.Background(), s.admin, s.product, 2024)
	require.NoError(t, err)
	assert.True(t, stat.PurchasedQuantity.Equal(decimal.NewFromInt(int64(len(numbers)))))
}

func TestRebuildMatchesIncrementalOnPostgres(t *testing.T) {
	db := openIntegrationDB(t)
	uow := repository.NewUnitOfWork(db)
	s := seedTenant(t, uow)
	finalizer := service.NewFinalizationService(uow, nil, service.FinalizationOptions{MaxDueBackdateDays: service.DefaultMaxDueBackdateDays})
	valuation := service.NewValuationService(uow, nil)
	ctx := context.Background()

	for _, in := range []service.CreateDocumentInput{
		invoice(s, "GR", "2024-02-01", "10", "4.00"),
		invoice(s, "GR", "2024-03-01", "10", "6.00"),
		invoice(s, "INV", "2024-02-15", "5", "9.00"),
	} {
		_, err := finalizer.Finalize(ctx, s.admin, in)
		require.NoError(t, err)
	}

	before, err := valuation.GetStat(ctx, s.admin, s.product, 2024)
	require.NoError(t, err)
	assert.True(t, before.WeightedAverageCost.Equal(decimal.RequireFromString("5.3333")), before.WeightedAverageCost.String())

	n, err := valuation.RebuildYear(ctx, s.admin, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	after, err := valuation.GetStat(ctx, s.admin, s.product, 2024)
	require.NoError(t, err)
	assert.True(t, before.WeightedAverageCost.Equal(after.WeightedAverageCost))
	assert.True(t, before.PurchasedAmount.Equal(after.PurchasedAmount))
	assert.True(t, before.SoldQuantity.Equal(after.SoldQuantity))
	assert.Equal(t, before.LastPostingSeq, after.LastPostingSeq)

	stock, err := service.NewLedgerService(uow).CurrentStock(ctx, s.admin, s.product, nil)
	require.NoError(t, err)
	assert.True(t, stock.Equal(decimal.NewFromInt(15)), stock.String())
}
