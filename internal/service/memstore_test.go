package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memStore is an in-memory UnitOfWork. Transactions run one at a time on a copy of
// the data that replaces the committed state only when fn returns nil.
type memStore struct {
	mu   sync.Mutex
	data *memData
}

type memData struct {
	tenants        map[uuid.UUID]model.Tenant
	products       map[uuid.UUID]model.Product
	warehouses     map[uuid.UUID]model.Warehouse
	counterparties map[uuid.UUID]model.Counterparty
	policies       map[string]model.DocumentTypePolicy
	numerators     map[string]model.DocumentNumerator
	documents      map[uuid.UUID]model.Document
	deleted        map[uuid.UUID]bool
	movements      []model.StockMovement
	stats          map[string]model.ProductAnnualStat
	installments   map[uuid.UUID]model.Installment
	payments       []model.Payment
	conditions     map[uuid.UUID]model.PaymentCondition
	postingSeq     int64
	exclusiveLocks int
}

func newMemStore() *memStore {
	return &memStore{data: &memData{
		tenants:        map[uuid.UUID]model.Tenant{},
		products:       map[uuid.UUID]model.Product{},
		warehouses:     map[uuid.UUID]model.Warehouse{},
		counterparties: map[uuid.UUID]model.Counterparty{},
		policies:       map[string]model.DocumentTypePolicy{},
		numerators:     map[string]model.DocumentNumerator{},
		documents:      map[uuid.UUID]model.Document{},
		deleted:        map[uuid.UUID]bool{},
		stats:          map[string]model.ProductAnnualStat{},
		installments:   map[uuid.UUID]model.Installment{},
		conditions:     map[uuid.UUID]model.PaymentCondition{},
	}}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	docs := make(map[uuid.UUID]model.Document, len(d.documents))
	for id, doc := range d.documents {
		docs[id] = copyDocument(doc)
	}
	return &memData{
		tenants:        cloneMap(d.tenants),
		products:       cloneMap(d.products),
		warehouses:     cloneMap(d.warehouses),
		counterparties: cloneMap(d.counterparties),
		policies:       cloneMap(d.policies),
		numerators:     cloneMap(d.numerators),
		documents:      docs,
		deleted:        cloneMap(d.deleted),
		movements:      append([]model.StockMovement(nil), d.movements...),
		stats:          cloneMap(d.stats),
		installments:   cloneMap(d.installments),
		payments:       append([]model.Payment(nil), d.payments...),
		conditions:     cloneMap(d.conditions),
		postingSeq:     d.postingSeq,
		exclusiveLocks: d.exclusiveLocks,
	}
}

func copyDocument(doc model.Document) model.Document {
	doc.Lines = append([]model.DocumentLine(nil), doc.Lines...)
	doc.Installments = append([]model.Installment(nil), doc.Installments...)
	return doc
}

func (s *memStore) Read(ctx context.Context) *repository.Repositories {
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()
	return memRepositories(snapshot)
}

func (s *memStore) Transaction(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(memRepositories(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// mutate edits committed state directly, for test setup.
func (s *memStore) mutate(fn func(d *memData)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

func memRepositories(d *memData) *repository.Repositories {
	return &repository.Repositories{
		Tenants:           memTenants{d},
		Products:          memProducts{d},
		Warehouses:        memWarehouses{d},
		Counterparties:    memCounterparties{d},
		Policies:          memPolicies{d},
		Numerators:        memNumerators{d},
		Documents:         memDocuments{d},
		Movements:         memMovements{d},
		Stats:             memStats{d},
		Installments:      memInstallments{d},
		Payments:          memPayments{d},
		PaymentConditions: memConditions{d},
		Locks:             memLocks{d},
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

type memTenants struct{ d *memData }

func (r memTenants) Create(t *model.Tenant) error {
	ensureID(&t.ID)
	r.d.tenants[t.ID] = *t
	return nil
}

func (r memTenants) FindByID(id uuid.UUID) (*model.Tenant, error) {
	t, ok := r.d.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

type memProducts struct{ d *memData }

func (r memProducts) Create(p *model.Product) error {
	ensureID(&p.ID)
	r.d.products[p.ID] = *p
	return nil
}

func (r memProducts) FindAll(tenantID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.d.products {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) FindByID(tenantID, id uuid.UUID) (*model.Product, error) {
	p, ok := r.d.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r memProducts) FindByIDs(tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.d.products[id]; ok && p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) FindByCode(tenantID uuid.UUID, code string) (*model.Product, error) {
	for _, p := range r.d.products {
		if p.TenantID == tenantID && p.Code == code {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memProducts) Update(p *model.Product) error {
	r.d.products[p.ID] = *p
	return nil
}

type memWarehouses struct{ d *memData }

func (r memWarehouses) Create(w *model.Warehouse) error {
	ensureID(&w.ID)
	r.d.warehouses[w.ID] = *w
	return nil
}

func (r memWarehouses) FindAll(tenantID uuid.UUID) ([]model.Warehouse, error) {
	var out []model.Warehouse
	for _, w := range r.d.warehouses {
		if w.TenantID == tenantID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r memWarehouses) FindByID(tenantID, id uuid.UUID) (*model.Warehouse, error) {
	w, ok := r.d.warehouses[id]
	if !ok || w.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return &w, nil
}

type memCounterparties struct{ d *memData }

func (r memCounterparties) Create(c *model.Counterparty) error {
	ensureID(&c.ID)
	r.d.counterparties[c.ID] = *c
	return nil
}

func (r memCounterparties) FindByID(tenantID, id uuid.UUID) (*model.Counterparty, error) {
	c, ok := r.d.counterparties[id]
	if !ok || c.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r memCounterparties) Update(c *model.Counterparty) error {
	r.d.counterparties[c.ID] = *c
	return nil
}

type memPolicies struct{ d *memData }

func policyKey(tenantID uuid.UUID, code string) string {
	return tenantID.String() + "|" + code
}

func (r memPolicies) FindByCode(tenantID uuid.UUID, code string) (*model.DocumentTypePolicy, error) {
	p, ok := r.d.policies[policyKey(tenantID, code)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r memPolicies) FindAll(tenantID uuid.UUID) ([]model.DocumentTypePolicy, error) {
	var out []model.DocumentTypePolicy
	for _, p := range r.d.policies {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r memPolicies) Create(p *model.DocumentTypePolicy) error {
	ensureID(&p.ID)
	key := policyKey(p.TenantID, p.Code)
	if _, exists := r.d.policies[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	r.d.policies[key] = *p
	return nil
}

func (r memPolicies) Update(p *model.DocumentTypePolicy) error {
	r.d.policies[policyKey(p.TenantID, p.Code)] = *p
	return nil
}

type memNumerators struct{ d *memData }

func numeratorKey(tenantID uuid.UUID, code string, year int) string {
	return fmt.Sprintf("%s|%s|%d", tenantID, code, year)
}

func (r memNumerators) LockForUpdate(tenantID uuid.UUID, code string, year int) (*model.DocumentNumerator, error) {
	key := numeratorKey(tenantID, code, year)
	n, ok := r.d.numerators[key]
	if !ok {
		n = model.DocumentNumerator{ID: uuid.New(), TenantID: tenantID, NumeratorCode: code, FiscalYear: year}
		r.d.numerators[key] = n
	}
	return &n, nil
}

func (r memNumerators) SetLastNumber(n *model.DocumentNumerator, last int64) error {
	n.LastNumber = last
	r.d.numerators[numeratorKey(n.TenantID, n.NumeratorCode, n.FiscalYear)] = *n
	return nil
}

func (r memNumerators) Peek(tenantID uuid.UUID, code string, year int) (int64, error) {
	return r.d.numerators[numeratorKey(tenantID, code, year)].LastNumber, nil
}

type memDocuments struct{ d *memData }

func (r memDocuments) Create(doc *model.Document) error {
	ensureID(&doc.ID)
	taken, _ := r.NumberTaken(doc.TenantID, doc.NumeratorCode, doc.FiscalYear, doc.Number)
	if taken {
		return gorm.ErrDuplicatedKey
	}
	for i := range doc.Lines {
		ensureID(&doc.Lines[i].ID)
		doc.Lines[i].DocumentID = doc.ID
	}
	for i := range doc.Installments {
		ensureID(&doc.Installments[i].ID)
		doc.Installments[i].DocumentID = doc.ID
		r.d.installments[doc.Installments[i].ID] = doc.Installments[i]
	}
	r.d.documents[doc.ID] = copyDocument(*doc)
	return nil
}

func (r memDocuments) FindByID(tenantID, id uuid.UUID) (*model.Document, error) {
	doc, ok := r.d.documents[id]
	if !ok || doc.TenantID != tenantID || r.d.deleted[id] {
		return nil, gorm.ErrRecordNotFound
	}
	doc = copyDocument(doc)
	return &doc, nil
}

func (r memDocuments) live(tenantID uuid.UUID) []model.Document {
	var out []model.Document
	for id, doc := range r.d.documents {
		if doc.TenantID == tenantID && !r.d.deleted[id] {
			out = append(out, copyDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return replayBefore(out[i], out[j]) })
	return out
}

func replayBefore(a, b model.Document) bool {
	if !a.DocumentDate.Equal(b.DocumentDate) {
		return a.DocumentDate.Before(b.DocumentDate)
	}
	return a.PostingSeq < b.PostingSeq
}

func (r memDocuments) List(tenantID uuid.UUID, filter repository.DocumentFilter, page repository.Pagination) ([]model.Document, int64, error) {
	var out []model.Document
	for _, doc := range r.live(tenantID) {
		if filter.DocumentTypeCode != "" && doc.DocumentTypeCode != filter.DocumentTypeCode {
			continue
		}
		if filter.FiscalYear != 0 && doc.FiscalYear != filter.FiscalYear {
			continue
		}
		out = append(out, doc)
	}
	total := int64(len(out))
	start := page.Offset()
	if start > len(out) {
		start = len(out)
	}
	end := start + page.Limit()
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r memDocuments) NumberTaken(tenantID uuid.UUID, code string, year int, number int64) (bool, error) {
	for _, doc := range r.d.documents {
		if doc.TenantID == tenantID && doc.NumeratorCode == code && doc.FiscalYear == year && doc.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r memDocuments) NextPostingSeq() (int64, error) {
	r.d.postingSeq++
	return r.d.postingSeq, nil
}

func (r memDocuments) UpdateMetadata(tenantID, id uuid.UUID, fields map[string]interface{}) error {
	doc, ok := r.d.documents[id]
	if !ok || doc.TenantID != tenantID || r.d.deleted[id] {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "notes":
			doc.Notes = v.(string)
		case "annotations":
			doc.Annotations = v.(string)
		case "updated_by":
			doc.UpdatedBy = v.(string)
		default:
			return fmt.Errorf("memstore: unexpected column %q", k)
		}
	}
	r.d.documents[id] = doc
	return nil
}

func (r memDocuments) SoftDelete(tenantID, id uuid.UUID, deletedBy string) error {
	doc, ok := r.d.documents[id]
	if !ok || doc.TenantID != tenantID || r.d.deleted[id] {
		return gorm.ErrRecordNotFound
	}
	doc.DeletedBy = deletedBy
	r.d.documents[id] = doc
	r.d.deleted[id] = true
	return nil
}

func (r memDocuments) FindForValuation(tenantID uuid.UUID, year int, productID *uuid.UUID) ([]model.Document, error) {
	var out []model.Document
	for _, doc := range r.live(tenantID) {
		if doc.FiscalYear != year || !doc.PolicyImpactsValuation || doc.Status != model.DocumentFinalized {
			continue
		}
		if productID != nil && !hasProduct(doc, *productID) {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func hasProduct(doc model.Document, productID uuid.UUID) bool {
	for _, l := range doc.Lines {
		if l.ProductID != nil && *l.ProductID == productID {
			return true
		}
	}
	return false
}

type memMovements struct{ d *memData }

func (r memMovements) Append(movements []model.StockMovement) error {
	for i := range movements {
		ensureID(&movements[i].ID)
		if movements[i].CreatedAt.IsZero() {
			movements[i].CreatedAt = time.Now().UTC()
		}
		r.d.movements = append(r.d.movements, movements[i])
	}
	return nil
}

func (r memMovements) SumQuantity(tenantID, productID uuid.UUID, warehouseID *uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.d.movements {
		if m.TenantID != tenantID || m.ProductID != productID {
			continue
		}
		if warehouseID != nil && m.WarehouseID != *warehouseID {
			continue
		}
		total = total.Add(m.SignedQuantity)
	}
	return total, nil
}

func (r memMovements) SumByWarehouse(tenantID, productID uuid.UUID) ([]repository.WarehouseStock, error) {
	sums := map[uuid.UUID]decimal.Decimal{}
	for _, m := range r.d.movements {
		if m.TenantID == tenantID && m.ProductID == productID {
			sums[m.WarehouseID] = sums[m.WarehouseID].Add(m.SignedQuantity)
		}
	}
	var out []repository.WarehouseStock
	for id, q := range sums {
		out = append(out, repository.WarehouseStock{WarehouseID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].WarehouseID[:], out[j].WarehouseID[:]) < 0 })
	return out, nil
}

func (r memMovements) List(tenantID uuid.UUID, filter repository.MovementFilter, page repository.Pagination) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.d.movements {
		if m.TenantID != tenantID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.DocumentID != nil && (m.DocumentID == nil || *m.DocumentID != *filter.DocumentID) {
			continue
		}
		if filter.MovementType != "" && string(m.MovementType) != filter.MovementType {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

type memStats struct{ d *memData }

func statKey(tenantID, productID uuid.UUID, year int) string {
	return fmt.Sprintf("%s|%s|%d", tenantID, productID, year)
}

func (r memStats) LockForUpdate(tenantID, productID uuid.UUID, year int) (*model.ProductAnnualStat, error) {
	key := statKey(tenantID, productID, year)
	stat, ok := r.d.stats[key]
	if !ok {
		stat = *newStat(tenantID, productID, year)
		stat.ID = uuid.New()
		r.d.stats[key] = stat
	}
	return &stat, nil
}

func (r memStats) Save(stat *model.ProductAnnualStat) error {
	r.d.stats[statKey(stat.TenantID, stat.ProductID, stat.FiscalYear)] = *stat
	return nil
}

func (r memStats) CreateBatch(stats []model.ProductAnnualStat) error {
	for _, s := range stats {
		key := statKey(s.TenantID, s.ProductID, s.FiscalYear)
		if _, exists := r.d.stats[key]; exists {
			return gorm.ErrDuplicatedKey
		}
		ensureID(&s.ID)
		r.d.stats[key] = s
	}
	return nil
}

func (r memStats) Find(tenantID, productID uuid.UUID, year int) (*model.ProductAnnualStat, error) {
	stat, ok := r.d.stats[statKey(tenantID, productID, year)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &stat, nil
}

func (r memStats) FindYear(tenantID uuid.UUID, year int) ([]model.ProductAnnualStat, error) {
	var out []model.ProductAnnualStat
	for _, s := range r.d.stats {
		if s.TenantID == tenantID && s.FiscalYear == year {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].ProductID[:], out[j].ProductID[:]) < 0 })
	return out, nil
}

func (r memStats) Delete(stat *model.ProductAnnualStat) error {
	delete(r.d.stats, statKey(stat.TenantID, stat.ProductID, stat.FiscalYear))
	return nil
}

func (r memStats) DeleteYear(tenantID uuid.UUID, year int) error {
	for key, s := range r.d.stats {
		if s.TenantID == tenantID && s.FiscalYear == year {
			delete(r.d.stats, key)
		}
	}
	return nil
}

type memInstallments struct{ d *memData }

func (r memInstallments) FindByDocument(tenantID, documentID uuid.UUID) ([]model.Installment, error) {
	var out []model.Installment
	for _, inst := range r.d.installments {
		if inst.TenantID == tenantID && inst.DocumentID == documentID {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r memInstallments) LockByID(tenantID, id uuid.UUID) (*model.Installment, error) {
	inst, ok := r.d.installments[id]
	if !ok || inst.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return &inst, nil
}

type memPayments struct{ d *memData }

func (r memPayments) Create(p *model.Payment) error {
	ensureID(&p.ID)
	r.d.payments = append(r.d.payments, *p)
	return nil
}

func (r memPayments) FindByInstallment(tenantID, installmentID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range r.d.payments {
		if p.TenantID == tenantID && p.InstallmentID == installmentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPayments) SumByInstallments(tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	wanted := map[uuid.UUID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	sums := map[uuid.UUID]decimal.Decimal{}
	for _, p := range r.d.payments {
		if p.TenantID == tenantID && wanted[p.InstallmentID] {
			sums[p.InstallmentID] = sums[p.InstallmentID].Add(p.Amount)
		}
	}
	return sums, nil
}

type memConditions struct{ d *memData }

func (r memConditions) Create(c *model.PaymentCondition) error {
	ensureID(&c.ID)
	r.d.conditions[c.ID] = *c
	return nil
}

func (r memConditions) FindAll(tenantID uuid.UUID, activeOnly bool) ([]model.PaymentCondition, error) {
	var out []model.PaymentCondition
	for _, c := range r.d.conditions {
		if c.TenantID == tenantID && (!activeOnly || c.IsActive) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memConditions) FindByID(tenantID, id uuid.UUID) (*model.PaymentCondition, error) {
	c, ok := r.d.conditions[id]
	if !ok || c.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r memConditions) Update(c *model.PaymentCondition) error {
	r.d.conditions[c.ID] = *c
	return nil
}

type memLocks struct{ d *memData }

func (r memLocks) ValuationShared(tenantID uuid.UUID, year int) error {
	return nil
}

func (r memLocks) ValuationExclusive(tenantID uuid.UUID, year int) error {
	r.d.exclusiveLocks++
	return nil
}
