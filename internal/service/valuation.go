package service

import (
	"bytes"
	"sort"
	"time"

	"go-doc-ledger/internal/model"
	"go-doc-ledger/internal/repository"
	"go-doc-ledger/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValuationEntry is one document line's contribution to a product's annual stat.
type ValuationEntry struct {
	ProductID    uuid.UUID
	Sign         int
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Net          decimal.Decimal
	DocumentDate time.Time
	PostingSeq   int64
}

// ApplyToStat folds one entry into stat. Finalization and rebuild both fold through here.
//
// Inbound entries move the weighted average cost:
//
//	cmp' = (stockQty*cmp + net) / (stockQty + qty)
//
// where stockQty = purchased - sold before the entry. CMP is kept when the resulting
// quantity is not positive. Outbound entries only add to the sold totals.
func ApplyToStat(stat *model.ProductAnnualStat, e ValuationEntry) {
	if e.Sign > 0 {
		stockQty := stat.StockQuantity()
		stockValue := stockQty.Mul(stat.WeightedAverageCost)
		newQty := stockQty.Add(e.Quantity)
		if newQty.IsPositive() {
			stat.WeightedAverageCost = stockValue.Add(e.Net).DivRound(newQty, money.CostScale)
		}
		stat.PurchasedQuantity = stat.PurchasedQuantity.Add(e.Quantity)
		stat.PurchasedAmount = stat.PurchasedAmount.Add(e.Net)
		stat.LastCost = e.UnitPrice
	} else {
		stat.SoldQuantity = stat.SoldQuantity.Add(e.Quantity)
		stat.SoldAmount = stat.SoldAmount.Add(e.Net)
	}

	date := e.DocumentDate
	stat.LastDocumentDate = &date
	stat.LastPostingSeq = e.PostingSeq
}

// valuationEntries lists a document's product lines in position order.
func valuationEntries(doc *model.Document) []ValuationEntry {
	lines := make([]model.DocumentLine, len(doc.Lines))
	copy(lines, doc.Lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })

	entries := make([]ValuationEntry, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == nil {
			continue
		}
		entries = append(entries, ValuationEntry{
			ProductID:    *l.ProductID,
			Sign:         doc.PolicyOperationSign,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Net:          l.NetAmount,
			DocumentDate: doc.DocumentDate,
			PostingSeq:   doc.PostingSeq,
		})
	}
	return entries
}

// entryProducts returns the distinct products of entries sorted by id,
// the order in which stat rows are locked.
func entryProducts(entries []ValuationEntry) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(entries))
	var ids []uuid.UUID
	for _, e := range entries {
		if !seen[e.ProductID] {
			seen[e.ProductID] = true
			ids = append(ids, e.ProductID)
		}
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
}

func newStat(tenantID, productID uuid.UUID, year int) *model.ProductAnnualStat {
	stat := &model.ProductAnnualStat{TenantID: tenantID, ProductID: productID, FiscalYear: year}
	stat.Reset()
	return stat
}

// FoldDocuments replays documents, already in (date, posting order), into fresh stats.
// A non-nil only restricts the fold to one product.
func FoldDocuments(tenantID uuid.UUID, year int, docs []model.Document, only *uuid.UUID) map[uuid.UUID]*model.ProductAnnualStat {
	stats := make(map[uuid.UUID]*model.ProductAnnualStat)
	for i := range docs {
		for _, e := range valuationEntries(&docs[i]) {
			if only != nil && e.ProductID != *only {
				continue
			}
			stat, ok := stats[e.ProductID]
			if !ok {
				stat = newStat(tenantID, e.ProductID, year)
				stats[e.ProductID] = stat
			}
			ApplyToStat(stat, e)
		}
	}
	return stats
}

// replayProductYear re-derives one locked stat row from the ledger. Used when a
// document lands before the stat's watermark or a document is removed. A product
// left with no valuation documents in the year loses its row, as a rebuild would.
func replayProductYear(repos *repository.Repositories, stat *model.ProductAnnualStat) error {
	docs, err := repos.Documents.FindForValuation(stat.TenantID, stat.FiscalYear, &stat.ProductID)
	if err != nil {
		return err
	}
	stat.Reset()
	folded, ok := FoldDocuments(stat.TenantID, stat.FiscalYear, docs, &stat.ProductID)[stat.ProductID]
	if !ok {
		return repos.Stats.Delete(stat)
	}
	copyFolded(stat, folded)
	return repos.Stats.Save(stat)
}

func copyFolded(dst, src *model.ProductAnnualStat) {
	dst.PurchasedQuantity = src.PurchasedQuantity
	dst.PurchasedAmount = src.PurchasedAmount
	dst.SoldQuantity = src.SoldQuantity
	dst.SoldAmount = src.SoldAmount
	dst.WeightedAverageCost = src.WeightedAverageCost
	dst.LastCost = src.LastCost
	dst.LastDocumentDate = src.LastDocumentDate
	dst.LastPostingSeq = src.LastPostingSeq
}

// applyDocumentValuation updates the stats touched by a freshly created document.
// Stat rows are locked in product id order. A backdated document triggers a replay of
// the product's year instead of an incremental fold.
func applyDocumentValuation(repos *repository.Repositories, doc *model.Document, entries []ValuationEntry, locked map[uuid.UUID]*model.ProductAnnualStat) error {
	for _, productID := range entryProducts(entries) {
		stat := locked[productID]
		if stat.LastDocumentDate != nil && doc.DocumentDate.Before(*stat.LastDocumentDate) {
			if err := replayProductYear(repos, stat); err != nil {
				return err
			}
			continue
		}
		for _, e := range entries {
			if e.ProductID == productID {
				ApplyToStat(stat, e)
			}
		}
		if err := repos.Stats.Save(stat); err != nil {
			return err
		}
	}
	return nil
}

// lockStats locks (creating when absent) the stat rows for products in id order.
func lockStats(repos *repository.Repositories, tenantID uuid.UUID, year int, productIDs []uuid.UUID) (map[uuid.UUID]*model.ProductAnnualStat, error) {
	locked := make(map[uuid.UUID]*model.ProductAnnualStat, len(productIDs))
	for _, productID := range productIDs {
		stat, err := repos.Stats.LockForUpdate(tenantID, productID, year)
		if err != nil {
			return nil, err
		}
		locked[productID] = stat
	}
	return locked, nil
}
