package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

type stockRepo struct{ acc accessor }

func (r *stockRepo) Get(_ context.Context, companyID, varID, whID string) (out *entity.WarehouseStock, err error) {
	err = r.acc.do(func(st *state) error {
		if s, ok := st.stock[stockKey{varID, whID}]; ok {
			out = clone(s)
			return nil
		}
		out = &entity.WarehouseStock{CompanyID: companyID, VariantID: varID, WarehouseID: whID, Quantity: decimal.Zero}
		return nil
	})
	return out, err
}

func (r *stockRepo) GetForUpdate(_ context.Context, companyID, varID, whID string) (out *entity.WarehouseStock, err error) {
	err = r.acc.do(func(st *state) error {
		k := stockKey{varID, whID}
		s, ok := st.stock[k]
		if !ok {
			s = &entity.WarehouseStock{CompanyID: companyID, VariantID: varID, WarehouseID: whID, Quantity: decimal.Zero, UpdatedAt: time.Now()}
			st.stock[k] = s
		}
		out = clone(s)
		return nil
	})
	return out, err
}

func (r *stockRepo) Save(_ context.Context, s *entity.WarehouseStock) error {
	return r.acc.do(func(st *state) error {
		k := stockKey{s.VariantID, s.WarehouseID}
		cur, ok := st.stock[k]
		if !ok || cur.Version != s.Version {
			return fmt.Errorf("stock %s/%s: %w", s.VariantID, s.WarehouseID, domain.ErrConcurrencyConflict)
		}
		if s.Quantity.IsNegative() {
			return fmt.Errorf("stock negativo: %w", domain.ErrInsufficientStock)
		}
		s.Version++
		st.stock[k] = clone(s)
		return nil
	})
}

// SetStock fija el stock directamente (preparación de pruebas).
func (s *Store) SetStock(companyID, variantID, warehouseID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.stock[stockKey{variantID, warehouseID}] = &entity.WarehouseStock{
		CompanyID: companyID, VariantID: variantID, WarehouseID: warehouseID, Quantity: qty, UpdatedAt: time.Now(),
	}
}

// AllMovements copia del historial del ledger.
func (s *Store) AllMovements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.StockMovement, 0, len(s.data.movements))
	for _, m := range s.data.movements {
		out = append(out, *m)
	}
	return out
}

type movementRepo struct{ acc accessor }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.acc.do(func(st *state) error {
		for _, other := range st.movements {
			if other.CompanyID == m.CompanyID && other.Reason == m.Reason && other.ReferenceID == m.ReferenceID {
				return duplicate("referencia de movimiento")
			}
		}
		st.movements = append(st.movements, clone(m))
		return nil
	})
}

func (r *movementRepo) FindByReference(_ context.Context, companyID, reason, ref string) (out *entity.StockMovement, err error) {
	err = r.acc.do(func(st *state) error {
		for _, m := range st.movements {
			if m.CompanyID == companyID && m.Reason == reason && m.ReferenceID == ref {
				out = clone(m)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) ListByVariant(_ context.Context, companyID, varID string, from, to *time.Time, opts repository.ListOptions) (out []*entity.StockMovement, err error) {
	opts = opts.Normalize()
	err = r.acc.do(func(st *state) error {
		var items []*entity.StockMovement
		for _, m := range st.movements {
			if m.CompanyID != companyID || m.VariantID != varID {
				continue
			}
			if from != nil && m.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && m.CreatedAt.After(*to) {
				continue
			}
			items = append(items, clone(m))
		}
		out = paginate(items, opts)
		return nil
	})
	return out, err
}

type reportRepo struct{ acc accessor }

func (r *reportRepo) item(st *state, v *entity.ProductVariant, whID string, qty decimal.Decimal, updated time.Time) repository.StockLevelItem {
	name := ""
	if p, ok := st.products[v.ProductID]; ok {
		name = p.Name
	}
	return repository.StockLevelItem{
		VariantID: v.ID, SKU: v.SKU, ProductName: name, VariantName: v.Name,
		WarehouseID: whID, Quantity: qty, MinStock: v.MinStock, UpdatedAt: updated,
	}
}

func (r *reportRepo) ListByWarehouse(_ context.Context, companyID, whID string, opts repository.ListOptions) (out []repository.StockLevelItem, err error) {
	opts = opts.Normalize()
	err = r.acc.do(func(st *state) error {
		var items []repository.StockLevelItem
		for k, s := range st.stock {
			if k.warehouseID != whID || s.CompanyID != companyID {
				continue
			}
			v, ok := st.variants[k.variantID]
			if !ok || v.IsDeleted() {
				continue
			}
			items = append(items, r.item(st, v, whID, s.Quantity, s.UpdatedAt))
		}
		sort.Slice(items, func(i, j int) bool { return items[i].SKU < items[j].SKU })
		out = paginate(items, opts)
		return nil
	})
	return out, err
}

func (r *reportRepo) BelowMinimum(_ context.Context, companyID, whID string) (out []repository.StockLevelItem, err error) {
	err = r.acc.do(func(st *state) error {
		for _, v := range st.variants {
			if v.IsDeleted() || v.CompanyID != companyID || !v.MinStock.IsPositive() {
				continue
			}
			qty := decimal.Zero
			var updated time.Time
			for k, s := range st.stock {
				if k.variantID != v.ID || (whID != "" && k.warehouseID != whID) {
					continue
				}
				qty = qty.Add(s.Quantity)
				if s.UpdatedAt.After(updated) {
					updated = s.UpdatedAt
				}
			}
			if qty.LessThan(v.MinStock) {
				out = append(out, r.item(st, v, whID, qty, updated))
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
		return nil
	})
	return out, err
}
