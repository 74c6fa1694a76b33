// Package memstore implementa en memoria los puertos de repository para pruebas de casos de uso.
// Run ejecuta cada transacción sobre una copia del estado y solo la publica si fn no falla,
// de modo que un error deja el estado intacto igual que un Rollback.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

type stockKey struct {
	variantID   string
	warehouseID string
}

type state struct {
	companies     map[string]*entity.Company
	configs       map[string]*entity.GlobalConfig
	users         map[string]*entity.User
	warehouses    map[string]*entity.Warehouse
	suppliers     map[string]*entity.Supplier
	categories    map[string]*entity.Category
	subcategories map[string]*entity.Subcategory
	products      map[string]*entity.Product
	variants      map[string]*entity.ProductVariant
	filters       map[string]*entity.Filter
	options       map[string]*entity.FilterOption
	details       map[string]*entity.ProductFilterDetail
	stock         map[stockKey]*entity.WarehouseStock
	movements     []*entity.StockMovement
	purchases     map[string]*entity.Purchase
	orders        map[string]*entity.Order
	currencies    map[string]*entity.Currency
	rates         []*entity.ExchangeRate
}

func newState() *state {
	return &state{
		companies:     map[string]*entity.Company{},
		configs:       map[string]*entity.GlobalConfig{},
		users:         map[string]*entity.User{},
		warehouses:    map[string]*entity.Warehouse{},
		suppliers:     map[string]*entity.Supplier{},
		categories:    map[string]*entity.Category{},
		subcategories: map[string]*entity.Subcategory{},
		products:      map[string]*entity.Product{},
		variants:      map[string]*entity.ProductVariant{},
		filters:       map[string]*entity.Filter{},
		options:       map[string]*entity.FilterOption{},
		details:       map[string]*entity.ProductFilterDetail{},
		stock:         map[stockKey]*entity.WarehouseStock{},
		purchases:     map[string]*entity.Purchase{},
		orders:        map[string]*entity.Order{},
		currencies:    map[string]*entity.Currency{},
	}
}

func (st *state) clone() *state {
	c := &state{
		companies:     cloneMap(st.companies),
		configs:       cloneMap(st.configs),
		users:         cloneMap(st.users),
		warehouses:    cloneMap(st.warehouses),
		suppliers:     cloneMap(st.suppliers),
		categories:    cloneMap(st.categories),
		subcategories: cloneMap(st.subcategories),
		products:      cloneMap(st.products),
		variants:      cloneMap(st.variants),
		filters:       cloneMap(st.filters),
		options:       cloneMap(st.options),
		details:       cloneMap(st.details),
		stock:         cloneMap(st.stock),
		movements:     append([]*entity.StockMovement(nil), st.movements...),
		purchases:     make(map[string]*entity.Purchase, len(st.purchases)),
		orders:        make(map[string]*entity.Order, len(st.orders)),
		currencies:    cloneMap(st.currencies),
		rates:         make([]*entity.ExchangeRate, 0, len(st.rates)),
	}
	for _, r := range st.rates {
		c.rates = append(c.rates, clone(r))
	}
	for k, p := range st.purchases {
		c.purchases[k] = clonePurchase(p)
	}
	for k, o := range st.orders {
		c.orders[k] = cloneOrder(o)
	}
	return c
}

// Store base de datos en memoria. Las transacciones se serializan.
type Store struct {
	mu   sync.Mutex // protege data
	txMu sync.Mutex // serializa Run
	data *state

	failCommits int
	attempts    int
	commits     int
}

// New crea un store vacío.
func New() *Store {
	return &Store{data: newState()}
}

// FailNextCommits hace que los próximos n commits fallen con ErrConcurrencyConflict.
func (s *Store) FailNextCommits(n int) {
	s.mu.Lock()
	s.failCommits = n
	s.mu.Unlock()
}

// Attempts número de transacciones iniciadas.
func (s *Store) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Commits número de transacciones confirmadas.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Run ejecuta fn con repositorios sobre una copia del estado; la copia se publica solo si fn termina sin error.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.attempts++
	work := s.data.clone()
	s.mu.Unlock()

	acc := txAccess{st: work}
	repos := repository.TxRepos{
		Stock:     &stockRepo{acc: acc},
		Movements: &movementRepo{acc: acc},
		Products:  &productRepo{acc: acc},
		Purchases: &purchaseRepo{acc: acc},
		Orders:    &orderRepo{acc: acc},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCommits > 0 {
		s.failCommits--
		return fmt.Errorf("memstore commit: %w", domain.ErrConcurrencyConflict)
	}
	s.data = work
	s.commits++
	return nil
}

// accessor da acceso al estado: directo (con lock) o a la copia de una transacción.
type accessor interface {
	do(fn func(st *state) error) error
}

type storeAccess struct{ s *Store }

func (a storeAccess) do(fn func(st *state) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.data)
}

type txAccess struct{ st *state }

func (a txAccess) do(fn func(st *state) error) error { return fn(a.st) }

func (s *Store) acc() accessor { return storeAccess{s: s} }

// Repositorios fuera de transacción.

func (s *Store) Companies() repository.CompanyRepository          { return &companyRepo{acc: s.acc()} }
func (s *Store) Configs() repository.GlobalConfigRepository        { return &configRepo{acc: s.acc()} }
func (s *Store) Users() repository.UserRepository                  { return &userRepo{acc: s.acc()} }
func (s *Store) Warehouses() repository.WarehouseRepository        { return &warehouseRepo{acc: s.acc()} }
func (s *Store) Suppliers() repository.SupplierRepository          { return &supplierRepo{acc: s.acc()} }
func (s *Store) Categories() repository.CategoryRepository         { return &categoryRepo{acc: s.acc()} }
func (s *Store) Products() repository.ProductRepository            { return &productRepo{acc: s.acc()} }
func (s *Store) Filters() repository.FilterRepository              { return &filterRepo{acc: s.acc()} }
func (s *Store) Stock() repository.StockRepository                 { return &stockRepo{acc: s.acc()} }
func (s *Store) Movements() repository.StockMovementRepository     { return &movementRepo{acc: s.acc()} }
func (s *Store) StockReport() repository.StockReportRepository     { return &reportRepo{acc: s.acc()} }
func (s *Store) Purchases() repository.PurchaseRepository          { return &purchaseRepo{acc: s.acc()} }
func (s *Store) Orders() repository.OrderRepository                { return &orderRepo{acc: s.acc()} }
func (s *Store) Currencies() repository.CurrencyRepository         { return &currencyRepo{acc: s.acc()} }
func (s *Store) ExchangeRates() repository.ExchangeRateRepository  { return &rateRepo{acc: s.acc()} }

// helpers

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneMap[K comparable, V any](m map[K]*V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func clonePurchase(p *entity.Purchase) *entity.Purchase {
	c := clone(p)
	if c != nil {
		c.Lines = append([]entity.PurchaseLine(nil), p.Lines...)
	}
	return c
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := clone(o)
	if c != nil {
		c.Lines = append([]entity.OrderLine(nil), o.Lines...)
	}
	return c
}

// live devuelve la copia de la entidad si existe y no está eliminada.
func live[T any](m map[string]*T, id string, ts func(*T) entity.Timestamps) *T {
	v, ok := m[id]
	if !ok || ts(v).IsDeleted() {
		return nil
	}
	return clone(v)
}

// list filtra, ordena por fecha de creación y pagina.
func list[T any](m map[string]*T, opts repository.ListOptions, ts func(*T) entity.Timestamps, id func(*T) string, keep func(*T) bool) []*T {
	opts = opts.Normalize()
	var items []*T
	for _, v := range m {
		if ts(v).IsDeleted() && !opts.IncludeDeleted {
			continue
		}
		if keep != nil && !keep(v) {
			continue
		}
		items = append(items, clone(v))
	}
	sort.Slice(items, func(i, j int) bool {
		ci, cj := ts(items[i]).CreatedAt, ts(items[j]).CreatedAt
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return id(items[i]) < id(items[j])
	})
	return paginate(items, opts)
}

func paginate[T any](items []T, opts repository.ListOptions) []T {
	if opts.Offset >= len(items) {
		return []T{}
	}
	end := opts.Offset + opts.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[opts.Offset:end]
}

func stamp(ts *entity.Timestamps) {
	now := time.Now()
	if ts.CreatedAt.IsZero() {
		ts.CreatedAt = now
	}
	ts.UpdatedAt = now
}

func softDelete(ts *entity.Timestamps) {
	now := time.Now()
	ts.DeletedAt = &now
	ts.UpdatedAt = now
}

func duplicate(what string) error {
	return fmt.Errorf("%s: %w", what, domain.ErrDuplicate)
}

func eqFold(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }
