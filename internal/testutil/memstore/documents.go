package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

func currencyTS(c *entity.Currency) entity.Timestamps { return c.Timestamps }
func currencyID(c *entity.Currency) string            { return c.ID }

type purchaseRepo struct{ acc accessor }

func (r *purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	return r.acc.do(func(st *state) error {
		stamp(&p.Timestamps)
		st.purchases[p.ID] = clonePurchase(p)
		return nil
	})
}

func (r *purchaseRepo) GetByID(_ context.Context, id string) (out *entity.Purchase, err error) {
	err = r.acc.do(func(st *state) error {
		if p, ok := st.purchases[id]; ok && !p.IsDeleted() {
			out = clonePurchase(p)
		}
		return nil
	})
	return out, err
}

func (r *purchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseRepo) UpdateStatus(_ context.Context, p *entity.Purchase) error {
	return r.acc.do(func(st *state) error {
		cur, ok := st.purchases[p.ID]
		if !ok || cur.IsDeleted() {
			return domain.NewNotFound("compra", p.ID)
		}
		stamp(&p.Timestamps)
		cur.Status = p.Status
		cur.ReceivedAt = p.ReceivedAt
		cur.CancelledAt = p.CancelledAt
		cur.UpdatedAt = p.UpdatedAt
		return nil
	})
}

func (r *purchaseRepo) ListByCompany(_ context.Context, companyID, status string, opts repository.ListOptions) (out []*entity.Purchase, err error) {
	opts = opts.Normalize()
	err = r.acc.do(func(st *state) error {
		var items []*entity.Purchase
		for _, p := range st.purchases {
			if p.CompanyID != companyID || (status != "" && p.Status != status) || (p.IsDeleted() && !opts.IncludeDeleted) {
				continue
			}
			items = append(items, clonePurchase(p))
		}
		sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
		out = paginate(items, opts)
		return nil
	})
	return out, err
}

type orderRepo struct{ acc accessor }

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.acc.do(func(st *state) error {
		stamp(&o.Timestamps)
		st.orders[o.ID] = cloneOrder(o)
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (out *entity.Order, err error) {
	err = r.acc.do(func(st *state) error {
		if o, ok := st.orders[id]; ok && !o.IsDeleted() {
			out = cloneOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) UpdateStatus(_ context.Context, o *entity.Order) error {
	return r.acc.do(func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok || cur.IsDeleted() {
			return domain.NewNotFound("pedido", o.ID)
		}
		stamp(&o.Timestamps)
		cur.Status = o.Status
		cur.CompletedAt = o.CompletedAt
		cur.CancelledAt = o.CancelledAt
		cur.UpdatedAt = o.UpdatedAt
		return nil
	})
}

func (r *orderRepo) ListByCompany(_ context.Context, companyID, status string, opts repository.ListOptions) (out []*entity.Order, err error) {
	opts = opts.Normalize()
	err = r.acc.do(func(st *state) error {
		var items []*entity.Order
		for _, o := range st.orders {
			if o.CompanyID != companyID || (status != "" && o.Status != status) || (o.IsDeleted() && !opts.IncludeDeleted) {
				continue
			}
			items = append(items, cloneOrder(o))
		}
		sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
		out = paginate(items, opts)
		return nil
	})
	return out, err
}

type currencyRepo struct{ acc accessor }

func (r *currencyRepo) Create(_ context.Context, c *entity.Currency) error {
	return r.acc.do(func(st *state) error {
		for _, other := range st.currencies {
			if !other.IsDeleted() && other.CompanyID == c.CompanyID && other.Code == c.Code {
				return duplicate("código de divisa")
			}
		}
		stamp(&c.Timestamps)
		st.currencies[c.ID] = clone(c)
		return nil
	})
}

func (r *currencyRepo) GetByCode(_ context.Context, companyID, code string) (out *entity.Currency, err error) {
	err = r.acc.do(func(st *state) error {
		for _, c := range st.currencies {
			if !c.IsDeleted() && c.CompanyID == companyID && strings.EqualFold(c.Code, code) {
				out = clone(c)
			}
		}
		return nil
	})
	return out, err
}

func (r *currencyRepo) ListByCompany(_ context.Context, companyID string, opts repository.ListOptions) (out []*entity.Currency, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.currencies, opts, currencyTS, currencyID, func(c *entity.Currency) bool { return c.CompanyID == companyID })
		return nil
	})
	return out, err
}

func (r *currencyRepo) SoftDelete(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		c, ok := st.currencies[id]
		if !ok || c.IsDeleted() {
			return domain.NewNotFound("divisa", id)
		}
		softDelete(&c.Timestamps)
		return nil
	})
}

type rateRepo struct{ acc accessor }

func (r *rateRepo) Create(_ context.Context, rate *entity.ExchangeRate) error {
	return r.acc.do(func(st *state) error {
		stamp(&rate.Timestamps)
		// created_at estrictamente creciente, como clock_timestamp en Postgres
		if n := len(st.rates); n > 0 && !rate.CreatedAt.After(st.rates[n-1].CreatedAt) {
			rate.CreatedAt = st.rates[n-1].CreatedAt.Add(time.Microsecond)
		}
		st.rates = append(st.rates, clone(rate))
		return nil
	})
}

func (r *rateRepo) GetByID(_ context.Context, id string) (out *entity.ExchangeRate, err error) {
	err = r.acc.do(func(st *state) error {
		for _, rate := range st.rates {
			if rate.ID == id && !rate.IsDeleted() {
				out = clone(rate)
			}
		}
		return nil
	})
	return out, err
}

func (r *rateRepo) Latest(_ context.Context, companyID, from, to string) (out *entity.ExchangeRate, err error) {
	err = r.acc.do(func(st *state) error {
		// el slice conserva el orden de inserción: la última coincidencia es la más reciente
		for _, rate := range st.rates {
			if !rate.IsDeleted() && rate.CompanyID == companyID && rate.FromCode == from && rate.ToCode == to {
				out = clone(rate)
			}
		}
		return nil
	})
	return out, err
}

func (r *rateRepo) ListByCompany(_ context.Context, companyID string, opts repository.ListOptions) (out []*entity.ExchangeRate, err error) {
	opts = opts.Normalize()
	err = r.acc.do(func(st *state) error {
		var items []*entity.ExchangeRate
		for _, rate := range st.rates {
			if rate.CompanyID == companyID && (!rate.IsDeleted() || opts.IncludeDeleted) {
				items = append(items, clone(rate))
			}
		}
		out = paginate(items, opts)
		return nil
	})
	return out, err
}

func (r *rateRepo) SoftDelete(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		for _, rate := range st.rates {
			if rate.ID == id && !rate.IsDeleted() {
				softDelete(&rate.Timestamps)
				return nil
			}
		}
		return domain.NewNotFound("tasa de cambio", id)
	})
}
