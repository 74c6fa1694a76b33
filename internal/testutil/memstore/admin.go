package memstore

import (
	"context"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

func companyTS(c *entity.Company) entity.Timestamps     { return c.Timestamps }
func companyID(c *entity.Company) string                { return c.ID }
func userTS(u *entity.User) entity.Timestamps           { return u.Timestamps }
func userID(u *entity.User) string                      { return u.ID }
func warehouseTS(w *entity.Warehouse) entity.Timestamps { return w.Timestamps }
func warehouseID(w *entity.Warehouse) string            { return w.ID }
func supplierTS(s *entity.Supplier) entity.Timestamps   { return s.Timestamps }
func supplierID(s *entity.Supplier) string              { return s.ID }

type companyRepo struct{ acc accessor }

func (r *companyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.acc.do(func(st *state) error {
		for _, other := range st.companies {
			if !other.IsDeleted() && other.TaxID != "" && other.TaxID == c.TaxID {
				return duplicate("nit de empresa")
			}
		}
		stamp(&c.Timestamps)
		st.companies[c.ID] = clone(c)
		return nil
	})
}

func (r *companyRepo) GetByID(_ context.Context, id string) (out *entity.Company, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.companies, id, companyTS)
		return nil
	})
	return out, err
}

func (r *companyRepo) GetByTaxID(_ context.Context, taxID string) (out *entity.Company, err error) {
	err = r.acc.do(func(st *state) error {
		for _, c := range st.companies {
			if !c.IsDeleted() && c.TaxID == taxID {
				out = clone(c)
			}
		}
		return nil
	})
	return out, err
}

func (r *companyRepo) Update(_ context.Context, c *entity.Company) error {
	return r.acc.do(func(st *state) error {
		if live(st.companies, c.ID, companyTS) == nil {
			return domain.NewNotFound("empresa", c.ID)
		}
		stamp(&c.Timestamps)
		st.companies[c.ID] = clone(c)
		return nil
	})
}

func (r *companyRepo) List(_ context.Context, opts repository.ListOptions) (out []*entity.Company, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.companies, opts, companyTS, companyID, nil)
		return nil
	})
	return out, err
}

func (r *companyRepo) SoftDelete(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		c, ok := st.companies[id]
		if !ok || c.IsDeleted() {
			return domain.NewNotFound("empresa", id)
		}
		softDelete(&c.Timestamps)
		return nil
	})
}

type configRepo struct{ acc accessor }

func (r *configRepo) GetByCompany(_ context.Context, companyID string) (out *entity.GlobalConfig, err error) {
	err = r.acc.do(func(st *state) error {
		if c, ok := st.configs[companyID]; ok && !c.IsDeleted() {
			out = clone(c)
		}
		return nil
	})
	return out, err
}

func (r *configRepo) Upsert(_ context.Context, cfg *entity.GlobalConfig) error {
	return r.acc.do(func(st *state) error {
		if prev, ok := st.configs[cfg.CompanyID]; ok {
			cfg.ID = prev.ID
			cfg.CreatedAt = prev.CreatedAt
		}
		stamp(&cfg.Timestamps)
		st.configs[cfg.CompanyID] = clone(cfg)
		return nil
	})
}

type userRepo struct{ acc accessor }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.acc.do(func(st *state) error {
		for _, other := range st.users {
			if !other.IsDeleted() && eqFold(other.Email, u.Email) {
				return duplicate("email")
			}
		}
		stamp(&u.Timestamps)
		st.users[u.ID] = clone(u)
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (out *entity.User, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.users, id, userTS)
		return nil
	})
	return out, err
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (out *entity.User, err error) {
	err = r.acc.do(func(st *state) error {
		for _, u := range st.users {
			if !u.IsDeleted() && eqFold(u.Email, email) {
				out = clone(u)
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	return r.acc.do(func(st *state) error {
		if live(st.users, u.ID, userTS) == nil {
			return domain.NewNotFound("usuario", u.ID)
		}
		stamp(&u.Timestamps)
		st.users[u.ID] = clone(u)
		return nil
	})
}

func (r *userRepo) ListByCompany(_ context.Context, companyID string, opts repository.ListOptions) (out []*entity.User, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.users, opts, userTS, userID, func(u *entity.User) bool { return u.CompanyID == companyID })
		return nil
	})
	return out, err
}

func (r *userRepo) SoftDelete(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok || u.IsDeleted() {
			return domain.NewNotFound("usuario", id)
		}
		softDelete(&u.Timestamps)
		return nil
	})
}

type warehouseRepo struct{ acc accessor }

func (r *warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.acc.do(func(st *state) error {
		stamp(&w.Timestamps)
		st.warehouses[w.ID] = clone(w)
		return nil
	})
}

func (r *warehouseRepo) GetByID(_ context.Context, id string) (out *entity.Warehouse, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.warehouses, id, warehouseTS)
		return nil
	})
	return out, err
}

func (r *warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.acc.do(func(st *state) error {
		if live(st.warehouses, w.ID, warehouseTS) == nil {
			return domain.NewNotFound("almacén", w.ID)
		}
		stamp(&w.Timestamps)
		st.warehouses[w.ID] = clone(w)
		return nil
	})
}

func (r *warehouseRepo) ListByCompany(_ context.Context, companyID string, opts repository.ListOptions) (out []*entity.Warehouse, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.warehouses, opts, warehouseTS, warehouseID, func(w *entity.Warehouse) bool { return w.CompanyID == companyID })
		return nil
	})
	return out, err
}

func (r *warehouseRepo) CountPrimary(_ context.Context, companyID string) (n int, err error) {
	err = r.acc.do(func(st *state) error {
		for _, w := range st.warehouses {
			if w.CompanyID == companyID && w.IsPrimary && !w.IsDeleted() {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *warehouseRepo) SoftDelete(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		w, ok := st.warehouses[id]
		if !ok || w.IsDeleted() {
			return domain.NewNotFound("almacén", id)
		}
		softDelete(&w.Timestamps)
		return nil
	})
}

type supplierRepo struct{ acc accessor }

func (r *supplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	return r.acc.do(func(st *state) error {
		stamp(&s.Timestamps)
		st.suppliers[s.ID] = clone(s)
		return nil
	})
}

func (r *supplierRepo) GetByID(_ context.Context, id string) (out *entity.Supplier, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.suppliers, id, supplierTS)
		return nil
	})
	return out, err
}

func (r *supplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	return r.acc.do(func(st *state) error {
		if live(st.suppliers, s.ID, supplierTS) == nil {
			return domain.NewNotFound("proveedor", s.ID)
		}
		stamp(&s.Timestamps)
		st.suppliers[s.ID] = clone(s)
		return nil
	})
}

func (r *supplierRepo) ListByCompany(_ context.Context, companyID string, opts repository.ListOptions) (out []*entity.Supplier, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.suppliers, opts, supplierTS, supplierID, func(s *entity.Supplier) bool { return s.CompanyID == companyID })
		return nil
	})
	return out, err
}

func (r *supplierRepo) SoftDelete(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		s, ok := st.suppliers[id]
		if !ok || s.IsDeleted() {
			return domain.NewNotFound("proveedor", id)
		}
		softDelete(&s.Timestamps)
		return nil
	})
}
