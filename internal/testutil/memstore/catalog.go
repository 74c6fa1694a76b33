package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

func categoryTS(c *entity.Category) entity.Timestamps          { return c.Timestamps }
func categoryID(c *entity.Category) string                     { return c.ID }
func subcategoryTS(s *entity.Subcategory) entity.Timestamps    { return s.Timestamps }
func subcategoryID(s *entity.Subcategory) string               { return s.ID }
func productTS(p *entity.Product) entity.Timestamps            { return p.Timestamps }
func productID(p *entity.Product) string                       { return p.ID }
func variantTS(v *entity.ProductVariant) entity.Timestamps     { return v.Timestamps }
func variantID(v *entity.ProductVariant) string                { return v.ID }
func filterTS(f *entity.Filter) entity.Timestamps              { return f.Timestamps }
func filterID(f *entity.Filter) string                         { return f.ID }
func optionTS(o *entity.FilterOption) entity.Timestamps        { return o.Timestamps }
func optionID(o *entity.FilterOption) string                   { return o.ID }

type categoryRepo struct{ acc accessor }

func (r *categoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.acc.do(func(st *state) error {
		stamp(&c.Timestamps)
		st.categories[c.ID] = clone(c)
		return nil
	})
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (out *entity.Category, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.categories, id, categoryTS)
		return nil
	})
	return out, err
}

func (r *categoryRepo) Update(_ context.Context, c *entity.Category) error {
	return r.acc.do(func(st *state) error {
		if live(st.categories, c.ID, categoryTS) == nil {
			return domain.NewNotFound("categoría", c.ID)
		}
		stamp(&c.Timestamps)
		st.categories[c.ID] = clone(c)
		return nil
	})
}

func (r *categoryRepo) ListByCompany(_ context.Context, companyID string, opts repository.ListOptions) (out []*entity.Category, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.categories, opts, categoryTS, categoryID, func(c *entity.Category) bool { return c.CompanyID == companyID })
		return nil
	})
	return out, err
}

func (r *categoryRepo) SoftDelete(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		c, ok := st.categories[id]
		if !ok || c.IsDeleted() {
			return domain.NewNotFound("categoría", id)
		}
		softDelete(&c.Timestamps)
		return nil
	})
}

func (r *categoryRepo) CreateSubcategory(_ context.Context, s *entity.Subcategory) error {
	return r.acc.do(func(st *state) error {
		stamp(&s.Timestamps)
		st.subcategories[s.ID] = clone(s)
		return nil
	})
}

func (r *categoryRepo) GetSubcategory(_ context.Context, id string) (out *entity.Subcategory, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.subcategories, id, subcategoryTS)
		return nil
	})
	return out, err
}

func (r *categoryRepo) UpdateSubcategory(_ context.Context, s *entity.Subcategory) error {
	return r.acc.do(func(st *state) error {
		if live(st.subcategories, s.ID, subcategoryTS) == nil {
			return domain.NewNotFound("subcategoría", s.ID)
		}
		stamp(&s.Timestamps)
		st.subcategories[s.ID] = clone(s)
		return nil
	})
}

func (r *categoryRepo) ListSubcategories(_ context.Context, catID string, opts repository.ListOptions) (out []*entity.Subcategory, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.subcategories, opts, subcategoryTS, subcategoryID, func(s *entity.Subcategory) bool { return s.CategoryID == catID })
		return nil
	})
	return out, err
}

func (r *categoryRepo) SoftDeleteSubcategory(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		s, ok := st.subcategories[id]
		if !ok || s.IsDeleted() {
			return domain.NewNotFound("subcategoría", id)
		}
		softDelete(&s.Timestamps)
		return nil
	})
}

type productRepo struct{ acc accessor }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.acc.do(func(st *state) error {
		stamp(&p.Timestamps)
		st.products[p.ID] = clone(p)
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (out *entity.Product, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.products, id, productTS)
		return nil
	})
	return out, err
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.acc.do(func(st *state) error {
		if live(st.products, p.ID, productTS) == nil {
			return domain.NewNotFound("producto", p.ID)
		}
		stamp(&p.Timestamps)
		st.products[p.ID] = clone(p)
		return nil
	})
}

func (r *productRepo) ListByCompany(_ context.Context, companyID string, f repository.ProductFilter, opts repository.ListOptions) (out []*entity.Product, err error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	err = r.acc.do(func(st *state) error {
		out = list(st.products, opts, productTS, productID, func(p *entity.Product) bool {
			if p.CompanyID != companyID {
				return false
			}
			if f.SubcategoryID != "" && p.SubcategoryID != f.SubcategoryID {
				return false
			}
			return search == "" || strings.Contains(strings.ToLower(p.Name), search)
		})
		return nil
	})
	return out, err
}

func (r *productRepo) SoftDelete(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.IsDeleted() {
			return domain.NewNotFound("producto", id)
		}
		softDelete(&p.Timestamps)
		for _, v := range st.variants {
			if v.ProductID == id && !v.IsDeleted() {
				softDelete(&v.Timestamps)
			}
		}
		return nil
	})
}

func (r *productRepo) CreateVariant(_ context.Context, v *entity.ProductVariant) error {
	return r.acc.do(func(st *state) error {
		for _, other := range st.variants {
			if !other.IsDeleted() && other.CompanyID == v.CompanyID && other.SKU == v.SKU {
				return duplicate("sku")
			}
		}
		stamp(&v.Timestamps)
		st.variants[v.ID] = clone(v)
		return nil
	})
}

func (r *productRepo) GetVariant(_ context.Context, id string) (out *entity.ProductVariant, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.variants, id, variantTS)
		return nil
	})
	return out, err
}

func (r *productRepo) GetVariantBySKU(_ context.Context, companyID, sku string) (out *entity.ProductVariant, err error) {
	err = r.acc.do(func(st *state) error {
		for _, v := range st.variants {
			if !v.IsDeleted() && v.CompanyID == companyID && v.SKU == sku {
				out = clone(v)
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) UpdateVariant(_ context.Context, v *entity.ProductVariant) error {
	return r.acc.do(func(st *state) error {
		if live(st.variants, v.ID, variantTS) == nil {
			return domain.NewNotFound("variante", v.ID)
		}
		for _, other := range st.variants {
			if other.ID != v.ID && !other.IsDeleted() && other.CompanyID == v.CompanyID && other.SKU == v.SKU {
				return duplicate("sku")
			}
		}
		stamp(&v.Timestamps)
		st.variants[v.ID] = clone(v)
		return nil
	})
}

func (r *productRepo) UpdateVariantCost(_ context.Context, id string, cost decimal.Decimal) error {
	return r.acc.do(func(st *state) error {
		v, ok := st.variants[id]
		if !ok {
			return domain.NewNotFound("variante", id)
		}
		v.AvgCost = cost
		v.UpdatedAt = time.Now()
		return nil
	})
}

func (r *productRepo) ListVariants(_ context.Context, prodID string, opts repository.ListOptions) (out []*entity.ProductVariant, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.variants, opts, variantTS, variantID, func(v *entity.ProductVariant) bool { return v.ProductID == prodID })
		return nil
	})
	return out, err
}

func (r *productRepo) SoftDeleteVariant(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		v, ok := st.variants[id]
		if !ok || v.IsDeleted() {
			return domain.NewNotFound("variante", id)
		}
		softDelete(&v.Timestamps)
		return nil
	})
}

type filterRepo struct{ acc accessor }

func (r *filterRepo) Create(_ context.Context, f *entity.Filter) error {
	return r.acc.do(func(st *state) error {
		stamp(&f.Timestamps)
		st.filters[f.ID] = clone(f)
		return nil
	})
}

func (r *filterRepo) GetByID(_ context.Context, id string) (out *entity.Filter, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.filters, id, filterTS)
		return nil
	})
	return out, err
}

func (r *filterRepo) Update(_ context.Context, f *entity.Filter) error {
	return r.acc.do(func(st *state) error {
		if live(st.filters, f.ID, filterTS) == nil {
			return domain.NewNotFound("filtro", f.ID)
		}
		stamp(&f.Timestamps)
		st.filters[f.ID] = clone(f)
		return nil
	})
}

func (r *filterRepo) ListBySubcategory(_ context.Context, subID string, opts repository.ListOptions) (out []*entity.Filter, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.filters, opts, filterTS, filterID, func(f *entity.Filter) bool { return f.SubcategoryID == subID })
		return nil
	})
	return out, err
}

func (r *filterRepo) SoftDeleteCascade(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		f, ok := st.filters[id]
		if !ok || f.IsDeleted() {
			return domain.NewNotFound("filtro", id)
		}
		softDelete(&f.Timestamps)
		for _, o := range st.options {
			if o.FilterID != id || o.IsDeleted() {
				continue
			}
			softDelete(&o.Timestamps)
			for _, d := range st.details {
				if d.OptionID == o.ID && !d.IsDeleted() {
					softDelete(&d.Timestamps)
				}
			}
		}
		return nil
	})
}

func (r *filterRepo) CreateOption(_ context.Context, o *entity.FilterOption) error {
	return r.acc.do(func(st *state) error {
		for _, other := range st.options {
			if !other.IsDeleted() && other.FilterID == o.FilterID && other.Value == o.Value {
				return duplicate("valor de opción")
			}
		}
		stamp(&o.Timestamps)
		st.options[o.ID] = clone(o)
		return nil
	})
}

func (r *filterRepo) GetOption(_ context.Context, id string) (out *entity.FilterOption, err error) {
	err = r.acc.do(func(st *state) error {
		out = live(st.options, id, optionTS)
		return nil
	})
	return out, err
}

func (r *filterRepo) ListOptions(_ context.Context, fID string, opts repository.ListOptions) (out []*entity.FilterOption, err error) {
	err = r.acc.do(func(st *state) error {
		out = list(st.options, opts, optionTS, optionID, func(o *entity.FilterOption) bool { return o.FilterID == fID })
		return nil
	})
	return out, err
}

func (r *filterRepo) SoftDeleteOption(_ context.Context, id string) error {
	return r.acc.do(func(st *state) error {
		o, ok := st.options[id]
		if !ok || o.IsDeleted() {
			return domain.NewNotFound("opción de filtro", id)
		}
		softDelete(&o.Timestamps)
		for _, d := range st.details {
			if d.OptionID == id && !d.IsDeleted() {
				softDelete(&d.Timestamps)
			}
		}
		return nil
	})
}

func (r *filterRepo) GetProductDetail(_ context.Context, prodID, optID string) (out *entity.ProductFilterDetail, err error) {
	err = r.acc.do(func(st *state) error {
		for _, d := range st.details {
			if !d.IsDeleted() && d.ProductID == prodID && d.OptionID == optID {
				out = clone(d)
			}
		}
		return nil
	})
	return out, err
}

func (r *filterRepo) AttachOption(_ context.Context, d *entity.ProductFilterDetail) error {
	return r.acc.do(func(st *state) error {
		for _, other := range st.details {
			if !other.IsDeleted() && other.ProductID == d.ProductID && other.OptionID == d.OptionID {
				return duplicate("opción ya asignada")
			}
		}
		stamp(&d.Timestamps)
		st.details[d.ID] = clone(d)
		return nil
	})
}

func (r *filterRepo) DetachOption(_ context.Context, prodID, optID string) error {
	return r.acc.do(func(st *state) error {
		for _, d := range st.details {
			if !d.IsDeleted() && d.ProductID == prodID && d.OptionID == optID {
				softDelete(&d.Timestamps)
				return nil
			}
		}
		return domain.NewNotFound("opción de producto", optID)
	})
}

func (r *filterRepo) ListProductOptions(_ context.Context, prodID string) (out []*entity.FilterOption, err error) {
	err = r.acc.do(func(st *state) error {
		chosen := map[string]bool{}
		for _, d := range st.details {
			if !d.IsDeleted() && d.ProductID == prodID {
				chosen[d.OptionID] = true
			}
		}
		out = list(st.options, repository.ListOptions{Limit: 100}, optionTS, optionID, func(o *entity.FilterOption) bool { return chosen[o.ID] })
		return nil
	})
	return out, err
}
