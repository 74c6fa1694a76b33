package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo persiste categorias y subcategorias.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const (
	categoryColumns    = `id, id_empresa, nombre, descripcion, created_at, updated_at, deleted_at`
	subcategoryColumns = `id, id_empresa, id_categoria, nombre, descripcion, created_at, updated_at, deleted_at`
)

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO categorias (id, id_empresa, nombre, descripcion) VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		c.ID, c.CompanyID, c.Name, c.Description,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapError("insert category", err)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	if !validID(id) {
		return nil, nil
	}
	var c entity.Category
	err := r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categorias WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get category", err)
	}
	return &c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE categorias SET nombre = $2, descripcion = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, c.ID, c.Name, c.Description)
	if err != nil {
		return mapError("update category", err)
	}
	return notFoundIfNone(tag, "categoría", c.ID)
}

func (r *CategoryRepo) ListByCompany(ctx context.Context, companyID string, opts repository.ListOptions) ([]*entity.Category, error) {
	sql, args, err := scopeList(
		psql.Select(categoryColumns).From("categorias").Where(squirrel.Eq{"id_empresa": companyID}).OrderBy("nombre"),
		"categorias", opts.Normalize(),
	).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, mapError("scan category", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CategoryRepo) SoftDelete(ctx context.Context, id string) error {
	return softDeleteRow(ctx, r.q, "categorias", "categoría", id)
}

func (r *CategoryRepo) CreateSubcategory(ctx context.Context, s *entity.Subcategory) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO subcategorias (id, id_empresa, id_categoria, nombre, descripcion) VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		s.ID, s.CompanyID, s.CategoryID, s.Name, s.Description,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapError("insert subcategory", err)
}

func (r *CategoryRepo) GetSubcategory(ctx context.Context, id string) (*entity.Subcategory, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanSubcategory(r.q.QueryRow(ctx, `SELECT `+subcategoryColumns+` FROM subcategorias WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get subcategory", err)
	}
	return s, nil
}

func (r *CategoryRepo) UpdateSubcategory(ctx context.Context, s *entity.Subcategory) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE subcategorias SET nombre = $2, descripcion = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, s.ID, s.Name, s.Description)
	if err != nil {
		return mapError("update subcategory", err)
	}
	return notFoundIfNone(tag, "subcategoría", s.ID)
}

func (r *CategoryRepo) ListSubcategories(ctx context.Context, categoryID string, opts repository.ListOptions) ([]*entity.Subcategory, error) {
	sql, args, err := scopeList(
		psql.Select(subcategoryColumns).From("subcategorias").Where(squirrel.Eq{"id_categoria": categoryID}).OrderBy("nombre"),
		"subcategorias", opts.Normalize(),
	).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list subcategories", err)
	}
	defer rows.Close()
	var list []*entity.Subcategory
	for rows.Next() {
		s, err := scanSubcategory(rows)
		if err != nil {
			return nil, mapError("scan subcategory", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *CategoryRepo) SoftDeleteSubcategory(ctx context.Context, id string) error {
	return softDeleteRow(ctx, r.q, "subcategorias", "subcategoría", id)
}

func scanSubcategory(row rowScanner) (*entity.Subcategory, error) {
	var s entity.Subcategory
	err := row.Scan(&s.ID, &s.CompanyID, &s.CategoryID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
