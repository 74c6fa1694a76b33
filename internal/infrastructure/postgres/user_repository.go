package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, id_empresa, correo, clave_hash, nombre, rol, activo, created_at, updated_at, deleted_at`

// Create persiste un nuevo usuario. Email repetido => domain.ErrEmailAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO usuarios (id, id_empresa, correo, clave_hash, nombre, rol, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		u.ID, u.CompanyID, u.Email, u.PasswordHash, u.Name, u.Role, u.Active,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrEmailAlreadyExists
	}
	return mapError("insert user", err)
}

// GetByID obtiene un usuario activo por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1 AND deleted_at IS NULL`, id)
}

// FindByEmail busca por email en todas las empresas (sin distinguir mayúsculas).
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE lower(correo) = lower($1) AND deleted_at IS NULL`, email)
}

func (r *UserRepo) getOne(ctx context.Context, query, arg string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get user", err)
	}
	return u, nil
}

// Update actualiza nombre, rol y estado.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE usuarios SET nombre = $2, rol = $3, activo = $4, clave_hash = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		u.ID, u.Name, u.Role, u.Active, u.PasswordHash)
	if err != nil {
		return mapError("update user", err)
	}
	return notFoundIfNone(tag, "usuario", u.ID)
}

// ListByCompany usuarios de una empresa.
func (r *UserRepo) ListByCompany(ctx context.Context, companyID string, opts repository.ListOptions) ([]*entity.User, error) {
	sql, args, err := scopeList(
		psql.Select(userColumns).From("usuarios").Where(squirrel.Eq{"id_empresa": companyID}).OrderBy("nombre"),
		"usuarios", opts.Normalize(),
	).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("scan user", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// SoftDelete marca el usuario como eliminado.
func (r *UserRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE usuarios SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError("delete user", err)
	}
	return notFoundIfNone(tag, "usuario", id)
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Active,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
