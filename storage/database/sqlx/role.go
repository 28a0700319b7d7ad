package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core/role"
)

type roleRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	AddedBy   string    `db:"added_by"`
	CreatedAt time.Time `db:"created_at"`
}

type roleRepository struct {
	db *sqlx.DB
}

var _ role.Repository = (*roleRepository)(nil)

func NewRoleRepository(db *sqlx.DB) role.Repository {
	return &roleRepository{db: db}
}

func (repo *roleRepository) CreateRole(ctx context.Context, rl role.Role) (role.Role, error) {
	rl.ID = uuid.New().String()
	const q = `
		INSERT INTO role (id, email, role, added_by, created_at)
		VALUES (:id, :email, :role, :added_by, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, roleRow(rl)); err != nil {
		return role.Role{}, errors.Wrap(err, "inserting role")
	}
	return rl, nil
}

func (repo *roleRepository) GetRoleByEmail(ctx context.Context, email string) (role.Role, error) {
	var row roleRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM role WHERE email = $1`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return role.Role{}, role.ErrNotFound
		}
		return role.Role{}, errors.Wrap(err, "selecting role")
	}
	return role.Role(row), nil
}

func (repo *roleRepository) QueryAllRoles(ctx context.Context) ([]role.Role, error) {
	var rows []roleRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM role ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "selecting roles")
	}
	roles := make([]role.Role, len(rows))
	for i, row := range rows {
		roles[i] = role.Role(row)
	}
	return roles, nil
}

func (repo *roleRepository) CountRoles(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM role`); err != nil {
		return 0, errors.Wrap(err, "counting roles")
	}
	return count, nil
}

func (repo *roleRepository) DeleteRoleByEmail(ctx context.Context, email string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM role WHERE email = $1`, email)
	if err != nil {
		return errors.Wrap(err, "deleting role")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return role.ErrNotFound
	}
	return nil
}
