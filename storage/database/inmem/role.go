package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/sanaa/core/role"
)

type roleRepository struct {
	db *roleTable
}

var _ role.Repository = (*roleRepository)(nil)

func NewRoleRepository(db *DB) role.Repository {
	return &roleRepository{db: db.role}
}

func (repo *roleRepository) CreateRole(_ context.Context, rl role.Role) (role.Role, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rl.ID = uuid.New().String()
	repo.db.table[rl.ID] = &rl
	return rl, nil
}

func (repo *roleRepository) GetRoleByEmail(_ context.Context, email string) (role.Role, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, rl := range repo.db.table {
		if rl.Email == email {
			return *rl, nil
		}
	}
	return role.Role{}, role.ErrNotFound
}

func (repo *roleRepository) QueryAllRoles(_ context.Context) ([]role.Role, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	roles := make([]role.Role, 0, len(repo.db.table))
	for _, rl := range repo.db.table {
		roles = append(roles, *rl)
	}
	sort.SliceStable(roles, func(i, j int) bool { return roles[j].CreatedAt.Before(roles[i].CreatedAt) })
	return roles, nil
}

func (repo *roleRepository) CountRoles(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.table), nil
}

func (repo *roleRepository) DeleteRoleByEmail(_ context.Context, email string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, rl := range repo.db.table {
		if rl.Email == email {
			delete(repo.db.table, id)
			return nil
		}
	}
	return role.ErrNotFound
}
