package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	return students
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std.ID = uuid.New().String()
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(
	_ context.Context,
	filter student.QueryFilter,
	ordering core.DBOrdering,
	limit int,
) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var students []student.Student
	for _, s := range repo.query() {
		if s.IsDeleted() {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.PreferredTiming != "" && s.PreferredTiming != filter.PreferredTiming {
			continue
		}
		if !filter.CreatedFrom.IsZero() && s.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && s.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		students = append(students, s)
	}

	sortStudents(students, ordering)
	if limit > 0 && len(students) > limit {
		students = students[:limit]
	}
	return students, nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var students []student.Student
	for _, s := range repo.query() {
		if !s.IsDeleted() {
			students = append(students, s)
		}
	}
	sortStudents(students, core.DBOrdering{Field: student.SortByCreatedAt})
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func sortStudents(students []student.Student, ordering core.DBOrdering) {
	var less func(a, b student.Student) bool
	switch ordering.Field {
	case student.SortByFirstName:
		less = func(a, b student.Student) bool { return a.FirstName < b.FirstName }
	case student.SortByAmountPaid:
		less = func(a, b student.Student) bool { return a.AmountPaid < b.AmountPaid }
	default:
		less = func(a, b student.Student) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(students, func(i, j int) bool {
		if ordering.Ascending {
			return less(students[i], students[j])
		}
		return less(students[j], students[i])
	})
}
