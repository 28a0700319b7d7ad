package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/sanaa/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) CreatePayment(_ context.Context, pmt payment.Payment) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	pmt.ID = uuid.New().String()
	repo.db.table[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *paymentRepository) QueryPaymentsByStudent(_ context.Context, studentID string) ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var pmts []payment.Payment
	for _, p := range repo.db.table {
		if p.StudentID == studentID {
			pmts = append(pmts, *p)
		}
	}
	sortPayments(pmts)
	return pmts, nil
}

func (repo *paymentRepository) QueryAllPayments(_ context.Context, limit int) ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	pmts := make([]payment.Payment, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		pmts = append(pmts, *p)
	}
	sortPayments(pmts)
	if limit > 0 && len(pmts) > limit {
		pmts = pmts[:limit]
	}
	return pmts, nil
}

// sortPayments orders by payment date, most recent first.
func sortPayments(pmts []payment.Payment) {
	sort.SliceStable(pmts, func(i, j int) bool { return pmts[j].Date.Before(pmts[i].Date) })
}
