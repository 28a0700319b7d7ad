package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core/payment"
)

type paymentRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	Amount     int       `db:"amount"`
	Date       time.Time `db:"date"`
	Method     string    `db:"method"`
	Notes      string    `db:"notes"`
	CreatedAt  time.Time `db:"created_at"`
	RecordedBy string    `db:"recorded_by"`
}

func (row paymentRow) toPayment() payment.Payment {
	return payment.Payment(row)
}

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *sqlx.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, pmt payment.Payment) (payment.Payment, error) {
	pmt.ID = uuid.New().String()
	const q = `
		INSERT INTO payment (id, student_id, amount, date, method, notes, created_at, recorded_by)
		VALUES (:id, :student_id, :amount, :date, :method, :notes, :created_at, :recorded_by)`
	if _, err := repo.db.NamedExecContext(ctx, q, paymentRow(pmt)); err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return pmt, nil
}

func (repo *paymentRepository) QueryPaymentsByStudent(ctx context.Context, studentID string) ([]payment.Payment, error) {
	var rows []paymentRow
	const q = `SELECT * FROM payment WHERE student_id = $1 ORDER BY date DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting payments")
	}
	return toPayments(rows), nil
}

func (repo *paymentRepository) QueryAllPayments(ctx context.Context, limit int) ([]payment.Payment, error) {
	q := `SELECT * FROM payment ORDER BY date DESC`
	var args []interface{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting payments")
	}
	return toPayments(rows), nil
}

func toPayments(rows []paymentRow) []payment.Payment {
	pmts := make([]payment.Payment, len(rows))
	for i, row := range rows {
		pmts[i] = row.toPayment()
	}
	return pmts
}
