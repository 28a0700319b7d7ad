package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/activity"
	"github.com/trezcool/sanaa/core/notification"
	"github.com/trezcool/sanaa/core/student"
)

var ErrNotFound = errors.New("payment not found")

type (
	// Repository stores ledger entries. QueryPaymentsByStudent returns a
	// student's entries ordered by payment date descending; QueryAllPayments
	// returns the whole ledger in the same order, capped at limit when > 0.
	Repository interface {
		CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
		QueryPaymentsByStudent(ctx context.Context, studentID string) ([]Payment, error)
		QueryAllPayments(ctx context.Context, limit int) ([]Payment, error)
	}

	Service struct {
		repo        Repository
		studentSvc  *student.Service
		notifSvc    *notification.Service
		activitySvc *activity.Service
		logger      core.Logger
	}
)

func NewService(
	repo Repository,
	studentSvc *student.Service,
	notifSvc *notification.Service,
	activitySvc *activity.Service,
	logger core.Logger,
) *Service {
	return &Service{
		repo:        repo,
		studentSvc:  studentSvc,
		notifSvc:    notifSvc,
		activitySvc: activitySvc,
		logger:      logger,
	}
}

// Add records a payment and refreshes the student's running total by
// re-summing their ledger. The read-sum-write is not transactional across
// backends; concurrent writes for the same student may briefly leave the
// total behind until the next payment corrects it.
func (svc *Service) Add(ctx context.Context, np NewPayment, recordedBy string) (Payment, error) {
	std, err := svc.studentSvc.GetByID(ctx, np.StudentID)
	if err != nil {
		return Payment{}, err
	}
	if std.IsDeleted() {
		return Payment{}, core.NewValidationError(nil, core.FieldError{
			Field: "student_id", Error: "student is deleted",
		})
	}

	now := time.Now().UTC()
	pmt := Payment{
		StudentID:  std.ID,
		Amount:     np.Amount,
		Date:       now,
		Method:     np.Method,
		Notes:      np.Notes,
		CreatedAt:  now,
		RecordedBy: recordedBy,
	}
	pmt, err = svc.repo.CreatePayment(ctx, pmt)
	if err != nil {
		return Payment{}, pkgerrors.Wrap(err, "creating payment")
	}

	ledger, err := svc.repo.QueryPaymentsByStudent(ctx, std.ID)
	if err != nil {
		return Payment{}, pkgerrors.Wrap(err, "querying student ledger")
	}
	var total int
	for _, p := range ledger {
		total += p.Amount
	}
	std, err = svc.studentSvc.SetAmountPaid(ctx, std.ID, total)
	if err != nil {
		return Payment{}, pkgerrors.Wrap(err, "updating amount paid")
	}

	svc.notifyReceived(ctx, std, pmt)
	svc.logAudit(ctx, pmt, recordedBy)
	return pmt, nil
}

// QueryByStudent returns a student's ledger entries, most recent date first.
func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Payment, error) {
	return svc.repo.QueryPaymentsByStudent(ctx, studentID)
}

// QueryAll returns the whole ledger, most recent date first.
func (svc *Service) QueryAll(ctx context.Context, limit int) ([]Payment, error) {
	return svc.repo.QueryAllPayments(ctx, limit)
}

// notifyReceived is best-effort: a notification outage must not fail a payment.
func (svc *Service) notifyReceived(ctx context.Context, std student.Student, pmt Payment) {
	if svc.notifSvc == nil {
		return
	}
	_, err := svc.notifSvc.Notify(
		ctx,
		notification.TypePaymentReceived,
		"Payment Received",
		fmt.Sprintf("Received %d from %s %s via %s", pmt.Amount, std.FirstName, std.LastName, pmt.Method),
		std.ID,
	)
	if err != nil {
		svc.logger.Warn("creating payment notification: "+err.Error(), err)
	}
}

func (svc *Service) logAudit(ctx context.Context, pmt Payment, performedBy string) {
	if svc.activitySvc == nil {
		return
	}
	details := map[string]interface{}{
		"student_id": pmt.StudentID,
		"amount":     pmt.Amount,
		"method":     pmt.Method,
	}
	if _, err := svc.activitySvc.Log(ctx, activity.ActionPaymentAdded, activity.EntityPayment, pmt.ID, performedBy, details); err != nil {
		svc.logger.Warn("logging payment activity: "+err.Error(), err)
	}
}
