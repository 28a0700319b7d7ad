package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/notification"
	"github.com/trezcool/sanaa/core/payment"
	"github.com/trezcool/sanaa/core/student"
	inmemblob "github.com/trezcool/sanaa/storage/blob/inmem"
	inmemdb "github.com/trezcool/sanaa/storage/database/inmem"
	testutil "github.com/trezcool/sanaa/tests"
)

func newTestServices(t *testing.T) (*payment.Service, *student.Service, student.Repository, notification.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	conf := &core.Config{DefaultFee: 5000}
	stdRepo := inmemdb.NewStudentRepository(db)
	notifRepo := inmemdb.NewNotificationRepository(db)
	notifSvc := notification.NewService(notifRepo)
	stdSvc := student.NewService(stdRepo, inmemblob.NewService(), notifSvc, nil, nil, testutil.NopLogger{}, conf)
	pmtSvc := payment.NewService(inmemdb.NewPaymentRepository(db), stdSvc, notifSvc, nil, testutil.NopLogger{})
	return pmtSvc, stdSvc, stdRepo, notifRepo
}

func TestService_Add(t *testing.T) {
	pmtSvc, stdSvc, stdRepo, notifRepo := newTestServices(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, stdRepo, "Asha", "Verma", "Saturday Morning")

	pmt, err := pmtSvc.Add(ctx, payment.NewPayment{
		StudentID: std.ID,
		Amount:    2000,
		Method:    payment.MethodUPI,
		Notes:     "first installment",
	}, "admin@test.test")
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if pmt.ID == "" {
		t.Error("Add() did not assign an ID")
	}
	if pmt.Date.IsZero() {
		t.Error("Add() did not stamp the payment date")
	}
	if !pmt.Date.Equal(pmt.CreatedAt) {
		t.Errorf("Date = %v, want the insert time %v", pmt.Date, pmt.CreatedAt)
	}
	if pmt.RecordedBy != "admin@test.test" {
		t.Errorf("RecordedBy = %q", pmt.RecordedBy)
	}

	// the student's running total is refreshed from the ledger
	std, err = stdSvc.GetByID(ctx, std.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if std.AmountPaid != 2000 {
		t.Errorf("AmountPaid = %d, want 2000", std.AmountPaid)
	}
	if std.Balance() != 3000 {
		t.Errorf("Balance() = %d, want 3000", std.Balance())
	}

	// a second payment sums, not replaces
	if _, err = pmtSvc.Add(ctx, payment.NewPayment{StudentID: std.ID, Amount: 1500, Method: payment.MethodCash}, "admin@test.test"); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	std, _ = stdSvc.GetByID(ctx, std.ID)
	if std.AmountPaid != 3500 {
		t.Errorf("AmountPaid = %d, want 3500", std.AmountPaid)
	}

	// payment-received notifications were recorded
	notifs, _ := notifRepo.QueryUnreadNotifications(ctx)
	var count int
	for _, n := range notifs {
		if n.Type == notification.TypePaymentReceived && n.StudentID == std.ID {
			count++
		}
	}
	if count != 2 {
		t.Errorf("got %d payment notifications, want 2", count)
	}
}

func TestService_Add_unknownStudent(t *testing.T) {
	pmtSvc, _, _, _ := newTestServices(t)

	_, err := pmtSvc.Add(context.Background(), payment.NewPayment{
		StudentID: "nope",
		Amount:    2000,
		Method:    payment.MethodCash,
	}, "admin@test.test")
	if !errors.Is(err, student.ErrNotFound) {
		t.Errorf("Add() error = %v, want student.ErrNotFound", err)
	}
}

func TestService_Add_deletedStudent(t *testing.T) {
	pmtSvc, stdSvc, stdRepo, _ := newTestServices(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, stdRepo, "Asha", "Verma", "Saturday Morning")
	if err := stdSvc.SoftDelete(ctx, std.ID, "admin@test.test"); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}

	_, err := pmtSvc.Add(ctx, payment.NewPayment{StudentID: std.ID, Amount: 2000, Method: payment.MethodCash}, "admin@test.test")
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("Add() error = %v, want validation error", err)
	}
}

func TestService_QueryByStudent(t *testing.T) {
	pmtSvc, _, stdRepo, _ := newTestServices(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, stdRepo, "Asha", "Verma", "Saturday Morning")
	ben := testutil.CreateStudent(t, stdRepo, "Ben", "Thomas", "Sunday Evening")

	for _, p := range []payment.NewPayment{
		{StudentID: asha.ID, Amount: 1000, Method: payment.MethodCash},
		{StudentID: ben.ID, Amount: 500, Method: payment.MethodCard},
		{StudentID: asha.ID, Amount: 2000, Method: payment.MethodUPI},
	} {
		if _, err := pmtSvc.Add(ctx, p, "admin@test.test"); err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
	}

	pmts, err := pmtSvc.QueryByStudent(ctx, asha.ID)
	if err != nil {
		t.Fatalf("QueryByStudent() failed: %v", err)
	}
	if len(pmts) != 2 {
		t.Fatalf("got %d payments, want 2", len(pmts))
	}

	all, err := pmtSvc.QueryAll(ctx, 0)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d payments, want 3", len(all))
	}
}

func TestPayments_orderedByDate(t *testing.T) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	repo := inmemdb.NewPaymentRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for _, date := range []time.Time{base, base.AddDate(0, 0, 2), base.AddDate(0, 0, 1)} {
		_, err = repo.CreatePayment(ctx, payment.Payment{
			StudentID: "std-1",
			Amount:    100,
			Date:      date,
			Method:    payment.MethodCash,
			CreatedAt: date,
		})
		if err != nil {
			t.Fatalf("CreatePayment() failed: %v", err)
		}
	}

	pmts, err := repo.QueryPaymentsByStudent(ctx, "std-1")
	if err != nil {
		t.Fatalf("QueryPaymentsByStudent() failed: %v", err)
	}
	assertDateOrder(t, pmts, base)

	all, err := repo.QueryAllPayments(ctx, 0)
	if err != nil {
		t.Fatalf("QueryAllPayments() failed: %v", err)
	}
	assertDateOrder(t, all, base)
}

func assertDateOrder(t *testing.T, pmts []payment.Payment, base time.Time) {
	t.Helper()
	if len(pmts) != 3 {
		t.Fatalf("got %d payments, want 3", len(pmts))
	}
	want := []time.Time{base.AddDate(0, 0, 2), base.AddDate(0, 0, 1), base}
	for i, pmt := range pmts {
		if !pmt.Date.Equal(want[i]) {
			t.Errorf("pmts[%d].Date = %v, want %v", i, pmt.Date, want[i])
		}
	}
}
