package student

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/activity"
	"github.com/trezcool/sanaa/core/notification"
	"github.com/trezcool/sanaa/storage/blob"
)

const defaultPageSize = 100

var ErrNotFound = errors.New("student not found")

type (
	// Repository stores students. QueryStudents applies the filter's server-side
	// predicates (status, preferred timing, creation range), always excludes
	// soft-deleted rows, then orders and limits; QueryFilter.Search is applied
	// afterwards by the Service. QueryAllStudents returns every non-deleted row.
	// UpdateStudent saves the full row identified by Student.ID.
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		QueryStudents(ctx context.Context, filter QueryFilter, ordering core.DBOrdering, limit int) ([]Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error
	}

	// Artwork is an uploaded sample artwork file.
	Artwork struct {
		Filename    string
		ContentType string
		Content     io.Reader
	}

	Service struct {
		repo        Repository
		blobStore   blob.Storage
		notifSvc    *notification.Service
		activitySvc *activity.Service
		mailSvc     core.EmailService
		logger      core.Logger
		conf        *core.Config
	}
)

func NewService(
	repo Repository,
	blobStore blob.Storage,
	notifSvc *notification.Service,
	activitySvc *activity.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:        repo,
		blobStore:   blobStore,
		notifSvc:    notifSvc,
		activitySvc: activitySvc,
		mailSvc:     mailSvc,
		conf:        conf,
		logger:      logger,
	}
}

// Register creates a student from the public registration form.
// The artwork (if any) is uploaded first; an upload failure aborts the whole
// registration with no student row written. Notification, audit trail and the
// confirmation email are best-effort side effects of a successful insert.
func (svc *Service) Register(ctx context.Context, reg Registration, artwork *Artwork) (Student, error) {
	var artworkURL string
	if artwork != nil {
		url, err := svc.uploadArtwork(ctx, artwork)
		if err != nil {
			return Student{}, pkgerrors.Wrap(err, "uploading artwork")
		}
		artworkURL = url
	}

	totalFee := reg.TotalFee
	if totalFee <= 0 {
		totalFee = svc.conf.DefaultFee
	}
	feeType := reg.FeeType
	if feeType == "" {
		feeType = FeeTypeSingle
	}

	now := time.Now().UTC()
	std := Student{
		FirstName:       reg.FirstName,
		LastName:        reg.LastName,
		DateOfBirth:     reg.DateOfBirth,
		Age:             reg.Age,
		Grade:           reg.Grade,
		Gender:          reg.Gender,
		ArtworkURL:      artworkURL,
		MedicalNotes:    reg.MedicalNotes,
		ParentName:      reg.ParentName,
		ParentEmail:     reg.ParentEmail,
		ParentPhone:     reg.ParentPhone,
		Address:         reg.Address,
		PreferredTiming: reg.PreferredTiming,
		ReferralSource:  reg.ReferralSource,
		TotalFee:        totalFee,
		FeeType:         feeType,
		AmountPaid:      0,
		Status:          StatusRegistered,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       "system",
	}
	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, pkgerrors.Wrap(err, "creating student")
	}

	svc.notifyNewRegistration(ctx, std)
	svc.logAudit(ctx, activity.ActionCreated, std.ID, std.CreatedBy, nil)
	svc.sendConfirmationEmail(std)
	return std, nil
}

// Update merges the set fields into the student and refreshes UpdatedAt.
func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent, performedBy string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	if us.FirstName != "" {
		std.FirstName = us.FirstName
	}
	if us.LastName != "" {
		std.LastName = us.LastName
	}
	if us.DateOfBirth != "" {
		std.DateOfBirth = us.DateOfBirth
	}
	if us.Age != nil {
		std.Age = *us.Age
	}
	if us.Grade != "" {
		std.Grade = us.Grade
	}
	if us.Gender != "" {
		std.Gender = us.Gender
	}
	if us.ArtworkURL != "" {
		std.ArtworkURL = us.ArtworkURL
	}
	if us.MedicalNotes != "" {
		std.MedicalNotes = us.MedicalNotes
	}
	if us.ParentName != "" {
		std.ParentName = us.ParentName
	}
	if us.ParentEmail != "" {
		std.ParentEmail = us.ParentEmail
	}
	if us.ParentPhone != "" {
		std.ParentPhone = us.ParentPhone
	}
	if us.Address != "" {
		std.Address = us.Address
	}
	if us.PreferredTiming != "" {
		std.PreferredTiming = us.PreferredTiming
	}
	if us.ReferralSource != "" {
		std.ReferralSource = us.ReferralSource
	}
	if us.TotalFee != nil {
		std.TotalFee = *us.TotalFee
	}
	if us.FeeType != "" {
		std.FeeType = us.FeeType
	}
	if us.Status != "" {
		std.Status = us.Status
	}
	std.UpdatedAt = time.Now().UTC()

	std, err = svc.repo.UpdateStudent(ctx, std)
	if err != nil {
		return Student{}, pkgerrors.Wrap(err, "updating student")
	}
	svc.logAudit(ctx, activity.ActionUpdated, std.ID, performedBy, nil)
	return std, nil
}

// SetAmountPaid persists a recomputed running total. Called by the payment
// ledger after each insert; never exposed to user input.
func (svc *Service) SetAmountPaid(ctx context.Context, id string, amount int) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	std.AmountPaid = amount
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

// SoftDelete marks the student inactive and stamps DeletedAt; the row remains
// readable through GetByID but disappears from listings and stats.
func (svc *Service) SoftDelete(ctx context.Context, id, performedBy string) error {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	std.DeletedAt = &now
	std.Status = StatusInactive
	std.UpdatedAt = now

	if _, err = svc.repo.UpdateStudent(ctx, std); err != nil {
		return pkgerrors.Wrap(err, "soft-deleting student")
	}
	svc.logAudit(ctx, activity.ActionDeleted, id, performedBy, map[string]interface{}{"soft": true})
	return nil
}

// HardDelete physically removes the record. Payments referencing it are kept
// to preserve the financial audit trail.
func (svc *Service) HardDelete(ctx context.Context, id, performedBy string) error {
	if err := svc.repo.DeleteStudentsByID(ctx, id); err != nil {
		return pkgerrors.Wrap(err, "deleting student")
	}
	svc.logAudit(ctx, activity.ActionDeleted, id, performedBy, map[string]interface{}{"soft": false})
	return nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// Filter lists students: the repository applies the server-side predicates,
// ordering and page size; the free-text search then narrows the fetched page
// in memory. A search can return fewer than PageSize rows even when more
// matches exist beyond the page.
func (svc *Service) Filter(ctx context.Context, qf QueryFilter) ([]Student, error) {
	qf.Clean()
	limit := qf.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}

	students, err := svc.repo.QueryStudents(ctx, qf, qf.Ordering(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying students")
	}
	if qf.Search == "" {
		return students, nil
	}

	term := strings.ToLower(qf.Search)
	matches := make([]Student, 0, len(students))
	for _, s := range students {
		if strings.Contains(strings.ToLower(s.FirstName), term) ||
			strings.Contains(strings.ToLower(s.LastName), term) ||
			strings.Contains(strings.ToLower(s.ParentEmail), term) ||
			strings.Contains(s.ParentPhone, term) {
			matches = append(matches, s)
		}
	}
	return matches, nil
}

// GetStats scans all non-deleted students and computes the dashboard
// aggregates. O(n), uncached; fine at this scale.
func (svc *Service) GetStats(ctx context.Context) (Stats, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(err, "querying students")
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := Stats{Total: len(students)}
	for _, s := range students {
		stats.TotalPaid += s.AmountPaid
		stats.TotalPending += s.TotalFee - s.AmountPaid
		if !s.CreatedAt.Before(today) {
			stats.TodayCount++
		}
		if !s.CreatedAt.Before(weekAgo) {
			stats.WeekCount++
		}
		if !s.CreatedAt.Before(monthStart) {
			stats.MonthCount++
		}
	}
	return stats, nil
}

func (svc *Service) uploadArtwork(ctx context.Context, artwork *Artwork) (string, error) {
	key := fmt.Sprintf("artworks/%d%s", time.Now().UnixMilli(), path.Ext(artwork.Filename))
	return svc.blobStore.Upload(ctx, key, artwork.ContentType, artwork.Content)
}

// notifyNewRegistration is best-effort: a notification outage must not fail a registration.
func (svc *Service) notifyNewRegistration(ctx context.Context, std Student) {
	if svc.notifSvc == nil {
		return
	}
	_, err := svc.notifSvc.Notify(
		ctx,
		notification.TypeNewRegistration,
		"New Registration",
		fmt.Sprintf("%s %s registered for %s", std.FirstName, std.LastName, std.PreferredTiming),
		std.ID,
	)
	if err != nil {
		svc.logger.Warn("creating registration notification: "+err.Error(), err)
	}
}

// logAudit records the audit trail best-effort; failures are logged, never propagated.
func (svc *Service) logAudit(ctx context.Context, action, entityID, performedBy string, details map[string]interface{}) {
	if svc.activitySvc == nil {
		return
	}
	if _, err := svc.activitySvc.Log(ctx, action, activity.EntityStudent, entityID, performedBy, details); err != nil {
		svc.logger.Warn("logging student activity: "+err.Error(), err)
	}
}

func (svc *Service) sendConfirmationEmail(std Student) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: std.ParentName, Address: std.ParentEmail}},
		Subject: "Registration received",
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nWe have received %s's registration for the %s batch. "+
				"We will reach out shortly to confirm the schedule and fee details.\n\nThank you!",
			std.ParentName, std.FirstName, std.PreferredTiming,
		),
	})
}
