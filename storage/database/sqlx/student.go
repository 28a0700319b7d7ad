package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/student"
)

type studentRow struct {
	ID              string     `db:"id"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	DateOfBirth     string     `db:"date_of_birth"`
	Age             int        `db:"age"`
	Grade           string     `db:"grade"`
	Gender          string     `db:"gender"`
	ArtworkURL      string     `db:"artwork_url"`
	MedicalNotes    string     `db:"medical_notes"`
	ParentName      string     `db:"parent_name"`
	ParentEmail     string     `db:"parent_email"`
	ParentPhone     string     `db:"parent_phone"`
	Address         string     `db:"address"`
	PreferredTiming string     `db:"preferred_timing"`
	ReferralSource  string     `db:"referral_source"`
	TotalFee        int        `db:"total_fee"`
	FeeType         string     `db:"fee_type"`
	AmountPaid      int        `db:"amount_paid"`
	Status          string     `db:"status"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	CreatedBy       string     `db:"created_by"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

func newStudentRow(std student.Student) studentRow {
	return studentRow{
		ID:              std.ID,
		FirstName:       std.FirstName,
		LastName:        std.LastName,
		DateOfBirth:     std.DateOfBirth,
		Age:             std.Age,
		Grade:           std.Grade,
		Gender:          std.Gender,
		ArtworkURL:      std.ArtworkURL,
		MedicalNotes:    std.MedicalNotes,
		ParentName:      std.ParentName,
		ParentEmail:     std.ParentEmail,
		ParentPhone:     std.ParentPhone,
		Address:         std.Address,
		PreferredTiming: std.PreferredTiming,
		ReferralSource:  std.ReferralSource,
		TotalFee:        std.TotalFee,
		FeeType:         std.FeeType,
		AmountPaid:      std.AmountPaid,
		Status:          std.Status,
		CreatedAt:       std.CreatedAt,
		UpdatedAt:       std.UpdatedAt,
		CreatedBy:       std.CreatedBy,
		DeletedAt:       std.DeletedAt,
	}
}

func (row studentRow) toStudent() student.Student {
	return student.Student{
		ID:              row.ID,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		DateOfBirth:     row.DateOfBirth,
		Age:             row.Age,
		Grade:           row.Grade,
		Gender:          row.Gender,
		ArtworkURL:      row.ArtworkURL,
		MedicalNotes:    row.MedicalNotes,
		ParentName:      row.ParentName,
		ParentEmail:     row.ParentEmail,
		ParentPhone:     row.ParentPhone,
		Address:         row.Address,
		PreferredTiming: row.PreferredTiming,
		ReferralSource:  row.ReferralSource,
		TotalFee:        row.TotalFee,
		FeeType:         row.FeeType,
		AmountPaid:      row.AmountPaid,
		Status:          row.Status,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		CreatedBy:       row.CreatedBy,
		DeletedAt:       row.DeletedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	const q = `
		INSERT INTO student (
			id, first_name, last_name, date_of_birth, age, grade, gender, artwork_url, medical_notes,
			parent_name, parent_email, parent_phone, address, preferred_timing, referral_source,
			total_fee, fee_type, amount_paid, status, created_at, updated_at, created_by, deleted_at
		) VALUES (
			:id, :first_name, :last_name, :date_of_birth, :age, :grade, :gender, :artwork_url, :medical_notes,
			:parent_name, :parent_email, :parent_phone, :address, :preferred_timing, :referral_source,
			:total_fee, :fee_type, :amount_paid, :status, :created_at, :updated_at, :created_by, :deleted_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, q, newStudentRow(std)); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "selecting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter student.QueryFilter,
	ordering core.DBOrdering,
	limit int,
) ([]student.Student, error) {
	conds := []string{"deleted_at IS NULL"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.PreferredTiming != "" {
		conds = append(conds, "preferred_timing = "+arg(filter.PreferredTiming))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.CreatedTo))
	}

	// ordering.Field comes from QueryFilter.Ordering()'s whitelist, never raw input
	q := fmt.Sprintf(
		`SELECT * FROM student WHERE %s ORDER BY %s LIMIT %s`,
		strings.Join(conds, " AND "), ordering, arg(limit),
	)

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, len(rows))
	for i, row := range rows {
		students[i] = row.toStudent()
	}
	return students, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM student WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, len(rows))
	for i, row := range rows {
		students[i] = row.toStudent()
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	const q = `
		UPDATE student SET
			first_name = :first_name, last_name = :last_name, date_of_birth = :date_of_birth,
			age = :age, grade = :grade, gender = :gender, artwork_url = :artwork_url,
			medical_notes = :medical_notes, parent_name = :parent_name, parent_email = :parent_email,
			parent_phone = :parent_phone, address = :address, preferred_timing = :preferred_timing,
			referral_source = :referral_source, total_fee = :total_fee, fee_type = :fee_type,
			amount_paid = :amount_paid, status = :status, updated_at = :updated_at,
			deleted_at = :deleted_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newStudentRow(std))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}
