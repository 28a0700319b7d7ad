package student

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// csvHeader is the spreadsheet-facing column order.
var csvHeader = []string{
	"First Name", "Last Name", "Age", "Grade", "Gender", "Date of Birth",
	"Parent Name", "Parent Email", "Parent Phone", "Address",
	"Preferred Timing", "Referral Source",
	"Total Fee", "Amount Paid", "Balance", "Fee Type", "Status",
	"Created At", "Medical Notes",
}

// WriteCSV streams the students as CSV. Every field is double-quoted
// unconditionally (encoding/csv only quotes when required, which trips up
// some spreadsheet imports on phone numbers and dates).
func WriteCSV(w io.Writer, students []Student) error {
	if err := writeCSVRow(w, csvHeader); err != nil {
		return err
	}
	for _, s := range students {
		row := []string{
			s.FirstName,
			s.LastName,
			strconv.Itoa(s.Age),
			s.Grade,
			orNA(s.Gender),
			s.DateOfBirth,
			s.ParentName,
			s.ParentEmail,
			s.ParentPhone,
			s.Address,
			s.PreferredTiming,
			s.ReferralSource,
			strconv.Itoa(s.TotalFee),
			strconv.Itoa(s.AmountPaid),
			strconv.Itoa(s.Balance()),
			s.FeeType,
			s.Status,
			s.CreatedAt.Format("1/2/2006"),
			orNA(s.MedicalNotes),
		}
		if err := writeCSVRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

// CSVFilename names an export after its date, eg. "students-2026-08-29.csv".
func CSVFilename(t time.Time) string {
	return fmt.Sprintf("students-%s.csv", t.Format("2006-01-02"))
}

func writeCSVRow(w io.Writer, fields []string) error {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
