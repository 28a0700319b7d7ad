package student_test

import (
	"strings"
	"testing"
	"time"

	"github.com/trezcool/sanaa/core/student"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	students := []student.Student{
		{
			FirstName:       "Asha",
			LastName:        `Verma "AV"`,
			DateOfBirth:     "2017-06-15",
			Age:             8,
			Grade:           "3rd",
			Gender:          student.GenderFemale,
			MedicalNotes:    "peanut allergy",
			ParentName:      "Ravi Verma",
			ParentEmail:     "ravi@test.test",
			ParentPhone:     "+91 98765 43210",
			Address:         "42 Test Lane",
			PreferredTiming: "Saturday Morning",
			ReferralSource:  "Instagram",
			TotalFee:        5000,
			FeeType:         student.FeeTypeSingle,
			AmountPaid:      2000,
			Status:          student.StatusActive,
			CreatedAt:       created,
		},
	}

	var sb strings.Builder
	if err := student.WriteCSV(&sb, students); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	wantHeader := `"First Name","Last Name","Age","Grade","Gender","Date of Birth",` +
		`"Parent Name","Parent Email","Parent Phone","Address","Preferred Timing","Referral Source",` +
		`"Total Fee","Amount Paid","Balance","Fee Type","Status","Created At","Medical Notes"`
	if lines[0] != wantHeader {
		t.Errorf("header = %s, want %s", lines[0], wantHeader)
	}

	wantRow := `"Asha","Verma ""AV""","8","3rd","female","2017-06-15",` +
		`"Ravi Verma","ravi@test.test","+91 98765 43210","42 Test Lane","Saturday Morning","Instagram",` +
		`"5000","2000","3000","single","active","3/7/2026","peanut allergy"`
	if lines[1] != wantRow {
		t.Errorf("row = %s, want %s", lines[1], wantRow)
	}
}

func TestWriteCSV_missingOptionalFields(t *testing.T) {
	var sb strings.Builder
	err := student.WriteCSV(&sb, []student.Student{{FirstName: "Ben", CreatedAt: time.Now()}})
	if err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}
	row := strings.Split(sb.String(), "\n")[1]
	if !strings.HasSuffix(row, `"N/A"`) {
		t.Errorf("empty medical notes should export as N/A: %s", row)
	}
	if !strings.Contains(row, `"N/A","`) {
		t.Errorf("empty gender should export as N/A: %s", row)
	}
}

func TestCSVFilename(t *testing.T) {
	got := student.CSVFilename(time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC))
	if got != "students-2026-08-29.csv" {
		t.Errorf("CSVFilename() = %q", got)
	}
}
