package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/student"
)

// NopLogger discards everything. For wiring services in tests.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	firstName, lastName, timing string,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std := student.Student{
		FirstName:       firstName,
		LastName:        lastName,
		DateOfBirth:     "2017-06-15",
		Age:             8,
		Grade:           "3rd",
		ParentName:      firstName + "'s parent",
		ParentEmail:     firstName + ".parent@test.test",
		ParentPhone:     "+91 98765 43210",
		Address:         "42 Test Lane",
		PreferredTiming: timing,
		TotalFee:        5000,
		FeeType:         student.FeeTypeSingle,
		Status:          student.StatusRegistered,
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
		CreatedBy:       "system",
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}
