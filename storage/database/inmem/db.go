// Package inmemdb is a mutex-guarded map backend for local dev and tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/sanaa/core/activity"
	"github.com/trezcool/sanaa/core/notification"
	"github.com/trezcool/sanaa/core/payment"
	"github.com/trezcool/sanaa/core/role"
	"github.com/trezcool/sanaa/core/student"
)

type (
	DB struct {
		student      *studentTable
		payment      *paymentTable
		role         *roleTable
		notification *notificationTable
		activity     *activityTable
	}

	studentTable struct {
		table map[string]*student.Student
		mutex sync.RWMutex
	}
	paymentTable struct {
		table map[string]*payment.Payment
		mutex sync.RWMutex
	}
	roleTable struct {
		table map[string]*role.Role
		mutex sync.RWMutex
	}
	notificationTable struct {
		table map[string]*notification.Notification
		mutex sync.RWMutex
	}
	activityTable struct {
		table map[string]*activity.Entry
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		student:      &studentTable{table: make(map[string]*student.Student)},
		payment:      &paymentTable{table: make(map[string]*payment.Payment)},
		role:         &roleTable{table: make(map[string]*role.Role)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
		activity:     &activityTable{table: make(map[string]*activity.Entry)},
	}
	return db, nil
}
