package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/backoffice/attendance"
)

func at(hour, min int) *time.Time {
	t := time.Date(2026, 8, 10, hour, min, 0, 0, time.UTC)
	return &t
}

func TestWorkingHours(t *testing.T) {
	a := attendance.Attendance{
		EmployeeID: "EMP-001",
		Date:       time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		CheckIn:    at(9, 0),
		CheckOut:   at(17, 30),
		Status:     attendance.StatusPresent,
	}
	assert.InDelta(t, 8.5, a.WorkingHours(), 0.001)
}

func TestWorkingHours_ZeroWhileClockedIn(t *testing.T) {
	a := attendance.Attendance{CheckIn: at(9, 0)}
	assert.Zero(t, a.WorkingHours())

	assert.Zero(t, attendance.Attendance{}.WorkingHours())
}

func TestAttendance_CheckOutBeforeCheckIn_Rejected(t *testing.T) {
	a := attendance.Attendance{CheckIn: at(17, 0), CheckOut: at(9, 0)}
	assert.ErrorIs(t, a.Validate(), attendance.ErrCheckOutBeforeCheckIn)
}

func TestLeave_TotalDays(t *testing.T) {
	l := attendance.Leave{
		StartDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 5, l.TotalDays())

	oneDay := attendance.Leave{StartDate: l.StartDate, EndDate: l.StartDate}
	assert.Equal(t, 1, oneDay.TotalDays())
}

func TestLeave_BackwardsRange_Rejected(t *testing.T) {
	l := attendance.Leave{
		StartDate: time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.ErrorIs(t, l.Validate(), attendance.ErrInvalidLeaveRange)
}

func TestLeave_StatusMachine(t *testing.T) {
	l := attendance.Leave{LeaveID: "LVE-00001", Status: attendance.LeavePending}

	approved, err := l.WithStatus(attendance.LeaveApproved)
	require.NoError(t, err)
	assert.Equal(t, attendance.LeaveApproved, approved.Status)

	rejected, err := l.WithStatus(attendance.LeaveRejected)
	require.NoError(t, err)
	assert.Equal(t, attendance.LeaveRejected, rejected.Status)
}

func TestLeave_TerminalStates(t *testing.T) {
	approved := attendance.Leave{Status: attendance.LeaveApproved}
	_, err := approved.WithStatus(attendance.LeaveCancelled)
	assert.ErrorIs(t, err, attendance.ErrInvalidStatusChange)

	cancelled := attendance.Leave{Status: attendance.LeaveCancelled}
	_, err = cancelled.WithStatus(attendance.LeaveApproved)
	assert.ErrorIs(t, err, attendance.ErrInvalidStatusChange)
}
