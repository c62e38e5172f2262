/*
Package attendance tracks daily employee attendance and leave requests.
An attendance row is one employee on one date, at most once, with optional
check-in and check-out times that yield a working-hours figure. A leave
request walks a small status machine: PENDING can be approved, rejected,
or cancelled, and all three outcomes are terminal.
*/
package attendance

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// ATTENDANCE
// =============================================================================

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusHalfDay Status = "HALF_DAY"
	StatusOnLeave Status = "LEAVE"
	StatusHoliday Status = "HOLIDAY"
)

var (
	// ErrCheckOutBeforeCheckIn is returned when the recorded times run backwards.
	ErrCheckOutBeforeCheckIn = errors.New("check-out precedes check-in")

	// ErrInvalidLeaveRange is returned when a leave ends before it starts.
	ErrInvalidLeaveRange = errors.New("leave end date precedes start date")

	// ErrInvalidStatusChange is returned for a leave transition outside
	// the allowed machine.
	ErrInvalidStatusChange = errors.New("invalid status change")
)

// Attendance is one employee's record for one date. CheckIn and CheckOut
// are nil until the employee clocks in or out.
type Attendance struct {
	AttendanceID string
	EmployeeID   string
	Date         time.Time
	CheckIn      *time.Time
	CheckOut     *time.Time
	Status       Status
	Notes        string
	CreatedAt    time.Time
}

// Validate rejects an attendance row whose check-out precedes its check-in.
func (a Attendance) Validate() error {
	if a.CheckIn != nil && a.CheckOut != nil && a.CheckOut.Before(*a.CheckIn) {
		return fmt.Errorf("%w: in %s, out %s",
			ErrCheckOutBeforeCheckIn,
			a.CheckIn.Format("15:04"), a.CheckOut.Format("15:04"))
	}
	return nil
}

// WorkingHours is the span between check-in and check-out in hours, or
// zero while either side is missing.
func (a Attendance) WorkingHours() float64 {
	if a.CheckIn == nil || a.CheckOut == nil {
		return 0
	}
	return a.CheckOut.Sub(*a.CheckIn).Hours()
}

// =============================================================================
// LEAVE
// =============================================================================

type LeaveType string

const (
	LeaveSick      LeaveType = "SICK"
	LeaveCasual    LeaveType = "CASUAL"
	LeaveAnnual    LeaveType = "ANNUAL"
	LeaveMaternity LeaveType = "MATERNITY"
	LeaveEmergency LeaveType = "EMERGENCY"
)

type LeaveStatus string

const (
	LeavePending   LeaveStatus = "PENDING"
	LeaveApproved  LeaveStatus = "APPROVED"
	LeaveRejected  LeaveStatus = "REJECTED"
	LeaveCancelled LeaveStatus = "CANCELLED"
)

// leaveTransitions: only a pending request can move, and every outcome
// is terminal.
var leaveTransitions = map[LeaveStatus][]LeaveStatus{
	LeavePending: {LeaveApproved, LeaveRejected, LeaveCancelled},
}

// Leave is one request for time off, inclusive of both end dates.
type Leave struct {
	LeaveID    string
	EmployeeID string
	Type       LeaveType
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     LeaveStatus
	ApprovedBy string
	Remarks    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate rejects a leave whose range runs backwards.
func (l Leave) Validate() error {
	if l.EndDate.Before(l.StartDate) {
		return fmt.Errorf("%w: %s to %s",
			ErrInvalidLeaveRange,
			l.StartDate.Format("2006-01-02"), l.EndDate.Format("2006-01-02"))
	}
	return nil
}

// TotalDays counts the days the leave covers, both ends inclusive. A
// one-day leave has equal start and end dates and counts 1.
func (l Leave) TotalDays() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}

// WithStatus returns a copy in the new status, or rejects transitions the
// machine does not allow.
func (l Leave) WithStatus(next LeaveStatus) (Leave, error) {
	for _, allowed := range leaveTransitions[l.Status] {
		if next == allowed {
			l.Status = next
			return l, nil
		}
	}
	return Leave{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusChange, l.Status, next)
}
