package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Appointment types.
const (
	TypeConsultation = "consultation"
	TypeCheckup      = "checkup"
	TypeFollowUp     = "follow_up"
	TypeEmergency    = "emergency"
	TypeProcedure    = "procedure"
)

// MaxDurationMinutes caps a single appointment at a full working day.
const MaxDurationMinutes = 480

// CancellationNotice is the minimum lead time before the start of an
// appointment for it to still be cancellable.
const CancellationNotice = 24 * time.Hour

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusCompleted: true,
	StatusCancelled: true, StatusNoShow: true,
}

var validTypes = map[string]bool{
	TypeConsultation: true, TypeCheckup: true, TypeFollowUp: true,
	TypeEmergency: true, TypeProcedure: true,
}

// activeStatuses are the statuses that occupy a doctor's and patient's time.
// Only these participate in overlap detection.
var activeStatuses = map[string]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Status          string    `db:"status" json:"status"`
	AppointmentType string    `db:"appointment_type" json:"appointment_type,omitempty"`
	Notes           string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end of the appointment's time interval.
func (a *Appointment) End() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// IsActive reports whether the appointment still occupies its time interval.
func (a *Appointment) IsActive() bool {
	return activeStatuses[a.Status]
}

// Overlaps reports whether two half-open intervals [start, end) intersect.
// Back-to-back appointments share an endpoint and do not overlap.
func (a *Appointment) Overlaps(other *Appointment) bool {
	return a.StartTime.Before(other.End()) && other.StartTime.Before(a.End())
}

// CanBeCancelled reports whether the appointment may be cancelled at the
// given instant: it must still be active and start more than the required
// notice period after now.
func (a *Appointment) CanBeCancelled(now time.Time) bool {
	return a.IsActive() && a.StartTime.After(now.Add(CancellationNotice))
}

// CanBeRescheduled reports whether the appointment may be moved to a new time.
func (a *Appointment) CanBeRescheduled() bool {
	return a.IsActive()
}

// StatusColor returns the display color used by the calendar feed.
func StatusColor(status string) string {
	switch status {
	case StatusScheduled:
		return "#007bff"
	case StatusConfirmed:
		return "#28a745"
	case StatusCompleted:
		return "#6c757d"
	case StatusCancelled:
		return "#dc3545"
	default:
		return "#17a2b8"
	}
}

// CalendarEvent is one entry in the calendar feed.
type CalendarEvent struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	Color       string    `json:"color"`
	Status      string    `json:"status"`
	DoctorName  string    `json:"doctor_name"`
	PatientName string    `json:"patient_name"`
}

// CalendarEntry is an appointment joined with the names needed to render it.
type CalendarEntry struct {
	Appointment
	DoctorName  string `db:"doctor_name" json:"doctor_name"`
	PatientName string `db:"patient_name" json:"patient_name"`
}

// Statistics summarizes appointment counts across status and time windows.
type Statistics struct {
	Total     int `json:"total_appointments"`
	Scheduled int `json:"scheduled"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	NoShow    int `json:"no_show"`
	Today     int `json:"today"`
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
}

// StatWindows carries the half-open time windows the statistics are counted
// over. The service derives them from its clock so results are deterministic.
type StatWindows struct {
	TodayStart time.Time
	TodayEnd   time.Time
	WeekStart  time.Time
	WeekEnd    time.Time
	MonthStart time.Time
	MonthEnd   time.Time
}

// WindowsFor computes today/this-week/this-month windows around now.
// Weeks start on Monday.
func WindowsFor(now time.Time) StatWindows {
	y, m, d := now.Date()
	todayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	weekStart := todayStart.AddDate(0, 0, -(weekday - 1))

	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())

	return StatWindows{
		TodayStart: todayStart,
		TodayEnd:   todayStart.AddDate(0, 0, 1),
		WeekStart:  weekStart,
		WeekEnd:    weekStart.AddDate(0, 0, 7),
		MonthStart: monthStart,
		MonthEnd:   monthStart.AddDate(0, 1, 0),
	}
}
