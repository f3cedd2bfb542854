package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows appointment listings. Zero values mean "no constraint".
type Filter struct {
	DoctorID    *uuid.UUID
	PatientID   *uuid.UUID
	Status      string
	Type        string
	Date        *time.Time // whole calendar day
	StartDate   *time.Time
	EndDate     *time.Time
	MinDuration int
	MaxDuration int
	Search      string // matches doctor or patient names
	ActiveOnly  bool
	From        *time.Time // start_time >= From
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)

	// ListActiveForDoctor returns the doctor's scheduled and confirmed
	// appointments, excluding the given id (uuid.Nil excludes nothing).
	ListActiveForDoctor(ctx context.Context, doctorID, exclude uuid.UUID) ([]*Appointment, error)
	ListActiveForPatient(ctx context.Context, patientID, exclude uuid.UUID) ([]*Appointment, error)

	ListForDoctorOnDay(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListCalendar(ctx context.Context, from, to time.Time) ([]*CalendarEntry, error)

	Statistics(ctx context.Context, doctorID *uuid.UUID, w StatWindows) (*Statistics, error)
}

// Directory is the slice of the directory domain the scheduler needs: enough
// to verify references and render names.
type Directory interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Atomic runs fn inside a storage transaction after serializing on the given
// lock keys, so that overlap checks and writes cannot interleave.
type Atomic interface {
	InTx(ctx context.Context, lockKeys []string, fn func(ctx context.Context) error) error
}
