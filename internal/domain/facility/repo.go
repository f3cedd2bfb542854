package facility

import (
	"context"

	"github.com/google/uuid"
)

// HospitalFilter narrows hospital listings. Zero values mean "no constraint".
type HospitalFilter struct {
	City              string
	CareType          string
	EmergencyServices *bool
	Search            string // matches name or address
}

// ClinicFilter narrows clinic listings.
type ClinicFilter struct {
	City           string
	CareType       string
	AcceptsWalkIns *bool
	Search         string
}

type HospitalRepository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	Update(ctx context.Context, h *Hospital) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f HospitalFilter, limit, offset int) ([]*Hospital, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// DoctorCount counts the doctors working at the hospital.
	DoctorCount(ctx context.Context, id uuid.UUID) (int, error)
	// Specialties lists the distinct specializations of the hospital's doctors.
	Specialties(ctx context.Context, id uuid.UUID) ([]string, error)
}

type ClinicRepository interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ClinicFilter, limit, offset int) ([]*Clinic, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	DoctorCount(ctx context.Context, id uuid.UUID) (int, error)
}
