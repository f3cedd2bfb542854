package directory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DoctorFilter narrows doctor listings. Zero values mean "no constraint".
type DoctorFilter struct {
	Specialization string
	HospitalID     *uuid.UUID
	ClinicID       *uuid.UUID
	Search         string // matches first or last name
}

// PatientFilter narrows patient listings.
type PatientFilter struct {
	Search     string // matches name or email
	BornBefore *time.Time
	BornAfter  *time.Time
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f PatientFilter, limit, offset int) ([]*Patient, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
