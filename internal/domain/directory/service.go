package directory

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Facilities is the slice of the facility domain the directory needs: enough
// to verify that a doctor's workplace references exist.
type Facilities interface {
	HospitalExists(ctx context.Context, id uuid.UUID) (bool, error)
	ClinicExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service validates and normalizes directory records. It also provides the
// existence checks the scheduler depends on.
type Service struct {
	doctors    DoctorRepository
	patients   PatientRepository
	facilities Facilities
	now        func() time.Time
}

func NewService(doctors DoctorRepository, patients PatientRepository, facilities Facilities) *Service {
	return &Service{doctors: doctors, patients: patients, facilities: facilities, now: time.Now}
}

// -- Doctors --

func (s *Service) normalizeDoctor(d *Doctor) {
	d.FirstName = NormalizeName(d.FirstName)
	d.LastName = NormalizeName(d.LastName)
	d.Specialization = NormalizeName(d.Specialization)
}

func (s *Service) validateDoctor(d *Doctor) error {
	var errs ValidationErrors
	if d.FirstName == "" {
		errs = append(errs, &ValidationError{Field: "first_name", Message: "is required"})
	}
	if d.LastName == "" {
		errs = append(errs, &ValidationError{Field: "last_name", Message: "is required"})
	}
	if d.Specialization == "" {
		errs = append(errs, &ValidationError{Field: "specialization", Message: "is required"})
	}
	if d.HospitalID == nil && d.ClinicID == nil {
		errs = append(errs, &ValidationError{Field: "hospital_id", Message: "doctor must work at a hospital or a clinic"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *Service) checkWorkplaces(ctx context.Context, d *Doctor) error {
	if d.HospitalID != nil {
		ok, err := s.facilities.HospitalExists(ctx, *d.HospitalID)
		if err != nil {
			return fmt.Errorf("check hospital: %w", err)
		}
		if !ok {
			return fmt.Errorf("hospital %s: %w", d.HospitalID, ErrNotFound)
		}
	}
	if d.ClinicID != nil {
		ok, err := s.facilities.ClinicExists(ctx, *d.ClinicID)
		if err != nil {
			return fmt.Errorf("check clinic: %w", err)
		}
		if !ok {
			return fmt.Errorf("clinic %s: %w", d.ClinicID, ErrNotFound)
		}
	}
	return nil
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	s.normalizeDoctor(d)
	if err := s.validateDoctor(d); err != nil {
		return err
	}
	if err := s.checkWorkplaces(ctx, d); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	s.normalizeDoctor(d)
	if err := s.validateDoctor(d); err != nil {
		return err
	}
	if err := s.checkWorkplaces(ctx, d); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

// DeleteDoctor removes the doctor and, through the schema's cascade, all of
// their appointments.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, f, limit, offset)
}

func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.doctors.Exists(ctx, id)
}

// -- Patients --

func (s *Service) normalizePatient(p *Patient) {
	p.FirstName = NormalizeName(p.FirstName)
	p.LastName = NormalizeName(p.LastName)
	p.Email = NormalizeEmail(p.Email)
}

func (s *Service) validatePatient(p *Patient) error {
	var errs ValidationErrors
	if p.FirstName == "" {
		errs = append(errs, &ValidationError{Field: "first_name", Message: "is required"})
	}
	if p.LastName == "" {
		errs = append(errs, &ValidationError{Field: "last_name", Message: "is required"})
	}
	if p.DateOfBirth.IsZero() {
		errs = append(errs, &ValidationError{Field: "date_of_birth", Message: "is required"})
	} else if p.DateOfBirth.After(s.now()) {
		errs = append(errs, &ValidationError{Field: "date_of_birth", Message: "cannot be in the future"})
	}
	if p.Email == "" {
		errs = append(errs, &ValidationError{Field: "email", Message: "is required"})
	} else if _, err := mail.ParseAddress(p.Email); err != nil {
		errs = append(errs, &ValidationError{Field: "email", Message: "must be a valid email address"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkEmailFree reports ErrDuplicateEmail when another patient already owns
// the address. The unique constraint on patients.email remains the backstop
// for concurrent registrations.
func (s *Service) checkEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.patients.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing.ID != self {
		return ErrDuplicateEmail
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	s.normalizePatient(p)
	if err := s.validatePatient(p); err != nil {
		return err
	}
	if err := s.checkEmailFree(ctx, p.Email, p.ID); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	s.normalizePatient(p)
	if err := s.validatePatient(p); err != nil {
		return err
	}
	if err := s.checkEmailFree(ctx, p.Email, p.ID); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, f PatientFilter, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, f, limit, offset)
}

func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.patients.Exists(ctx, id)
}
