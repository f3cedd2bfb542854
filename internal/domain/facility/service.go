package facility

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

// Service validates and normalizes facility records. It also provides the
// existence checks the directory depends on when linking doctors.
type Service struct {
	hospitals HospitalRepository
	clinics   ClinicRepository
}

func NewService(hospitals HospitalRepository, clinics ClinicRepository) *Service {
	return &Service{hospitals: hospitals, clinics: clinics}
}

// validateContact checks the fields hospitals and clinics share.
func validateContact(name, address, phone, email string) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(address) == "" {
		errs = append(errs, &ValidationError{Field: "address", Message: "is required"})
	}
	if len(phone) < 10 {
		errs = append(errs, &ValidationError{Field: "phone", Message: "must be a valid phone number"})
	}
	if email == "" {
		errs = append(errs, &ValidationError{Field: "email", Message: "is required"})
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, &ValidationError{Field: "email", Message: "must be a valid email address"})
	}
	return errs
}

// -- Hospitals --

func (s *Service) normalizeHospital(h *Hospital) {
	h.Name = strings.TrimSpace(h.Name)
	h.Phone = NormalizePhone(h.Phone)
	h.Email = NormalizeEmail(h.Email)
}

func (s *Service) validateHospital(h *Hospital) error {
	errs := validateContact(h.Name, h.Address, h.Phone, h.Email)
	if h.CareType != "" && !hospitalCareTypes[h.CareType] {
		errs = append(errs, &ValidationError{Field: "care_type", Message: "is not a valid hospital type"})
	}
	if h.BedCapacity < 0 {
		errs = append(errs, &ValidationError{Field: "bed_capacity", Message: "must be zero or greater"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *Service) CreateHospital(ctx context.Context, h *Hospital) error {
	s.normalizeHospital(h)
	if err := s.validateHospital(h); err != nil {
		return err
	}
	return s.hospitals.Create(ctx, h)
}

func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.hospitals.GetByID(ctx, id)
}

func (s *Service) UpdateHospital(ctx context.Context, h *Hospital) error {
	s.normalizeHospital(h)
	if err := s.validateHospital(h); err != nil {
		return err
	}
	return s.hospitals.Update(ctx, h)
}

// DeleteHospital refuses to remove a hospital that still employs doctors.
func (s *Service) DeleteHospital(ctx context.Context, id uuid.UUID) error {
	n, err := s.hospitals.DoctorCount(ctx, id)
	if err != nil {
		return fmt.Errorf("count doctors: %w", err)
	}
	if n > 0 {
		return ErrHasDoctors
	}
	return s.hospitals.Delete(ctx, id)
}

func (s *Service) ListHospitals(ctx context.Context, f HospitalFilter, limit, offset int) ([]*Hospital, int, error) {
	return s.hospitals.List(ctx, f, limit, offset)
}

func (s *Service) HospitalExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.hospitals.Exists(ctx, id)
}

// HospitalStatistics summarizes one hospital: headcount, capacity, and the
// specializations represented on staff.
func (s *Service) HospitalStatistics(ctx context.Context, id uuid.UUID) (*HospitalStatistics, error) {
	h, err := s.hospitals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doctors, err := s.hospitals.DoctorCount(ctx, id)
	if err != nil {
		return nil, err
	}
	specialties, err := s.hospitals.Specialties(ctx, id)
	if err != nil {
		return nil, err
	}
	return &HospitalStatistics{
		TotalDoctors:      doctors,
		BedCapacity:       h.BedCapacity,
		EmergencyServices: h.EmergencyServices,
		Specialties:       specialties,
	}, nil
}

// -- Clinics --

func (s *Service) normalizeClinic(c *Clinic) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = NormalizePhone(c.Phone)
	c.Email = NormalizeEmail(c.Email)
}

func (s *Service) validateClinic(c *Clinic) error {
	errs := validateContact(c.Name, c.Address, c.Phone, c.Email)
	if c.CareType != "" && !clinicCareTypes[c.CareType] {
		errs = append(errs, &ValidationError{Field: "care_type", Message: "is not a valid clinic type"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *Service) CreateClinic(ctx context.Context, c *Clinic) error {
	s.normalizeClinic(c)
	if err := s.validateClinic(c); err != nil {
		return err
	}
	return s.clinics.Create(ctx, c)
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.clinics.GetByID(ctx, id)
}

func (s *Service) UpdateClinic(ctx context.Context, c *Clinic) error {
	s.normalizeClinic(c)
	if err := s.validateClinic(c); err != nil {
		return err
	}
	return s.clinics.Update(ctx, c)
}

// DeleteClinic refuses to remove a clinic that still employs doctors.
func (s *Service) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	n, err := s.clinics.DoctorCount(ctx, id)
	if err != nil {
		return fmt.Errorf("count doctors: %w", err)
	}
	if n > 0 {
		return ErrHasDoctors
	}
	return s.clinics.Delete(ctx, id)
}

func (s *Service) ListClinics(ctx context.Context, f ClinicFilter, limit, offset int) ([]*Clinic, int, error) {
	return s.clinics.List(ctx, f, limit, offset)
}

func (s *Service) ClinicExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.clinics.Exists(ctx, id)
}
