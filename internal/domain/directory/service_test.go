package directory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return ErrNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		if f.Specialization != "" && d.Specialization != f.Specialization {
			continue
		}
		if f.HospitalID != nil && (d.HospitalID == nil || *d.HospitalID != *f.HospitalID) {
			continue
		}
		if f.ClinicID != nil && (d.ClinicID == nil || *d.ClinicID != *f.ClinicID) {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(d.FirstName), q) &&
				!strings.Contains(strings.ToLower(d.LastName), q) {
				continue
			}
		}
		cp := *d
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockDoctorRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.doctors[id]
	return ok, nil
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	for _, other := range m.patients {
		if other.Email == p.Email {
			return ErrDuplicateEmail
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	for _, other := range m.patients {
		if other.ID != p.ID && other.Email == p.Email {
			return ErrDuplicateEmail
		}
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, f PatientFilter, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.FirstName), q) &&
				!strings.Contains(strings.ToLower(p.LastName), q) &&
				!strings.Contains(p.Email, q) {
				continue
			}
		}
		if f.BornBefore != nil && !p.DateOfBirth.Before(*f.BornBefore) {
			continue
		}
		if f.BornAfter != nil && !p.DateOfBirth.After(*f.BornAfter) {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockPatientRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.patients[id]
	return ok, nil
}

type mockFacilities struct {
	hospitals map[uuid.UUID]bool
	clinics   map[uuid.UUID]bool
}

func newMockFacilities() *mockFacilities {
	return &mockFacilities{hospitals: make(map[uuid.UUID]bool), clinics: make(map[uuid.UUID]bool)}
}

func (m *mockFacilities) HospitalExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.hospitals[id], nil
}

func (m *mockFacilities) ClinicExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.clinics[id], nil
}

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mockFacilities) {
	fac := newMockFacilities()
	svc := NewService(newMockDoctorRepo(), newMockPatientRepo(), fac)
	svc.now = func() time.Time { return testNow }
	return svc, fac
}

func validDoctor(hospitalID uuid.UUID) *Doctor {
	return &Doctor{
		FirstName:      "gregory",
		LastName:       "house",
		Specialization: "diagnostic medicine",
		HospitalID:     &hospitalID,
	}
}

func validPatient() *Patient {
	return &Patient{
		FirstName:   "john",
		LastName:    "doe",
		DateOfBirth: time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC),
		Email:       "John.Doe@Example.COM",
	}
}

// -- Doctors --

func TestCreateDoctor_NormalizesNames(t *testing.T) {
	svc, fac := newTestService()
	hospitalID := uuid.New()
	fac.hospitals[hospitalID] = true

	d := validDoctor(hospitalID)
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.FirstName != "Gregory" || d.LastName != "House" {
		t.Errorf("expected title-cased names, got %q %q", d.FirstName, d.LastName)
	}
	if d.Specialization != "Diagnostic Medicine" {
		t.Errorf("expected title-cased specialization, got %q", d.Specialization)
	}
}

func TestCreateDoctor_RequiresFields(t *testing.T) {
	svc, _ := newTestService()
	err := svc.CreateDoctor(context.Background(), &Doctor{})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 4 {
		t.Errorf("expected name, specialization and workplace errors, got %d: %v", len(verrs), verrs)
	}
}

func TestCreateDoctor_RequiresWorkplace(t *testing.T) {
	svc, _ := newTestService()
	d := &Doctor{FirstName: "A", LastName: "B", Specialization: "C"}
	err := svc.CreateDoctor(context.Background(), d)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
}

func TestCreateDoctor_UnknownHospital(t *testing.T) {
	svc, _ := newTestService()
	d := validDoctor(uuid.New())
	err := svc.CreateDoctor(context.Background(), d)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDoctor_ClinicOnly(t *testing.T) {
	svc, fac := newTestService()
	clinicID := uuid.New()
	fac.clinics[clinicID] = true

	d := &Doctor{FirstName: "lisa", LastName: "cuddy", Specialization: "endocrinology", ClinicID: &clinicID}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDoctorExists(t *testing.T) {
	svc, fac := newTestService()
	hospitalID := uuid.New()
	fac.hospitals[hospitalID] = true
	d := validDoctor(hospitalID)
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatal(err)
	}

	ok, err := svc.DoctorExists(context.Background(), d.ID)
	if err != nil || !ok {
		t.Errorf("expected doctor to exist, got %v/%v", ok, err)
	}
	ok, err = svc.DoctorExists(context.Background(), uuid.New())
	if err != nil || ok {
		t.Errorf("expected unknown doctor to not exist, got %v/%v", ok, err)
	}
}

func TestListDoctors_BySpecialization(t *testing.T) {
	svc, fac := newTestService()
	hospitalID := uuid.New()
	fac.hospitals[hospitalID] = true

	d1 := validDoctor(hospitalID)
	if err := svc.CreateDoctor(context.Background(), d1); err != nil {
		t.Fatal(err)
	}
	d2 := &Doctor{FirstName: "james", LastName: "wilson", Specialization: "oncology", HospitalID: &hospitalID}
	if err := svc.CreateDoctor(context.Background(), d2); err != nil {
		t.Fatal(err)
	}

	items, total, err := svc.ListDoctors(context.Background(), DoctorFilter{Specialization: "Oncology"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected one oncologist, got %d", total)
	}
	if items[0].LastName != "Wilson" {
		t.Errorf("unexpected doctor %q", items[0].LastName)
	}
}

// -- Patients --

func TestCreatePatient_NormalizesEmail(t *testing.T) {
	svc, _ := newTestService()
	p := validPatient()
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Email != "john.doe@example.com" {
		t.Errorf("expected lowercased email, got %q", p.Email)
	}
	if p.FirstName != "John" || p.LastName != "Doe" {
		t.Errorf("expected title-cased names, got %q %q", p.FirstName, p.LastName)
	}
}

func TestCreatePatient_RejectsFutureBirthDate(t *testing.T) {
	svc, _ := newTestService()
	p := validPatient()
	p.DateOfBirth = testNow.AddDate(1, 0, 0)
	err := svc.CreatePatient(context.Background(), p)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
}

func TestCreatePatient_RejectsInvalidEmail(t *testing.T) {
	svc, _ := newTestService()
	for _, email := range []string{"not-an-email", "missing@", "@example.com"} {
		p := validPatient()
		p.Email = email
		if err := svc.CreatePatient(context.Background(), p); err == nil {
			t.Errorf("expected error for email %q", email)
		}
	}
}

func TestCreatePatient_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.CreatePatient(context.Background(), validPatient()); err != nil {
		t.Fatal(err)
	}
	err := svc.CreatePatient(context.Background(), validPatient())
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUpdatePatient_RejectsTakenEmail(t *testing.T) {
	svc, _ := newTestService()
	first := validPatient()
	if err := svc.CreatePatient(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	second := validPatient()
	second.Email = "someone.else@example.com"
	if err := svc.CreatePatient(context.Background(), second); err != nil {
		t.Fatal(err)
	}

	second.Email = first.Email
	err := svc.UpdatePatient(context.Background(), second)
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUpdatePatient_KeepsOwnEmail(t *testing.T) {
	svc, _ := newTestService()
	p := validPatient()
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	p.FirstName = "Jane"
	if err := svc.UpdatePatient(context.Background(), p); err != nil {
		t.Fatalf("updating without changing email should pass, got %v", err)
	}
}

func TestCreatePatient_RequiresFields(t *testing.T) {
	svc, _ := newTestService()
	err := svc.CreatePatient(context.Background(), &Patient{})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(verrs), verrs)
	}
}

func TestPatientAge(t *testing.T) {
	p := &Patient{DateOfBirth: time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)}
	// day before the birthday
	if got := p.Age(time.Date(2026, time.June, 14, 0, 0, 0, 0, time.UTC)); got != 35 {
		t.Errorf("expected 35, got %d", got)
	}
	// on the birthday
	if got := p.Age(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)); got != 36 {
		t.Errorf("expected 36, got %d", got)
	}
}

func TestPatientPredicates(t *testing.T) {
	now := testNow
	minor := &Patient{DateOfBirth: now.AddDate(-10, 0, 0)}
	if !minor.IsMinor(now) {
		t.Error("expected minor")
	}
	senior := &Patient{DateOfBirth: now.AddDate(-70, 0, 0)}
	if !senior.IsSenior(now) {
		t.Error("expected senior")
	}
}

func TestListPatients_BornBefore(t *testing.T) {
	svc, _ := newTestService()
	older := validPatient()
	older.DateOfBirth = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)
	older.Email = "older@example.com"
	if err := svc.CreatePatient(context.Background(), older); err != nil {
		t.Fatal(err)
	}
	younger := validPatient()
	if err := svc.CreatePatient(context.Background(), younger); err != nil {
		t.Fatal(err)
	}

	cutoff := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	items, total, err := svc.ListPatients(context.Background(), PatientFilter{BornBefore: &cutoff}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected one match, got %d", total)
	}
	if items[0].Email != "older@example.com" {
		t.Errorf("unexpected patient %q", items[0].Email)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  gregory  ":     "Gregory",
		"mary-jane":       "Mary-Jane",
		"VAN DER BERG":    "Van Der Berg",
		"":                "",
		"diagnostic medicine": "Diagnostic Medicine",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q): expected %q, got %q", in, want, got)
		}
	}
}
