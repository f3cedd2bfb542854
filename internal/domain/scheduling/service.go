package scheduling

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service implements the scheduling rules: candidate validation, overlap
// detection, the status lifecycle, slot computation, and statistics. The
// clock is a field so tests can pin it.
type Service struct {
	appts     AppointmentRepository
	directory Directory
	atomic    Atomic
	now       func() time.Time
}

func NewService(appts AppointmentRepository, directory Directory, atomic Atomic) *Service {
	return &Service{appts: appts, directory: directory, atomic: atomic, now: time.Now}
}

// validateFields checks the candidate's own fields without touching storage.
// All failures are collected so the caller sees every problem at once.
func (s *Service) validateFields(a *Appointment) error {
	var errs ValidationErrors

	if a.DoctorID == uuid.Nil {
		errs = append(errs, &ValidationError{Field: "doctor_id", Message: "is required"})
	}
	if a.PatientID == uuid.Nil {
		errs = append(errs, &ValidationError{Field: "patient_id", Message: "is required"})
	}
	if a.StartTime.IsZero() {
		errs = append(errs, &ValidationError{Field: "start_time", Message: "is required"})
	}
	if a.DurationMinutes <= 0 || a.DurationMinutes > MaxDurationMinutes {
		errs = append(errs, &ValidationError{
			Field:   "duration_minutes",
			Message: fmt.Sprintf("must be between 1 and %d", MaxDurationMinutes),
		})
	}
	if !validStatuses[a.Status] {
		errs = append(errs, &ValidationError{Field: "status", Message: "is not a valid status"})
	}
	if a.AppointmentType != "" && !validTypes[a.AppointmentType] {
		errs = append(errs, &ValidationError{Field: "appointment_type", Message: "is not a valid appointment type"})
	}

	// Completed appointments may be back-dated; everything else must be booked
	// in the future.
	if !a.StartTime.IsZero() && a.Status != StatusCompleted && !a.StartTime.After(s.now()) {
		errs = append(errs, &ValidationError{Field: "start_time", Message: "must be in the future"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *Service) checkReferences(ctx context.Context, a *Appointment) error {
	ok, err := s.directory.DoctorExists(ctx, a.DoctorID)
	if err != nil {
		return fmt.Errorf("check doctor: %w", err)
	}
	if !ok {
		return fmt.Errorf("doctor %s: %w", a.DoctorID, ErrNotFound)
	}
	ok, err = s.directory.PatientExists(ctx, a.PatientID)
	if err != nil {
		return fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return fmt.Errorf("patient %s: %w", a.PatientID, ErrNotFound)
	}
	return nil
}

// checkConflicts runs the doctor and patient overlap checks. Both always run,
// so a double-booked candidate reports both sides in one error.
func (s *Service) checkConflicts(ctx context.Context, a *Appointment, exclude uuid.UUID) error {
	doctorAppts, err := s.appts.ListActiveForDoctor(ctx, a.DoctorID, exclude)
	if err != nil {
		return fmt.Errorf("list doctor appointments: %w", err)
	}
	patientAppts, err := s.appts.ListActiveForPatient(ctx, a.PatientID, exclude)
	if err != nil {
		return fmt.Errorf("list patient appointments: %w", err)
	}

	conflict := &ConflictError{}
	for _, other := range doctorAppts {
		if a.Overlaps(other) {
			conflict.DoctorConflicts = append(conflict.DoctorConflicts, other.ID)
		}
	}
	for _, other := range patientAppts {
		if a.Overlaps(other) {
			conflict.PatientConflicts = append(conflict.PatientConflicts, other.ID)
		}
	}
	if len(conflict.DoctorConflicts) > 0 || len(conflict.PatientConflicts) > 0 {
		return conflict
	}
	return nil
}

// lockKeys returns the advisory lock keys for a booking, sorted so that
// concurrent transactions always acquire them in the same order.
func lockKeys(a *Appointment) []string {
	keys := []string{"doctor:" + a.DoctorID.String(), "patient:" + a.PatientID.String()}
	sort.Strings(keys)
	return keys
}

// Create books a new appointment. The overlap check and the insert run in one
// transaction serialized per doctor and per patient, so two concurrent
// overlapping bookings cannot both commit.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.AppointmentType == "" {
		a.AppointmentType = TypeConsultation
	}
	a.Notes = strings.TrimSpace(a.Notes)

	if err := s.validateFields(a); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, a); err != nil {
		return err
	}

	return s.atomic.InTx(ctx, lockKeys(a), func(ctx context.Context) error {
		if a.IsActive() {
			if err := s.checkConflicts(ctx, a, uuid.Nil); err != nil {
				return err
			}
		}
		return s.appts.Create(ctx, a)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// Update replaces an appointment's bookable fields, re-running the full
// validation and conflict pipeline with the appointment itself excluded.
func (s *Service) Update(ctx context.Context, a *Appointment) error {
	existing, err := s.appts.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = existing.Status
	}
	if a.AppointmentType == "" {
		a.AppointmentType = existing.AppointmentType
	}
	a.Notes = strings.TrimSpace(a.Notes)

	if err := s.validateFields(a); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, a); err != nil {
		return err
	}

	return s.atomic.InTx(ctx, lockKeys(a), func(ctx context.Context) error {
		if a.IsActive() {
			if err := s.checkConflicts(ctx, a, a.ID); err != nil {
				return err
			}
		}
		return s.appts.Update(ctx, a)
	})
}

// Delete removes an appointment. Completed appointments are part of the
// medical record and cannot be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == StatusCompleted {
		return &TransitionError{Op: "delete", Status: a.Status}
	}
	return s.appts.Delete(ctx, id)
}

// Confirm moves a scheduled appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusScheduled {
		return nil, &TransitionError{Op: "confirm", Status: a.Status}
	}
	a.Status = StatusConfirmed
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel cancels an active appointment, provided it starts more than the
// notice period from now.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, &TransitionError{Op: "cancel", Status: a.Status}
	}
	if !a.CanBeCancelled(s.now()) {
		return nil, &TransitionError{Op: "cancel", Status: a.Status}
	}
	a.Status = StatusCancelled
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Complete marks an active appointment as completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, &TransitionError{Op: "complete", Status: a.Status}
	}
	a.Status = StatusCompleted
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// MarkNoShow records that the patient did not turn up for an active
// appointment.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, &TransitionError{Op: "mark no-show", Status: a.Status}
	}
	a.Status = StatusNoShow
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Reschedule moves an active appointment to a new time, returning it to
// scheduled status. The new interval goes through the same validation and
// atomic conflict check as a fresh booking, with the appointment itself
// excluded from the overlap scan.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newStart time.Time, newDuration int) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.CanBeRescheduled() {
		return nil, &TransitionError{Op: "reschedule", Status: a.Status}
	}

	a.StartTime = newStart
	if newDuration > 0 {
		a.DurationMinutes = newDuration
	}
	a.Status = StatusScheduled

	if err := s.validateFields(a); err != nil {
		return nil, err
	}

	err = s.atomic.InTx(ctx, lockKeys(a), func(ctx context.Context) error {
		if err := s.checkConflicts(ctx, a, a.ID); err != nil {
			return err
		}
		return s.appts.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ConflictReport lists the active appointments overlapping a given one, split
// by which party is double-booked.
type ConflictReport struct {
	DoctorConflicts  []*Appointment `json:"doctor_conflicts"`
	PatientConflicts []*Appointment `json:"patient_conflicts"`
}

// Conflicts reports the overlaps an existing appointment has with other
// active appointments of its doctor and patient. Purely a read.
func (s *Service) Conflicts(ctx context.Context, id uuid.UUID) (*ConflictReport, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doctorAppts, err := s.appts.ListActiveForDoctor(ctx, a.DoctorID, a.ID)
	if err != nil {
		return nil, err
	}
	patientAppts, err := s.appts.ListActiveForPatient(ctx, a.PatientID, a.ID)
	if err != nil {
		return nil, err
	}

	report := &ConflictReport{
		DoctorConflicts:  []*Appointment{},
		PatientConflicts: []*Appointment{},
	}
	for _, other := range doctorAppts {
		if a.Overlaps(other) {
			report.DoctorConflicts = append(report.DoctorConflicts, other)
		}
	}
	for _, other := range patientAppts {
		if a.Overlaps(other) {
			report.PatientConflicts = append(report.PatientConflicts, other)
		}
	}
	return report, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.List(ctx, f, limit, offset)
}

// Today lists appointments on the current calendar day.
func (s *Service) Today(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	today := s.now()
	return s.appts.List(ctx, Filter{Date: &today}, limit, offset)
}

// Upcoming lists active appointments starting from now.
func (s *Service) Upcoming(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	from := s.now()
	return s.appts.List(ctx, Filter{From: &from, ActiveOnly: true}, limit, offset)
}

// AvailableSlots returns the free 30-minute slot starts for a doctor on the
// given day.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]time.Time, error) {
	ok, err := s.directory.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("check doctor: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("doctor %s: %w", doctorID, ErrNotFound)
	}

	busy, err := s.appts.ListActiveForDoctor(ctx, doctorID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return AvailableSlots(date, busy), nil
}

// DoctorSchedule lists a doctor's appointments, any status, on the given day.
func (s *Service) DoctorSchedule(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	ok, err := s.directory.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("check doctor: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("doctor %s: %w", doctorID, ErrNotFound)
	}

	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return s.appts.ListForDoctorOnDay(ctx, doctorID, dayStart, dayStart.AddDate(0, 0, 1))
}

// PatientHistory lists a patient's appointments, most recent first.
func (s *Service) PatientHistory(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	ok, err := s.directory.PatientExists(ctx, patientID)
	if err != nil {
		return nil, 0, fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return nil, 0, fmt.Errorf("patient %s: %w", patientID, ErrNotFound)
	}
	return s.appts.ListByPatient(ctx, patientID, limit, offset)
}

// Calendar renders the appointments in [from, to) as calendar events.
func (s *Service) Calendar(ctx context.Context, from, to time.Time) ([]*CalendarEvent, error) {
	entries, err := s.appts.ListCalendar(ctx, from, to)
	if err != nil {
		return nil, err
	}
	events := make([]*CalendarEvent, len(entries))
	for i, e := range entries {
		events[i] = &CalendarEvent{
			ID:          e.ID,
			Title:       e.PatientName + " - " + e.DoctorName,
			Start:       e.StartTime.Format(time.RFC3339),
			End:         e.End().Format(time.RFC3339),
			Color:       StatusColor(e.Status),
			Status:      e.Status,
			DoctorName:  e.DoctorName,
			PatientName: e.PatientName,
		}
	}
	return events, nil
}

// Statistics counts appointments by status and by today/this-week/this-month
// windows, optionally restricted to one doctor.
func (s *Service) Statistics(ctx context.Context, doctorID *uuid.UUID) (*Statistics, error) {
	return s.appts.Statistics(ctx, doctorID, WindowsFor(s.now()))
}
