package scheduling

import "time"

// Working-day slot grid: every 30 minutes from 09:00 through 16:30 inclusive.
const (
	slotOpenHour    = 9
	slotCloseHour   = 16
	slotIntervalMin = 30
)

// SlotGrid returns every candidate slot start on the given calendar day,
// in ascending order.
func SlotGrid(date time.Time) []time.Time {
	y, m, d := date.Date()
	slots := make([]time.Time, 0, (slotCloseHour-slotOpenHour+1)*2)
	for hour := slotOpenHour; hour <= slotCloseHour; hour++ {
		for _, minute := range []int{0, slotIntervalMin} {
			slots = append(slots, time.Date(y, m, d, hour, minute, 0, 0, date.Location()))
		}
	}
	return slots
}

// AvailableSlots filters the day's slot grid against the doctor's busy
// intervals. A slot T is taken when some active interval [s, e) contains it,
// i.e. s <= T < e: an appointment ending exactly at T leaves T free.
func AvailableSlots(date time.Time, busy []*Appointment) []time.Time {
	available := make([]time.Time, 0)
	for _, slot := range SlotGrid(date) {
		taken := false
		for _, b := range busy {
			if !b.IsActive() {
				continue
			}
			if !b.StartTime.After(slot) && slot.Before(b.End()) {
				taken = true
				break
			}
		}
		if !taken {
			available = append(available, slot)
		}
	}
	return available
}
