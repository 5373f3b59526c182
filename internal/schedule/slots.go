// Package schedule parses schedule text into day/slot blocks.
package schedule

import "fmt"

// Slot is one row of the weekly grid. Start and End are minutes since midnight.
type Slot struct {
	Index int
	Start int
	End   int
}

// Label renders the slot as "HH:MM~HH:MM".
func (s Slot) Label() string {
	return fmt.Sprintf("%02d:%02d~%02d:%02d", s.Start/60, s.Start%60, s.End/60, s.End%60)
}

const (
	firstSlotStart = 9 * 60
	halfHourSlots  = 18
	halfHour       = 30
)

// Evening periods are irregular 50-minute slots with 5-minute breaks.
var eveningSlots = [][2]int{
	{18*60 + 0, 18*60 + 50},
	{18*60 + 55, 19*60 + 45},
	{19*60 + 50, 20*60 + 40},
	{20*60 + 45, 21*60 + 35},
	{21*60 + 40, 22*60 + 30},
	{22*60 + 35, 23*60 + 25},
}

// Slots is the full slot table, index 1 through 24.
var Slots = buildSlots()

// SlotCount is the number of grid rows.
const SlotCount = halfHourSlots + 6

func buildSlots() []Slot {
	out := make([]Slot, 0, SlotCount)
	for i := 0; i < halfHourSlots; i++ {
		start := firstSlotStart + i*halfHour
		out = append(out, Slot{Index: i + 1, Start: start, End: start + halfHour})
	}
	for i, span := range eveningSlots {
		out = append(out, Slot{Index: halfHourSlots + i + 1, Start: span[0], End: span[1]})
	}
	return out
}

// SlotLabel returns the label of a 1-based slot index, or "" when out of range.
func SlotLabel(index int) string {
	if index < 1 || index > len(Slots) {
		return ""
	}
	return Slots[index-1].Label()
}

// slotAt returns the slot a class starting at minute m begins in. A start that
// falls into a break belongs to the next slot.
func slotAt(m int) (int, bool) {
	if m < firstSlotStart {
		return 0, false
	}
	for _, s := range Slots {
		if m < s.End {
			return s.Index, true
		}
	}
	return 0, false
}

// lastSlotBefore returns the last slot that starts before minute m, treating m
// as an exclusive end time.
func lastSlotBefore(m int) (int, bool) {
	idx := 0
	for _, s := range Slots {
		if s.Start < m {
			idx = s.Index
		}
	}
	return idx, idx > 0
}
