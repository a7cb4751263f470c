package timewindow

// Entry is anything placed on a calendar day with an optional priority slot.
type Entry interface {
	ScheduledDay() Date
	// Slot returns the priority slot and whether one is set.
	Slot() (int, bool)
	// InsertionSeq increases with creation order.
	InsertionSeq() uint64
}

// Compare orders entries scheduled on the same day. Entries with a slot come
// before entries without one, slots ascend, and remaining ties keep insertion
// order.
func Compare(a, b Entry) int {
	slotA, okA := a.Slot()
	slotB, okB := b.Slot()

	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case okA && okB && slotA != slotB:
		return cmpInt(slotA, slotB)
	}

	seqA, seqB := a.InsertionSeq(), b.InsertionSeq()
	switch {
	case seqA < seqB:
		return -1
	case seqA > seqB:
		return 1
	default:
		return 0
	}
}

// CompareUpcoming orders by date ascending, then by Compare.
func CompareUpcoming(a, b Entry) int {
	if c := a.ScheduledDay().Compare(b.ScheduledDay()); c != 0 {
		return c
	}
	return Compare(a, b)
}

// CompareHistory orders by date descending. Within a day the same-day order is
// kept so a history feed reads the day's sessions in planned order.
func CompareHistory(a, b Entry) int {
	if c := b.ScheduledDay().Compare(a.ScheduledDay()); c != 0 {
		return c
	}
	return Compare(a, b)
}
