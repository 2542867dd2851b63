package model

// DateLayout is the ISO calendar-day form used as ledger key.
const DateLayout = "2006-01-02"

// TimestampLayout is the locale-formatted creation time stored with each
// appointment. It must survive a save/load round trip unchanged, so it is
// kept as text rather than time.Time.
const TimestampLayout = "02/01/2006 15:04:05"

// Appointment is a confirmed collection booking. Immutable once created;
// it is owned by the date bucket it was appended to. Name, address and
// liters are stored verbatim as the user typed them.
type Appointment struct {
	ID        string `json:"id,omitempty" bson:"id,omitempty" validate:"omitempty,uuid4"`
	Name      string `json:"name" bson:"name" validate:"required"`
	Address   string `json:"address" bson:"address" validate:"required"`
	Period    string `json:"period" bson:"period" validate:"required,collectionperiod"`
	Liters    string `json:"liters" bson:"liters" validate:"required"`
	Timestamp string `json:"timestamp" bson:"timestamp" validate:"required"`
}

// Ledger maps an ISO date (YYYY-MM-DD) to its appointments in arrival order.
type Ledger map[string][]Appointment

// Total returns the number of appointments across all date buckets.
func (l Ledger) Total() int {
	n := 0
	for _, appointments := range l {
		n += len(appointments)
	}
	return n
}

// Slot is a collection date chosen by the allocator.
type Slot struct {
	Date        string `json:"date"`
	WeekdayName string `json:"weekday_name"`
}
