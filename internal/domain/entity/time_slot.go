package entity

// TimeSlots is the fixed set of appointment labels a patient can pick from.
var TimeSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
}

// BookingWindowDays is how many calendar days, starting today, are offered for booking.
const BookingWindowDays = 14

func IsValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}
