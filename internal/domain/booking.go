package domain

import "time"

// Booking reserves one karaoke room for one date and one discrete slot.
// RoomDate ("K1#2025-06-01") and Slot ("18:00") form the table's composite key,
// so the one-booking-per-(room,date,slot) invariant is a key constraint.
// DateSlot ("2025-06-01#18:00") is the account GSI's range key and yields
// date-then-slot ordering for a member's booking list.
type Booking struct {
	RoomDate      string    `json:"-" dynamodbav:"room_date"`
	Slot          string    `json:"-" dynamodbav:"slot"`
	BookingID     string    `json:"id" dynamodbav:"booking_id"`
	Room          string    `json:"room" dynamodbav:"room"`
	Date          string    `json:"date" dynamodbav:"date"` // YYYY-MM-DD
	DateSlot      string    `json:"-" dynamodbav:"date_slot"`
	ContactNumber string    `json:"contact_number" dynamodbav:"contact_number"`
	AccountID     string    `json:"-" dynamodbav:"account_id"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
}
