package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/13x54n/thamelbar/internal/domain"
	"github.com/13x54n/thamelbar/internal/pkg/id"
)

// The closed set of karaoke rooms and bookable slots. Slots are stored under
// their 24h key and rendered with the display label.
var rooms = []string{"K1", "K2", "K3"}

type slotDef struct {
	Key   string
	Label string
}

var slots = []slotDef{
	{Key: "18:00", Label: "6:00 PM"},
	{Key: "19:30", Label: "7:30 PM"},
	{Key: "21:00", Label: "9:00 PM"},
	{Key: "22:30", Label: "10:30 PM"},
	{Key: "00:00", Label: "12:00 AM"},
}

// Store is the booking persistence surface. Insert must enforce the
// (room,date,slot) uniqueness atomically.
type Store interface {
	Insert(ctx context.Context, b *domain.Booking) error
	BookedSlotKeys(ctx context.Context, room, date string) ([]string, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Booking, error)
}

type CreateRequest struct {
	Room          string `json:"room" validate:"required"`
	Date          string `json:"date" validate:"required"`
	Slot          string `json:"slot" validate:"required"` // display label, e.g. "6:00 PM"
	ContactNumber string `json:"contact_number" validate:"required"`
}

// View is a booking as returned to clients, slot rendered as its label.
type View struct {
	ID            string `json:"id"`
	Room          string `json:"room"`
	Date          string `json:"date"`
	Slot          string `json:"slot"`
	ContactNumber string `json:"contact_number,omitempty"`
}

type Service interface {
	AvailableSlots(ctx context.Context, room, date string) ([]string, error)
	Create(ctx context.Context, accountID string, req CreateRequest) (*View, error)
	ListMine(ctx context.Context, accountID string) ([]View, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

func validRoom(room string) bool {
	for _, r := range rooms {
		if r == room {
			return true
		}
	}
	return false
}

func slotByLabel(label string) (slotDef, bool) {
	for _, s := range slots {
		if s.Label == label {
			return s, true
		}
	}
	return slotDef{}, false
}

func slotLabel(key string) string {
	for _, s := range slots {
		if s.Key == key {
			return s.Label
		}
	}
	return key
}

func validateRoomDate(room, date string) error {
	if !validRoom(room) {
		return fmt.Errorf("room must be K1, K2, or K3: %w", domain.ErrBadRequest)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", domain.ErrBadRequest)
	}
	return nil
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func (s *service) AvailableSlots(ctx context.Context, room, date string) ([]string, error) {
	if err := validateRoomDate(room, date); err != nil {
		return nil, err
	}
	booked, err := s.store.BookedSlotKeys(ctx, room, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, k := range booked {
		taken[k] = true
	}
	available := make([]string, 0, len(slots))
	for _, sl := range slots {
		if !taken[sl.Key] {
			available = append(available, sl.Label)
		}
	}
	return available, nil
}

func (s *service) Create(ctx context.Context, accountID string, req CreateRequest) (*View, error) {
	if err := validateRoomDate(req.Room, req.Date); err != nil {
		return nil, err
	}
	sl, ok := slotByLabel(req.Slot)
	if !ok {
		return nil, fmt.Errorf("invalid slot: %w", domain.ErrBadRequest)
	}
	contact := strings.TrimSpace(req.ContactNumber)
	if digitCount(contact) < 10 {
		return nil, fmt.Errorf("valid contact number is required (at least 10 digits): %w", domain.ErrBadRequest)
	}

	// No availability pre-check: the conditional insert is the arbiter, so
	// concurrent requests for the same cell cannot both succeed.
	b := &domain.Booking{
		RoomDate:      req.Room + "#" + req.Date,
		Slot:          sl.Key,
		BookingID:     id.New(),
		Room:          req.Room,
		Date:          req.Date,
		DateSlot:      req.Date + "#" + sl.Key,
		ContactNumber: contact,
		AccountID:     accountID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, b); err != nil {
		return nil, err
	}
	return &View{
		ID:            b.BookingID,
		Room:          b.Room,
		Date:          b.Date,
		Slot:          sl.Label,
		ContactNumber: b.ContactNumber,
	}, nil
}

func (s *service) ListMine(ctx context.Context, accountID string) ([]View, error) {
	bookings, err := s.store.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, View{
			ID:   b.BookingID,
			Room: b.Room,
			Date: b.Date,
			Slot: slotLabel(b.Slot),
		})
	}
	return views, nil
}
