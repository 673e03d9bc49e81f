package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/13x54n/thamelbar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Insert(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockStore) BookedSlotKeys(ctx context.Context, room, date string) ([]string, error) {
	args := m.Called(ctx, room, date)
	if keys, _ := args.Get(0).([]string); keys != nil {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) ListByAccount(ctx context.Context, accountID string) ([]domain.Booking, error) {
	args := m.Called(ctx, accountID)
	if bs, _ := args.Get(0).([]domain.Booking); bs != nil {
		return bs, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAvailableSlots_FiltersBookedAndKeepsOrder(t *testing.T) {
	st := &mockStore{}
	st.On("BookedSlotKeys", mock.Anything, "K1", "2026-09-05").
		Return([]string{"19:30", "00:00"}, nil)

	svc := NewService(st)
	available, err := svc.AvailableSlots(context.Background(), "K1", "2026-09-05")

	require.NoError(t, err)
	assert.Equal(t, []string{"6:00 PM", "9:00 PM", "10:30 PM"}, available)
}

func TestAvailableSlots_AllFree(t *testing.T) {
	st := &mockStore{}
	st.On("BookedSlotKeys", mock.Anything, "K3", "2026-09-05").Return([]string{}, nil)

	svc := NewService(st)
	available, err := svc.AvailableSlots(context.Background(), "K3", "2026-09-05")

	require.NoError(t, err)
	assert.Equal(t, []string{"6:00 PM", "7:30 PM", "9:00 PM", "10:30 PM", "12:00 AM"}, available)
}

func TestAvailableSlots_BadRoomOrDate(t *testing.T) {
	svc := NewService(&mockStore{})

	_, err := svc.AvailableSlots(context.Background(), "K9", "2026-09-05")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = svc.AvailableSlots(context.Background(), "K1", "05-09-2026")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_HappyPath(t *testing.T) {
	st := &mockStore{}
	var inserted *domain.Booking
	st.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Booking")).
		Run(func(args mock.Arguments) { inserted = args.Get(1).(*domain.Booking) }).Return(nil)

	svc := NewService(st)
	view, err := svc.Create(context.Background(), "acc1", CreateRequest{
		Room: "K2", Date: "2026-09-05", Slot: "7:30 PM", ContactNumber: "(416) 555-0199",
	})

	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, "K2#2026-09-05", inserted.RoomDate)
	assert.Equal(t, "19:30", inserted.Slot)
	assert.Equal(t, "2026-09-05#19:30", inserted.DateSlot)
	assert.Equal(t, "acc1", inserted.AccountID)
	assert.Equal(t, "7:30 PM", view.Slot)
	assert.Equal(t, inserted.BookingID, view.ID)
}

func TestCreate_UnknownSlotLabel(t *testing.T) {
	svc := NewService(&mockStore{})
	_, err := svc.Create(context.Background(), "acc1", CreateRequest{
		Room: "K1", Date: "2026-09-05", Slot: "8:00 PM", ContactNumber: "4165550199",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_ContactNumberTooShort(t *testing.T) {
	svc := NewService(&mockStore{})
	_, err := svc.Create(context.Background(), "acc1", CreateRequest{
		Room: "K1", Date: "2026-09-05", Slot: "6:00 PM", ContactNumber: "555-0199",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_ConflictPassesThrough(t *testing.T) {
	st := &mockStore{}
	st.On("Insert", mock.Anything, mock.Anything).
		Return(fmt.Errorf("this slot is no longer available: %w", domain.ErrConflict))

	svc := NewService(st)
	_, err := svc.Create(context.Background(), "acc1", CreateRequest{
		Room: "K1", Date: "2026-09-05", Slot: "6:00 PM", ContactNumber: "4165550199",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestListMine_RendersLabels(t *testing.T) {
	st := &mockStore{}
	st.On("ListByAccount", mock.Anything, "acc1").Return([]domain.Booking{
		{BookingID: "b1", Room: "K1", Date: "2026-09-05", Slot: "18:00"},
		{BookingID: "b2", Room: "K3", Date: "2026-09-06", Slot: "00:00"},
	}, nil)

	svc := NewService(st)
	views, err := svc.ListMine(context.Background(), "acc1")

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "6:00 PM", views[0].Slot)
	assert.Equal(t, "12:00 AM", views[1].Slot)
	assert.Empty(t, views[0].ContactNumber)
}
