package reward

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/13x54n/thamelbar/internal/domain"
	"github.com/13x54n/thamelbar/internal/pkg/id"
)

const transactionLimit = 50

// AccountStore is the account lookup the ledger needs.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// Ledger persists point transactions. Append must apply the balance increment
// and the ledger row in one atomic storage operation.
type Ledger interface {
	Append(ctx context.Context, tx *domain.PointsTransaction) error
	ListByAccount(ctx context.Context, accountID string, limit int32) ([]domain.PointsTransaction, error)
}

// PushSender delivers the points-earned notification. May be nil.
type PushSender interface {
	SendPush(ctx context.Context, target, title, body string) error
}

// EarnResult summarizes a successful point award.
type EarnResult struct {
	Account     *domain.Account
	Amount      float64
	PointsAdded int64
}

type Service interface {
	Earn(ctx context.Context, email string, amount float64) (*EarnResult, error)
	Transactions(ctx context.Context, accountID string) ([]domain.PointsTransaction, error)
}

type service struct {
	accounts     AccountStore
	ledger       Ledger
	push         PushSender
	pointsPer100 int
}

func NewService(accounts AccountStore, ledger Ledger, push PushSender, pointsPer100 int) Service {
	return &service{accounts: accounts, ledger: ledger, push: push, pointsPer100: pointsPer100}
}

// Earn awards floor(amount/100 × pointsPer100) points for a bill. Fractional
// points are truncated: a $49.99 bill at 10-per-100 yields 4 points, not 5.
// The balance increment and the ledger entry commit together; the push
// notification is fire-and-forget.
func (s *service) Earn(ctx context.Context, email string, amount float64) (*EarnResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !(amount > 0) {
		return nil, fmt.Errorf("valid bill amount is required: %w", domain.ErrBadRequest)
	}

	points := int64(math.Floor(amount / 100 * float64(s.pointsPer100)))
	if points > 0 {
		tx := &domain.PointsTransaction{
			TransactionID: id.New(),
			AccountID:     account.AccountID,
			Kind:          domain.PointsEarn,
			Amount:        amount,
			Points:        points,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.ledger.Append(ctx, tx); err != nil {
			return nil, err
		}
		account.Points += points

		if s.push != nil && account.PushTarget != nil && *account.PushTarget != "" {
			body := fmt.Sprintf("You earned %d pts from your $%.2f purchase!", points, amount)
			if err := s.push.SendPush(ctx, *account.PushTarget, "Points earned", body); err != nil {
				// The award already committed; a lost push is not worth a failure.
				slog.Warn("points push notification failed", "account_id", account.AccountID, "err", err)
			}
		}
	}

	return &EarnResult{Account: account, Amount: amount, PointsAdded: points}, nil
}

func (s *service) Transactions(ctx context.Context, accountID string) ([]domain.PointsTransaction, error) {
	return s.ledger.ListByAccount(ctx, accountID, transactionLimit)
}
