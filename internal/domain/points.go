package domain

import "time"

// Points transaction kinds. "redeem" is modeled for the ledger read path but
// no operation currently writes it.
const (
	PointsEarn   = "earn"
	PointsRedeem = "redeem"
)

// PointsTransaction is an immutable ledger entry. The signed Points deltas of
// an account's transactions must always sum to the account's stored balance;
// both are written in a single DynamoDB transaction.
type PointsTransaction struct {
	TransactionID string    `json:"id" dynamodbav:"transaction_id"`
	AccountID     string    `json:"-" dynamodbav:"account_id"`
	Kind          string    `json:"type" dynamodbav:"kind"` // "earn" | "redeem"
	Amount        float64   `json:"amount" dynamodbav:"amount"`
	Points        int64     `json:"points" dynamodbav:"points"`
	CreatedAt     time.Time `json:"date" dynamodbav:"created_at"`
}
