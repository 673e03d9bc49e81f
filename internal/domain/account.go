package domain

import "time"

// Auth provider tags. A local account that later signs in through the
// federated provider is converted in place (see identity.Service).
const (
	ProviderLocal     = "local"
	ProviderFederated = "federated"
)

// Account is the canonical member record. Email is unique (stored lowercase);
// SubjectID is the federated provider's subject and is unique when present.
type Account struct {
	AccountID    string    `json:"id" dynamodbav:"account_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Provider     string    `json:"-" dynamodbav:"provider"` // "local" | "federated"
	SubjectID    string    `json:"-" dynamodbav:"subject_id,omitempty"`
	Verified     bool      `json:"verified" dynamodbav:"verified"`
	Points       int64     `json:"points" dynamodbav:"points"`
	PushTarget   *string   `json:"-" dynamodbav:"push_target"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}
