package domain

// Credential is a single-use, time-boxed secret. Two kinds share the shape:
//
//	verification code — PK "verify#<email>", 6-digit Code, redeemed by marking used
//	hand-off code     — PK "handoff#<code>", AccountID set, redeemed by delete
//
// ExpiresAt is a Unix timestamp used as the DynamoDB TTL attribute; expiry is
// additionally enforced at redemption time since TTL purging is lazy.
type Credential struct {
	PK        string `dynamodbav:"pk"`
	Code      string `dynamodbav:"code"`
	AccountID string `dynamodbav:"account_id,omitempty"`
	Used      bool   `dynamodbav:"used"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}
