package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/13x54n/thamelbar/internal/domain"
)

// CredentialRepo manages single-use secrets: email verification codes and
// mobile hand-off codes. One table, PK "verify#<email>" or "handoff#<code>",
// with a TTL on expires_at. Redemption is a single conditional write so two
// concurrent redeemers can never both succeed.
//
// Every failure mode (missing, expired, already used) is surfaced as the same
// domain.ErrUnauthorized-wrapped error; callers must not learn which one hit.
type CredentialRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCredentialRepo(client *dynamodb.Client, tableName string) *CredentialRepo {
	return &CredentialRepo{client: client, tableName: tableName}
}

func verifyPK(email string) string { return "verify#" + email }
func handoffPK(code string) string { return "handoff#" + code }

func errInvalidCode() error {
	return fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
}

// PutVerification stores a verification code for the email. The unconditional
// overwrite on "verify#<email>" is what invalidates all previously issued,
// unredeemed codes for that address.
func (r *CredentialRepo) PutVerification(ctx context.Context, email, code string, expiresAt int64) error {
	item, err := attributevalue.MarshalMap(&domain.Credential{
		PK:        verifyPK(email),
		Code:      code,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// RedeemVerification consumes the code for the email in one conditional
// update: it succeeds only if the stored code matches, has not been used, and
// has not expired, and it flips used=true in the same write.
func (r *CredentialRepo) RedeemVerification(ctx context.Context, email, code string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("pk", verifyPK(email)),
		UpdateExpression:    aws.String("SET #u = :t"),
		ConditionExpression: aws.String("#c = :c AND #u = :f AND expires_at > :now"),
		ExpressionAttributeNames: map[string]string{
			"#u": "used",
			"#c": "code",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":c":   &types.AttributeValueMemberS{Value: code},
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", time.Now().Unix())},
		},
	})
	if isConditionalCheckFailed(err) {
		return errInvalidCode()
	}
	return err
}

// PutHandoff stores a hand-off code bound to an account.
func (r *CredentialRepo) PutHandoff(ctx context.Context, hcode, accountID string, expiresAt int64) error {
	item, err := attributevalue.MarshalMap(&domain.Credential{
		PK:        handoffPK(hcode),
		Code:      hcode,
		AccountID: accountID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("handoff code collision: %w", domain.ErrConflict)
	}
	return err
}

// RedeemHandoff consumes the hand-off code and returns the bound account id.
// The record is deleted on first touch whatever the expiry check says, so a
// retried exchange can never replay a code that already failed as expired.
func (r *CredentialRepo) RedeemHandoff(ctx context.Context, hcode string) (string, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("pk", handoffPK(hcode)),
		ConditionExpression: aws.String("attribute_exists(pk)"),
		ReturnValues:        types.ReturnValueAllOld,
	})
	if isConditionalCheckFailed(err) {
		return "", errInvalidCode()
	}
	if err != nil {
		return "", err
	}
	var c domain.Credential
	if err := attributevalue.UnmarshalMap(out.Attributes, &c); err != nil {
		return "", err
	}
	if c.ExpiresAt <= time.Now().Unix() {
		return "", errInvalidCode()
	}
	return c.AccountID, nil
}
