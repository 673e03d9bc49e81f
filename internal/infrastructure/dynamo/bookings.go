package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/13x54n/thamelbar/internal/domain"
)

// BookingRepo provides typed DynamoDB operations for the karaoke bookings
// table. Key schema: PK room_date ("K1#2025-06-01"), SK slot ("18:00") — the
// one-booking-per-(room,date,slot) invariant is the table key itself.
type BookingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBookingRepo(client *dynamodb.Client, tableName string) *BookingRepo {
	return &BookingRepo{client: client, tableName: tableName}
}

// Insert writes the booking with an attribute_not_exists condition. Of any
// number of concurrent attempts on the same cell exactly one wins; the rest
// get domain.ErrConflict. There is deliberately no existence pre-check.
func (r *BookingRepo) Insert(ctx context.Context, b *domain.Booking) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(room_date)"),
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("this slot is no longer available: %w", domain.ErrConflict)
	}
	return err
}

// BookedSlotKeys returns the 24h slot keys already taken for a room on a date.
func (r *BookingRepo) BookedSlotKeys(ctx context.Context, room, date string) ([]string, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("room_date = :rd"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rd": &types.AttributeValueMemberS{Value: room + "#" + date},
		},
	})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		if s, ok := item["slot"].(*types.AttributeValueMemberS); ok {
			keys = append(keys, s.Value)
		}
	}
	return keys, nil
}

// ListByAccount returns a member's bookings ordered by date then slot,
// via the account-index GSI (hash account_id, range date_slot).
func (r *BookingRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Booking, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("account-index"),
		KeyConditionExpression: aws.String("account_id = :a"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: accountID},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	var bookings []domain.Booking
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}
