package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/13x54n/thamelbar/internal/domain"
)

// PointsRepo appends immutable point transactions. The append and the
// account's balance increment ride in one TransactWriteItems call, so the
// ledger sum and the denormalized balance cannot diverge, crash or no crash.
type PointsRepo struct {
	client        *dynamodb.Client
	tableName     string
	accountsTable string
}

func NewPointsRepo(client *dynamodb.Client, tableName, accountsTable string) *PointsRepo {
	return &PointsRepo{client: client, tableName: tableName, accountsTable: accountsTable}
}

// Append atomically adds tx.Points to the account balance and writes the
// ledger entry. Returns domain.ErrNotFound if the account vanished.
func (r *PointsRepo) Append(ctx context.Context, tx *domain.PointsTransaction) error {
	item, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(r.accountsTable),
					Key:                 strKey("account_id", tx.AccountID),
					UpdateExpression:    aws.String("ADD points :p"),
					ConditionExpression: aws.String("attribute_exists(account_id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":p": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", tx.Points)},
					},
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.tableName),
					Item:      item,
				},
			},
		},
	})
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return fmt.Errorf("account not found: %w", domain.ErrNotFound)
			}
		}
	}
	return err
}

// ListByAccount returns the most recent transactions first, up to limit.
func (r *PointsRepo) ListByAccount(ctx context.Context, accountID string, limit int32) ([]domain.PointsTransaction, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("account_id-created_at-index"),
		KeyConditionExpression: aws.String("account_id = :a"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: accountID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var txs []domain.PointsTransaction
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
