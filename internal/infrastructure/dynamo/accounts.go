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

// AccountRepo provides typed DynamoDB operations for the accounts table.
//
// Email and federated-subject uniqueness are enforced with guard items keyed
// "uniq/email/<email>" and "uniq/subject/<uid>" in the same table, written with
// attribute_not_exists conditions. Guard items carry no email/subject_id
// attributes, so they never surface in the GSIs.
type AccountRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAccountRepo(client *dynamodb.Client, tableName string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName}
}

// Create persists a new account after claiming its unique email (and subject,
// when present). Returns domain.ErrConflict if either claim loses the race.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	if err := r.claim(ctx, "uniq/email/"+a.Email, a.AccountID); err != nil {
		return fmt.Errorf("email already registered: %w", err)
	}
	if a.SubjectID != "" {
		if err := r.ClaimSubject(ctx, a.SubjectID, a.AccountID); err != nil {
			return err
		}
	}
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ClaimSubject reserves a federated subject id for the given account. Used on
// create and when a local account is merged into the federated provider.
func (r *AccountRepo) ClaimSubject(ctx context.Context, subjectID, accountID string) error {
	if err := r.claim(ctx, "uniq/subject/"+subjectID, accountID); err != nil {
		return fmt.Errorf("subject already linked: %w", err)
	}
	return nil
}

func (r *AccountRepo) claim(ctx context.Context, key, ownerID string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"account_id": &types.AttributeValueMemberS{Value: key},
			"owner":      &types.AttributeValueMemberS{Value: ownerID},
		},
		ConditionExpression: aws.String("attribute_not_exists(account_id)"),
	})
	if isConditionalCheckFailed(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("account_id", accountID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.queryGSI(ctx, "email-index", fieldEmail, email)
}

func (r *AccountRepo) GetBySubject(ctx context.Context, subjectID string) (*domain.Account, error) {
	return r.queryGSI(ctx, "subject-index", fieldSubjectID, subjectID)
}

func (r *AccountRepo) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("account_id", accountID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *AccountRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.Account, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}
