package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"paylinks/internal/model"
)

// DynamoAPI is the subset of the DynamoDB client the repository uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// dynamoDecimal stores amounts as DynamoDB numbers built from the exact
// decimal string, never through float64.
type dynamoDecimal struct {
	decimal.Decimal
}

func (d dynamoDecimal) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: d.String()}, nil
}

func (d *dynamoDecimal) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	default:
		return fmt.Errorf("amount: unexpected attribute type %T", av)
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	d.Decimal = parsed
	return nil
}

type dynamoItem struct {
	ID                   string        `dynamodbav:"id"`
	User                 string        `dynamodbav:"user"`
	Amount               dynamoDecimal `dynamodbav:"amount"`
	Description          string        `dynamodbav:"description,omitempty"`
	Status               string        `dynamodbav:"status"`
	PaymentProvider      string        `dynamodbav:"payment_provider"`
	ProviderPreferenceID string        `dynamodbav:"provider_preference_id"`
	PaymentURL           string        `dynamodbav:"payment_url"`
	ProviderPaymentID    string        `dynamodbav:"provider_payment_id,omitempty"`
	CreatedAt            string        `dynamodbav:"created_at"`
	UpdatedAt            string        `dynamodbav:"updated_at,omitempty"`
}

func toDynamoItem(link *model.PaymentLink) dynamoItem {
	item := dynamoItem{
		ID:                   link.ID,
		User:                 link.User,
		Amount:               dynamoDecimal{link.Amount},
		Description:          link.Description,
		Status:               link.Status,
		PaymentProvider:      link.PaymentProvider,
		ProviderPreferenceID: link.ProviderPreferenceID,
		PaymentURL:           link.PaymentURL,
		CreatedAt:            model.FormatTimestamp(link.CreatedAt),
	}
	if link.ProviderPaymentID != nil {
		item.ProviderPaymentID = *link.ProviderPaymentID
	}
	if link.UpdatedAt != nil {
		item.UpdatedAt = model.FormatTimestamp(*link.UpdatedAt)
	}
	return item
}

func (i dynamoItem) toModel() (*model.PaymentLink, error) {
	created, err := time.Parse(time.RFC3339Nano, i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("link %s created_at: %w", i.ID, err)
	}
	link := &model.PaymentLink{
		ID:                   i.ID,
		User:                 i.User,
		Amount:               i.Amount.Decimal,
		Description:          i.Description,
		Status:               i.Status,
		PaymentProvider:      i.PaymentProvider,
		ProviderPreferenceID: i.ProviderPreferenceID,
		PaymentURL:           i.PaymentURL,
		CreatedAt:            created.UTC(),
	}
	if i.ProviderPaymentID != "" {
		id := i.ProviderPaymentID
		link.ProviderPaymentID = &id
	}
	if i.UpdatedAt != "" {
		updated, err := time.Parse(time.RFC3339Nano, i.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("link %s updated_at: %w", i.ID, err)
		}
		updated = updated.UTC()
		link.UpdatedAt = &updated
	}
	return link, nil
}

type dynamoLinkRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoLinkRepository creates a link repository on a DynamoDB table with hash key "id".
func NewDynamoLinkRepository(client DynamoAPI, table string) LinkRepository {
	return &dynamoLinkRepository{client: client, table: table}
}

func (r *dynamoLinkRepository) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

// Get finds a link by ID with a consistent read.
func (r *dynamoLinkRepository) Get(ctx context.Context, id string) (*model.PaymentLink, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get link %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("decode link %s: %w", id, err)
	}
	return item.toModel()
}

// Put writes a new item, refusing to overwrite an existing id.
func (r *dynamoLinkRepository) Put(ctx context.Context, link *model.PaymentLink) error {
	av, err := attributevalue.MarshalMap(toDynamoItem(link))
	if err != nil {
		return fmt.Errorf("encode link %s: %w", link.ID, err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("build put condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("put link %s: %w", link.ID, err)
	}
	return nil
}

// Update sets the patched attributes, conditional on the item existing so a
// stray notification cannot create a half-populated record.
func (r *dynamoLinkRepository) Update(ctx context.Context, id string, patch model.LinkPatch) error {
	update := expression.
		Set(expression.Name("status"), expression.Value(patch.Status)).
		Set(expression.Name("updated_at"), expression.Value(model.FormatTimestamp(patch.UpdatedAt)))
	if patch.ProviderPaymentID != nil {
		update = update.Set(expression.Name("provider_payment_id"), expression.Value(*patch.ProviderPaymentID))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("build update expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       r.key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return fmt.Errorf("update link %s: %w", id, err)
	}
	return nil
}

// Scan performs a single Scan page limited to limit items.
func (r *dynamoLinkRepository) Scan(ctx context.Context, limit int) ([]model.PaymentLink, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
		Limit:     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("scan links: %w", err)
	}

	var items []dynamoItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("decode scanned links: %w", err)
	}

	links := make([]model.PaymentLink, 0, len(items))
	for _, item := range items {
		link, err := item.toModel()
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, nil
}

// Ping describes the table.
func (r *dynamoLinkRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	return err
}

// EnsureTable creates the links table (PAY_PER_REQUEST, hash key "id") when
// it does not exist and waits for it to become active.
func EnsureTable(ctx context.Context, client DynamoAPI, table string, maxWait time.Duration) (bool, error) {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err == nil {
		return false, nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return false, fmt.Errorf("describe table %s: %w", table, err)
	}

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
	})
	if err != nil {
		return false, fmt.Errorf("create table %s: %w", table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, maxWait); err != nil {
		return true, fmt.Errorf("wait for table %s: %w", table, err)
	}
	return true, nil
}
