package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/NguyenTrongHinh/shop-management-system/internal/model"
)

// DynamoStore implements Store on DynamoDB, one table per collection. Tables
// share a name prefix and use a single string partition key. Secondary
// lookups (email, username, category name) go through scans with filter
// expressions; the catalog is small enough that no GSI is maintained.
type DynamoStore struct {
	users      dynamoTable[model.User]
	products   dynamoTable[model.Product]
	categories dynamoTable[model.Category]
	carts      dynamoTable[model.Cart]
	orders     dynamoTable[model.Order]
}

func NewDynamoStore(client *dynamodb.Client, tablePrefix string) *DynamoStore {
	return &DynamoStore{
		users:      dynamoTable[model.User]{client: client, table: tablePrefix + "_users", keyAttr: "id"},
		products:   dynamoTable[model.Product]{client: client, table: tablePrefix + "_products", keyAttr: "id"},
		categories: dynamoTable[model.Category]{client: client, table: tablePrefix + "_categories", keyAttr: "id"},
		carts:      dynamoTable[model.Cart]{client: client, table: tablePrefix + "_carts", keyAttr: "user_id"},
		orders:     dynamoTable[model.Order]{client: client, table: tablePrefix + "_orders", keyAttr: "id"},
	}
}

func (s *DynamoStore) Users() UserStore          { return &dynamoUsers{t: s.users} }
func (s *DynamoStore) Products() ProductStore    { return &dynamoProducts{t: s.products} }
func (s *DynamoStore) Categories() CategoryStore { return &dynamoCategories{t: s.categories} }
func (s *DynamoStore) Carts() CartStore          { return &dynamoCarts{t: s.carts} }
func (s *DynamoStore) Orders() OrderStore        { return &dynamoOrders{t: s.orders} }

// dynamoTable wraps the item-level operations shared by all collections.
type dynamoTable[T any] struct {
	client  *dynamodb.Client
	table   string
	keyAttr string
}

func (t *dynamoTable[T]) put(ctx context.Context, item *T) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put item in %s: %w", t.table, err)
	}
	return nil
}

func (t *dynamoTable[T]) get(ctx context.Context, key string) (*T, error) {
	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.table),
		Key: map[string]types.AttributeValue{
			t.keyAttr: &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item from %s: %w", t.table, err)
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	var item T
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &item, nil
}

// scan reads the whole table, or the subset matching filterExpr when one is
// given, following pagination keys until exhausted. names aliases reserved
// attribute words ("name", "status") in the filter expression.
func (t *dynamoTable[T]) scan(ctx context.Context, filterExpr string, values map[string]types.AttributeValue, names map[string]string) ([]*T, error) {
	var items []*T
	var startKey map[string]types.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(t.table),
			ExclusiveStartKey: startKey,
		}
		if filterExpr != "" {
			input.FilterExpression = aws.String(filterExpr)
			input.ExpressionAttributeValues = values
			if len(names) > 0 {
				input.ExpressionAttributeNames = names
			}
		}

		result, err := t.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.table, err)
		}

		for _, raw := range result.Items {
			var item T
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			items = append(items, &item)
		}

		if result.LastEvaluatedKey == nil {
			return items, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

// first returns the first item matching the filter, or ErrNotFound.
func (t *dynamoTable[T]) first(ctx context.Context, filterExpr string, values map[string]types.AttributeValue, names map[string]string) (*T, error) {
	items, err := t.scan(ctx, filterExpr, values, names)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

func (t *dynamoTable[T]) delete(ctx context.Context, key string) error {
	result, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.table),
		Key: map[string]types.AttributeValue{
			t.keyAttr: &types.AttributeValueMemberS{Value: key},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("delete item from %s: %w", t.table, err)
	}
	if len(result.Attributes) == 0 {
		return ErrNotFound
	}
	return nil
}

func strValue(s string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		":v": &types.AttributeValueMemberS{Value: s},
	}
}

// Users

type dynamoUsers struct {
	t dynamoTable[model.User]
}

func (r *dynamoUsers) Put(ctx context.Context, u *model.User) error { return r.t.put(ctx, u) }

func (r *dynamoUsers) Get(ctx context.Context, id string) (*model.User, error) {
	return r.t.get(ctx, id)
}

func (r *dynamoUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.t.first(ctx, "email = :v", strValue(email), nil)
}

func (r *dynamoUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.t.first(ctx, "username = :v", strValue(username), nil)
}

func (r *dynamoUsers) List(ctx context.Context) ([]*model.User, error) {
	return r.t.scan(ctx, "", nil, nil)
}

func (r *dynamoUsers) Delete(ctx context.Context, id string) error { return r.t.delete(ctx, id) }

// Products

type dynamoProducts struct {
	t dynamoTable[model.Product]
}

func (r *dynamoProducts) Put(ctx context.Context, p *model.Product) error { return r.t.put(ctx, p) }

func (r *dynamoProducts) Get(ctx context.Context, id string) (*model.Product, error) {
	return r.t.get(ctx, id)
}

func (r *dynamoProducts) List(ctx context.Context) ([]*model.Product, error) {
	return r.t.scan(ctx, "", nil, nil)
}

func (r *dynamoProducts) Delete(ctx context.Context, id string) error { return r.t.delete(ctx, id) }

// Categories

type dynamoCategories struct {
	t dynamoTable[model.Category]
}

func (r *dynamoCategories) Put(ctx context.Context, c *model.Category) error { return r.t.put(ctx, c) }

func (r *dynamoCategories) Get(ctx context.Context, id string) (*model.Category, error) {
	return r.t.get(ctx, id)
}

func (r *dynamoCategories) GetByName(ctx context.Context, name string) (*model.Category, error) {
	return r.t.first(ctx, "#n = :v", strValue(name), map[string]string{"#n": "name"})
}

func (r *dynamoCategories) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.t.first(ctx, "slug = :v", strValue(slug), nil)
}

func (r *dynamoCategories) List(ctx context.Context) ([]*model.Category, error) {
	return r.t.scan(ctx, "", nil, nil)
}

func (r *dynamoCategories) Delete(ctx context.Context, id string) error { return r.t.delete(ctx, id) }

// Carts

type dynamoCarts struct {
	t dynamoTable[model.Cart]
}

func (r *dynamoCarts) Put(ctx context.Context, c *model.Cart) error { return r.t.put(ctx, c) }

func (r *dynamoCarts) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	return r.t.get(ctx, userID)
}

func (r *dynamoCarts) DeleteByUser(ctx context.Context, userID string) error {
	return r.t.delete(ctx, userID)
}

// Orders

type dynamoOrders struct {
	t dynamoTable[model.Order]
}

func (r *dynamoOrders) Put(ctx context.Context, o *model.Order) error { return r.t.put(ctx, o) }

func (r *dynamoOrders) Get(ctx context.Context, id string) (*model.Order, error) {
	return r.t.get(ctx, id)
}

func (r *dynamoOrders) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	return r.t.scan(ctx, "user_id = :v", strValue(userID), nil)
}

func (r *dynamoOrders) List(ctx context.Context) ([]*model.Order, error) {
	return r.t.scan(ctx, "", nil, nil)
}

func (r *dynamoOrders) Delete(ctx context.Context, id string) error { return r.t.delete(ctx, id) }
