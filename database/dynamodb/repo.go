// Package dynamodb implements the note store on an Amazon DynamoDB table
// keyed by ownerId (partition) and itemId (sort).
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sagarc03/notes"
)

type repo struct {
	client    API
	tableName string
}

func itemKey(key notes.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrOwnerID: &types.AttributeValueMemberS{Value: key.OwnerID},
		attrItemID:  &types.AttributeValueMemberS{Value: key.ItemID},
	}
}

func stringOrNull(p *string) types.AttributeValue {
	if p == nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	return &types.AttributeValueMemberS{Value: *p}
}

func (r *repo) Get(ctx context.Context, key notes.Key) (notes.Note, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       itemKey(key),
	})
	if err != nil {
		return notes.Note{}, fmt.Errorf("get: %w", err)
	}
	if len(out.Item) == 0 {
		return notes.Note{}, notes.ErrNotFound
	}

	var n notes.Note
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return notes.Note{}, fmt.Errorf("get: unmarshal: %w", err)
	}

	return n, nil
}

func (r *repo) Put(ctx context.Context, n notes.Note) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("put: marshal: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}

	return nil
}

// Update only touches existing items; a failed existence condition is
// reported as success.
func (r *repo) Update(ctx context.Context, key notes.Key, content, attachment *string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 itemKey(key),
		UpdateExpression:    aws.String("SET #content = :content, #attachment = :attachment"),
		ConditionExpression: aws.String("attribute_exists(#itemId)"),
		ExpressionAttributeNames: map[string]string{
			"#content":    "content",
			"#attachment": "attachment",
			"#itemId":     attrItemID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":content":    stringOrNull(content),
			":attachment": stringOrNull(attachment),
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil
		}
		return fmt.Errorf("update: %w", err)
	}

	return nil
}

func (r *repo) Delete(ctx context.Context, key notes.Key) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       itemKey(key),
	})
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

func (r *repo) Query(ctx context.Context, ownerID string) ([]notes.Note, error) {
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#ownerId = :ownerId"),
		ExpressionAttributeNames: map[string]string{
			"#ownerId": attrOwnerID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ownerId": &types.AttributeValueMemberS{Value: ownerID},
		},
	})

	items := make([]notes.Note, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}

		var batch []notes.Note
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("query: unmarshal: %w", err)
		}
		items = append(items, batch...)
	}

	return items, nil
}
