package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrOwnerID = "ownerId"
	attrItemID  = "itemId"

	tableWaitTimeout = 2 * time.Minute
)

var errTableMissing = errors.New("table does not exist")

func isNotFound(err error) bool {
	var nf *types.ResourceNotFoundException
	return errors.As(err, &nf)
}

func createTable(ctx context.Context, client API, tableName string) error {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("describe table: %w", err)
	}

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrOwnerID), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrItemID), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrOwnerID), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrItemID), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("create table: %w", err)
		}
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)}, tableWaitTimeout); err != nil {
		return fmt.Errorf("wait for table: %w", err)
	}

	return nil
}

func validateTable(ctx context.Context, client API, tableName string) error {
	out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("table %s: %w", tableName, errTableMissing)
		}
		return fmt.Errorf("describe table: %w", err)
	}
	if out.Table == nil {
		return fmt.Errorf("table %s: %w", tableName, errTableMissing)
	}

	keys := make(map[string]types.KeyType, len(out.Table.KeySchema))
	for _, k := range out.Table.KeySchema {
		keys[aws.ToString(k.AttributeName)] = k.KeyType
	}
	attrTypes := make(map[string]types.ScalarAttributeType, len(out.Table.AttributeDefinitions))
	for _, a := range out.Table.AttributeDefinitions {
		attrTypes[aws.ToString(a.AttributeName)] = a.AttributeType
	}

	expected := []struct {
		name    string
		keyType types.KeyType
	}{
		{attrOwnerID, types.KeyTypeHash},
		{attrItemID, types.KeyTypeRange},
	}

	var problems []error
	if len(keys) != len(expected) {
		problems = append(problems, fmt.Errorf("expected %d key attributes, got %d", len(expected), len(keys)))
	}
	for _, e := range expected {
		if got, ok := keys[e.name]; !ok || got != e.keyType {
			problems = append(problems, fmt.Errorf("key %s: expected %s, got %q", e.name, e.keyType, got))
		}
		if got := attrTypes[e.name]; got != types.ScalarAttributeTypeS {
			problems = append(problems, fmt.Errorf("attribute %s: expected type S, got %q", e.name, got))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("table %s schema validation failed: %w", tableName, errors.Join(problems...))
	}

	return nil
}
