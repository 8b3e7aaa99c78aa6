package dynamodb

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sagarc03/notes"
)

// API is the subset of the DynamoDB client used by the store.
// *dynamodb.Client satisfies it.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Config holds the connection settings for DynamoDB. Empty fields fall back
// to the AWS default credential and region chain.
type Config struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

var validTableName = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,255}$`)

// ValidateTableName checks name against the DynamoDB table naming rules.
func ValidateTableName(name string) error {
	if !validTableName.MatchString(name) {
		return fmt.Errorf("invalid dynamodb table name: %q (must match %s)", name, validTableName)
	}
	return nil
}

type database struct {
	client    API
	tableName string
}

// Connect builds a DynamoDB client from cfg.
func Connect(ctx context.Context, cfg Config, tables notes.Tables) (*database, error) {
	if err := ValidateTableName(tables.Notes); err != nil {
		return nil, fmt.Errorf("connect dynamodb: %w", err)
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect dynamodb: load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return New(client, tables), nil
}

// New wraps an existing client. The table name is not validated.
func New(client API, tables notes.Tables) *database {
	return &database{client: client, tableName: tables.Notes}
}

// Ping verifies DynamoDB is reachable. A missing table still counts as
// reachable; Validate reports it.
func (d *database) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.tableName)})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("ping dynamodb: %w", err)
	}
	return nil
}

// Migrate creates the notes table when it does not exist.
func (d *database) Migrate(ctx context.Context) error {
	if err := createTable(ctx, d.client, d.tableName); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the table exists with the expected key schema.
func (d *database) Validate(ctx context.Context) error {
	if err := validateTable(ctx, d.client, d.tableName); err != nil {
		return fmt.Errorf("validate schema %s: %w", d.tableName, err)
	}
	return nil
}

// GetStore returns the note store backed by this table.
func (d *database) GetStore() notes.Store {
	return &repo{client: d.client, tableName: d.tableName}
}

// Close is a no-op; the client holds no connections that need releasing.
func (d *database) Close() error {
	return nil
}
