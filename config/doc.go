// Package config provides configuration loading and validation for notesd.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (NOTES_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with NOTES_ prefix:
//   - server.port → NOTES_SERVER_PORT
//   - database.type → NOTES_DATABASE_TYPE
//   - auth.mode → NOTES_AUTH_MODE
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port, error_status (uniform/typed) and max_body_bytes
//   - Database: type (sqlite/postgres/dynamodb), DSN, table names and DynamoDB settings
//   - Auth: identity mode (none/sigv4/header), SigV4 scope, trusted header and keys
//   - Log: logging level
//   - Env: dev or prod, selecting the log format
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Error status must be uniform or typed
//   - Auth mode must be none, sigv4 or header; sigv4 needs a region and service
//   - Log level must be debug, info, warn, or error
package config
