package keybackend

import (
	"github.com/sagarc03/notes"
)

// KeysConfig holds configuration for loading access keys.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"` // Inline key pairs from config
	File   string    `mapstructure:"file"`   // Path to JSON or YAML file containing key pairs
}

// NewCredentialStore creates a CredentialStore from the given configuration.
// It loads keys from both inline config and file (if specified),
// merging them into a single store. File keys take precedence over inline keys
// if there are duplicates.
func NewCredentialStore(cfg KeysConfig) (notes.CredentialStore, error) {
	keys := make(map[string]notes.Credential)

	for _, p := range cfg.Inline {
		if p.valid() {
			keys[p.AccessKey] = p.credential()
		}
	}

	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fileKeys {
			keys[k] = v
		}
	}

	return NewMapCredentialStore(keys), nil
}
