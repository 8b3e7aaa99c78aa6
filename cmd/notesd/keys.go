package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/notes/config"
	"github.com/sagarc03/notes/keybackend"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage access keys",
}

var keysAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Generate an access key for an owner",
	Long: `Generate a new access key and secret for an owner id and append it
to the keys file (auth.keys.file, or --file).

The secret is printed once. Store it somewhere safe.

Examples:
  # Prompt for the owner id
  notesd keys add

  # Non-interactive
  notesd keys add --owner alice --file keys.yaml`,
	RunE: runKeysAdd,
}

var (
	keysOwner string
	keysFile  string
)

func init() {
	keysAddCmd.Flags().StringVarP(&keysOwner, "owner", "o", "", "owner id the key acts as")
	keysAddCmd.Flags().StringVarP(&keysFile, "file", "f", "", "keys file (default: auth.keys.file)")

	keysCmd.AddCommand(keysAddCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	path := keysFile
	if path == "" {
		path = cfg.Auth.Keys.File
	}
	if path == "" {
		return errors.New("no keys file: set auth.keys.file or pass --file")
	}

	owner := strings.TrimSpace(keysOwner)
	if owner == "" {
		prompt := promptui.Prompt{
			Label: "Owner ID",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("owner id is required")
				}
				return nil
			},
		}
		owner, err = prompt.Run()
		if err != nil {
			return handlePromptError(err)
		}
		owner = strings.TrimSpace(owner)
	}

	pair, err := keybackend.GenerateKeyPair(owner)
	if err != nil {
		return err
	}

	if err := keybackend.AppendKeyToFile(path, pair); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Owner ID:   %s\n", pair.OwnerID)
	_, _ = fmt.Fprintf(out, "Access Key: %s\n", pair.AccessKey)
	_, _ = fmt.Fprintf(out, "Secret Key: %s\n", pair.SecretKey)
	_, _ = fmt.Fprintf(out, "Saved to %s\n", path)

	return nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
