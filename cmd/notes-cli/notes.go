package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/notes"
	"github.com/sagarc03/notes/clientcli"
)

var (
	noteContent    string
	noteFile       string
	noteAttachment string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Long: `Create a note owned by the signing credential.

Examples:
  notes-cli create --content "buy milk"
  notes-cli create --file draft.md --attachment uploads/scan.png
  echo "from stdin" | notes-cli create --file -`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your notes",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a note's content and attachment",
	Long: `Replace a note's content and attachment.

Fields that are not given are cleared on the server, so pass every field
you want to keep.

Examples:
  notes-cli update 0190f1a2-... --content "new text"
  notes-cli update 0190f1a2-... --content "new text" --attachment a.png`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id> [id...]",
	Aliases: []string{"rm"},
	Short:   "Delete notes",
	Long: `Delete one or more notes. Deleting a note that does not exist succeeds.

Examples:
  notes-cli delete 0190f1a2-...
  notes-cli delete -q id1 id2 id3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	for _, cmd := range []*cobra.Command{createCmd, updateCmd} {
		cmd.Flags().StringVar(&noteContent, "content", "", "note text")
		cmd.Flags().StringVarP(&noteFile, "file", "f", "", "read note text from a file (- for stdin)")
		cmd.Flags().StringVar(&noteAttachment, "attachment", "", "attachment key")
		cmd.MarkFlagsMutuallyExclusive("content", "file")
	}
}

// readContent returns the note text from --content or --file, and whether
// either was given.
func readContent(cmd *cobra.Command) (string, bool, error) {
	if cmd.Flags().Changed("content") {
		return noteContent, true, nil
	}
	if !cmd.Flags().Changed("file") {
		return "", false, nil
	}

	var (
		data []byte
		err  error
	)
	if noteFile == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(noteFile) //#nosec G304 -- path is user-provided
	}
	if err != nil {
		return "", false, fmt.Errorf("read content: %w", err)
	}

	return string(data), true, nil
}

func optionalAttachment(cmd *cobra.Command) *string {
	if !cmd.Flags().Changed("attachment") {
		return nil
	}
	return notes.String(noteAttachment)
}

// fail prints err through the formatter and returns it.
func fail(cmd *cobra.Command, err error) error {
	_ = getFormatter().FormatError(cmd.ErrOrStderr(), err)
	return &exitError{code: 1}
}

func runCreate(cmd *cobra.Command, _ []string) error {
	content, _, err := readContent(cmd)
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	n, err := client.Create(cmd.Context(), notes.CreateNoteRequest{
		Content:    content,
		Attachment: optionalAttachment(cmd),
	})
	if err != nil {
		return fail(cmd, err)
	}

	return getFormatter().FormatNote(cmd.OutOrStdout(), n)
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	n, err := client.Get(cmd.Context(), args[0])
	if err != nil {
		return fail(cmd, err)
	}

	return getFormatter().FormatNote(cmd.OutOrStdout(), n)
}

func runList(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	items, err := client.List(cmd.Context())
	if err != nil {
		return fail(cmd, err)
	}

	return getFormatter().FormatNotes(cmd.OutOrStdout(), items)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	content, ok, err := readContent(cmd)
	if err != nil {
		return err
	}

	req := notes.UpdateNoteRequest{Attachment: optionalAttachment(cmd)}
	if ok {
		req.Content = notes.String(content)
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Update(cmd.Context(), args[0], req); err != nil {
		return fail(cmd, err)
	}

	return getFormatter().FormatUpdate(cmd.OutOrStdout(), args[0])
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{IDs: args})
	if err != nil {
		return fail(cmd, err)
	}

	if err := getFormatter().FormatDelete(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	// Return error if any deletes failed
	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
