package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sagarc03/notes"
)

// Formatter formats results for output.
type Formatter interface {
	FormatNote(w io.Writer, n notes.Note) error
	FormatNotes(w io.Writer, items []notes.Note) error
	FormatUpdate(w io.Writer, id string) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatNote formats a single note as human-readable text.
// In quiet mode only the id is printed.
func (f *HumanFormatter) FormatNote(w io.Writer, n notes.Note) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, n.ItemID)
		return nil
	}
	_, _ = fmt.Fprintf(w, "ID:         %s\n", n.ItemID)
	_, _ = fmt.Fprintf(w, "Created:    %s\n", formatMillis(n.CreatedAt))
	_, _ = fmt.Fprintf(w, "Attachment: %s\n", orNull(n.Attachment))
	_, _ = fmt.Fprintf(w, "\n%s\n", orNull(n.Content))
	return nil
}

// FormatNotes formats a list of notes as a table.
func (f *HumanFormatter) FormatNotes(w io.Writer, items []notes.Note) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "No notes found")
		return nil
	}

	const previewLen = 50

	// Print header
	_, _ = fmt.Fprintf(w, "%-36s  %-19s  %s\n", "ID", "CREATED", "CONTENT")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", 36), strings.Repeat("-", 19), strings.Repeat("-", previewLen))

	for i := range items {
		n := &items[i]
		preview := strings.ReplaceAll(orNull(n.Content), "\n", " ")
		if len(preview) > previewLen {
			preview = preview[:previewLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-36s  %-19s  %s\n", n.ItemID, formatMillis(n.CreatedAt), preview)
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d note(s)\n", len(items))
	}

	return nil
}

// FormatUpdate reports a successful update.
func (f *HumanFormatter) FormatUpdate(w io.Writer, id string) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Updated: %s\n", id)
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.ID, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.ID)
		}
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatNote formats a note as JSON in the server's wire shape.
func (f *JSONFormatter) FormatNote(w io.Writer, n notes.Note) error {
	return writeJSON(w, n)
}

// FormatNotes formats notes as a JSON array; an empty list is [].
func (f *JSONFormatter) FormatNotes(w io.Writer, items []notes.Note) error {
	if items == nil {
		items = []notes.Note{}
	}
	return writeJSON(w, items)
}

// FormatUpdate reports a successful update as JSON.
func (f *JSONFormatter) FormatUpdate(w io.Writer, id string) error {
	return writeJSON(w, struct {
		ID     string `json:"id"`
		Status bool   `json:"status"`
	}{ID: id, Status: true})
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			ID:      r.ID,
			Deleted: r.Deleted,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatMillis formats epoch milliseconds as a UTC timestamp.
func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
}

func orNull(p *string) string {
	if p == nil {
		return "(null)"
	}
	return *p
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	// Calculate column widths
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if len(profiles[i].Endpoint) > maxEndpointLen {
			maxEndpointLen = len(profiles[i].Endpoint)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}
	if maxEndpointLen > 50 {
		maxEndpointLen = 50
	}

	// Print header
	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "ACCESS KEY")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20))

	// Print profiles
	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		endpoint := p.Endpoint
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		accessKey := maskSecret(p.AccessKey, showSecrets)

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, accessKey)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:       %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint:   %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Access Key: %s\n", maskSecret(profile.AccessKey, showSecrets))
	_, _ = fmt.Fprintf(w, "Secret Key: %s\n", maskSecret(profile.SecretKey, showSecrets))
	return nil
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name      string `json:"name"`
		Endpoint  string `json:"endpoint"`
		AccessKey string `json:"access_key,omitempty"`
		SecretKey string `json:"secret_key,omitempty"`
		Default   bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		jp := jsonProfile{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Default:  p.Name == defaultName,
		}
		if showSecrets {
			jp.AccessKey = p.AccessKey
			jp.SecretKey = p.SecretKey
		} else {
			jp.AccessKey = maskSecret(p.AccessKey, false)
			jp.SecretKey = maskSecret(p.SecretKey, false)
		}
		output.Profiles[i] = jp
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name      string `json:"name"`
		Endpoint  string `json:"endpoint"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
		Default   bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Default:  isDefault,
	}

	if showSecrets {
		output.AccessKey = profile.AccessKey
		output.SecretKey = profile.SecretKey
	} else {
		output.AccessKey = maskSecret(profile.AccessKey, false)
		output.SecretKey = maskSecret(profile.SecretKey, false)
	}

	return writeJSON(w, output)
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
