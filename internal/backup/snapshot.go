// Package backup serializes a user's data into snapshots and stores them
// on local disk or in an S3 bucket.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/diewo77/go-quotes/internal/models"
)

// SnapshotVersion is bumped whenever Snapshot changes incompatibly.
const SnapshotVersion = 1

var (
	ErrNotFound           = errors.New("backup_not_found")
	ErrUnsupportedFormat  = errors.New("unsupported_backup_format")
	ErrUnsupportedVersion = errors.New("unsupported_backup_version")
)

// Snapshot is everything owned by one user.
type Snapshot struct {
	Version      int                     `json:"version"`
	CreatedAt    time.Time               `json:"created_at"`
	UserID       uint                    `json:"user_id"`
	Company      *models.CompanySettings `json:"company,omitempty"`
	Clients      []models.Client         `json:"clients"`
	Quotes       []models.Quote          `json:"quotes"`
	Calculations []models.Calculation    `json:"calculations"`
	Rates        []models.ExchangeRate   `json:"rates"`
}

// Format is the on-store encoding of a snapshot.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatMsgpack:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext is the file extension used for keys, dot included.
func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return ".json"
}

// ContentType is the MIME type served on download.
func (f Format) ContentType() string {
	if f == FormatMsgpack {
		return "application/msgpack"
	}
	return "application/json"
}

// Encode writes s to w. Struct fields are named after their json tags in
// both formats.
func Encode(w io.Writer, s *Snapshot, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(s)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

// Decode reads a snapshot written by Encode and checks its version.
func Decode(r io.Reader, f Format) (*Snapshot, error) {
	var s Snapshot
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("decode json snapshot: %w", err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode msgpack snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	return &s, nil
}
