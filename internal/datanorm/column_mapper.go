package datanorm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumns is matched by every *MissingColumnsError.
var ErrMissingColumns = errors.New("required columns missing")

// MissingColumnsError names the required source columns that were absent.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("period data unavailable: missing column(s) %s", strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Is(target error) bool { return target == ErrMissingColumns }

// requiredColumns must be present for any record to be produced.
var requiredColumns = []string{ColClient, ColInviteDate}

// ColumnMapping holds the resolved column indexes for one raw table.
// Optional columns that are absent keep index -1 and read as empty values.
type ColumnMapping struct {
	Client           int
	InviteDate       int
	RegistrationDate int
	HostNotified     int
	Email            int
}

// MapColumns resolves the source columns by exact header name.
// It returns a *MissingColumnsError when a required column is absent.
func MapColumns(header []string) (*ColumnMapping, error) {
	t := RawTable{Header: header}
	m := &ColumnMapping{
		Client:           t.Column(ColClient),
		InviteDate:       t.Column(ColInviteDate),
		RegistrationDate: t.Column(ColRegistrationDate),
		HostNotified:     t.Column(ColHostNotified),
		Email:            t.Column(ColEmail),
	}

	var missing []string
	for _, name := range requiredColumns {
		if t.Column(name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return m, nil
}

// Optional reports which optional columns were not found in the header.
func (m *ColumnMapping) Optional() []string {
	var absent []string
	if m.RegistrationDate < 0 {
		absent = append(absent, ColRegistrationDate)
	}
	if m.HostNotified < 0 {
		absent = append(absent, ColHostNotified)
	}
	if m.Email < 0 {
		absent = append(absent, ColEmail)
	}
	return absent
}
