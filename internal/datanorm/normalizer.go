// Package datanorm turns a raw invitation sheet into canonical visit records.
//
// Normalization is a pure transform: the raw table is never modified and every
// filter in this package returns a new slice. Rows whose invite date cannot be
// read are dropped silently; callers that care get the count via NormalizeStats.
package datanorm

import (
	"strings"
)

// Normalize maps raw rows to canonical records. When a required column is
// missing it returns a *MissingColumnsError and no records.
func Normalize(raw RawTable) ([]Record, error) {
	records, _, err := NormalizeWithStats(raw)
	return records, err
}

// NormalizeWithStats is Normalize plus the kept/dropped row counts.
func NormalizeWithStats(raw RawTable) ([]Record, NormalizeStats, error) {
	mapping, err := MapColumns(raw.Header)
	if err != nil {
		return nil, NormalizeStats{}, err
	}

	stats := NormalizeStats{}
	records := make([]Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		if isBlankRow(row) {
			continue
		}
		stats.TotalRows++

		rec, ok := NormalizeRow(raw, row, mapping)
		if !ok {
			stats.Dropped++
			continue
		}
		records = append(records, rec)
		stats.Kept++
	}
	return records, stats, nil
}

// NormalizeRow builds one record. It returns false when the invite date is absent.
func NormalizeRow(raw RawTable, row []string, m *ColumnMapping) (Record, bool) {
	invite, ok := ExtractInviteDate(raw.Cell(row, m.InviteDate))
	if !ok {
		return Record{}, false
	}

	rec := Record{
		ClientName:       NormalizeClientName(raw.Cell(row, m.Client)),
		InviteDate:       invite,
		RegistrationDate: ParseRegistrationDate(raw.Cell(row, m.RegistrationDate)),
		HostNotified:     strings.TrimSpace(raw.Cell(row, m.HostNotified)),
		VisitorEmail:     normalizeEmail(raw.Cell(row, m.Email)),
	}
	rec.WeekdayIndex = WeekdayIndex(invite)
	rec.WeekdayName = WeekdayNames[rec.WeekdayIndex]
	rec.Year = invite.Year()
	rec.Month = int(invite.Month())
	rec.Day = invite.Day()
	return rec, true
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
