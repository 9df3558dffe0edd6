package datanorm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullHeader = []string{ColClient, ColInviteDate, ColRegistrationDate, ColHostNotified, ColEmail}

func TestNormalize(t *testing.T) {
	raw := RawTable{
		Header: fullHeader,
		Rows: [][]string{
			{"0012 - Acme Corp", "30/04/2025 (18:00 às 19:00)", "15/04/2025", "Sim", "ana@acme.com"},
			{"Cubo", "01/04/2025 (09:00 às 10:00)", "invalido", "não", " bob@cubo.com "},
			{"Acme Corp", "sem data", "01/04/2025", "Sim", "carl@acme.com"},
			{"", "", "", "", ""},
			{"Short Row", "05/04/2025"},
		},
	}
	before := raw.Rows[0][0]

	records, stats, err := NormalizeWithStats(raw)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, NormalizeStats{TotalRows: 4, Kept: 3, Dropped: 1}, stats)
	assert.Equal(t, before, raw.Rows[0][0], "raw input must not be modified")

	acme := records[0]
	assert.Equal(t, "Acme Corp", acme.ClientName)
	assert.True(t, acme.InviteDate.Equal(time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, acme.RegistrationDate)
	assert.Equal(t, 15, acme.RegistrationDate.Day())
	assert.Equal(t, 2, acme.WeekdayIndex)
	assert.Equal(t, "Quarta-feira", acme.WeekdayName)
	assert.Equal(t, 2025, acme.Year)
	assert.Equal(t, 4, acme.Month)
	assert.Equal(t, 30, acme.Day)

	cubo := records[1]
	assert.Nil(t, cubo.RegistrationDate, "unparseable registration date becomes absent")
	assert.Equal(t, "bob@cubo.com", cubo.VisitorEmail)
	assert.Equal(t, "Terça-feira", cubo.WeekdayName)

	short := records[2]
	assert.Equal(t, "Short Row", short.ClientName)
	assert.Empty(t, short.HostNotified)
	assert.Equal(t, "Sábado", short.WeekdayName)
}

func TestNormalizeWeekdayConsistency(t *testing.T) {
	raw := RawTable{Header: fullHeader}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		raw.Rows = append(raw.Rows, []string{"Acme", start.AddDate(0, 0, i).Format("02/01/2006"), "", "", ""})
	}

	records, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, records, 60)
	for _, r := range records {
		assert.Equal(t, WeekdayIndex(r.InviteDate), r.WeekdayIndex)
		assert.Equal(t, WeekdayNames[r.WeekdayIndex], r.WeekdayName)
		assert.False(t, r.InviteDate.IsZero())
	}
}

func TestNormalizeMissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		missing []string
	}{
		{"no client", []string{ColInviteDate, ColEmail}, []string{ColClient}},
		{"no invite date", []string{ColClient, ColEmail}, []string{ColInviteDate}},
		{"neither", []string{"Nome", "Data"}, []string{ColClient, ColInviteDate}},
		{"case sensitive", []string{"cliente", "data do convite"}, []string{ColClient, ColInviteDate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Normalize(RawTable{Header: tt.header, Rows: [][]string{{"a", "b"}}})
			assert.Nil(t, records)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingColumns))

			var mce *MissingColumnsError
			require.True(t, errors.As(err, &mce))
			assert.Equal(t, tt.missing, mce.Columns)
			assert.Contains(t, err.Error(), "period data unavailable")
		})
	}
}

func TestMapColumnsOptional(t *testing.T) {
	m, err := MapColumns([]string{"\ufeffCliente", " Data do Convite "})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Client)
	assert.Equal(t, 1, m.InviteDate)
	assert.Equal(t, []string{ColRegistrationDate, ColHostNotified, ColEmail}, m.Optional())
}

func TestNormalizeEmptyTable(t *testing.T) {
	records, err := Normalize(RawTable{Header: fullHeader})
	require.NoError(t, err)
	assert.Empty(t, records)
}
