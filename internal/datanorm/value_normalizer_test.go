package datanorm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClientName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"code prefix", "0012 - Acme Corp", "Acme Corp"},
		{"no prefix", "Acme Corp", "Acme Corp"},
		{"tight prefix", "7-Acme", "Acme"},
		{"surrounding space", "  Acme Corp  ", "Acme Corp"},
		{"digits without hyphen kept", "3M do Brasil", "3M do Brasil"},
		{"hyphen later in name kept", "Coca-Cola", "Coca-Cola"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeClientName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeClientName(got), "normalization must be idempotent")
		})
	}
}

func TestExtractInviteDate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   time.Time
		wantOK bool
	}{
		{"time range suffix", "30/04/2025 (18:00 às 19:00)", time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), true},
		{"bare date", "01/04/2025", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"prefixed text", "Convite: 02/05/2025 09:00", time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), true},
		{"no date", "amanhã às 10h", time.Time{}, false},
		{"iso date not accepted", "2025-04-30", time.Time{}, false},
		{"impossible calendar date", "31/02/2025 (10:00 às 11:00)", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"digit before date", "130/04/2025", time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), true},
		{"digit after year", "30/04/20251", time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractInviteDate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseRegistrationDate(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{"05/04/2025", ptr(time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC))},
		{"5/4/2025 14:30", ptr(time.Date(2025, 4, 5, 14, 30, 0, 0, time.UTC))},
		{"2025-04-05", ptr(time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC))},
		{"13/13/2025", nil},
		{"sem data", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseRegistrationDate(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s want %s", got, tt.want)
		})
	}
}

func TestFold(t *testing.T) {
	// "não" written with a combining tilde, as some spreadsheet exports do.
	decomposed := "na\u0303o"
	assert.Equal(t, FlagNo, Fold(decomposed))
	assert.Equal(t, FlagNo, Fold(" NÃO "))
	assert.Equal(t, FlagYes, Fold("Sim"))
	assert.Equal(t, "cubo", Fold("CUBO"))
}

func TestWeekdayIndex(t *testing.T) {
	monday := time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, WeekdayIndex(monday.AddDate(0, 0, i)))
	}
	assert.Equal(t, "Segunda-feira", WeekdayNames[0])
	assert.Equal(t, "Domingo", WeekdayNames[6])
}

func ptr(t time.Time) *time.Time { return &t }
