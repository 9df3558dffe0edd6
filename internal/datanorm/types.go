package datanorm

import (
	"strings"
	"time"
)

// Source column names. They are matched exactly and are not configurable.
const (
	ColClient           = "Cliente"
	ColInviteDate       = "Data do Convite"
	ColRegistrationDate = "Data de Cadastro"
	ColHostNotified     = "Anfitrião Notificado"
	ColEmail            = "E-mail"
)

// Host-notified flag values, compared after Fold.
const (
	FlagYes = "sim"
	FlagNo  = "não"
)

// RawTable is an untyped sheet as read from the source: a header row and
// data rows of possibly different lengths.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header cell named exactly name, or -1.
func (t RawTable) Column(name string) int {
	for i, h := range t.Header {
		if cleanHeader(h) == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row/col, or "" when the row is short or col < 0.
func (t RawTable) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

// Record is one canonical visit invitation.
type Record struct {
	ClientName       string     `json:"client_name"`
	InviteDate       time.Time  `json:"invite_date"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
	HostNotified     string     `json:"host_notified"`
	VisitorEmail     string     `json:"visitor_email"`

	WeekdayIndex int    `json:"weekday_index"`
	WeekdayName  string `json:"weekday_name"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Day          int    `json:"day"`
}

// IsBusinessDay reports whether the invite falls Monday through Friday.
func (r Record) IsBusinessDay() bool { return r.WeekdayIndex < 5 }

// NotificationFilter narrows a record set by the host-notified flag.
type NotificationFilter string

const (
	NotificationAny         NotificationFilter = ""
	NotificationNotified    NotificationFilter = "sim"
	NotificationNotNotified NotificationFilter = "nao"
)

// ParseNotificationFilter accepts "sim", "nao"/"não" or empty.
func ParseNotificationFilter(s string) (NotificationFilter, bool) {
	switch Fold(s) {
	case "", "all", "todos":
		return NotificationAny, true
	case FlagYes:
		return NotificationNotified, true
	case "nao", FlagNo:
		return NotificationNotNotified, true
	}
	return NotificationAny, false
}

// NormalizeStats reports how many source rows survived normalization.
type NormalizeStats struct {
	TotalRows int
	Kept      int
	Dropped   int
}
