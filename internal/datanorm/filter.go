package datanorm

import "sort"

// FilterPeriod returns the records whose invite date falls in year/month.
func FilterPeriod(records []Record, year, month int) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Year == year && r.Month == month {
			out = append(out, r)
		}
	}
	return out
}

// FilterOrganization keeps records of one organization, compared with Fold.
// An empty name returns a copy of the input.
func FilterOrganization(records []Record, name string) []Record {
	key := Fold(name)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if key == "" || Fold(r.ClientName) == key {
			out = append(out, r)
		}
	}
	return out
}

// FilterNotification keeps records matching the host-notified filter.
func FilterNotification(records []Record, f NotificationFilter) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		flag := Fold(r.HostNotified)
		switch f {
		case NotificationNotified:
			if flag != FlagYes {
				continue
			}
		case NotificationNotNotified:
			if flag != FlagNo {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Years lists the distinct invite years, most recent first.
func Years(records []Record) []int {
	return distinct(records, func(r Record) int { return r.Year }, true)
}

// Months lists the distinct invite months across all years, ascending.
func Months(records []Record) []int {
	return distinct(records, func(r Record) int { return r.Month }, false)
}

// Organizations lists distinct client names sorted alphabetically.
func Organizations(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if r.ClientName == "" || seen[r.ClientName] {
			continue
		}
		seen[r.ClientName] = true
		out = append(out, r.ClientName)
	}
	sort.Strings(out)
	return out
}

func distinct(records []Record, key func(Record) int, desc bool) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range records {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	if desc {
		sort.Sort(sort.Reverse(sort.IntSlice(out)))
	} else {
		sort.Ints(out)
	}
	return out
}
