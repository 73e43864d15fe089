package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"xfollowers/pkg/store"
)

// twitterTimeLayout is the legacy timestamp format of the v1.1 API
const twitterTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Column describes one selectable report column
type Column struct {
	Key   string
	Label string
	Value func(store.Record) string
}

// columns is the full set of selectable report columns
var columns = map[string]Column{
	"id": {
		Key:   "id",
		Label: "ID",
		Value: func(r store.Record) string { return r.ID },
	},
	"screen_name": {
		Key:   "screen_name",
		Label: "Screen Name",
		Value: func(r store.Record) string { return r.ScreenName },
	},
	"name": {
		Key:   "name",
		Label: "Name",
		Value: func(r store.Record) string { return r.Name },
	},
	"followers_count": {
		Key:   "followers_count",
		Label: "Followers Count",
		Value: func(r store.Record) string { return formatCount(r.FollowersCount) },
	},
	"created_at": {
		Key:   "created_at",
		Label: "Joined Twitter",
		Value: func(r store.Record) string { return formatJoined(r.CreatedAt) },
	},
	"timestamp": {
		Key:   "timestamp",
		Label: "Fetched At",
		Value: func(r store.Record) string { return r.Timestamp },
	},
}

// TopN returns the n records with the highest follower counts, descending.
// Ties keep their original relative order (stable sort). If n exceeds the
// set size the full set is returned.
func TopN(records []store.Record, n int) []store.Record {
	ranked := make([]store.Record, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FollowersCount > ranked[j].FollowersCount
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Render produces the ranked top-N report for a handle as a styled table.
// selected picks and orders the columns; unknown keys are skipped.
func Render(handle string, records []store.Record, n int, selected []string) string {
	top := TopN(records, n)

	cols := make([]Column, 0, len(selected))
	for _, key := range selected {
		if col, ok := columns[key]; ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		cols = []Column{columns["screen_name"], columns["followers_count"], columns["created_at"], columns["name"]}
	}

	headers := make([]string, 0, len(cols)+1)
	headers = append(headers, "#")
	for _, col := range cols {
		headers = append(headers, col.Label)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)

	for i, r := range top {
		row := make([]string, 0, len(cols)+1)
		row = append(row, strconv.Itoa(i+1))
		for _, col := range cols {
			row = append(row, col.Value(r))
		}
		t.Row(row...)
	}

	var b strings.Builder
	title := fmt.Sprintf("Top %d Accounts Following @%s", len(top), handle)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n(Ranked by Followers Count)\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// formatCount renders an integer with thousands separators
func formatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return b.String()
}

// formatJoined reformats Twitter's legacy timestamp into a short join date
func formatJoined(createdAt string) string {
	t, err := time.Parse(twitterTimeLayout, createdAt)
	if err != nil {
		return "N/A"
	}
	return t.Format("Mon Jan 02, 2006")
}
