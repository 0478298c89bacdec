package ports

import (
	"testing"
	"time"
)

func TestDueFilterWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 16, 45, 0, 0, time.UTC)
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		filter DueFilter
		from   time.Time
		to     time.Time
		ok     bool
	}{
		{DueToday, today, today, true},
		{DueWeek, today, today.AddDate(0, 0, 7), true},
		{DueMonth, today, today.AddDate(0, 1, 0), true},
		{DueOverdue, time.Time{}, time.Time{}, false},
		{DueFilter(""), time.Time{}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			from, to, ok := tt.filter.Window(now)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (!from.Equal(tt.from) || !to.Equal(tt.to)) {
				t.Errorf("window = [%v, %v], want [%v, %v]", from, to, tt.from, tt.to)
			}
		})
	}
}

func TestTaskFilterNormalize(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		var f TaskFilter
		f.Normalize()

		if f.Page != 1 || f.PerPage != 15 {
			t.Errorf("expected page 1 per_page 15, got %d/%d", f.Page, f.PerPage)
		}
		if f.SortBy != SortByPriority || f.SortOrder != "asc" {
			t.Errorf("expected priority asc, got %s %s", f.SortBy, f.SortOrder)
		}
	})

	t.Run("unknown sort falls back to priority ascending", func(t *testing.T) {
		f := TaskFilter{SortBy: "nonsense", SortOrder: "desc"}
		f.Normalize()

		if f.SortBy != SortByPriority {
			t.Errorf("expected priority fallback, got %s", f.SortBy)
		}
		if f.SortOrder != "asc" {
			t.Errorf("fallback must reset direction to asc, got %s", f.SortOrder)
		}
	})

	t.Run("keeps a valid sort", func(t *testing.T) {
		f := TaskFilter{SortBy: SortByDueDate, SortOrder: "desc"}
		f.Normalize()

		if f.SortBy != SortByDueDate || f.SortOrder != "desc" {
			t.Errorf("expected due_date desc preserved, got %s %s", f.SortBy, f.SortOrder)
		}
	})

	t.Run("clamps invalid direction", func(t *testing.T) {
		f := TaskFilter{SortBy: SortByCreatedAt, SortOrder: "sideways"}
		f.Normalize()

		if f.SortOrder != "asc" {
			t.Errorf("expected asc, got %s", f.SortOrder)
		}
	})
}

func TestTaskFilterOffset(t *testing.T) {
	f := TaskFilter{Page: 3, PerPage: 15}
	if got := f.Offset(); got != 30 {
		t.Errorf("Offset = %d, want 30", got)
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		perPage  int
		lastPage int
	}{
		{"empty result", 0, 15, 1},
		{"exact fit", 30, 15, 2},
		{"partial last page", 31, 15, 3},
		{"single item", 1, 15, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage([]int{}, tt.total, 1, tt.perPage)
			if page.LastPage != tt.lastPage {
				t.Errorf("LastPage = %d, want %d", page.LastPage, tt.lastPage)
			}
			if page.Total != tt.total {
				t.Errorf("Total = %d, want %d", page.Total, tt.total)
			}
		})
	}
}
