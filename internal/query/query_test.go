package query

import (
	"reflect"
	"testing"
	"time"

	"github.com/nissyi-gh/taskflow/internal/model"
	"golang.org/x/text/language"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

func at(minutes int) time.Time {
	return now.Add(time.Duration(minutes) * time.Minute)
}

func fixture() []model.Task {
	done := now
	return []model.Task{
		{ID: "today", Title: "Pay rent", CreatedAt: at(-50), DueDate: model.StringPtr("2026-03-10"), Priority: model.PriorityHigh},
		{ID: "yesterday", Title: "call Bob", CreatedAt: at(-40), DueDate: model.StringPtr("2026-03-09"), Priority: model.PriorityUrgent},
		{ID: "future", Title: "Dentist", Description: "bring insurance card", CreatedAt: at(-30), DueDate: model.StringPtr("2026-04-01"), Priority: model.PriorityLow, CategoryID: model.StringPtr("cat_health")},
		{ID: "nodue", Title: "apples", CreatedAt: at(-20), CategoryID: model.StringPtr("cat_personal")},
		{ID: "done", Title: "Taxes", CreatedAt: at(-10), DueDate: model.StringPtr("2026-03-01"), Completed: true, CompletedAt: &done, CategoryID: model.StringPtr("cat_work"), Priority: model.PriorityMedium},
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestViews(t *testing.T) {
	tests := []struct {
		name     string
		view     View
		category string
		want     []string
	}{
		{"all newest first", ViewAll, "", []string{"done", "nodue", "future", "yesterday", "today"}},
		{"today", ViewToday, "", []string{"today"}},
		{"upcoming", ViewUpcoming, "", []string{"future"}},
		{"completed", ViewCompleted, "", []string{"done"}},
		{"overdue", ViewOverdue, "", []string{"yesterday"}},
		{"category", ViewCategory, "cat_health", []string{"future"}},
		{"category includes completed", ViewCategory, "cat_work", []string{"done"}},
		{"unknown view falls back to all", View("bogus"), "", []string{"done", "nodue", "future", "yesterday", "today"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Tasks(fixture(), Params{View: tt.view, CategoryID: tt.category}, now))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tasks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDueTodayWithoutTimeIsTodayNotOverdue(t *testing.T) {
	tasks := []model.Task{{ID: "a", Title: "a", DueDate: model.StringPtr(model.Today(now))}}

	if got := Tasks(tasks, Params{View: ViewToday}, now); len(got) != 1 {
		t.Errorf("today view = %v, want the task", ids(got))
	}
	if got := Tasks(tasks, Params{View: ViewOverdue}, now); len(got) != 0 {
		t.Errorf("overdue view = %v, want empty", ids(got))
	}
}

func TestYesterdayIsOverdueNotCompleted(t *testing.T) {
	tasks := []model.Task{{ID: "a", Title: "a", DueDate: model.StringPtr(model.Today(now.AddDate(0, 0, -1)))}}

	if !tasks[0].IsOverdue(now) {
		t.Fatal("expected task to be overdue")
	}
	if got := Tasks(tasks, Params{View: ViewOverdue}, now); len(got) != 1 {
		t.Errorf("overdue view = %v, want the task", ids(got))
	}
	if got := Tasks(tasks, Params{View: ViewCompleted}, now); len(got) != 0 {
		t.Errorf("completed view = %v, want empty", ids(got))
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		search string
		want   []string
	}{
		{"RENT", []string{"today"}},
		{"insurance", []string{"future"}},
		{"  bob ", []string{"yesterday"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		got := ids(Tasks(fixture(), Params{Search: tt.search}, now))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("search %q = %v, want %v", tt.search, got, tt.want)
		}
	}
}

func TestSearchAppliesAfterView(t *testing.T) {
	got := ids(Tasks(fixture(), Params{View: ViewCompleted, Search: "rent"}, now))
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestSortKeys(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortDueDate, []string{"done", "yesterday", "today", "future", "nodue"}},
		{SortPriority, []string{"yesterday", "today", "done", "future", "nodue"}},
		{SortAlphabetical, []string{"apples", "call Bob", "Dentist", "Pay rent", "Taxes"}},
		{SortCreated, []string{"done", "nodue", "future", "yesterday", "today"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := Tasks(fixture(), Params{Sort: tt.key, Locale: language.English}, now)
			var names []string
			if tt.key == SortAlphabetical {
				for _, task := range got {
					names = append(names, task.Title)
				}
			} else {
				names = ids(got)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Errorf("sort %s = %v, want %v", tt.key, names, tt.want)
			}
		})
	}
}

func TestSortIsStableAndIdempotent(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Title: "a", Priority: model.PriorityLow},
		{ID: "2", Title: "b", Priority: model.PriorityHigh},
		{ID: "3", Title: "c", Priority: model.PriorityLow},
		{ID: "4", Title: "d"},
		{ID: "5", Title: "e", Priority: model.PriorityHigh},
		{ID: "6", Title: "f", Priority: model.PriorityNone},
	}

	Sort(tasks, SortPriority, language.Und)
	first := ids(tasks)
	want := []string{"2", "5", "1", "3", "4", "6"}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("first sort = %v, want %v", first, want)
	}

	Sort(tasks, SortPriority, language.Und)
	if second := ids(tasks); !reflect.DeepEqual(first, second) {
		t.Errorf("second sort = %v, want %v", second, first)
	}
}

func TestTasksIsPure(t *testing.T) {
	input := fixture()
	snapshot := model.CloneTasks(input)
	p := Params{View: ViewAll, Sort: SortAlphabetical, Search: "a"}

	first := Tasks(input, p, now)
	second := Tasks(input, p, now)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ: %v vs %v", ids(first), ids(second))
	}
	if !reflect.DeepEqual(input, snapshot) {
		t.Error("Tasks mutated its input")
	}

	// results do not alias the input
	for i := range first {
		first[i].Title = "changed"
		if first[i].DueDate != nil {
			*first[i].DueDate = "1999-01-01"
		}
	}
	if !reflect.DeepEqual(input, snapshot) {
		t.Error("result aliases input")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixture(), model.DefaultCategories(), now)

	if s.Total != 5 || s.Completed != 1 || s.Pending != 4 || s.Overdue != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.Percent != 20 {
		t.Errorf("Percent = %d, want 20", s.Percent)
	}
	wantBadges := map[View]int{ViewAll: 4, ViewToday: 1, ViewUpcoming: 1, ViewCompleted: 1, ViewOverdue: 1}
	if !reflect.DeepEqual(s.Badges, wantBadges) {
		t.Errorf("Badges = %v, want %v", s.Badges, wantBadges)
	}
	wantCats := map[string]int{"cat_work": 0, "cat_personal": 1, "cat_health": 1}
	if !reflect.DeepEqual(s.ByCategory, wantCats) {
		t.Errorf("ByCategory = %v, want %v", s.ByCategory, wantCats)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil, now)
	if s.Total != 0 || s.Percent != 0 {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}
