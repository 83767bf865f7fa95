package fairness

import (
	"errors"
	"testing"
	"time"

	"chorewheel/internal/model"
)

var due = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func adult(id int64, load float64) Candidate {
	return Candidate{MemberID: id, Classification: model.ClassAdult, Active: true, RecentLoad: load}
}

func TestSelectPrefersLesserLoad(t *testing.T) {
	task := TaskSpec{TaskID: 1, Weight: 3}
	candidates := []Candidate{adult(1, 10), adult(2, 5)}

	d, err := Select(task, due, candidates, nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if d.MemberID != 2 {
		t.Errorf("selected member %d, want 2 (half the load)", d.MemberID)
	}
}

func TestSelectCapacityAdjustsLoad(t *testing.T) {
	// A child with load 2 (2/0.3 ≈ 6.7) is "more loaded" than an adult with
	// load 5 (5/1.0 = 5).
	task := TaskSpec{TaskID: 1, Weight: 1}
	candidates := []Candidate{
		{MemberID: 1, Classification: model.ClassChild, Active: true, RecentLoad: 2},
		{MemberID: 2, Classification: model.ClassAdult, Active: true, RecentLoad: 5},
	}

	d, err := Select(task, due, candidates, nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if d.MemberID != 2 {
		t.Errorf("selected member %d, want the adult", d.MemberID)
	}
}

func TestSelectDislikeBiasesAway(t *testing.T) {
	task := TaskSpec{TaskID: 1, Weight: 2}
	candidates := []Candidate{adult(1, 0), adult(2, 0)}
	prefs := map[int64]model.PreferenceBias{1: model.BiasDisliked}

	d, err := Select(task, due, candidates, prefs)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if d.MemberID != 2 {
		t.Errorf("selected member %d, want 2 (1 dislikes the task)", d.MemberID)
	}
}

func TestSelectPreferredBiasOvercomesModerateLoad(t *testing.T) {
	task := TaskSpec{TaskID: 1, Weight: 2}
	candidates := []Candidate{adult(1, 15), adult(2, 0)}
	prefs := map[int64]model.PreferenceBias{1: model.BiasPreferred}

	d, err := Select(task, due, candidates, prefs)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	// 15/1.0 − 20 = −5 beats 0.
	if d.MemberID != 1 {
		t.Errorf("selected member %d, want 1 (preference outweighs load)", d.MemberID)
	}
}

func TestSelectEligibilityFilters(t *testing.T) {
	teen := model.ClassTeen
	tests := []struct {
		name       string
		task       TaskSpec
		candidates []Candidate
		wantID     int64
		wantErr    bool
	}{
		{
			name: "inactive excluded",
			task: TaskSpec{TaskID: 1, Weight: 1},
			candidates: []Candidate{
				{MemberID: 1, Classification: model.ClassAdult, Active: false},
				adult(2, 100),
			},
			wantID: 2,
		},
		{
			name: "child below minimum excluded",
			task: TaskSpec{TaskID: 1, Weight: 1, MinClassification: &teen},
			candidates: []Candidate{
				{MemberID: 1, Classification: model.ClassChild, Active: true},
				adult(2, 100),
			},
			wantID: 2,
		},
		{
			name: "teen passes teen minimum",
			task: TaskSpec{TaskID: 1, Weight: 1, MinClassification: &teen},
			candidates: []Candidate{
				{MemberID: 1, Classification: model.ClassTeen, Active: true},
			},
			wantID: 1,
		},
		{
			name: "absence covering due date excluded",
			task: TaskSpec{TaskID: 1, Weight: 1},
			candidates: []Candidate{
				{
					MemberID: 1, Classification: model.ClassAdult, Active: true,
					Absences: []model.MemberAbsence{{
						StartDate: due.AddDate(0, 0, -1),
						EndDate:   due.AddDate(0, 0, 1),
					}},
				},
				adult(2, 50),
			},
			wantID: 2,
		},
		{
			name: "absence ending before due date is fine",
			task: TaskSpec{TaskID: 1, Weight: 1},
			candidates: []Candidate{
				{
					MemberID: 1, Classification: model.ClassAdult, Active: true,
					Absences: []model.MemberAbsence{{
						StartDate: due.AddDate(0, 0, -5),
						EndDate:   due.AddDate(0, 0, -1),
					}},
				},
				adult(2, 50),
			},
			wantID: 1,
		},
		{
			name:       "empty pool",
			task:       TaskSpec{TaskID: 1, Weight: 1},
			candidates: nil,
			wantErr:    true,
		},
		{
			name: "all filtered out",
			task: TaskSpec{TaskID: 1, Weight: 1},
			candidates: []Candidate{
				{MemberID: 1, Classification: model.ClassAdult, Active: false},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Select(tt.task, due, tt.candidates, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrNoEligibleMember) {
					t.Fatalf("err = %v, want ErrNoEligibleMember", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			if d.MemberID != tt.wantID {
				t.Errorf("selected member %d, want %d", d.MemberID, tt.wantID)
			}
		})
	}
}

func TestSelectTieBreaks(t *testing.T) {
	task := TaskSpec{TaskID: 1, Weight: 1}

	// Equal scores: fewer completions wins.
	a := adult(1, 3)
	a.CompletedTotal = 10
	b := adult(2, 3)
	b.CompletedTotal = 4

	d, err := Select(task, due, []Candidate{a, b}, nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if d.MemberID != 2 {
		t.Errorf("selected member %d, want 2 (fewer completions)", d.MemberID)
	}

	// Fully tied: stable input order wins, deterministically.
	b.CompletedTotal = 10
	for i := 0; i < 5; i++ {
		d, err := Select(task, due, []Candidate{a, b}, nil)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if d.MemberID != 1 {
			t.Errorf("run %d: selected member %d, want 1 (input order)", i, d.MemberID)
		}
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		class model.Classification
		want  float64
	}{
		{model.ClassAdult, 1.0},
		{model.ClassTeen, 0.6},
		{model.ClassChild, 0.3},
	}
	for _, tt := range tests {
		if got := Capacity(tt.class); got != tt.want {
			t.Errorf("Capacity(%s) = %v, want %v", tt.class, got, tt.want)
		}
	}
}
