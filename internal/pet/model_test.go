package pet

import "testing"

func TestStepsToExp(t *testing.T) {
	cases := []struct {
		steps int64
		want  int64
	}{
		{0, 0},
		{9, 0},
		{10, 1},
		{95, 9},
		{10000, 1000},
	}
	for _, tc := range cases {
		if got := StepsToExp(tc.steps); got != tc.want {
			t.Fatalf("StepsToExp(%d) = %d, want %d", tc.steps, got, tc.want)
		}
	}
}

func TestWaterToExp(t *testing.T) {
	cases := []struct {
		ml   int64
		want int64
	}{
		{39, 0},
		{40, 1},
		{200, 5},
		{1000, 25},
	}
	for _, tc := range cases {
		if got := WaterToExp(tc.ml); got != tc.want {
			t.Fatalf("WaterToExp(%d) = %d, want %d", tc.ml, got, tc.want)
		}
	}
}

func TestHungerFromSteps(t *testing.T) {
	cases := []struct {
		steps int64
		want  int64
	}{
		{999, 0},
		{1000, 1},
		{2500, 2},
		{10000, 10},
	}
	for _, tc := range cases {
		if got := HungerFromSteps(tc.steps); got != tc.want {
			t.Fatalf("HungerFromSteps(%d) = %d, want %d", tc.steps, got, tc.want)
		}
	}
}

func TestClampStat(t *testing.T) {
	if got := ClampStat(-5); got != 0 {
		t.Fatalf("ClampStat(-5) = %d, want 0", got)
	}
	if got := ClampStat(150); got != 100 {
		t.Fatalf("ClampStat(150) = %d, want 100", got)
	}
	if got := ClampStat(42); got != 42 {
		t.Fatalf("ClampStat(42) = %d, want 42", got)
	}
}

func TestStageTable(t *testing.T) {
	wantThresholds := []int64{1000, 3000, 7000, 15000, 999999}
	for i, want := range wantThresholds {
		stage, ok := StageByNumber(i + 1)
		if !ok {
			t.Fatalf("StageByNumber(%d) not found", i+1)
		}
		if stage.ExpRequired != want {
			t.Fatalf("stage %d threshold = %d, want %d", i+1, stage.ExpRequired, want)
		}
	}
	if _, ok := StageByNumber(0); ok {
		t.Fatal("StageByNumber(0) should not resolve")
	}
	if _, ok := StageByNumber(6); ok {
		t.Fatal("StageByNumber(6) should not resolve")
	}
	if FirstStage().Number != 1 {
		t.Fatalf("first stage = %d, want 1", FirstStage().Number)
	}
}

func TestFoodByType(t *testing.T) {
	berry, ok := FoodByType("berry")
	if !ok || berry.StepCost != 0 || berry.Hunger != 15 {
		t.Fatalf("berry = %+v ok=%v", berry, ok)
	}
	golden, ok := FoodByType(" Golden_Fruit ")
	if !ok || golden.StepCost != 500 {
		t.Fatalf("golden_fruit = %+v ok=%v", golden, ok)
	}
	if _, ok := FoodByType("pizza"); ok {
		t.Fatal("pizza should not be a known food")
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "walker_99", "ABCDEFGHIJKLMNOPQRSTUVWX"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Fatalf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}
	invalid := []string{"", "ab", "has space", "emoji🔥", "toolongtoolongtoolongtoolong"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Fatalf("ValidateUsername(%q) = nil, want error", u)
		}
	}
}

func TestRankEntries(t *testing.T) {
	entries := []RankingEntry{
		{UserID: "a", TotalExp: 900},
		{UserID: "me", TotalExp: 500},
		{UserID: "c", TotalExp: 100},
	}
	ranked := rankEntries(entries, "me")
	for i, e := range ranked {
		if e.Rank != int64(i+1) {
			t.Fatalf("rank[%d] = %d, want %d", i, e.Rank, i+1)
		}
	}
	if !ranked[1].IsMe {
		t.Fatal("second entry should be flagged as the requester")
	}
	if ranked[0].IsMe || ranked[2].IsMe {
		t.Fatal("only the requester may carry the is_me flag")
	}
}
