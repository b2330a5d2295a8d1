package pet

import "testing"

func newbornProgress() Progress {
	first := FirstStage()
	return Progress{StageNumber: first.Number, ExpToNext: first.ExpRequired}
}

func TestApplyExpNoEvolution(t *testing.T) {
	p, evs, err := ApplyExp(newbornProgress(), 500)
	if err != nil {
		t.Fatalf("ApplyExp: %v", err)
	}
	if len(evs) != 0 {
		t.Fatalf("evolutions = %d, want 0", len(evs))
	}
	if p.StageNumber != 1 || p.TotalExp != 500 || p.CurrentExp != 500 || p.ExpToNext != 1000 {
		t.Fatalf("progress = %+v", p)
	}
}

func TestApplyExpSingleEvolutionCarriesRemainder(t *testing.T) {
	p, evs, err := ApplyExp(newbornProgress(), 2500)
	if err != nil {
		t.Fatalf("ApplyExp: %v", err)
	}
	if len(evs) != 1 {
		t.Fatalf("evolutions = %d, want 1", len(evs))
	}
	if evs[0].FromStage != 1 || evs[0].ToStage != 2 {
		t.Fatalf("evolution = %+v", evs[0])
	}
	if p.StageNumber != 2 || p.CurrentExp != 1500 || p.ExpToNext != 3000 {
		t.Fatalf("progress = %+v", p)
	}
	if p.TotalExp != 2500 {
		t.Fatalf("total exp = %d, want 2500", p.TotalExp)
	}
}

func TestApplyExpMultiStageRollover(t *testing.T) {
	p, evs, err := ApplyExp(newbornProgress(), 5000)
	if err != nil {
		t.Fatalf("ApplyExp: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("evolutions = %d, want 2", len(evs))
	}
	if evs[0].FromStage != 1 || evs[0].ToStage != 2 || evs[1].FromStage != 2 || evs[1].ToStage != 3 {
		t.Fatalf("evolutions = %+v", evs)
	}
	// 5000 - 1000 - 3000 leaves exactly 1000 toward stage 4.
	if p.StageNumber != 3 || p.CurrentExp != 1000 || p.ExpToNext != 7000 {
		t.Fatalf("progress = %+v", p)
	}
}

func TestApplyExpTerminalStage(t *testing.T) {
	start := Progress{StageNumber: MaxStage, TotalExp: 50000, CurrentExp: 999000, ExpToNext: 999999}
	p, evs, err := ApplyExp(start, 5000)
	if err != nil {
		t.Fatalf("ApplyExp: %v", err)
	}
	if len(evs) != 0 {
		t.Fatalf("evolutions = %d, want 0", len(evs))
	}
	if p.StageNumber != MaxStage {
		t.Fatalf("stage = %d, want %d", p.StageNumber, MaxStage)
	}
	// Past the sentinel threshold the counter keeps growing without rollover.
	if p.CurrentExp != 1004000 {
		t.Fatalf("current exp = %d, want 1004000", p.CurrentExp)
	}
}

func TestApplyExpRejectsNegative(t *testing.T) {
	start := newbornProgress()
	p, evs, err := ApplyExp(start, -1)
	if err != ErrNegativeDelta {
		t.Fatalf("err = %v, want ErrNegativeDelta", err)
	}
	if len(evs) != 0 || p != start {
		t.Fatalf("state changed on rejected delta: %+v", p)
	}
}

func TestApplyExpZeroDelta(t *testing.T) {
	p, evs, err := ApplyExp(newbornProgress(), 0)
	if err != nil {
		t.Fatalf("ApplyExp: %v", err)
	}
	if len(evs) != 0 || p.TotalExp != 0 || p.CurrentExp != 0 {
		t.Fatalf("zero delta changed state: %+v", p)
	}
}

func TestApplyExpExactThreshold(t *testing.T) {
	p, evs, err := ApplyExp(newbornProgress(), 1000)
	if err != nil {
		t.Fatalf("ApplyExp: %v", err)
	}
	if len(evs) != 1 {
		t.Fatalf("evolutions = %d, want 1", len(evs))
	}
	if p.StageNumber != 2 || p.CurrentExp != 0 {
		t.Fatalf("progress = %+v", p)
	}
}

func TestApplyExpInvariantsOverSequence(t *testing.T) {
	deltas := []int64{37, 0, 963, 250, 2750, 4000, 12345, 99, 8000, 100000}
	p := newbornProgress()
	var wantTotal int64
	prevStage := p.StageNumber
	for i, d := range deltas {
		next, _, err := ApplyExp(p, d)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		wantTotal += d
		if next.TotalExp != wantTotal {
			t.Fatalf("step %d: total exp = %d, want %d", i, next.TotalExp, wantTotal)
		}
		if next.StageNumber < prevStage {
			t.Fatalf("step %d: stage went backwards %d -> %d", i, prevStage, next.StageNumber)
		}
		if next.StageNumber < MaxStage && next.CurrentExp >= next.ExpToNext {
			t.Fatalf("step %d: unresolved rollover %+v", i, next)
		}
		if next.CurrentExp < 0 {
			t.Fatalf("step %d: negative current exp %+v", i, next)
		}
		prevStage = next.StageNumber
		p = next
	}
	if p.StageNumber != MaxStage {
		t.Fatalf("stage = %d, want %d after %d total exp", p.StageNumber, MaxStage, wantTotal)
	}
}
