package pet

// Progress is the evolution-relevant slice of a pet row.
type Progress struct {
	StageNumber int
	TotalExp    int64
	CurrentExp  int64
	ExpToNext   int64
}

// Evolution records a single stage boundary crossing.
type Evolution struct {
	FromStage           int    `json:"from_stage"`
	ToStage             int    `json:"to_stage"`
	FromName            string `json:"from_name"`
	ToName              string `json:"to_name"`
	FromEmoji           string `json:"from_emoji"`
	ToEmoji             string `json:"to_emoji"`
	TotalExpAtEvolution int64  `json:"total_exp_at_evolution"`
}

// ApplyExp adds a non-negative EXP delta to the given progress snapshot and
// returns the new snapshot plus one Evolution per stage boundary crossed, in
// ascending order. A large delta may cross several boundaries in one call;
// the exact remainder is carried through each one. Negative deltas are a
// contract violation and are rejected with ErrNegativeDelta.
//
// Once the pet is at MaxStage no further rollover happens: CurrentExp may
// exceed ExpToNext without triggering a transition.
func ApplyExp(p Progress, delta int64) (Progress, []Evolution, error) {
	if delta < 0 {
		return p, nil, ErrNegativeDelta
	}
	p.TotalExp += delta
	p.CurrentExp += delta

	var evolutions []Evolution
	for p.CurrentExp >= p.ExpToNext && p.StageNumber < MaxStage {
		from, _ := StageByNumber(p.StageNumber)
		p.CurrentExp -= p.ExpToNext
		p.StageNumber++
		to, _ := StageByNumber(p.StageNumber)
		p.ExpToNext = to.ExpRequired
		evolutions = append(evolutions, Evolution{
			FromStage:           from.Number,
			ToStage:             to.Number,
			FromName:            from.Name,
			ToName:              to.Name,
			FromEmoji:           from.Emoji,
			ToEmoji:             to.Emoji,
			TotalExpAtEvolution: p.TotalExp,
		})
	}
	return p, evolutions, nil
}
