package pet

// Stage is one maturity level of the phoenix. Stages are ordered 1..MaxStage
// and a pet advances by accumulating EXP past each stage's threshold.
type Stage struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	ExpRequired int64  `json:"exp_required"`
}

const MaxStage = 5

// stages is the static evolution table. The final stage's threshold is a
// sentinel: a stage-5 pet keeps accumulating EXP but never rolls over.
var stages = [MaxStage]Stage{
	{Number: 1, Name: "Mystic Egg", Emoji: "🥚", ExpRequired: 1000},
	{Number: 2, Name: "Little Chick", Emoji: "🐤", ExpRequired: 3000},
	{Number: 3, Name: "Fledgling Bird", Emoji: "🐦", ExpRequired: 7000},
	{Number: 4, Name: "Flame Bird", Emoji: "🔥", ExpRequired: 15000},
	{Number: 5, Name: "Golden Phoenix", Emoji: "✨", ExpRequired: 999999},
}

// StageByNumber looks up a stage by its 1-based number.
func StageByNumber(n int) (Stage, bool) {
	if n < 1 || n > MaxStage {
		return Stage{}, false
	}
	return stages[n-1], true
}

// FirstStage is the stage every pet is born at.
func FirstStage() Stage {
	return stages[0]
}
