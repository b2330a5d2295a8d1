package pet

import (
	"errors"
	"regexp"
	"strings"
)

const (
	// EXP formulas.
	StepsPerExp   = 10
	WaterMLPerExp = 40

	// Defaults applied when the caller omits the quantity.
	DefaultWaterML       = int64(200)
	DefaultStretchExp    = int64(5)
	DefaultSleepEarlyExp = int64(10)

	// Hunger drops one point per this many steps walked.
	StepsPerHungerPoint = 1000

	// Midnight decay applied by the daily reset.
	DailyHungerDecay    = 10
	DailyHappinessDecay = 5

	MinStatLevel = int64(0)
	MaxStatLevel = int64(100)

	DailyGoalSteps = int64(10000)

	MaxPetNameLen = 100
)

var (
	ErrNegativeDelta  = errors.New("exp delta must not be negative")
	ErrInvalidSteps   = errors.New("steps must be a positive integer")
	ErrInvalidAmount  = errors.New("amount_ml must be a positive integer")
	ErrInvalidPetName = errors.New("pet name must be 1-100 characters")
	ErrInvalidUser    = errors.New("username must be 3-24 characters (letters, digits, underscore)")

	ErrPetNotFound  = errors.New("pet not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or email already taken")

	ErrSelfFriend     = errors.New("cannot add yourself as a friend")
	ErrFriendExists   = errors.New("friendship already exists")
	ErrFriendNotFound = errors.New("friendship not found")

	ErrUnknownFood    = errors.New("unknown food type")
	ErrNotEnoughSteps = errors.New("not enough steps to pay for food")

	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
)

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_]{3,24}$`)

func ValidateUsername(username string) error {
	if !usernameRE.MatchString(strings.TrimSpace(username)) {
		return ErrInvalidUser
	}
	return nil
}

// StepsToExp converts walked steps to EXP: 10 steps = 1 EXP.
func StepsToExp(steps int64) int64 {
	return steps / StepsPerExp
}

// WaterToExp converts millilitres drunk to EXP: 40 ml = 1 EXP.
func WaterToExp(amountML int64) int64 {
	return amountML / WaterMLPerExp
}

// HungerFromSteps is how many hunger points a walk burns.
func HungerFromSteps(steps int64) int64 {
	return steps / StepsPerHungerPoint
}

// ClampStat bounds hunger/happiness to the 0..100 range.
func ClampStat(v int64) int64 {
	if v < MinStatLevel {
		return MinStatLevel
	}
	if v > MaxStatLevel {
		return MaxStatLevel
	}
	return v
}

// Food is a feedable item. StepCost is paid from today_steps.
type Food struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	Hunger    int64  `json:"hunger"`
	Happiness int64  `json:"happiness"`
	StepCost  int64  `json:"step_cost"`
}

var foods = map[string]Food{
	"berry":        {Type: "berry", Name: "Flame Berry", Emoji: "🍓", Hunger: 15, Happiness: 5, StepCost: 0},
	"meat":         {Type: "meat", Name: "Sacred Meat", Emoji: "🍖", Hunger: 40, Happiness: 15, StepCost: 100},
	"golden_fruit": {Type: "golden_fruit", Name: "Golden Fruit", Emoji: "🍑", Hunger: 100, Happiness: 30, StepCost: 500},
}

func FoodByType(foodType string) (Food, bool) {
	f, ok := foods[strings.ToLower(strings.TrimSpace(foodType))]
	return f, ok
}
