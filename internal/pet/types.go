package pet

import "time"

// RankScope selects which population a ranking covers.
type RankScope string

const (
	RankFriends RankScope = "friends"
	RankGlobal  RankScope = "global"
)

type UserView struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarEmoji string    `json:"avatar_emoji"`
	CreatedAt   time.Time `json:"created_at"`
}

// Credentials is the login-time read of a user row.
type Credentials struct {
	UserID       string
	Username     string
	PasswordHash string
	DisplayName  string
	AvatarEmoji  string
}

type RegisterInput struct {
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	PetName      string
}

type PetView struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	StageNumber     int        `json:"current_stage"`
	StageName       string     `json:"stage_name"`
	StageEmoji      string     `json:"stage_emoji"`
	TotalExp        int64      `json:"total_exp"`
	CurrentExp      int64      `json:"current_exp"`
	ExpToNextStage  int64      `json:"exp_to_next_stage"`
	ProgressPercent int        `json:"progress_percentage"`
	TotalSteps      int64      `json:"total_steps"`
	TodaySteps      int64      `json:"today_steps"`
	HungerLevel     int64      `json:"hunger_level"`
	HappinessLevel  int64      `json:"happiness_level"`
	StretchCount    int64      `json:"stretch_count"`
	WaterCount      int64      `json:"water_count"`
	SleepEarlyCount int64      `json:"sleep_early_count"`
	AgeDays         int        `json:"age_days"`
	IsMaxStage      bool       `json:"is_max_stage"`
	BornAt          time.Time  `json:"born_at"`
	LastFedAt       *time.Time `json:"last_fed_at,omitempty"`
}

// HabitResult is what every habit action returns: the updated pet plus any
// evolutions the action triggered (nil when none).
type HabitResult struct {
	Pet        PetView     `json:"pet"`
	ExpGained  int64       `json:"exp_gained"`
	Evolutions []Evolution `json:"evolutions,omitempty"`
}

type FeedResult struct {
	Pet             PetView `json:"pet"`
	Food            Food    `json:"food"`
	HungerRestored  int64   `json:"hunger_restored"`
	HappinessGained int64   `json:"happiness_gained"`
}

type RankingEntry struct {
	Rank        int64  `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarEmoji string `json:"avatar_emoji"`
	PetName     string `json:"pet_name"`
	PetStage    int    `json:"pet_stage"`
	PetStageN   string `json:"pet_stage_name"`
	PetEmoji    string `json:"pet_emoji"`
	TotalExp    int64  `json:"total_exp"`
	TotalSteps  int64  `json:"total_steps"`
	AgeDays     int    `json:"age_days"`
	IsMe        bool   `json:"is_me"`
}

type FriendView struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarEmoji string    `json:"avatar_emoji"`
	PetName     string    `json:"pet_name"`
	PetStage    int       `json:"pet_stage"`
	PetStageN   string    `json:"pet_stage_name"`
	PetEmoji    string    `json:"pet_emoji"`
	TotalExp    int64     `json:"total_exp"`
	TotalSteps  int64     `json:"total_steps"`
	FriendSince time.Time `json:"friend_since"`
}

type PetStatus struct {
	Status        string        `json:"status"`
	MoodMessage   string        `json:"mood_message"`
	Warnings      []string      `json:"warnings"`
	NextEvolution NextEvolution `json:"next_evolution"`
	DailyProgress DailyProgress `json:"daily_progress"`
}

type NextEvolution struct {
	CanEvolve   bool   `json:"can_evolve"`
	StageName   string `json:"stage_name"`
	ExpNeeded   int64  `json:"exp_needed"`
	StepsNeeded int64  `json:"steps_needed"`
	IsMaxStage  bool   `json:"is_max_stage"`
}

type DailyProgress struct {
	TodaySteps int64 `json:"today_steps"`
	TodayExp   int64 `json:"today_exp"`
	TimesFed   int64 `json:"times_fed"`
	GoalSteps  int64 `json:"goal_steps"`
}

type TodayStats struct {
	Date           string      `json:"date"`
	TodaySteps     int64       `json:"today_steps"`
	ExpGainedToday int64       `json:"exp_gained_today"`
	TimesFed       int64       `json:"times_fed"`
	HungerLevel    int64       `json:"hunger_level"`
	HappinessLevel int64       `json:"happiness_level"`
	Achievement    Achievement `json:"achievement"`
}

type Achievement struct {
	ReachedGoal     bool  `json:"reached_goal"`
	GoalSteps       int64 `json:"goal_steps"`
	ProgressPercent int   `json:"progress_percentage"`
}

type HistoryDay struct {
	Date        string `json:"date"`
	Steps       int64  `json:"steps"`
	ExpGained   int64  `json:"exp_gained"`
	GoalReached bool   `json:"goal_reached"`
}

type HistorySummary struct {
	TotalSteps          int64 `json:"total_steps"`
	AverageDailySteps   int64 `json:"average_daily_steps"`
	DaysTracked         int   `json:"days_tracked"`
	GoalAchievementRate int   `json:"goal_achievement_rate"`
}

type StepHistory struct {
	History []HistoryDay   `json:"history"`
	Summary HistorySummary `json:"summary"`
}

type EvolutionRecord struct {
	FromStage           int       `json:"from_stage"`
	ToStage             int       `json:"to_stage"`
	FromStageName       string    `json:"from_stage_name"`
	ToStageName         string    `json:"to_stage_name"`
	TotalExpAtEvolution int64     `json:"total_exp_at_evolution"`
	EvolvedAt           time.Time `json:"evolved_at"`
}

type FeedingRecord struct {
	FoodType        string    `json:"food_type"`
	HungerRestored  int64     `json:"hunger_restored"`
	HappinessGained int64     `json:"happiness_gained"`
	FedAt           time.Time `json:"fed_at"`
}
