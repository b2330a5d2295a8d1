package pet

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service owns every read and write against the pet store. All habit actions
// run through one transactional core so the four endpoints cannot drift.
type Service struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewService(db *pgxpool.Pool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, log: logger}
}

// petRow mirrors the mutable columns of a pets row while it is locked.
type petRow struct {
	id              int64
	userID          string
	name            string
	stageNumber     int
	totalExp        int64
	currentExp      int64
	expToNext       int64
	totalSteps      int64
	todaySteps      int64
	hunger          int64
	happiness       int64
	stretchCount    int64
	waterCount      int64
	sleepEarlyCount int64
	bornAt          time.Time
	lastFedAt       *time.Time
}

func (r *petRow) progress() Progress {
	return Progress{
		StageNumber: r.stageNumber,
		TotalExp:    r.totalExp,
		CurrentExp:  r.currentExp,
		ExpToNext:   r.expToNext,
	}
}

func (r *petRow) setProgress(p Progress) {
	r.stageNumber = p.StageNumber
	r.totalExp = p.TotalExp
	r.currentExp = p.CurrentExp
	r.expToNext = p.ExpToNext
}

func (r *petRow) view() PetView {
	stage, _ := StageByNumber(r.stageNumber)
	progress := 100
	if r.expToNext > 0 && r.stageNumber < MaxStage {
		progress = int(r.currentExp * 100 / r.expToNext)
	}
	return PetView{
		ID:              r.id,
		Name:            r.name,
		StageNumber:     r.stageNumber,
		StageName:       stage.Name,
		StageEmoji:      stage.Emoji,
		TotalExp:        r.totalExp,
		CurrentExp:      r.currentExp,
		ExpToNextStage:  r.expToNext,
		ProgressPercent: progress,
		TotalSteps:      r.totalSteps,
		TodaySteps:      r.todaySteps,
		HungerLevel:     r.hunger,
		HappinessLevel:  r.happiness,
		StretchCount:    r.stretchCount,
		WaterCount:      r.waterCount,
		SleepEarlyCount: r.sleepEarlyCount,
		AgeDays:         int(time.Since(r.bornAt).Hours() / 24),
		IsMaxStage:      r.stageNumber == MaxStage,
		BornAt:          r.bornAt,
		LastFedAt:       r.lastFedAt,
	}
}

const petColumns = `
	id, user_id, name, current_stage, total_exp, current_exp, exp_to_next_stage,
	total_steps, today_steps, hunger_level, happiness_level,
	stretch_count, water_count, sleep_early_count, born_at, last_fed_at`

func scanPetRow(row pgx.Row) (petRow, error) {
	var r petRow
	err := row.Scan(
		&r.id, &r.userID, &r.name, &r.stageNumber, &r.totalExp, &r.currentExp, &r.expToNext,
		&r.totalSteps, &r.todaySteps, &r.hunger, &r.happiness,
		&r.stretchCount, &r.waterCount, &r.sleepEarlyCount, &r.bornAt, &r.lastFedAt,
	)
	if err == pgx.ErrNoRows {
		return r, ErrPetNotFound
	}
	return r, err
}

func lockPetRow(ctx context.Context, tx pgx.Tx, userID string) (petRow, error) {
	return scanPetRow(tx.QueryRow(ctx, `
		SELECT`+petColumns+`
		FROM pets
		WHERE user_id = $1
		FOR UPDATE
	`, userID))
}

// habitAction parameterizes the shared habit transaction: how the history
// row is written and which side counters the action touches.
type habitAction struct {
	kind string
	// touch is the last_*_at column stamped with now(), "" for none.
	// Always one of the fixed column names below, never caller input.
	touch  string
	record func(ctx context.Context, tx pgx.Tx, userID string, petID, expGained int64) error
	mutate func(r *petRow)
}

// applyHabit is the single read-modify-write-log core behind all habit
// endpoints. The pet row is locked for the duration of the transaction so
// concurrent actions by the same user serialize; on any failure the whole
// unit rolls back.
func (s *Service) applyHabit(ctx context.Context, userID, idemKey string, delta int64, act habitAction) (HabitResult, error) {
	var out HabitResult

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return out, err
	}
	defer tx.Rollback(ctx)

	if err := claimIdempotency(ctx, tx, userID, idemKey, act.kind); err != nil {
		return out, err
	}

	row, err := lockPetRow(ctx, tx, userID)
	if err != nil {
		return out, err
	}

	prog, evolutions, err := ApplyExp(row.progress(), delta)
	if err != nil {
		return out, err
	}
	row.setProgress(prog)

	if err := act.record(ctx, tx, userID, row.id, delta); err != nil {
		return out, err
	}
	for _, ev := range evolutions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO evolution_records (pet_id, from_stage, to_stage, from_stage_name, to_stage_name, total_exp_at_evolution)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, row.id, ev.FromStage, ev.ToStage, ev.FromName, ev.ToName, ev.TotalExpAtEvolution); err != nil {
			return out, err
		}
	}

	act.mutate(&row)

	stage, _ := StageByNumber(row.stageNumber)
	set := `
		UPDATE pets SET
			current_stage = $1,
			stage_name = $2,
			stage_emoji = $3,
			total_exp = $4,
			current_exp = $5,
			exp_to_next_stage = $6,
			total_steps = $7,
			today_steps = $8,
			hunger_level = $9,
			stretch_count = $10,
			water_count = $11,
			sleep_early_count = $12,
			updated_at = now()`
	if act.touch != "" {
		set += ", " + act.touch + " = now()"
	}
	if _, err := tx.Exec(ctx, set+` WHERE id = $13`,
		row.stageNumber, stage.Name, stage.Emoji,
		row.totalExp, row.currentExp, row.expToNext,
		row.totalSteps, row.todaySteps, row.hunger,
		row.stretchCount, row.waterCount, row.sleepEarlyCount,
		row.id,
	); err != nil {
		return out, err
	}

	if err := tx.Commit(ctx); err != nil {
		return out, err
	}

	out.Pet = row.view()
	out.ExpGained = delta
	out.Evolutions = evolutions
	if len(evolutions) > 0 {
		s.log.Info("pet evolved",
			"user_id", userID,
			"action", act.kind,
			"from_stage", evolutions[0].FromStage,
			"to_stage", evolutions[len(evolutions)-1].ToStage,
		)
	}
	return out, nil
}

// AddSteps grants floor(steps/10) EXP, accumulates step counters and burns
// hunger at one point per 1000 steps.
func (s *Service) AddSteps(ctx context.Context, userID, idemKey string, steps int64) (HabitResult, error) {
	if steps <= 0 {
		return HabitResult{}, ErrInvalidSteps
	}
	return s.applyHabit(ctx, userID, idemKey, StepsToExp(steps), habitAction{
		kind: "steps",
		record: func(ctx context.Context, tx pgx.Tx, userID string, petID, expGained int64) error {
			_, err := tx.Exec(ctx, `
				INSERT INTO step_records (user_id, pet_id, steps, exp_gained)
				VALUES ($1, $2, $3, $4)
			`, userID, petID, steps, expGained)
			return err
		},
		mutate: func(r *petRow) {
			r.totalSteps += steps
			r.todaySteps += steps
			r.hunger = ClampStat(r.hunger - HungerFromSteps(steps))
		},
	})
}

// DrinkWater grants floor(ml/40) EXP. A zero amount means "use the default
// glass" (200 ml); negative amounts are rejected.
func (s *Service) DrinkWater(ctx context.Context, userID, idemKey string, amountML int64) (HabitResult, error) {
	if amountML == 0 {
		amountML = DefaultWaterML
	}
	if amountML < 0 {
		return HabitResult{}, ErrInvalidAmount
	}
	return s.applyHabit(ctx, userID, idemKey, WaterToExp(amountML), habitAction{
		kind:  "water",
		touch: "last_watered_at",
		record: func(ctx context.Context, tx pgx.Tx, userID string, petID, expGained int64) error {
			_, err := tx.Exec(ctx, `
				INSERT INTO water_records (user_id, pet_id, amount_ml, exp_gained)
				VALUES ($1, $2, $3, $4)
			`, userID, petID, amountML, expGained)
			return err
		},
		mutate: func(r *petRow) {
			r.waterCount++
		},
	})
}

// Stretch grants the caller-supplied EXP (default 5 when omitted).
func (s *Service) Stretch(ctx context.Context, userID, idemKey string, expGained int64) (HabitResult, error) {
	if expGained == 0 {
		expGained = DefaultStretchExp
	}
	return s.applyHabit(ctx, userID, idemKey, expGained, habitAction{
		kind:  "stretch",
		touch: "last_stretched_at",
		record: func(ctx context.Context, tx pgx.Tx, userID string, petID, expGained int64) error {
			_, err := tx.Exec(ctx, `
				INSERT INTO stretch_records (user_id, pet_id, exp_gained)
				VALUES ($1, $2, $3)
			`, userID, petID, expGained)
			return err
		},
		mutate: func(r *petRow) {
			r.stretchCount++
		},
	})
}

// SleepEarly grants the caller-supplied EXP (default 10 when omitted).
func (s *Service) SleepEarly(ctx context.Context, userID, idemKey string, expGained int64) (HabitResult, error) {
	if expGained == 0 {
		expGained = DefaultSleepEarlyExp
	}
	return s.applyHabit(ctx, userID, idemKey, expGained, habitAction{
		kind:  "sleep_early",
		touch: "last_sleep_early_at",
		record: func(ctx context.Context, tx pgx.Tx, userID string, petID, expGained int64) error {
			_, err := tx.Exec(ctx, `
				INSERT INTO sleep_early_records (user_id, pet_id, exp_gained)
				VALUES ($1, $2, $3)
			`, userID, petID, expGained)
			return err
		},
		mutate: func(r *petRow) {
			r.sleepEarlyCount++
		},
	})
}

// FeedPet trades today's steps for hunger/happiness, bounded to 0..100.
func (s *Service) FeedPet(ctx context.Context, userID, idemKey, foodType string) (FeedResult, error) {
	var out FeedResult
	food, ok := FoodByType(foodType)
	if !ok {
		return out, ErrUnknownFood
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return out, err
	}
	defer tx.Rollback(ctx)

	if err := claimIdempotency(ctx, tx, userID, idemKey, "feed"); err != nil {
		return out, err
	}

	row, err := lockPetRow(ctx, tx, userID)
	if err != nil {
		return out, err
	}
	if row.todaySteps < food.StepCost {
		return out, ErrNotEnoughSteps
	}

	row.hunger = ClampStat(row.hunger + food.Hunger)
	row.happiness = ClampStat(row.happiness + food.Happiness)
	row.todaySteps -= food.StepCost
	now := time.Now()
	row.lastFedAt = &now

	if _, err := tx.Exec(ctx, `
		UPDATE pets SET
			hunger_level = $1,
			happiness_level = $2,
			today_steps = $3,
			last_fed_at = now(),
			updated_at = now()
		WHERE id = $4
	`, row.hunger, row.happiness, row.todaySteps, row.id); err != nil {
		return out, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO feeding_records (user_id, pet_id, food_type, hunger_restored, happiness_gained)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, row.id, food.Type, food.Hunger, food.Happiness); err != nil {
		return out, err
	}
	if err := tx.Commit(ctx); err != nil {
		return out, err
	}

	out.Pet = row.view()
	out.Food = food
	out.HungerRestored = food.Hunger
	out.HappinessGained = food.Happiness
	return out, nil
}

// CreateUser registers a user and births their stage-1 pet in one
// transaction. The password arrives pre-hashed from the auth layer.
func (s *Service) CreateUser(ctx context.Context, in RegisterInput) (UserView, error) {
	var out UserView
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := ValidateUsername(in.Username); err != nil {
		return out, err
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}
	petName := strings.TrimSpace(in.PetName)
	if petName == "" {
		petName = "Phoenix"
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return out, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, display_name, avatar_emoji, created_at
	`, in.Username, in.Email, in.PasswordHash, in.DisplayName).Scan(
		&out.ID, &out.Username, &out.Email, &out.DisplayName, &out.AvatarEmoji, &out.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return out, ErrUserExists
		}
		return out, err
	}

	first := FirstStage()
	if _, err := tx.Exec(ctx, `
		INSERT INTO pets (user_id, name, current_stage, stage_name, stage_emoji, exp_to_next_stage)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, out.ID, petName, first.Number, first.Name, first.Emoji, first.ExpRequired); err != nil {
		return out, err
	}
	if err := tx.Commit(ctx); err != nil {
		return out, err
	}
	s.log.Info("user registered", "user_id", out.ID, "username", out.Username)
	return out, nil
}

// CredentialsByUsername reads the login-relevant columns of a user row.
func (s *Service) CredentialsByUsername(ctx context.Context, username string) (Credentials, error) {
	var c Credentials
	err := s.db.QueryRow(ctx, `
		SELECT id, username, password_hash, display_name, avatar_emoji
		FROM users
		WHERE username = $1
	`, strings.TrimSpace(username)).Scan(&c.UserID, &c.Username, &c.PasswordHash, &c.DisplayName, &c.AvatarEmoji)
	if err == pgx.ErrNoRows {
		return c, ErrUserNotFound
	}
	return c, err
}

func (s *Service) UserByID(ctx context.Context, userID string) (UserView, error) {
	var out UserView
	err := s.db.QueryRow(ctx, `
		SELECT id, username, email, display_name, avatar_emoji, created_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&out.ID, &out.Username, &out.Email, &out.DisplayName, &out.AvatarEmoji, &out.CreatedAt)
	if err == pgx.ErrNoRows {
		return out, ErrUserNotFound
	}
	return out, err
}

// Pet returns the caller's pet.
func (s *Service) Pet(ctx context.Context, userID string) (PetView, error) {
	row, err := scanPetRow(s.db.QueryRow(ctx, `
		SELECT`+petColumns+`
		FROM pets
		WHERE user_id = $1
	`, userID))
	if err != nil {
		return PetView{}, err
	}
	return row.view(), nil
}

// RenamePet updates the pet's display name.
func (s *Service) RenamePet(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxPetNameLen {
		return ErrInvalidPetName
	}
	cmd, err := s.db.Exec(ctx, `
		UPDATE pets SET name = $1, updated_at = now() WHERE user_id = $2
	`, name, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPetNotFound
	}
	return nil
}

// Status summarizes the pet's mood and what the next evolution needs.
func (s *Service) Status(ctx context.Context, userID string) (PetStatus, error) {
	var out PetStatus
	row, err := scanPetRow(s.db.QueryRow(ctx, `
		SELECT`+petColumns+`
		FROM pets
		WHERE user_id = $1
	`, userID))
	if err != nil {
		return out, err
	}

	var todayExp, timesFed int64
	err = s.db.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT SUM(exp_gained) FROM step_records WHERE pet_id = $1 AND record_date = CURRENT_DATE), 0),
			(SELECT COUNT(*) FROM feeding_records WHERE pet_id = $1 AND fed_at::date = CURRENT_DATE)
	`, row.id).Scan(&todayExp, &timesFed)
	if err != nil {
		return out, err
	}

	out.Status, out.MoodMessage, out.Warnings = moodOf(row.hunger, row.happiness, row.stageNumber)
	out.NextEvolution = nextEvolutionOf(row.stageNumber, row.currentExp, row.expToNext)
	out.DailyProgress = DailyProgress{
		TodaySteps: row.todaySteps,
		TodayExp:   todayExp,
		TimesFed:   timesFed,
		GoalSteps:  DailyGoalSteps,
	}
	return out, nil
}

func moodOf(hunger, happiness int64, stageNumber int) (status, mood string, warnings []string) {
	status, mood = "normal", "Having a good day!"
	switch {
	case hunger < 30:
		status, mood = "hungry", "So hungry..."
		warnings = append(warnings, "Hunger is below 30. Feed your phoenix!")
	case happiness < 50:
		status, mood = "sad", "Feeling lonely..."
		warnings = append(warnings, "Happiness is low. Go for a walk together!")
	case hunger > 80 && happiness > 80:
		status, mood = "happy", "So happy!"
	}
	if stageNumber == MaxStage {
		status, mood = "max", "A legend has risen!"
	}
	return status, mood, warnings
}

func nextEvolutionOf(stageNumber int, currentExp, expToNext int64) NextEvolution {
	if stageNumber >= MaxStage {
		last, _ := StageByNumber(MaxStage)
		return NextEvolution{StageName: last.Name, IsMaxStage: true}
	}
	next, _ := StageByNumber(stageNumber + 1)
	expNeeded := expToNext - currentExp
	return NextEvolution{
		CanEvolve:   true,
		StageName:   next.Name,
		ExpNeeded:   expNeeded,
		StepsNeeded: expNeeded * StepsPerExp,
	}
}

const rankingColumns = `
	u.id, u.username, u.display_name, u.avatar_emoji,
	p.name, p.current_stage, p.stage_name, p.stage_emoji,
	p.total_exp, p.total_steps,
	EXTRACT(DAY FROM (now() - p.born_at))::int`

// Ranking orders the requested population by total EXP, ties broken by total
// steps. Ranks are 1-based and strictly sequential; exact ties keep the
// store's order.
func (s *Service) Ranking(ctx context.Context, userID string, scope RankScope, limit int) ([]RankingEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var (
		rows pgx.Rows
		err  error
	)
	switch scope {
	case RankGlobal:
		rows, err = s.db.Query(ctx, `
			SELECT`+rankingColumns+`
			FROM users u
			JOIN pets p ON p.user_id = u.id
			ORDER BY p.total_exp DESC, p.total_steps DESC
			LIMIT $1
		`, limit)
	default:
		rows, err = s.db.Query(ctx, `
			WITH circle AS (
				SELECT friend_id AS user_id
				FROM friendships
				WHERE user_id = $1 AND status = 'accepted'
				UNION
				SELECT $1::text
			)
			SELECT`+rankingColumns+`
			FROM users u
			JOIN pets p ON p.user_id = u.id
			WHERE u.id IN (SELECT user_id FROM circle)
			ORDER BY p.total_exp DESC, p.total_steps DESC
			LIMIT $2
		`, userID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RankingEntry
	for rows.Next() {
		var e RankingEntry
		if err := rows.Scan(
			&e.UserID, &e.Username, &e.DisplayName, &e.AvatarEmoji,
			&e.PetName, &e.PetStage, &e.PetStageN, &e.PetEmoji,
			&e.TotalExp, &e.TotalSteps, &e.AgeDays,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rankEntries(out, userID), nil
}

// rankEntries assigns 1-based sequential ranks to already-ordered rows and
// flags the requester.
func rankEntries(entries []RankingEntry, meID string) []RankingEntry {
	for i := range entries {
		entries[i].Rank = int64(i + 1)
		entries[i].IsMe = entries[i].UserID == meID
	}
	return entries
}

// Friends lists the caller's accepted friends, strongest pet first.
func (s *Service) Friends(ctx context.Context, userID string) ([]FriendView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.display_name, u.avatar_emoji,
		       p.name, p.current_stage, p.stage_name, p.stage_emoji,
		       p.total_exp, p.total_steps, f.created_at
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		JOIN pets p ON p.user_id = u.id
		WHERE f.user_id = $1 AND f.status = 'accepted'
		ORDER BY p.total_exp DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FriendView
	for rows.Next() {
		var f FriendView
		if err := rows.Scan(
			&f.UserID, &f.Username, &f.DisplayName, &f.AvatarEmoji,
			&f.PetName, &f.PetStage, &f.PetStageN, &f.PetEmoji,
			&f.TotalExp, &f.TotalSteps, &f.FriendSince,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AddFriend creates the symmetric friendship pair in one transaction. The
// target must exist, differ from the caller, and share no edge in either
// direction yet.
func (s *Service) AddFriend(ctx context.Context, userID, friendUsername string) (FriendView, error) {
	var out FriendView

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return out, err
	}
	defer tx.Rollback(ctx)

	var friendID string
	err = tx.QueryRow(ctx, `
		SELECT id, username, display_name, avatar_emoji
		FROM users
		WHERE username = $1
	`, strings.TrimSpace(friendUsername)).Scan(&friendID, &out.Username, &out.DisplayName, &out.AvatarEmoji)
	if err == pgx.ErrNoRows {
		return out, ErrUserNotFound
	}
	if err != nil {
		return out, err
	}
	if friendID == userID {
		return out, ErrSelfFriend
	}
	out.UserID = friendID

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		)
	`, userID, friendID).Scan(&exists); err != nil {
		return out, err
	}
	if exists {
		return out, ErrFriendExists
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO friendships (user_id, friend_id, status)
		VALUES
			($1, $2, 'accepted'),
			($2, $1, 'accepted')
		RETURNING created_at
	`, userID, friendID).Scan(&out.FriendSince); err != nil {
		return out, err
	}

	err = tx.QueryRow(ctx, `
		SELECT name, current_stage, stage_name, stage_emoji, total_exp, total_steps
		FROM pets
		WHERE user_id = $1
	`, friendID).Scan(&out.PetName, &out.PetStage, &out.PetStageN, &out.PetEmoji, &out.TotalExp, &out.TotalSteps)
	if err != nil && err != pgx.ErrNoRows {
		return out, err
	}

	if err := tx.Commit(ctx); err != nil {
		return out, err
	}
	return out, nil
}

// RemoveFriend deletes both directions of the friendship in one transaction.
// Only a party to the friendship can remove it; for anyone else there is no
// edge to find.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendUsername string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var friendID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM users WHERE username = $1
	`, strings.TrimSpace(friendUsername)).Scan(&friendID)
	if err == pgx.ErrNoRows {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, friendID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrFriendNotFound
	}
	return tx.Commit(ctx)
}

// DailyReset decays every pet's per-day state: today_steps back to zero,
// hunger -10 and happiness -5, both floored at zero. Safe to re-run; each
// pass only decays further from whatever state it finds.
func (s *Service) DailyReset(ctx context.Context) (int64, error) {
	cmd, err := s.db.Exec(ctx, `
		UPDATE pets SET
			today_steps = 0,
			hunger_level = GREATEST(hunger_level - $1, 0),
			happiness_level = GREATEST(happiness_level - $2, 0),
			updated_at = now()
	`, DailyHungerDecay, DailyHappinessDecay)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// TodayStats reports the day's progress toward the step goal.
func (s *Service) TodayStats(ctx context.Context, userID string) (TodayStats, error) {
	var out TodayStats
	row, err := scanPetRow(s.db.QueryRow(ctx, `
		SELECT`+petColumns+`
		FROM pets
		WHERE user_id = $1
	`, userID))
	if err != nil {
		return out, err
	}

	var todayExp, timesFed int64
	if err := s.db.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT SUM(exp_gained) FROM step_records WHERE user_id = $1 AND record_date = CURRENT_DATE), 0),
			(SELECT COUNT(*) FROM feeding_records WHERE user_id = $1 AND fed_at::date = CURRENT_DATE)
	`, userID).Scan(&todayExp, &timesFed); err != nil {
		return out, err
	}

	progress := int(row.todaySteps * 100 / DailyGoalSteps)
	if progress > 100 {
		progress = 100
	}
	out = TodayStats{
		Date:           time.Now().Format("2006-01-02"),
		TodaySteps:     row.todaySteps,
		ExpGainedToday: todayExp,
		TimesFed:       timesFed,
		HungerLevel:    row.hunger,
		HappinessLevel: row.happiness,
		Achievement: Achievement{
			ReachedGoal:     row.todaySteps >= DailyGoalSteps,
			GoalSteps:       DailyGoalSteps,
			ProgressPercent: progress,
		},
	}
	return out, nil
}

// History aggregates step records per day over the trailing window.
func (s *Service) History(ctx context.Context, userID string, days int) (StepHistory, error) {
	if days <= 0 {
		days = 7
	}
	var out StepHistory

	rows, err := s.db.Query(ctx, `
		SELECT record_date, SUM(steps), SUM(exp_gained)
		FROM step_records
		WHERE user_id = $1 AND record_date >= CURRENT_DATE - $2::int
		GROUP BY record_date
		ORDER BY record_date DESC
	`, userID, days)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	var totalSteps int64
	var goalDays int
	for rows.Next() {
		var d HistoryDay
		var date time.Time
		if err := rows.Scan(&date, &d.Steps, &d.ExpGained); err != nil {
			return out, err
		}
		d.Date = date.Format("2006-01-02")
		d.GoalReached = d.Steps >= DailyGoalSteps
		if d.GoalReached {
			goalDays++
		}
		totalSteps += d.Steps
		out.History = append(out.History, d)
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	var lifetimeSteps int64
	if err := s.db.QueryRow(ctx, `
		SELECT total_steps FROM pets WHERE user_id = $1
	`, userID).Scan(&lifetimeSteps); err != nil {
		if err == pgx.ErrNoRows {
			return out, ErrPetNotFound
		}
		return out, err
	}

	out.Summary = HistorySummary{
		TotalSteps:  lifetimeSteps,
		DaysTracked: len(out.History),
	}
	if n := len(out.History); n > 0 {
		out.Summary.AverageDailySteps = totalSteps / int64(n)
		out.Summary.GoalAchievementRate = goalDays * 100 / n
	}
	return out, nil
}

// EvolutionHistory lists the pet's stage transitions, newest first.
func (s *Service) EvolutionHistory(ctx context.Context, userID string) ([]EvolutionRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT er.from_stage, er.to_stage, er.from_stage_name, er.to_stage_name,
		       er.total_exp_at_evolution, er.evolved_at
		FROM evolution_records er
		JOIN pets p ON p.id = er.pet_id
		WHERE p.user_id = $1
		ORDER BY er.evolved_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EvolutionRecord
	for rows.Next() {
		var r EvolutionRecord
		if err := rows.Scan(&r.FromStage, &r.ToStage, &r.FromStageName, &r.ToStageName, &r.TotalExpAtEvolution, &r.EvolvedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FeedingHistory lists recent feedings, newest first.
func (s *Service) FeedingHistory(ctx context.Context, userID string, limit int) ([]FeedingRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT food_type, hunger_restored, happiness_gained, fed_at
		FROM feeding_records
		WHERE user_id = $1
		ORDER BY fed_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FeedingRecord
	for rows.Next() {
		var r FeedingRecord
		if err := rows.Scan(&r.FoodType, &r.HungerRestored, &r.HappinessGained, &r.FedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// claimIdempotency reserves a client-supplied key inside the transaction so
// a replayed request (e.g. from the CLI offline queue) applies only once.
// An empty key skips the check.
func claimIdempotency(ctx context.Context, tx pgx.Tx, userID, key, action string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	cmd, err := tx.Exec(ctx, `
		INSERT INTO idempotency_keys (user_id, key, action, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO NOTHING
	`, userID, key, action)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateIdempotency
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
