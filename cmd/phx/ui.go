package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"phoenix/internal/pet"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

type rankingPayload struct {
	Scope    string             `json:"scope"`
	Rankings []pet.RankingEntry `json:"rankings"`
}

type friendsPayload struct {
	Friends []pet.FriendView `json:"friends"`
}

type evolutionsPayload struct {
	Evolutions []pet.EvolutionRecord `json:"evolutions"`
}

type feedingsPayload struct {
	Feedings []pet.FeedingRecord `json:"feedings"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptRequired(label)
	}
	for {
		fmt.Printf("%s: ", label)
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		text := strings.TrimSpace(string(raw))
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func renderPet(raw map[string]any) error {
	p, err := decodeInto[pet.PetView](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n%s  %s (stage %d: %s)\n", p.StageEmoji, p.Name, p.StageNumber, p.StageName)
	fmt.Printf("Total EXP:   %d\n", p.TotalExp)
	if p.IsMaxStage {
		printSuccess("Fully evolved. A legend among phoenixes.")
	} else {
		fmt.Printf("Next stage:  %d/%d EXP (%s)\n", p.CurrentExp, p.ExpToNextStage, progressBar(p.ProgressPercent))
	}
	fmt.Printf("Steps:       %d today, %d lifetime\n", p.TodaySteps, p.TotalSteps)
	fmt.Printf("Hunger:      %s\n", statBar(p.HungerLevel))
	fmt.Printf("Happiness:   %s\n", statBar(p.HappinessLevel))
	fmt.Printf("Habits:      water x%d, stretch x%d, early nights x%d\n", p.WaterCount, p.StretchCount, p.SleepEarlyCount)
	fmt.Printf("Age:         %d days\n", p.AgeDays)
	fmt.Println()
	return nil
}

func renderPetStatus(raw map[string]any) error {
	st, err := decodeInto[pet.PetStatus](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== STATUS: %s ==\n", strings.ToUpper(st.Status))
	fmt.Println(st.MoodMessage)
	for _, w := range st.Warnings {
		printWarn("! " + w)
	}
	fmt.Println()
	if st.NextEvolution.IsMaxStage {
		printSuccess("Max stage reached: " + st.NextEvolution.StageName)
	} else {
		fmt.Printf("Next evolution: %s in %d EXP (about %d steps)\n",
			st.NextEvolution.StageName, st.NextEvolution.ExpNeeded, st.NextEvolution.StepsNeeded)
	}
	fmt.Printf("Today: %d/%d steps, %d EXP, fed %d times\n",
		st.DailyProgress.TodaySteps, st.DailyProgress.GoalSteps, st.DailyProgress.TodayExp, st.DailyProgress.TimesFed)
	fmt.Println()
	return nil
}

func renderHabitResult(raw map[string]any, headline string) error {
	out, err := decodeInto[pet.HabitResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("%s +%d EXP", headline, out.ExpGained))
	for _, ev := range out.Evolutions {
		accent.Printf("EVOLVED! %s %s -> %s %s\n", ev.FromEmoji, ev.FromName, ev.ToEmoji, ev.ToName)
	}
	p := out.Pet
	if p.IsMaxStage {
		fmt.Printf("%s %s is fully evolved (%d EXP total)\n", p.StageEmoji, p.Name, p.TotalExp)
	} else {
		fmt.Printf("%s %s: %d/%d EXP to %s\n", p.StageEmoji, p.Name, p.CurrentExp, p.ExpToNextStage, progressBar(p.ProgressPercent))
	}
	return nil
}

func renderFeedResult(raw map[string]any) error {
	out, err := decodeInto[pet.FeedResult](raw)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("%s %s devoured the %s!", out.Pet.StageEmoji, out.Pet.Name, out.Food.Name))
	fmt.Printf("Hunger:    %s (+%d)\n", statBar(out.Pet.HungerLevel), out.HungerRestored)
	fmt.Printf("Happiness: %s (+%d)\n", statBar(out.Pet.HappinessLevel), out.HappinessGained)
	fmt.Printf("Steps left today: %d\n", out.Pet.TodaySteps)
	return nil
}

func renderRanking(raw map[string]any, scope string) error {
	out, err := decodeInto[rankingPayload](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== %s RANKING ==\n", strings.ToUpper(scope))
	if len(out.Rankings) == 0 {
		printInfo("Nobody on the board yet.")
		return nil
	}
	fmt.Printf("%-6s %-16s %-20s %10s %12s %6s\n", "RANK", "USER", "PET", "EXP", "STEPS", "AGE")
	for _, e := range out.Rankings {
		line := fmt.Sprintf("%-6d %-16s %-20s %10d %12d %5dd",
			e.Rank,
			truncate(e.Username, 16),
			truncate(e.PetEmoji+" "+e.PetName, 20),
			e.TotalExp,
			e.TotalSteps,
			e.AgeDays,
		)
		if e.IsMe {
			accent.Println(line + "  <- you")
		} else {
			fmt.Println(line)
		}
	}
	fmt.Println()
	return nil
}

func renderFriends(raw map[string]any) error {
	out, err := decodeInto[friendsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== FRIENDS ==")
	if len(out.Friends) == 0 {
		printInfo("No friends yet. Try `phx friends add <username>`.")
		return nil
	}
	fmt.Printf("%-16s %-20s %-8s %10s %-12s\n", "USER", "PET", "STAGE", "EXP", "SINCE")
	for _, f := range out.Friends {
		fmt.Printf("%-16s %-20s %-8d %10d %-12s\n",
			truncate(f.Username, 16),
			truncate(f.PetEmoji+" "+f.PetName, 20),
			f.PetStage,
			f.TotalExp,
			f.FriendSince.Local().Format("2006-01-02"),
		)
	}
	fmt.Println()
	return nil
}

func renderToday(raw map[string]any) error {
	out, err := decodeInto[pet.TodayStats](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== TODAY (%s) ==\n", out.Date)
	fmt.Printf("Steps:     %d/%d (%s)\n", out.TodaySteps, out.Achievement.GoalSteps, progressBar(out.Achievement.ProgressPercent))
	fmt.Printf("EXP:       %d\n", out.ExpGainedToday)
	fmt.Printf("Feedings:  %d\n", out.TimesFed)
	fmt.Printf("Hunger:    %s\n", statBar(out.HungerLevel))
	fmt.Printf("Happiness: %s\n", statBar(out.HappinessLevel))
	if out.Achievement.ReachedGoal {
		printSuccess("Daily goal reached!")
	}
	fmt.Println()
	return nil
}

func renderHistory(raw map[string]any) error {
	out, err := decodeInto[pet.StepHistory](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== STEP HISTORY ==")
	if len(out.History) == 0 {
		printInfo("No steps recorded yet.")
		return nil
	}
	fmt.Printf("%-12s %10s %8s %-6s\n", "DATE", "STEPS", "EXP", "GOAL")
	for _, d := range out.History {
		goal := ""
		if d.GoalReached {
			goal = "yes"
		}
		fmt.Printf("%-12s %10d %8d %-6s\n", d.Date, d.Steps, d.ExpGained, goal)
	}
	fmt.Println()
	fmt.Printf("Lifetime steps: %d  avg/day: %d  goal rate: %d%%\n",
		out.Summary.TotalSteps, out.Summary.AverageDailySteps, out.Summary.GoalAchievementRate)
	fmt.Println()
	return nil
}

func renderEvolutions(raw map[string]any) error {
	out, err := decodeInto[evolutionsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== EVOLUTIONS ==")
	if len(out.Evolutions) == 0 {
		printInfo("Still an egg. Keep moving!")
		return nil
	}
	for _, ev := range out.Evolutions {
		fmt.Printf("%s  %s -> %s at %d EXP\n",
			ev.EvolvedAt.Local().Format("2006-01-02 15:04"),
			ev.FromStageName, ev.ToStageName, ev.TotalExpAtEvolution)
	}
	fmt.Println()
	return nil
}

func renderFeedings(raw map[string]any) error {
	out, err := decodeInto[feedingsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== FEEDINGS ==")
	if len(out.Feedings) == 0 {
		printInfo("No feedings yet.")
		return nil
	}
	fmt.Printf("%-18s %-14s %8s %8s\n", "WHEN", "FOOD", "HUNGER", "JOY")
	for _, f := range out.Feedings {
		fmt.Printf("%-18s %-14s %+8d %+8d\n",
			f.FedAt.Local().Format("2006-01-02 15:04"),
			f.FoodType,
			f.HungerRestored,
			f.HappinessGained,
		)
	}
	fmt.Println()
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func progressBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent / 10
	return fmt.Sprintf("[%s%s] %d%%", strings.Repeat("#", filled), strings.Repeat("-", 10-filled), percent)
}

func statBar(level int64) string {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	filled := int(level) / 10
	bar := fmt.Sprintf("[%s%s] %d/100", strings.Repeat("#", filled), strings.Repeat("-", 10-filled), level)
	switch {
	case level < 30:
		return danger.Sprint(bar)
	case level < 60:
		return warn.Sprint(bar)
	default:
		return success.Sprint(bar)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
