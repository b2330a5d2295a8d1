package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "phoenix/internal/cli"
	"phoenix/internal/config"
	"phoenix/internal/syncq"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "phx",
		Short:        "Phoenix Pet CLI client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newRegisterCmd(&apiBase),
		newLoginCmd(&apiBase),
		newLogoutCmd(),
		newPetCmd(&apiBase),
		newStepsCmd(&apiBase),
		newWaterCmd(&apiBase),
		newStretchCmd(&apiBase),
		newSleepCmd(&apiBase),
		newFeedCmd(&apiBase),
		newRankCmd(&apiBase),
		newFriendsCmd(&apiBase),
		newTodayCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newSyncCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newRegisterCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create a Phoenix Pet account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := promptRequired("Username")
			if err != nil {
				return err
			}
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptPassword("Password")
			if err != nil {
				return err
			}
			petName, err := promptOptional("Pet name (default Phoenix)")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			resp, err := client.Register(ctx, username, email, password, petName)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				Token:    resp.Token,
				UserID:   resp.User.ID,
				Username: resp.User.Username,
			}); err != nil {
				return err
			}
			printSuccess("Welcome! Your egg is waiting. Session saved.")
			return nil
		},
	}
}

func newLoginCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login to Phoenix Pet",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := promptRequired("Username")
			if err != nil {
				return err
			}
			password, err := promptPassword("Password")
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			resp, err := client.Login(ctx, username, password)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				Token:    resp.Token,
				UserID:   resp.User.ID,
				Username: resp.User.Username,
			}); err != nil {
				return err
			}
			printSuccess("Login successful.")
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear local session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Logged out.")
			return nil
		},
	}
}

func newPetCmd(apiBase *string) *cobra.Command {
	pet := &cobra.Command{
		Use:   "pet",
		Short: "Show your phoenix",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Pet(ctx, sess.Token)
			if err != nil {
				return err
			}
			return renderPet(out)
		},
	}
	pet.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show mood, warnings and next evolution",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).PetStatus(ctx, sess.Token)
			if err != nil {
				return err
			}
			return renderPetStatus(out)
		},
	})
	pet.AddCommand(&cobra.Command{
		Use:   "name [new_name]",
		Short: "Rename your phoenix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			name := ""
			if len(args) > 0 {
				name = strings.TrimSpace(args[0])
			} else {
				name, err = promptRequired("New name")
				if err != nil {
					return err
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).RenamePet(ctx, sess.Token, name); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Your phoenix is now called %s.", name))
			return nil
		},
	})
	return pet
}

func newStepsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "steps [count]",
		Short: "Record steps walked",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			steps, err := int64FromArgOrPrompt(args, 0, "Steps")
			if err != nil {
				return err
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).AddSteps(ctx, sess.Token, idem, steps)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Method:         "POST",
					Path:           "/v1/pet/steps",
					Body:           map[string]any{"steps": steps},
					IdempotencyKey: idem,
				})
			}
			return renderHabitResult(out, fmt.Sprintf("Recorded %d steps.", steps))
		},
	}
}

func newWaterCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "water [ml]",
		Short: "Record a drink of water (default 200 ml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			var amount int64
			if len(args) > 0 {
				amount, err = strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
				if err != nil || amount <= 0 {
					return fmt.Errorf("invalid amount")
				}
			}
			idem := uuid.NewString()
			body := map[string]any{}
			if amount > 0 {
				body["amount_ml"] = amount
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).DrinkWater(ctx, sess.Token, idem, amount)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Method:         "POST",
					Path:           "/v1/pet/water",
					Body:           body,
					IdempotencyKey: idem,
				})
			}
			return renderHabitResult(out, "Hydration logged.")
		},
	}
}

func newStretchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stretch",
		Short: "Record a stretch session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Stretch(ctx, sess.Token, idem)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Method:         "POST",
					Path:           "/v1/pet/stretch",
					Body:           map[string]any{},
					IdempotencyKey: idem,
				})
			}
			return renderHabitResult(out, "Stretch logged.")
		},
	}
}

func newSleepCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sleep",
		Short: "Record going to bed early",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).SleepEarly(ctx, sess.Token, idem)
			if err != nil {
				return queueOnNetworkError(err, syncq.Command{
					Method:         "POST",
					Path:           "/v1/pet/sleep-early",
					Body:           map[string]any{},
					IdempotencyKey: idem,
				})
			}
			return renderHabitResult(out, "Early night logged. Sweet dreams.")
		},
	}
}

func newFeedCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "feed [berry|meat|golden_fruit]",
		Short: "Feed your phoenix using today's steps",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			food := ""
			if len(args) > 0 {
				food = strings.ToLower(strings.TrimSpace(args[0]))
			} else {
				food, err = promptChoice("Food", []string{"berry", "meat", "golden_fruit"}, "berry")
				if err != nil {
					return err
				}
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Feed(ctx, sess.Token, idem, food)
			if err != nil {
				return err
			}
			return renderFeedResult(out)
		},
	}
}

func newRankCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rank [friends|global]",
		Short: "Show the ranking",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			scope := "friends"
			if len(args) > 0 {
				scope = strings.ToLower(strings.TrimSpace(args[0]))
			}
			if scope != "friends" && scope != "global" {
				return fmt.Errorf("scope must be friends or global")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Ranking(ctx, sess.Token, scope, 0)
			if err != nil {
				return err
			}
			return renderRanking(out, scope)
		},
	}
}

func newFriendsCmd(apiBase *string) *cobra.Command {
	friends := &cobra.Command{
		Use:   "friends",
		Short: "Manage friends by username",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Friends(ctx, sess.Token)
			if err != nil {
				return err
			}
			return renderFriends(out)
		},
	}
	friends.AddCommand(&cobra.Command{
		Use:   "add [username]",
		Short: "Add a friend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			username, err := usernameFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).AddFriend(ctx, sess.Token, username); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("You and %s are now friends.", username))
			return nil
		},
	})
	friends.AddCommand(&cobra.Command{
		Use:   "remove [username]",
		Short: "Remove a friend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			username, err := usernameFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if _, err := newClient(apiBase).RemoveFriend(ctx, sess.Token, username); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Removed %s from your friends.", username))
			return nil
		},
	})
	return friends
}

func newTodayCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).TodayStats(ctx, sess.Token)
			if err != nil {
				return err
			}
			return renderToday(out)
		},
	}
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	history := &cobra.Command{
		Use:   "history [days]",
		Short: "Show step history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			days := 0
			if len(args) > 0 {
				days, err = strconv.Atoi(strings.TrimSpace(args[0]))
				if err != nil || days <= 0 {
					return fmt.Errorf("invalid day count")
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).History(ctx, sess.Token, days)
			if err != nil {
				return err
			}
			return renderHistory(out)
		},
	}
	history.AddCommand(&cobra.Command{
		Use:   "evolutions",
		Short: "Show evolution history",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Evolutions(ctx, sess.Token)
			if err != nil {
				return err
			}
			return renderEvolutions(out)
		},
	})
	history.AddCommand(&cobra.Command{
		Use:   "feedings",
		Short: "Show recent feedings",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Feedings(ctx, sess.Token, 0)
			if err != nil {
				return err
			}
			return renderFeedings(out)
		},
	})
	return history
}

func newSyncCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay habit actions queued while offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("login required: %w", err)
			}
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			remaining := make([]syncq.Command, 0, len(queue))
			success := 0
			for _, q := range queue {
				_, err := client.Do(ctx, q.Method, q.Path, sess.Token, q.Body, q.IdempotencyKey)
				if err != nil {
					if isAPIStructuredError(err) {
						// The server saw and rejected it; nothing left to replay.
						printWarn(fmt.Sprintf("Dropped %s %s: %v", q.Method, q.Path, err))
						continue
					}
					remaining = append(remaining, q)
					printError(fmt.Sprintf("Sync failed for %s %s: %v", q.Method, q.Path, err))
					continue
				}
				success++
			}
			if err := syncq.Save(remaining); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sync complete: replayed=%d remaining=%d", success, len(remaining)))
			return nil
		},
	}
}

// queueOnNetworkError keeps a habit action locally when the API is
// unreachable. Errors the server itself returned are surfaced as-is.
func queueOnNetworkError(err error, cmd syncq.Command) error {
	if err == nil {
		return nil
	}
	if isAPIStructuredError(err) {
		return err
	}
	if qErr := syncq.Push(cmd); qErr != nil {
		return fmt.Errorf("request failed and could not be queued: %v (%w)", qErr, err)
	}
	printWarn(fmt.Sprintf("API unreachable; queued for `phx sync`: %v", err))
	return nil
}

func isAPIStructuredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "api status")
}

func usernameFromArgsOrPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	return promptRequired("Username")
}

func int64FromArgOrPrompt(args []string, idx int, label string) (int64, error) {
	if len(args) > idx {
		v, err := strconv.ParseInt(strings.TrimSpace(args[idx]), 10, 64)
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("invalid %s", strings.ToLower(label))
		}
		return v, nil
	}
	return promptInt64(label, 1)
}
