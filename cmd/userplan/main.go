package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Shaharyar2310/silkif.y/internal/adapter/repo"
	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/infra"
)

func main() {
	var (
		idFlag    string
		emailFlag string
		planFlag  string
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.StringVar(&planFlag, "plan", "pro", "plan to assign (free, pro, premium)")
	flag.Parse()

	_ = godotenv.Load()

	target, err := parseTarget(idFlag, emailFlag, planFlag)
	if err != nil {
		exitWithError(err)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", os.Getenv("LOG_LEVEL")).With().Str("cmd", "userplan").Logger()
	users := repo.NewUserRepository(infra.NewSQLRunner(pool, logger))

	if err := run(ctx, users, target, os.Stdout); err != nil {
		exitWithError(err)
	}
}

type target struct {
	id    int64
	email string
	plan  domain.UserPlan
}

func parseTarget(idFlag, emailFlag, planFlag string) (target, error) {
	var t target
	idFlag = strings.TrimSpace(idFlag)
	t.email = strings.TrimSpace(emailFlag)
	t.plan = domain.UserPlan(strings.TrimSpace(strings.ToLower(planFlag)))

	if idFlag == "" && t.email == "" {
		return t, errors.New("either -id or -email must be provided")
	}
	if idFlag != "" {
		id, err := strconv.ParseInt(idFlag, 10, 64)
		if err != nil || id <= 0 {
			return t, fmt.Errorf("invalid -id %q", idFlag)
		}
		t.id = id
	}
	if t.plan == "" {
		return t, errors.New("-plan is required")
	}
	if !domain.ValidPlan(t.plan) {
		return t, fmt.Errorf("unsupported plan %q", t.plan)
	}
	return t, nil
}

func run(ctx context.Context, users domain.UserRepository, t target, out io.Writer) error {
	var (
		user *domain.User
		err  error
	)
	if t.id != 0 {
		user, err = users.GetUser(ctx, t.id)
	} else {
		user, err = users.GetUserByEmail(ctx, t.email)
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.PlanType == t.plan {
		fmt.Fprintf(out, "User %d (%s) already on plan %s\n", user.ID, user.Email, user.PlanType)
		return nil
	}

	updated, err := users.UpdateUserPlan(ctx, user.ID, t.plan)
	if err != nil {
		return fmt.Errorf("failed to update user plan: %w", err)
	}
	fmt.Fprintf(out, "User %d (%s) updated to plan %s (was %s)\n", updated.ID, updated.Email, updated.PlanType, user.PlanType)
	return nil
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
