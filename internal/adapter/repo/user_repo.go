package repo

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/infra"
	"github.com/Shaharyar2310/silkif.y/internal/sqlinline"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// CreateUser inserts a user. Duplicate email or username yields
// domain.ErrConflict.
func (r *UserRepositoryPG) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	profile := strings.TrimSpace(user.ProfileImage)
	if profile == "" {
		profile = domain.DefaultProfileImage
	}
	plan := user.PlanType
	if plan == "" {
		plan = domain.UserPlanFree
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUser, user.Username, user.Email, user.PasswordHash, profile, string(plan))
	return scanUser("create user", row)
}

// GetUser fetches a user by id.
func (r *UserRepositoryPG) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser("get user", r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

// GetUserByEmail fetches a user by exact email.
func (r *UserRepositoryPG) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser("get user", r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email))
}

// GetUserByUsername fetches a user by exact username.
func (r *UserRepositoryPG) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser("get user", r.sql.QueryRow(ctx, sqlinline.QSelectUserByUsername, username))
}

// UpdateUserPlan switches the billing plan and returns the updated row.
func (r *UserRepositoryPG) UpdateUserPlan(ctx context.Context, id int64, plan domain.UserPlan) (*domain.User, error) {
	return scanUser("update plan", r.sql.QueryRow(ctx, sqlinline.QUpdateUserPlan, id, string(plan)))
}

func scanUser(op string, row pgx.Row) (*domain.User, error) {
	var u domain.User
	var plan string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ProfileImage, &plan,
		&u.StripeCustomerID, &u.StripeSubscriptionID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(op, err)
	}
	u.PlanType = domain.UserPlan(plan)
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
