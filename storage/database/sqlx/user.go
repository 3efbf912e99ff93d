package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	Role         string      `db:"role"`
	IsActive     null.Bool   `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// row packs usr for storage; empty username/email store as NULL so the
// unique indexes ignore them.
func (repo userRepository) row(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		Role:         usr.Role,
		IsActive:     null.BoolFromPtr(usr.IsActive),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unrow(r userRow) user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		Role:         r.Role,
		IsActive:     r.IsActive.Ptr(),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM users WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		placeholders := make([]string, 0, len(excludedUsers))
		for i, usr := range excludedUsers {
			placeholders = append(placeholders, fmt.Sprintf("$%d", i+3))
			args = append(args, usr.ID)
		}
		q += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(placeholders, ", "))
	}
	q += `)`

	var exists bool
	if err := repo.getExec(exec).GetContext(ctx, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrUserExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	r := repo.row(usr)

	q := `
		INSERT INTO users (id, name, username, email, role, is_active, password_hash, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		r.ID, r.Name, r.Username, r.Email, r.Role, r.IsActive, r.PasswordHash, r.CreatedAt, r.UpdatedAt, r.LastLogin,
	)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unrow(r), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	var (
		r   userRow
		err error
	)
	exe := repo.getExec(exec)

	switch {
	case filter.ID != "":
		if _, err = uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		err = exe.GetContext(ctx, &r, `SELECT * FROM users WHERE id = $1`, filter.ID)
	case filter.Username != "":
		err = exe.GetContext(ctx, &r, `SELECT * FROM users WHERE username = $1`, filter.Username)
	case filter.Email != "":
		err = exe.GetContext(ctx, &r, `SELECT * FROM users WHERE email = $1`, filter.Email)
	case len(filter.UsernameOrEmail) > 0:
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		err = exe.GetContext(ctx, &r, `SELECT * FROM users WHERE username = $1 OR email = $2`, uname, email)
	default:
		return user.User{}, user.ErrNotFound
	}

	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unrow(r), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	r := repo.row(usr)

	q := `
		UPDATE users
		SET name = $2, username = $3, email = $4, role = $5, is_active = $6, password_hash = $7, updated_at = $8, last_login = $9
		WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		r.ID, r.Name, r.Username, r.Email, r.Role, r.IsActive, r.PasswordHash, r.UpdatedAt, r.LastLogin,
	)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.unrow(r), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, exec...)
}
