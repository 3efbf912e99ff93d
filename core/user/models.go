package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kazi/core"
)

// Roles
const (
	RoleTutor   = "tutor"
	RoleStudent = "student"
)

var AllRoles = []string{RoleTutor, RoleStudent}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var Roles = []Role{
	{Name: "Tutor", Value: RoleTutor},
	{Name: "Student", Value: RoleStudent},
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     *bool     `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) {
	u.IsActive = &active
}

func (u *User) Active() bool {
	return u.IsActive != nil && *u.IsActive
}

func (u *User) IsTutor() bool {
	return u.Role == RoleTutor
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Username        string `json:"username" validate:"omitempty,min=3,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"required,validrole"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// LoginUser contains the credentials to authenticate a User.
// Either Username or Email must be provided.
type LoginUser struct {
	Username string `json:"username" validate:"omitempty,alphanum_"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

func (lu *LoginUser) Validate(validate *validator.Validate) error {
	lu.Username = core.CleanString(lu.Username, true /* lower */)
	lu.Email = core.CleanString(lu.Email, true /* lower */)
	return validate.Struct(lu)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

// GetFilter selects a single User; the first set field wins.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail []string // [username, email]; a single element matches either
}
