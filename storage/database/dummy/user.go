package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = true
	}

	for _, usr := range repo.db.users {
		if excluded[usr.ID] {
			continue
		}
		// empty values never collide, like the NULL columns they become
		if (username != "" && usr.Username == username) || (email != "" && usr.Email == email) {
			return user.ErrUserExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if err := repo.CheckUsernameUniqueness(ctx, usr.Username, usr.Email, nil); err != nil {
		return user.User{}, err
	}

	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	switch {
	case filter.ID != "":
		if usr, ok := repo.db.users[filter.ID]; ok {
			return usr, nil
		}
	case filter.Username != "":
		for _, usr := range repo.db.users {
			if usr.Username == filter.Username {
				return usr, nil
			}
		}
	case filter.Email != "":
		for _, usr := range repo.db.users {
			if usr.Email == filter.Email {
				return usr, nil
			}
		}
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
		for _, usr := range repo.db.users {
			if (usr.Username != "" && usr.Username == uname) || (usr.Email != "" && usr.Email == email) {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, exec...)
}
