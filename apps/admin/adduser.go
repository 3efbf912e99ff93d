package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, uname, email, pwd, role string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	var known bool
	for _, r := range user.AllRoles {
		if role == r {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown role %q; must be one of: tutor, student", role)
	}

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}})
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.Name = name
	usr.Role = role
	usr.UpdatedAt = now
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
