package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"github.com/dmitrijs2005/authgateway/internal/validation"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) prompt(label string) (string, error) {
	return GetSimpleText(a.reader, label, a.out)
}

// check runs the gateway's field rules on req and prints any violations.
func (a *App) check(req any) bool {
	if err := a.validate.Struct(req); err != nil {
		for _, m := range validation.Messages(err) {
			a.println("  -", m)
		}
		return false
	}
	return true
}

func show[T any](a *App, r result.Result[T], err error, ok func(T)) error {
	if err != nil {
		a.println("Error:", err.Error())
		return err
	}
	if !r.IsOk() {
		e := r.Err()
		a.println(fmt.Sprintf("Error %d %s:", e.StatusCode, e.Title))
		for _, m := range e.Message {
			a.println("  -", m)
		}
		return e
	}
	ok(r.Value())
	return nil
}

func (a *App) printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		a.println("Error:", err.Error())
		return
	}
	a.println(string(b))
}

func (a *App) Register(ctx context.Context) error {
	var req validation.RegisterRequest
	var err error

	if req.Email, err = a.prompt("Email"); err != nil {
		return err
	}
	if req.FirstName, err = a.prompt("First name"); err != nil {
		return err
	}
	if req.LastName, err = a.prompt("Last name"); err != nil {
		return err
	}
	if req.Password, err = GetPassword("Password", a.out); err != nil {
		return err
	}
	if !a.check(req) {
		return nil
	}

	r, err := a.client.Register(ctx, req.Payload())
	return show(a, r, err, func(u rpc.UserView) {
		a.println("Registered:")
		a.printJSON(u)
	})
}

func (a *App) Login(ctx context.Context) error {
	var req validation.LoginRequest
	var err error

	if req.Email, err = a.prompt("Email"); err != nil {
		return err
	}
	if req.Password, err = GetPassword("Password", a.out); err != nil {
		return err
	}
	if !a.check(req) {
		return nil
	}

	r, err := a.client.Login(ctx, req.Payload())
	return show(a, r, err, func(u rpc.UserView) {
		a.println("Credentials are valid for:")
		a.printJSON(u)
	})
}

func (a *App) Users(ctx context.Context) error {
	r, err := a.client.GetUsers(ctx)
	return show(a, r, err, func(users []rpc.UserView) {
		if len(users) == 0 {
			a.println("No users")
			return
		}
		for _, u := range users {
			a.println(fmt.Sprintf("%s  %-30s %s %s", u.ID, u.Email, u.FirstName, u.LastName))
		}
	})
}

func (a *App) Profile(ctx context.Context, id string) error {
	var err error
	if id == "" {
		if id, err = a.prompt("User id"); err != nil {
			return err
		}
	}

	r, err := a.client.GetProfile(ctx, rpc.GetProfilePayload{UserID: id})
	return show(a, r, err, func(u rpc.UserView) {
		a.printJSON(u)
	})
}

func (a *App) ChangePassword(ctx context.Context, id string) error {
	var req validation.ChangePasswordRequest
	var err error

	if id == "" {
		if id, err = a.prompt("User id"); err != nil {
			return err
		}
	}
	if req.CurrentPassword, err = GetPassword("Current password", a.out); err != nil {
		return err
	}
	if req.NewPassword, err = GetPassword("New password", a.out); err != nil {
		return err
	}
	if !a.check(req) {
		return nil
	}

	r, err := a.client.ChangePassword(ctx, req.Payload(id))
	return show(a, r, err, func(result.Unit) {
		a.println("Password changed successfully")
	})
}

func (a *App) Health(ctx context.Context) error {
	if err := a.client.Check(ctx); err != nil {
		a.println("Auth service is not serving:", err.Error())
		return err
	}
	a.println("Auth service is serving")
	return nil
}
