package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/coffeemarket/pkg/auth"
	"github.com/angelmondragon/coffeemarket/pkg/auth/session"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

func loginCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "exchange a social provider access token for a session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Usage: "KAKAO, NAVER or GOOGLE", Required: true},
			&cli.StringFlag{Name: "token", Usage: "provider access token", Required: true, EnvVars: []string{"COFFEEMARKET_PROVIDER_TOKEN"}},
		},
		Action: func(c *cli.Context) error {
			provider, err := types.ParseProvider(c.String("provider"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			snap, err := rt.session.Login(c.Context, provider, c.String("token"))
			if err != nil {
				return rt.fail(c.Context, "login", err)
			}
			return rt.emit(snap.User, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "%s님 환영합니다. 보유 포인트 %s\n", snap.User.Name, points(snap.User.Point))
			})
		},
	}
}

func logoutCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "clear the stored session; the guest cart id is kept",
		Action: func(c *cli.Context) error {
			if err := rt.session.Logout(c.Context); err != nil {
				return rt.fail(c.Context, "logout", err)
			}
			rt.printf("로그아웃되었습니다.\n")
			return nil
		},
	}
}

// whoami is the printable session; tokens are never shown.
type whoami struct {
	State          string      `json:"state"`
	User           *types.User `json:"user,omitempty"`
	TokenExpiresAt *time.Time  `json:"tokenExpiresAt,omitempty"`
	TokenExpired   bool        `json:"tokenExpired,omitempty"`
	GuestID        string      `json:"guestId,omitempty"`
	GuestSince     *time.Time  `json:"guestSince,omitempty"`
}

func newWhoami(current session.Session, now time.Time) whoami {
	view := whoami{
		State:   current.State().String(),
		User:    current.User,
		GuestID: current.AnonymousSessionID,
	}
	if exp, ok := current.TokenExpiry(); ok {
		view.TokenExpiresAt = &exp
		view.TokenExpired = auth.LooksExpired(current.AccessToken, now)
	}
	if created, _, ok := session.ParseGuestID(current.AnonymousSessionID); ok {
		view.GuestSince = &created
	}
	return view
}

func whoamiCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the session state; --remote re-reads the profile from the backend",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "remote", Usage: "refresh the cached profile first"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("remote") {
				svc, err := rt.accountService()
				if err != nil {
					return err
				}
				if _, err := svc.Profile(c.Context); err != nil {
					return rt.fail(c.Context, "profile", err)
				}
			}
			view := newWhoami(rt.session.Current(), time.Now())
			return rt.emit(view, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "state\t%s\n", view.State)
				if view.User != nil {
					fmt.Fprintf(w, "user\t%s <%s>\n", view.User.Name, view.User.Email)
					fmt.Fprintf(w, "point\t%s\n", points(view.User.Point))
				}
				if view.TokenExpiresAt != nil {
					expiry := view.TokenExpiresAt.Local().Format("2006.01.02 15:04")
					if view.TokenExpired {
						expiry += " (expired; run refresh)"
					}
					fmt.Fprintf(w, "token expires\t%s\n", expiry)
				}
				if view.GuestID != "" {
					fmt.Fprintf(w, "guest id\t%s\n", view.GuestID)
				}
				if view.GuestSince != nil {
					fmt.Fprintf(w, "guest since\t%s\n", view.GuestSince.Local().Format("2006.01.02 15:04"))
				}
			})
		},
	}
}

func refreshCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "trade the refresh token for a new token pair",
		Action: func(c *cli.Context) error {
			if _, err := rt.session.Refresh(c.Context); err != nil {
				return rt.fail(c.Context, "refresh", err)
			}
			rt.printf("세션이 갱신되었습니다.\n")
			return nil
		},
	}
}
