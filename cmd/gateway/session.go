package main

import (
	"bufio"
	"errors"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ranjeet447/schoolerp-gateway/internal/service"
	"github.com/ranjeet447/schoolerp-gateway/internal/token"
	"github.com/ranjeet447/schoolerp-gateway/internal/util"
)

type loginOptions struct {
	Email    string
	Password string
}

func runLogin(ctx *commandContext, args []string) error {
	fs := newFlagSet("login")
	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "account email (required)")
	fs.StringVar(&opts.Password, "password", "", "account password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.Email == "" {
		return errors.New("login: -email is required")
	}
	if opts.Password == "" {
		pw, err := promptPassword()
		if err != nil {
			return err
		}
		opts.Password = pw
	}

	res, err := ctx.Gateway.Auth.Login(ctx.Ctx, opts.Email, opts.Password)
	if err != nil {
		return err
	}

	if res.LegalAcceptanceRequired {
		if err := writef(os.Stdout, "login paused: legal acceptance required\n"); err != nil {
			return err
		}
		if err := writef(os.Stdout, "preauth token: %s\n", res.PreauthToken); err != nil {
			return err
		}
		return writef(os.Stdout, "requirements: %s\n", string(res.Requirements))
	}

	if err := writef(os.Stdout, "logged in as %s (%s)\n", res.Session.Email, res.Session.Role); err != nil {
		return err
	}
	return writef(os.Stdout, "dashboard: %s\n", res.RedirectTo)
}

func promptPassword() (string, error) {
	if err := writef(os.Stderr, "password: "); err != nil {
		return "", err
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("login: empty password")
	}
	return pw, nil
}

func runLogout(ctx *commandContext, args []string) error {
	fs := newFlagSet("logout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := ctx.Gateway.Auth.Logout(ctx.Ctx); err != nil {
		return err
	}
	return writef(os.Stdout, "logged out\n")
}

func runWhoami(ctx *commandContext, args []string) error {
	fs := newFlagSet("whoami")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, ok, err := ctx.Gateway.Auth.CurrentUser(ctx.Ctx)
	if err != nil {
		return err
	}
	if !ok {
		return writef(os.Stdout, "not logged in\n")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "user\t%s\n", sess.Email); err != nil {
		return err
	}
	if err := writef(w, "name\t%s\n", sess.DisplayName); err != nil {
		return err
	}
	if err := writef(w, "role\t%s\n", sess.Role); err != nil {
		return err
	}
	if err := writef(w, "tenant\t%s\n", sess.TenantID); err != nil {
		return err
	}
	if exp, found := token.DecodeExpiry(sess.Token); found {
		if err := writef(w, "token expires\t%s (%s)\n",
			exp.Local().Format(time.RFC3339), util.FormatRemaining(time.Until(exp))); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runStatus(ctx *commandContext, args []string) error {
	fs := newFlagSet("status")
	healthPath := fs.String("health-path", "/health", "backend health endpoint")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		authenticated bool
		impersonating bool
		targetUser    string
		backendErr    error
	)

	// The three probes are independent; run them together.
	g, gctx := errgroup.WithContext(ctx.Ctx)
	g.Go(func() error {
		authenticated = ctx.Gateway.Auth.IsAuthenticated(gctx)
		return nil
	})
	g.Go(func() error {
		ic, active, err := ctx.Gateway.Manager.Impersonating(gctx)
		if err != nil {
			return err
		}
		impersonating = active
		if active {
			targetUser = ic.TargetUserEmail
		}
		return nil
	})
	g.Go(func() error {
		resp, err := ctx.Gateway.Dispatcher.Do(gctx, *healthPath, service.RequestOptions{})
		if err != nil {
			backendErr = err
			return nil
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			backendErr = errors.New(resp.Status)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "authenticated\t%v\n", authenticated); err != nil {
		return err
	}
	if impersonating {
		if err := writef(w, "impersonating\t%s\n", targetUser); err != nil {
			return err
		}
	} else {
		if err := writef(w, "impersonating\tno\n"); err != nil {
			return err
		}
	}
	backend := "ok"
	if backendErr != nil {
		backend = backendErr.Error()
	}
	if err := writef(w, "backend\t%s\n", backend); err != nil {
		return err
	}
	return w.Flush()
}
