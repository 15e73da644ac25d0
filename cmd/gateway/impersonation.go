package main

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/service"
)

type impersonateOptions struct {
	Token    string
	UserID   string
	Email    string
	Name     string
	Role     string
	TenantID string
	Reason   string
}

func runImpersonate(ctx *commandContext, args []string) error {
	fs := newFlagSet("impersonate")
	var opts impersonateOptions
	fs.StringVar(&opts.Token, "token", "", "target user's issued token (required)")
	fs.StringVar(&opts.UserID, "user-id", "", "target user id (required)")
	fs.StringVar(&opts.Email, "email", "", "target user email (required)")
	fs.StringVar(&opts.Name, "name", "", "target display name")
	fs.StringVar(&opts.Role, "role", "", "target role (required)")
	fs.StringVar(&opts.TenantID, "tenant", "", "target tenant id (required)")
	fs.StringVar(&opts.Reason, "reason", "", "why this episode is needed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target := domainsession.Session{
		Token:       opts.Token,
		UserID:      opts.UserID,
		Email:       opts.Email,
		DisplayName: opts.Name,
		Role:        domainsession.Role(opts.Role),
		TenantID:    opts.TenantID,
	}
	if !target.Validate() {
		return errors.New("impersonate: -token, -user-id, -email, -role, and -tenant are required")
	}

	if err := ctx.Gateway.Manager.Begin(ctx.Ctx, target, opts.Reason); err != nil {
		return err
	}
	return writef(os.Stdout, "now acting as %s in tenant %s\n", target.Email, target.TenantID)
}

func runExitImpersonation(ctx *commandContext, args []string) error {
	fs := newFlagSet("exit-impersonation")
	notes := fs.String("notes", "", "notes recorded on the audit trail")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := ctx.Gateway.Manager.Exit(ctx.Ctx, *notes); err != nil {
		return err
	}
	return writef(os.Stdout, "impersonation ended\n")
}

type requestOptions struct {
	Method string
	Path   string
	Body   string
}

func runRequest(ctx *commandContext, args []string) error {
	fs := newFlagSet("request")
	var opts requestOptions
	fs.StringVar(&opts.Method, "method", http.MethodGet, "HTTP method")
	fs.StringVar(&opts.Path, "path", "", "backend path, e.g. /students (required)")
	fs.StringVar(&opts.Body, "body", "", "request body (JSON)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.Path == "" {
		return errors.New("request: -path is required")
	}

	var body io.Reader
	if opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}
	resp, err := ctx.Gateway.Dispatcher.Do(ctx.Ctx, opts.Path, service.RequestOptions{
		Method: opts.Method,
		Body:   body,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := writef(os.Stderr, "%s\n", resp.Status); err != nil {
		return err
	}
	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		return err
	}
	return writef(os.Stdout, "\n")
}
