package auditapi

// Package auditapi reports impersonation exits to the backend audit
// trail over the authenticated dispatch path.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
	"github.com/ranjeet447/schoolerp-gateway/internal/service"
)

var _ ports.AuditNotifier = (*Notifier)(nil)

// Notifier posts exit records to the platform audit endpoint. The caller
// treats failures as best-effort; this adapter only reports them.
type Notifier struct {
	dispatcher *service.Dispatcher
}

// New constructs a Notifier over the gateway's dispatch path, so the
// audit call carries the same tenant and credential headers as any other
// request.
func New(dispatcher *service.Dispatcher) *Notifier {
	return &Notifier{dispatcher: dispatcher}
}

// ImpersonationExited posts rec to the tenant's impersonation-exit
// endpoint. A non-2xx response is an error; the response body is
// discarded either way.
func (n *Notifier) ImpersonationExited(ctx context.Context, rec domainsession.ExitRecord) error {
	if rec.TargetTenantID == "" {
		return fmt.Errorf("exit record has no target tenant")
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode exit record: %w", err)
	}

	path := fmt.Sprintf("/admin/platform/tenants/%s/impersonation-exit", rec.TargetTenantID)
	resp, err := n.dispatcher.Do(ctx, path, service.RequestOptions{
		Method: http.MethodPost,
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("post exit record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("audit endpoint returned %s", resp.Status)
	}
	return nil
}
