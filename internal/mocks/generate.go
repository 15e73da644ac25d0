// Package mocks provides mock implementations for testing the identity
// gateway.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for the gateway ports. The mocks are generated using go:generate
// directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	auditor := mocks.NewMockAuditNotifier(ctrl)
//	auditor.EXPECT().ImpersonationExited(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for AuditNotifier interface from internal/ports.
// This creates MockAuditNotifier with: ImpersonationExited
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_notifier_mock.go github.com/ranjeet447/schoolerp-gateway/internal/ports AuditNotifier

// Generate mock for Navigator interface from internal/ports.
// This creates MockNavigator with: CurrentPath, ToLogin, ToPath
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=navigator_mock.go github.com/ranjeet447/schoolerp-gateway/internal/ports Navigator

// Generate mock for AccessPolicy interface from internal/ports.
// This creates MockAccessPolicy with: Allows
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=access_policy_mock.go github.com/ranjeet447/schoolerp-gateway/internal/ports AccessPolicy
