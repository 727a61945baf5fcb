package services

import (
	"github.com/trustedgroup/enrollment-service/internal/config"
)

// AdminPolicy decides whether a session may call the admin-only
// operations (invite, uninvite, remove).
type AdminPolicy interface {
	Allows(session *Session) bool
}

type allowlistAdminPolicy struct {
	handles   map[string]struct{}
	permitAll bool
}

// NewAdminPolicy builds the default policy: a configured allow-list of
// admin handles, with an explicit permit-all escape hatch for
// development environments.
func NewAdminPolicy(cfg *config.Config) AdminPolicy {
	handles := make(map[string]struct{}, len(cfg.AdminHandles))
	for _, h := range cfg.AdminHandles {
		handles[h] = struct{}{}
	}
	return &allowlistAdminPolicy{
		handles:   handles,
		permitAll: cfg.PermitAllAdmins,
	}
}

func (p *allowlistAdminPolicy) Allows(session *Session) bool {
	if p.permitAll {
		return true
	}
	if session == nil || session.Handle == "" {
		return false
	}
	_, ok := p.handles[session.Handle]
	return ok
}
