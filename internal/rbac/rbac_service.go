package rbac

import (
	"sync"

	"go-workforce/internal/domain"

	"github.com/casbin/casbin/v2"
)

// Policy is a single allow rule.
type Policy struct {
	Role     string
	Resource string
	Action   string
}

// DefaultPolicies: viewers read everything, managers also write, admins do anything.
var DefaultPolicies = []Policy{
	{Role: domain.RoleViewer, Resource: "department", Action: "read"},
	{Role: domain.RoleViewer, Resource: "employee", Action: "read"},
	{Role: domain.RoleViewer, Resource: "project", Action: "read"},
	{Role: domain.RoleManager, Resource: "department", Action: "create"},
	{Role: domain.RoleManager, Resource: "department", Action: "update"},
	{Role: domain.RoleManager, Resource: "employee", Action: "create"},
	{Role: domain.RoleManager, Resource: "employee", Action: "update"},
	{Role: domain.RoleManager, Resource: "project", Action: "create"},
	{Role: domain.RoleManager, Resource: "project", Action: "update"},
	{Role: domain.RoleManager, Resource: "project", Action: "assign"},
	{Role: domain.RoleAdmin, Resource: "*", Action: "*"},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
}

func NewService(enforcer *casbin.Enforcer, policies []Policy) (Service, error) {
	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p.Role, p.Resource, p.Action); err != nil {
			return nil, err
		}
	}

	inheritance := [][2]string{
		{domain.RoleManager, domain.RoleViewer},
		{domain.RoleAdmin, domain.RoleManager},
	}
	for _, g := range inheritance {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
