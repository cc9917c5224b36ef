package authcore

import (
	"context"
	"errors"

	"github.com/reelgate/authcore/authz"
)

// CreateRole registers a role definition. Every listed permission must be in
// the closed permission set; a duplicate name returns ErrRoleAlreadyExists.
func (e *Engine) CreateRole(ctx context.Context, role Role) error {
	if err := e.ready(); err != nil {
		return err
	}
	if role.Name == "" {
		return errors.New("authcore: empty role name")
	}
	for _, p := range role.Permissions {
		if !p.Valid() {
			e.emitAudit(ctx, auditActionRoleCreate, false, "", "", authz.ErrUnknownPermission, func() map[string]string {
				return map[string]string{"role": role.Name, "permission": string(p)}
			})
			return authz.ErrUnknownPermission
		}
	}
	if role.Type == "" {
		role.Type = authz.RoleTypeDefault
	}

	if err := e.roles.CreateRole(ctx, role); err != nil {
		e.emitAudit(ctx, auditActionRoleCreate, false, "", "", err, func() map[string]string {
			return map[string]string{"role": role.Name}
		})
		return err
	}

	e.metricInc(MetricRoleCreated)
	e.emitAudit(ctx, auditActionRoleCreate, true, "", "", nil, func() map[string]string {
		return map[string]string{"role": role.Name}
	})
	return nil
}

// AssignRole adds the role to the principal. Assigning a role the principal
// already holds is a no-op. The role must exist.
func (e *Engine) AssignRole(ctx context.Context, principalID, roleName string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if _, err := e.roles.GetRole(ctx, roleName); err != nil {
		e.emitAudit(ctx, auditActionRoleAssign, false, principalID, "", err, func() map[string]string {
			return map[string]string{"role": roleName}
		})
		return err
	}

	rec, err := e.users.GetByID(ctx, principalID)
	if err != nil {
		return err
	}
	for _, held := range rec.Roles {
		if held == roleName {
			return nil
		}
	}

	next := make([]string, 0, len(rec.Roles)+1)
	next = append(next, rec.Roles...)
	next = append(next, roleName)
	if err := e.users.SetRoles(ctx, principalID, next); err != nil {
		e.emitAudit(ctx, auditActionRoleAssign, false, principalID, "", err, func() map[string]string {
			return map[string]string{"role": roleName}
		})
		return err
	}

	e.metricInc(MetricRoleAssigned)
	e.emitAudit(ctx, auditActionRoleAssign, true, principalID, "", nil, func() map[string]string {
		return map[string]string{"role": roleName}
	})
	return nil
}

// RemoveRole takes the role away from the principal. Removing a role the
// principal does not hold returns ErrAssignmentNotFound. Tokens minted while
// the role was held keep their snapshot until the next rotation.
func (e *Engine) RemoveRole(ctx context.Context, principalID, roleName string) error {
	if err := e.ready(); err != nil {
		return err
	}

	rec, err := e.users.GetByID(ctx, principalID)
	if err != nil {
		return err
	}

	next := make([]string, 0, len(rec.Roles))
	found := false
	for _, held := range rec.Roles {
		if held == roleName {
			found = true
			continue
		}
		next = append(next, held)
	}
	if !found {
		e.emitAudit(ctx, auditActionRoleRemove, false, principalID, "", ErrAssignmentNotFound, func() map[string]string {
			return map[string]string{"role": roleName}
		})
		return ErrAssignmentNotFound
	}

	if err := e.users.SetRoles(ctx, principalID, next); err != nil {
		e.emitAudit(ctx, auditActionRoleRemove, false, principalID, "", err, func() map[string]string {
			return map[string]string{"role": roleName}
		})
		return err
	}

	e.metricInc(MetricRoleRemoved)
	e.emitAudit(ctx, auditActionRoleRemove, true, principalID, "", nil, func() map[string]string {
		return map[string]string{"role": roleName}
	})
	return nil
}

// Roles lists all registered role definitions in registration order.
func (e *Engine) Roles(ctx context.Context) ([]Role, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.roles.ListRoles(ctx)
}
