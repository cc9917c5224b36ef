package authcore

import (
	"context"
)

const (
	auditActionRegister           = "auth.register"
	auditActionLogin              = "auth.login"
	auditActionLogout             = "auth.logout"
	auditActionLogoutAll          = "auth.logout_all"
	auditActionPasswordChange     = "auth.password_change"
	auditActionTokenRotate        = "token.rotate"
	auditActionTokenReplay        = "token.replay"
	auditActionRoleCreate         = "role.create"
	auditActionRoleAssign         = "role.assign"
	auditActionRoleRemove         = "role.remove"
	auditActionSubscriptionGrant  = "subscription.grant"
	auditActionSubscriptionExtend = "subscription.extend"
	auditActionSubscriptionCancel = "subscription.cancel"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	action string,
	success bool,
	principalID string,
	tokenID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:   e.now().UTC(),
		Action:      action,
		PrincipalID: principalID,
		TokenID:     tokenID,
		Success:     success,
		Metadata:    metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	e.audit.Emit(ctx, event)
}
