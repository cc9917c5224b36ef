package authcore

import (
	"context"
	"errors"
	"log"
)

// Register creates an account with the identifier and password and no roles.
// Identifiers are exact-match unique; a duplicate returns ErrAccountExists.
func (e *Engine) Register(ctx context.Context, identifier, plaintext string) (PrincipalRecord, error) {
	if err := e.ready(); err != nil {
		return PrincipalRecord{}, err
	}
	if identifier == "" {
		return PrincipalRecord{}, errors.New("authcore: empty identifier")
	}

	hash, err := e.hasher.Hash(plaintext)
	if err != nil {
		e.emitAudit(ctx, auditActionRegister, false, "", "", err, func() map[string]string {
			return map[string]string{"identifier": identifier}
		})
		return PrincipalRecord{}, err
	}

	rec := PrincipalRecord{
		ID:           e.newID(),
		Identifier:   identifier,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    e.now().UTC(),
	}

	if err := e.users.Create(ctx, rec); err != nil {
		if errors.Is(err, ErrAccountExists) {
			e.metricInc(MetricRegisterDuplicate)
		}
		e.emitAudit(ctx, auditActionRegister, false, "", "", err, func() map[string]string {
			return map[string]string{"identifier": identifier}
		})
		return PrincipalRecord{}, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditActionRegister, true, rec.ID, "", nil, func() map[string]string {
		return map[string]string{"identifier": identifier}
	})
	return rec, nil
}

// Authenticate verifies the identifier and password and returns the account
// record. Unknown identifiers and wrong passwords are indistinguishable: both
// return ErrInvalidCredentials. A disabled account fails with
// ErrAccountDisabled only after the password verified, so probing disabled
// accounts still costs a correct password.
func (e *Engine) Authenticate(ctx context.Context, identifier, plaintext string) (PrincipalRecord, error) {
	if err := e.ready(); err != nil {
		return PrincipalRecord{}, err
	}
	if identifier == "" || plaintext == "" {
		e.metricInc(MetricLoginFailure)
		return PrincipalRecord{}, ErrInvalidCredentials
	}

	rec, err := e.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"identifier": identifier, "reason": "unknown_identifier"}
		})
		return PrincipalRecord{}, ErrInvalidCredentials
	}

	ok, err := e.hasher.Verify(plaintext, rec.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, rec.ID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"identifier": identifier, "reason": "password_mismatch"}
		})
		return PrincipalRecord{}, ErrInvalidCredentials
	}

	if !rec.Active {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, rec.ID, "", ErrAccountDisabled, nil)
		return PrincipalRecord{}, ErrAccountDisabled
	}

	if needs, err := e.hasher.NeedsRehash(rec.PasswordHash); err == nil && needs {
		// Cost upgrade is best-effort and must not block a successful login.
		if upgraded, err := e.hasher.Hash(plaintext); err == nil {
			if err := e.users.UpdatePasswordHash(ctx, rec.ID, upgraded); err != nil {
				log.Print("authcore: password hash upgrade failed")
			}
		}
	}

	return rec, nil
}

// Login authenticates and mints a token pair carrying the principal's
// current roles and effective entitlements.
func (e *Engine) Login(ctx context.Context, identifier, plaintext string) (*TokenPair, error) {
	rec, err := e.Authenticate(ctx, identifier, plaintext)
	if err != nil {
		return nil, err
	}

	snap, err := e.snapshotFor(ctx, rec)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, rec.ID, "", err, nil)
		return nil, e.mapTokenError(err)
	}

	pair, err := e.tokens.IssuePair(ctx, rec.ID, snap)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditActionLogin, false, rec.ID, "", err, nil)
		return nil, e.mapTokenError(err)
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditActionLogin, true, rec.ID, "", nil, nil)
	return pair, nil
}

// ChangePassword replaces the principal's password after verifying the old
// one. A wrong old password returns ErrInvalidCredentials. Outstanding tokens
// stay valid; callers wanting a forced re-login follow up with LogoutAll.
func (e *Engine) ChangePassword(ctx context.Context, principalID, oldPassword, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}

	rec, err := e.users.GetByID(ctx, principalID)
	if err != nil {
		return err
	}

	ok, err := e.hasher.Verify(oldPassword, rec.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditActionPasswordChange, false, principalID, "", ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.emitAudit(ctx, auditActionPasswordChange, false, principalID, "", err, nil)
		return err
	}

	if err := e.users.UpdatePasswordHash(ctx, principalID, hash); err != nil {
		e.emitAudit(ctx, auditActionPasswordChange, false, principalID, "", err, nil)
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditActionPasswordChange, true, principalID, "", nil, nil)
	return nil
}
