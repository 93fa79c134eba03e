package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/Arihant25/isitopen/internal/models"
	"github.com/Arihant25/isitopen/internal/services"
	pkghttp "github.com/Arihant25/isitopen/pkg/http"
	pkglogger "github.com/Arihant25/isitopen/pkg/logger"
)

// Canned 429 bodies. The hard-block message is deliberately fixed and
// unhelpful: a blocked guesser learns nothing about remaining time.
const (
	msgHardBlocked = "Too many rapid attempts. Access blocked. Contact admin."
	msgInvalidPIN  = "Invalid PIN"
)

func msgLockedOut(remaining time.Duration) string {
	minutes := int(math.Ceil(remaining.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", minutes)
}

// PINGate composes the two guardrail layers around a PIN check: the
// in-memory pattern detector first, then the persistent limiter. Every
// PIN-verifying handler goes through it.
type PINGate struct {
	detector *services.GuardrailService
	limiter  *services.RateLimitService
	audit    *pkglogger.AuditLogger
}

// NewPINGate creates the guardrail composition shared by the PIN
// handlers.
func NewPINGate(detector *services.GuardrailService, limiter *services.RateLimitService, audit *pkglogger.AuditLogger) *PINGate {
	return &PINGate{
		detector: detector,
		limiter:  limiter,
		audit:    audit,
	}
}

// gateResult carries what the handler needs after the two pre-checks
type gateResult struct {
	softWarn bool
}

// check runs the detector and the persistent limiter for one attempt.
// When it returns ok=false the response has already been written and the
// credential must not be checked.
func (g *PINGate) check(ctx context.Context, w http.ResponseWriter, endpoint, key, ip, deviceID, pin string) (gateResult, bool) {
	verdict := g.detector.RecordAttempt(endpoint, ip, deviceID, pin)
	if verdict.Status == services.GuardrailHardBlock {
		pkghttp.WriteTooManyRequests(w, msgHardBlocked)
		return gateResult{}, false
	}

	decision, err := g.limiter.CheckLimit(ctx, key)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return gateResult{}, false
	}
	if !decision.Allowed {
		pkghttp.WriteTooManyRequests(w, msgLockedOut(decision.Remaining))
		return gateResult{}, false
	}

	return gateResult{softWarn: verdict.Status == services.GuardrailSoftWarn}, true
}

// finish records the credential outcome against the persistent limiter
// and handles the failure responses. Returns true on success, with the
// detector's velocity state for the IP cleared. On failure the 401 (or
// 429, when this failure tripped the lockout) has been written.
func (g *PINGate) finish(ctx context.Context, w http.ResponseWriter, res gateResult, endpoint, key, ip, deviceID string, credentialErr error) bool {
	switch {
	case credentialErr == nil:
		if _, err := g.limiter.RecordAttempt(ctx, key, true); err != nil {
			pkghttp.WriteInternalError(w, "Internal server error")
			return false
		}
		g.detector.ClearForIP(ip)
		if res.softWarn {
			w.Header().Set(pkghttp.SoftWarnHeader, "true")
		}
		g.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType: endpoint,
			Key:       key,
			IPAddress: ip,
			DeviceID:  deviceID,
			Success:   true,
		})
		return true

	case errors.Is(credentialErr, models.ErrInvalidPIN):
		locked, err := g.limiter.RecordAttempt(ctx, key, false)
		if err != nil {
			pkghttp.WriteInternalError(w, "Internal server error")
			return false
		}
		g.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     endpoint,
			Key:           key,
			IPAddress:     ip,
			DeviceID:      deviceID,
			Success:       false,
			FailureReason: "invalid_pin",
		})
		if res.softWarn {
			w.Header().Set(pkghttp.SoftWarnHeader, "true")
		}
		if locked {
			pkghttp.WriteTooManyRequests(w, msgLockedOut(g.limiter.LockoutDuration()))
			return false
		}
		pkghttp.WriteUnauthorized(w, msgInvalidPIN)
		return false

	case errors.Is(credentialErr, models.ErrNotFound):
		// Unknown resource: not a credential failure, nothing recorded
		pkghttp.WriteNotFound(w, "Canteen not found")
		return false

	default:
		pkghttp.WriteInternalError(w, "Internal server error")
		return false
	}
}
