package models

import (
	"fmt"
	"strings"
	"time"
)

// Rate-limit key namespaces. Each protected action gets its own prefix so
// lockouts never bleed across endpoint families.
const (
	KeyAdminLogin           = "admin_login"
	KeyAdminPINChange       = "admin_pin_change"
	KeyCanteenLogin         = "canteen_login"
	KeyAdminGetCanteens     = "admin_get_canteens"
	KeyAdminCanteenPINChange = "admin_canteen_pin_change"
)

// AdminLoginKey keys admin PIN verification by the caller's identifier
// (device token if supplied, else IP).
func AdminLoginKey(identifier string) string {
	return fmt.Sprintf("%s:%s", KeyAdminLogin, identifier)
}

// AdminPINChangeKey keys admin PIN changes by IP.
func AdminPINChangeKey(ip string) string {
	return fmt.Sprintf("%s:%s", KeyAdminPINChange, ip)
}

// CanteenLoginKey keys owner logins by canteen and IP.
func CanteenLoginKey(canteenID, ip string) string {
	return fmt.Sprintf("%s:%s:%s", KeyCanteenLogin, canteenID, ip)
}

// AdminGetCanteensKey keys the admin canteen-PIN listing.
func AdminGetCanteensKey(identifier string) string {
	return fmt.Sprintf("%s:%s", KeyAdminGetCanteens, identifier)
}

// AdminCanteenPINChangeKey keys admin-side canteen PIN changes.
func AdminCanteenPINChangeKey(identifier string) string {
	return fmt.Sprintf("%s:%s", KeyAdminCanteenPINChange, identifier)
}

// RateLimitRecord is the durable per-key attempt counter. It is the
// cross-instance source of truth for lockouts.
type RateLimitRecord struct {
	Key          string     `db:"key"`
	Attempts     int        `db:"attempts"`
	LastAttempt  time.Time  `db:"last_attempt"`
	LockoutUntil *time.Time `db:"lockout_until"`
}

// LockedOut reports whether the record carries an active lockout.
func (r *RateLimitRecord) LockedOut(now time.Time) bool {
	return r.LockoutUntil != nil && r.LockoutUntil.After(now)
}

// LockedOutEntry is the admin console's decoded view of a lockout record.
// The raw key is parsed back into page + IP the same way the dashboard
// displays it.
type LockedOutEntry struct {
	IP              string     `json:"ip"`
	Page            string     `json:"page"`
	CanteenID       string     `json:"canteenId,omitempty"`
	CanteenName     string     `json:"canteenName,omitempty"`
	Attempts        int        `json:"attempts"`
	LastAttempt     time.Time  `json:"lastAttempt"`
	LockoutUntil    *time.Time `json:"lockoutUntil"`
	CurrentlyLocked bool       `json:"isCurrentlyLocked"`
}

// ParseRateLimitKey splits a composite key into its action, optional
// canteen id, and identifier parts. IPv6 identifiers contain colons, so
// everything after the fixed prefix is rejoined.
func ParseRateLimitKey(key string) (action, canteenID, identifier string) {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "", "", ""
	}
	action = parts[0]
	if action == KeyCanteenLogin {
		if len(parts) < 3 {
			return action, "", ""
		}
		return action, parts[1], strings.Join(parts[2:], ":")
	}
	return action, "", strings.Join(parts[1:], ":")
}
