package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRateLimitKey(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		action     string
		canteenID  string
		identifier string
	}{
		{
			name:       "admin login by IP",
			key:        AdminLoginKey("10.0.0.1"),
			action:     KeyAdminLogin,
			identifier: "10.0.0.1",
		},
		{
			name:       "admin login by device token",
			key:        AdminLoginKey("dev-abc123"),
			action:     KeyAdminLogin,
			identifier: "dev-abc123",
		},
		{
			name:       "canteen login",
			key:        CanteenLoginKey("north", "10.0.0.1"),
			action:     KeyCanteenLogin,
			canteenID:  "north",
			identifier: "10.0.0.1",
		},
		{
			name:       "canteen login with IPv6 identifier",
			key:        CanteenLoginKey("north", "2001:db8::1"),
			action:     KeyCanteenLogin,
			canteenID:  "north",
			identifier: "2001:db8::1",
		},
		{
			name:       "admin pin change with IPv6",
			key:        AdminPINChangeKey("2001:db8::1"),
			action:     KeyAdminPINChange,
			identifier: "2001:db8::1",
		},
		{
			name:   "malformed key",
			key:    "garbage",
			action: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, canteenID, identifier := ParseRateLimitKey(tt.key)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.canteenID, canteenID)
			assert.Equal(t, tt.identifier, identifier)
		})
	}
}

func TestRateLimitRecordLockedOut(t *testing.T) {
	now := time.Now()
	future := now.Add(10 * time.Minute)
	past := now.Add(-10 * time.Minute)

	assert.False(t, (&RateLimitRecord{}).LockedOut(now))
	assert.True(t, (&RateLimitRecord{LockoutUntil: &future}).LockedOut(now))
	assert.False(t, (&RateLimitRecord{LockoutUntil: &past}).LockedOut(now))
}
