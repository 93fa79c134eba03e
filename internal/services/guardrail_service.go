package services

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Guardrail verdict statuses
const (
	GuardrailOK        = "ok"
	GuardrailSoftWarn  = "soft-warn"
	GuardrailHardBlock = "hard-block"
)

// Hard-block trigger reasons, for audit logs and alerts
const (
	ReasonVelocity    = "velocity"
	ReasonSequential  = "sequential_guessing"
	ReasonEnumeration = "sustained_enumeration"
)

// GuardrailConfig holds the detector thresholds
type GuardrailConfig struct {
	Window            time.Duration // velocity window per key
	SoftLimit         int           // warn threshold per window
	HardLimit         int           // block threshold per window
	HardBlockDuration time.Duration
	EnumerationWindow time.Duration // sustained window for escalation
}

// Verdict is the detector's answer for one attempt
type Verdict struct {
	Status    string
	Remaining time.Duration // time left on a hard block
	Reason    string        // set when Status is hard-block
}

type attempt struct {
	ts  time.Time
	pin string
}

// sustained is the per-IP cumulative counter. It does not slide: it keeps
// accumulating from the first attempt, which is what catches low-and-slow
// enumeration across rotating device IDs.
type sustained struct {
	start time.Time
	last  time.Time
	count int
}

// BlockListener is notified when the detector imposes a new hard block.
type BlockListener func(endpoint, ip, deviceID, reason string, until time.Time)

// GuardrailService is the in-memory pattern detector layered in front of
// the persistent limiter. It tracks attempt velocity per
// endpoint|ip|device key, flags sequential PIN runs and sustained
// enumeration from one IP, and imposes its own temporary hard blocks.
//
// State is process-local by design; the persistent limiter remains the
// cross-instance authority. All maps sit behind one mutex since the
// detector is touched from concurrent request goroutines.
type GuardrailService struct {
	config  GuardrailConfig
	logger  *slog.Logger
	now     func() time.Time
	onBlock BlockListener

	mu             sync.Mutex
	attemptsByKey  map[string][]attempt
	hardBlockUntil map[string]time.Time
	sustainedByIP  map[string]*sustained
}

// NewGuardrailService creates a new GuardrailService
func NewGuardrailService(config GuardrailConfig, logger *slog.Logger) *GuardrailService {
	return &GuardrailService{
		config:         config,
		logger:         logger,
		now:            time.Now,
		attemptsByKey:  make(map[string][]attempt),
		hardBlockUntil: make(map[string]time.Time),
		sustainedByIP:  make(map[string]*sustained),
	}
}

// SetClock overrides the time source. Tests only.
func (s *GuardrailService) SetClock(now func() time.Time) {
	s.now = now
}

// OnHardBlock registers a listener invoked (outside the lock) whenever a
// new hard block is imposed.
func (s *GuardrailService) OnHardBlock(fn BlockListener) {
	s.onBlock = fn
}

func guardrailKey(endpoint, ip, deviceID string) string {
	if deviceID == "" {
		deviceID = "none"
	}
	return fmt.Sprintf("%s|ip:%s|dev:%s", endpoint, ip, deviceID)
}

// RecordAttempt evaluates one PIN attempt against the detector's signals.
// An attempt against an actively blocked key returns the block without
// being recorded.
func (s *GuardrailService) RecordAttempt(endpoint, ip, deviceID, pin string) Verdict {
	key := guardrailKey(endpoint, ip, deviceID)
	now := s.now()

	s.mu.Lock()

	if until, ok := s.hardBlockUntil[key]; ok && now.Before(until) {
		s.mu.Unlock()
		return Verdict{Status: GuardrailHardBlock, Remaining: until.Sub(now)}
	}

	// Prune the key's window and append this attempt
	pruned := s.attemptsByKey[key][:0:0]
	for _, a := range s.attemptsByKey[key] {
		if now.Sub(a.ts) <= s.config.Window {
			pruned = append(pruned, a)
		}
	}
	pruned = append(pruned, attempt{ts: now, pin: pin})
	s.attemptsByKey[key] = pruned

	velocity := len(pruned)
	seq := sequentialRun(pruned)

	// Sustained enumeration across device IDs on the same IP
	su := s.sustainedByIP[ip]
	if su == nil {
		su = &sustained{start: now}
		s.sustainedByIP[ip] = su
	}
	su.last = now
	su.count++

	enumMinutes := int(s.config.EnumerationWindow.Minutes())
	sustainedEnumeration := su.last.Sub(su.start) >= s.config.EnumerationWindow &&
		su.count >= s.config.SoftLimit*enumMinutes

	var reason string
	switch {
	case velocity >= s.config.HardLimit:
		reason = ReasonVelocity
	case seq:
		reason = ReasonSequential
	case sustainedEnumeration:
		reason = ReasonEnumeration
	}

	if reason != "" {
		until := now.Add(s.config.HardBlockDuration)
		s.hardBlockUntil[key] = until
		s.mu.Unlock()

		s.logger.Warn("guardrail hard block",
			slog.String("endpoint", endpoint),
			slog.String("ip", ip),
			slog.String("reason", reason),
			slog.Int("velocity", velocity))

		if s.onBlock != nil {
			s.onBlock(endpoint, ip, deviceID, reason, until)
		}

		return Verdict{Status: GuardrailHardBlock, Remaining: s.config.HardBlockDuration, Reason: reason}
	}

	s.mu.Unlock()

	if velocity >= s.config.SoftLimit {
		return Verdict{Status: GuardrailSoftWarn}
	}

	return Verdict{Status: GuardrailOK}
}

// sequentialRun reports whether the last three recorded PINs form a
// consecutive ascending run (e.g. 1111, 1112, 1113).
func sequentialRun(attempts []attempt) bool {
	pins := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if a.pin != "" {
			pins = append(pins, a.pin)
		}
	}
	if len(pins) < 3 {
		return false
	}

	last := pins[len(pins)-3:]
	nums := make([]int, 3)
	for i, p := range last {
		n, err := strconv.Atoi(p)
		if err != nil {
			return false
		}
		nums[i] = n
	}

	return nums[1] == nums[0]+1 && nums[2] == nums[1]+1
}

// ClearForIP drops every velocity window embedding the IP, across all
// endpoints and device IDs. Called after a successful login so a
// legitimate owner's earlier fumbles stop counting against them. Hard
// blocks and the sustained counter are deliberately left in place: a
// block is punitive and time-bound, not forgiven by one success.
func (s *GuardrailService) ClearForIP(ip string) {
	marker := fmt.Sprintf("|ip:%s|", ip)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.attemptsByKey {
		if strings.Contains(key, marker) {
			delete(s.attemptsByKey, key)
		}
	}
}

// Evict removes state that can no longer influence any decision: velocity
// windows with no attempt inside the window, expired hard blocks, and
// sustained counters idle past the enumeration window. Keeps memory
// bounded in a long-running process.
func (s *GuardrailService) Evict() (removed int) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, attempts := range s.attemptsByKey {
		live := false
		for _, a := range attempts {
			if now.Sub(a.ts) <= s.config.Window {
				live = true
				break
			}
		}
		if !live {
			delete(s.attemptsByKey, key)
			removed++
		}
	}

	for key, until := range s.hardBlockUntil {
		if !now.Before(until) {
			delete(s.hardBlockUntil, key)
			removed++
		}
	}

	for ip, su := range s.sustainedByIP {
		if now.Sub(su.last) > s.config.EnumerationWindow {
			delete(s.sustainedByIP, ip)
			removed++
		}
	}

	return removed
}
