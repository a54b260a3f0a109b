// Package guardrails is the pre-routing gate: critical-PII blocking,
// validation-failure blocking and per-session rate limiting.
package guardrails

import (
	"strings"
	"sync"
	"time"

	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/metrics"
	"github.com/quanterra/finassist/preprocess"
)

// Violation types reported on a failed check.
const (
	ViolationCriticalPII      = "critical_pii"
	ViolationInjectionAttack  = "injection_attack"
	ViolationValidationFailed = "validation_failed"
	ViolationRateLimit        = "rate_limit"
)

// Actions recommended by a check.
const (
	ActionProceed = "proceed"
	ActionBlock   = "block"
)

// Result is the verdict of the guardrail gate.
type Result struct {
	Passed        bool
	BlockedReason string
	ViolationType string
	Action        string
}

func pass() Result {
	return Result{Passed: true, Action: ActionProceed}
}

func block(reason, violation string) Result {
	metrics.GuardrailBlocks.WithLabelValues(violation).Inc()
	return Result{
		BlockedReason: reason,
		ViolationType: violation,
		Action:        ActionBlock,
	}
}

type rateWindow struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// Guardrails runs three sub-checks in fixed order, short-circuiting on
// the first failure: critical PII, input validation, then rate limiting.
// Rate limiting is deliberately last so requests blocked by the earlier
// checks never consume rate-limit budget.
type Guardrails struct {
	cfg config.GuardrailsConfig

	critical map[string]bool

	mu      sync.Mutex
	windows map[string]*rateWindow

	// now is swappable for tests.
	now func() time.Time
}

// New creates the gate from configuration.
func New(cfg config.GuardrailsConfig) *Guardrails {
	critical := make(map[string]bool, len(cfg.CriticalPIITypes))
	for _, t := range cfg.CriticalPIITypes {
		critical[t] = true
	}
	return &Guardrails{
		cfg:      cfg,
		critical: critical,
		windows:  make(map[string]*rateWindow),
		now:      time.Now,
	}
}

// Check runs all guardrail checks for one request.
func (g *Guardrails) Check(pre preprocess.PreprocessedInput, sessionID string) Result {
	if !g.cfg.Enabled {
		return pass()
	}

	if result := g.checkPII(pre); !result.Passed {
		return result
	}
	if result := g.checkValidation(pre); !result.Passed {
		return result
	}
	if result := g.checkRateLimit(sessionID); !result.Passed {
		return result
	}
	return pass()
}

// checkPII blocks when any detected entity's type is configured critical.
// Masking has already happened; the attempt itself is disqualifying.
func (g *Guardrails) checkPII(pre preprocess.PreprocessedInput) Result {
	if !g.cfg.BlockOnPII {
		return pass()
	}
	for _, entity := range pre.DetectedPII {
		if g.critical[string(entity.Type)] {
			return block("Critical PII detected: "+string(entity.Type), ViolationCriticalPII)
		}
	}
	return pass()
}

// checkValidation blocks invalid input, classifying injection attempts
// separately from other validation failures.
func (g *Guardrails) checkValidation(pre preprocess.PreprocessedInput) Result {
	if pre.IsValid {
		return pass()
	}

	message := ""
	if len(pre.ErrorMessages) > 0 {
		message = pre.ErrorMessages[0]
	}

	lower := strings.ToLower(message)
	if g.cfg.BlockOnInjection &&
		(strings.Contains(lower, "injection") || strings.Contains(lower, "malicious content")) {
		return block("Injection attack detected", ViolationInjectionAttack)
	}
	return block(message, ViolationValidationFailed)
}

// checkRateLimit maintains a per-session sliding window of request
// timestamps: prune entries older than the window, block when the pruned
// count has already reached the limit, otherwise record this request.
func (g *Guardrails) checkRateLimit(sessionID string) Result {
	if !g.cfg.RateLimit.Enabled {
		return pass()
	}

	g.mu.Lock()
	w, ok := g.windows[sessionID]
	if !ok {
		w = &rateWindow{}
		g.windows[sessionID] = w
	}
	g.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := g.now()
	cutoff := now.Add(-g.cfg.RateLimit.Window())

	kept := w.timestamps[:0]
	for _, t := range w.timestamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.timestamps = kept

	if len(w.timestamps) >= g.cfg.RateLimit.MaxRequests {
		return block("Rate limit exceeded", ViolationRateLimit)
	}

	w.timestamps = append(w.timestamps, now)
	return pass()
}
