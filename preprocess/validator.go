package preprocess

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quanterra/finassist/config"
)

// Validation error codes, in check order.
const (
	ErrCodeEmptyInput        = "EMPTY_INPUT"
	ErrCodeTextTooShort      = "TEXT_TOO_SHORT"
	ErrCodeTextTooLong       = "TEXT_TOO_LONG"
	ErrCodeInjectionDetected = "INJECTION_DETECTED"
	ErrCodeBlockedCharacters = "BLOCKED_CHARACTERS"
)

// ValidationResult reports whether input text is structurally acceptable.
// Invalid input is a value, not an error: no stage ever panics or fails on
// malformed text.
type ValidationResult struct {
	IsValid      bool
	ErrorCode    string
	ErrorMessage string
}

// InputValidator rejects structurally invalid or adversarial text before
// any further processing.
type InputValidator struct {
	minLength         int
	maxLength         int
	injectionPatterns []*regexp.Regexp
	blockedSubstrings []string
}

// NewInputValidator compiles the configured injection patterns.
func NewInputValidator(cfg config.ValidationConfig) (*InputValidator, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.InjectionPatterns))
	for _, p := range cfg.InjectionPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile injection pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return &InputValidator{
		minLength:         cfg.MinLength,
		maxLength:         cfg.MaxLength,
		injectionPatterns: patterns,
		blockedSubstrings: cfg.BlockedSubstrings,
	}, nil
}

// Validate runs the checks in fixed order; the first failure wins.
func (v *InputValidator) Validate(text string) ValidationResult {
	if strings.TrimSpace(text) == "" {
		return ValidationResult{
			ErrorCode:    ErrCodeEmptyInput,
			ErrorMessage: "Input cannot be empty",
		}
	}

	if len(text) < v.minLength {
		return ValidationResult{
			ErrorCode:    ErrCodeTextTooShort,
			ErrorMessage: "Input too short",
		}
	}

	if len(text) > v.maxLength {
		return ValidationResult{
			ErrorCode:    ErrCodeTextTooLong,
			ErrorMessage: "Input too long",
		}
	}

	for _, re := range v.injectionPatterns {
		if re.MatchString(text) {
			return ValidationResult{
				ErrorCode:    ErrCodeInjectionDetected,
				ErrorMessage: "Injection attack detected",
			}
		}
	}

	lower := strings.ToLower(text)
	for _, blocked := range v.blockedSubstrings {
		if strings.Contains(lower, strings.ToLower(blocked)) {
			return ValidationResult{
				ErrorCode:    ErrCodeBlockedCharacters,
				ErrorMessage: "Blocked characters found",
			}
		}
	}

	return ValidationResult{IsValid: true}
}
