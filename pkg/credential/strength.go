package credential

import (
	"strings"
	"unicode/utf8"
)

// MinLength is the minimum number of characters in a password.
const MinLength = 8

// Symbols is the set of characters accepted for the symbol rule.
const Symbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// Rule is a single password policy rule.
type Rule struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r Rule) String() string { return r.Message }

// Password policy rules, in evaluation order.
var (
	RuleMinLength = Rule{Code: "min_length", Message: "must be at least 8 characters long"}
	RuleUpper     = Rule{Code: "uppercase", Message: "must contain at least one uppercase letter"}
	RuleLower     = Rule{Code: "lowercase", Message: "must contain at least one lowercase letter"}
	RuleDigit     = Rule{Code: "digit", Message: "must contain at least one digit"}
	RuleSymbol    = Rule{Code: "symbol", Message: "must contain at least one special character"}
)

// Rules lists every policy rule in evaluation order.
var Rules = []Rule{RuleMinLength, RuleUpper, RuleLower, RuleDigit, RuleSymbol}

// Strength is the outcome of CheckStrength.
type Strength struct {
	OK         bool   `json:"ok"`
	Violations []Rule `json:"violations,omitempty"`
}

// Messages returns the violation messages in rule order.
func (s Strength) Messages() []string {
	out := make([]string, len(s.Violations))
	for i, v := range s.Violations {
		out[i] = v.Message
	}
	return out
}

// Has reports whether the given rule was violated.
func (s Strength) Has(rule Rule) bool {
	for _, v := range s.Violations {
		if v.Code == rule.Code {
			return true
		}
	}
	return false
}

// CheckStrength evaluates secret against every rule and returns all violations.
func CheckStrength(secret string) Strength {
	var upper, lower, digit, symbol bool
	for _, r := range secret {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(Symbols, r):
			symbol = true
		}
	}

	var violations []Rule
	if utf8.RuneCountInString(secret) < MinLength {
		violations = append(violations, RuleMinLength)
	}
	if !upper {
		violations = append(violations, RuleUpper)
	}
	if !lower {
		violations = append(violations, RuleLower)
	}
	if !digit {
		violations = append(violations, RuleDigit)
	}
	if !symbol {
		violations = append(violations, RuleSymbol)
	}

	return Strength{OK: len(violations) == 0, Violations: violations}
}
