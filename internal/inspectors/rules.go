package inspectors

import (
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

// Security flag names raised by the pattern rules.
const (
	FlagUsesTLS         = "uses_tls"
	FlagHardcodedSecret = "hardcoded_secret"
	FlagAuthCheck       = "auth_check"
	FlagCryptoUse       = "crypto_use"
	FlagAuditLogging    = "audit_logging"
	FlagInputValidation = "input_validation"
)

// flagControls maps each flag to the control ids it evidences, in hint
// key form. Lookup only; the flag rules never consult it.
var flagControls = map[string][]string{
	FlagUsesTLS:         {"sc8"},
	FlagHardcodedSecret: {"ia5"},
	FlagAuthCheck:       {"ac6"},
	FlagCryptoUse:       {"sc12", "sc13"},
	FlagAuditLogging:    {"au2"},
	FlagInputValidation: {"si10"},
}

// quotedLiteral matches string literals long enough to be credential
// material.
var quotedLiteral = regexp.MustCompile(`["'` + "`" + `]([A-Za-z0-9+/_=\-]{20,})["'` + "`" + `]`)

// secretAssignment matches identifiers that commonly name credentials.
var secretAssignment = regexp.MustCompile(`(?i)(secret|api[_-]?key|passwd|password|private[_-]?key)\s*[:=]`)

// entropyThreshold is the Shannon entropy (bits per character) above
// which a long literal is treated as likely credential material.
const entropyThreshold = 3.5

// ExtractFlags scans chunk text for security-relevant patterns and
// returns the raised flags. Deterministic and total: malformed input
// simply raises no flags. The declared language sharpens a few rules
// but is never required.
func ExtractFlags(text, language string) domain.SecurityFlags {
	lower := strings.ToLower(text)

	flags := domain.SecurityFlags{}

	if strings.Contains(lower, "tls") || strings.Contains(lower, "https") ||
		strings.Contains(lower, "ssl") {
		flags[FlagUsesTLS] = true
	}

	if hasHardcodedSecret(text, lower) {
		flags[FlagHardcodedSecret] = true
	}

	if strings.Contains(lower, "auth") || strings.Contains(lower, "token") ||
		strings.Contains(lower, "permission") {
		flags[FlagAuthCheck] = true
	}

	if strings.Contains(lower, "crypto") || strings.Contains(lower, "cipher") ||
		strings.Contains(lower, "encrypt") || hasLanguageCrypto(lower, language) {
		flags[FlagCryptoUse] = true
	}

	if strings.Contains(lower, "audit") || strings.Contains(lower, "syslog") ||
		strings.Contains(lower, "access_log") || strings.Contains(lower, "accesslog") {
		flags[FlagAuditLogging] = true
	}

	if strings.Contains(lower, "sanitize") || strings.Contains(lower, "sanitise") ||
		strings.Contains(lower, "validate_input") || strings.Contains(lower, "inputvalidation") ||
		strings.Contains(lower, "input_validation") {
		flags[FlagInputValidation] = true
	}

	return flags
}

// DeriveControlHints maps raised flags to candidate control ids (hint
// key form, e.g. "sc8"). Pure table lookup; order is deterministic only
// as a set.
func DeriveControlHints(flags domain.SecurityFlags) []string {
	seen := map[string]bool{}
	var hints []string
	for _, flag := range []string{
		FlagUsesTLS, FlagHardcodedSecret, FlagAuthCheck,
		FlagCryptoUse, FlagAuditLogging, FlagInputValidation,
	} {
		if !flags[flag] {
			continue
		}
		for _, id := range flagControls[flag] {
			if !seen[id] {
				seen[id] = true
				hints = append(hints, id)
			}
		}
	}
	return hints
}

// hasHardcodedSecret combines a keyword assignment check with a
// high-entropy literal heuristic.
func hasHardcodedSecret(text, lower string) bool {
	if secretAssignment.MatchString(lower) {
		return true
	}
	for _, match := range quotedLiteral.FindAllStringSubmatch(text, 8) {
		if shannonEntropy(match[1]) >= entropyThreshold {
			return true
		}
	}
	return false
}

// hasLanguageCrypto checks language-specific cryptographic imports.
func hasLanguageCrypto(lower, language string) bool {
	switch language {
	case "golang", "go":
		return strings.Contains(lower, "crypto/aes") || strings.Contains(lower, "crypto/rsa")
	case "python":
		return strings.Contains(lower, "hashlib") || strings.Contains(lower, "cryptography.")
	case "java":
		return strings.Contains(lower, "javax.crypto")
	case "cpp", "c++":
		return strings.Contains(lower, "evp_")
	default:
		return false
	}
}

// shannonEntropy returns the bits-per-character entropy of s.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := map[rune]int{}
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	var entropy float64
	for _, n := range freq {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
