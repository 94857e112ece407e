package inspectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExtractFlags_TLS tests TLS pattern detection
func TestExtractFlags_TLS(t *testing.T) {
	flags := ExtractFlags(`cfg := &tls.Config{MinVersion: tls.VersionTLS12}`, "golang")
	assert.True(t, flags[FlagUsesTLS])

	flags = ExtractFlags(`url = "https://api.example.com"`, "python")
	assert.True(t, flags[FlagUsesTLS])

	flags = ExtractFlags(`fmt.Println("hello")`, "golang")
	assert.False(t, flags[FlagUsesTLS])
}

// TestExtractFlags_HardcodedSecret tests secret detection
func TestExtractFlags_HardcodedSecret(t *testing.T) {
	flags := ExtractFlags(`apiKey = "abc123"`, "golang")
	assert.True(t, flags[FlagHardcodedSecret], "keyword assignment should flag")

	flags = ExtractFlags(`x := "sk4fJ9mQ2pXv7Lw8Rz3TyB6nHcK1dGe5"`, "golang")
	assert.True(t, flags[FlagHardcodedSecret], "high-entropy literal should flag")

	flags = ExtractFlags(`greeting := "aaaaaaaaaaaaaaaaaaaaaaaaaaa"`, "golang")
	assert.False(t, flags[FlagHardcodedSecret], "low-entropy literal should not flag")
}

// TestExtractFlags_AuthCheck tests authentication pattern detection
func TestExtractFlags_AuthCheck(t *testing.T) {
	flags := ExtractFlags(`if !authorizeRequest(token) { return ErrDenied }`, "golang")
	assert.True(t, flags[FlagAuthCheck])
}

// TestExtractFlags_MalformedInput tests that garbage never fails
func TestExtractFlags_MalformedInput(t *testing.T) {
	assert.NotPanics(t, func() {
		ExtractFlags("", "")
		ExtractFlags("\x00\xff\xfe", "unknown-language")
		ExtractFlags(`"""'''`+"```", "golang")
	})
}

// TestDeriveControlHints tests the flag-to-control table
func TestDeriveControlHints(t *testing.T) {
	hints := DeriveControlHints(map[string]bool{FlagUsesTLS: true})
	assert.Equal(t, []string{"sc8"}, hints, "uses_tls must evidence SC-8")

	hints = DeriveControlHints(map[string]bool{FlagAuthCheck: true})
	assert.Equal(t, []string{"ac6"}, hints)

	hints = DeriveControlHints(map[string]bool{FlagCryptoUse: true})
	assert.ElementsMatch(t, []string{"sc12", "sc13"}, hints)

	assert.Empty(t, DeriveControlHints(nil))
	assert.Empty(t, DeriveControlHints(map[string]bool{FlagUsesTLS: false}))
}

// TestExtractFlags_LanguageCrypto tests language-specific crypto rules
func TestExtractFlags_LanguageCrypto(t *testing.T) {
	flags := ExtractFlags(`import "crypto/aes"`, "golang")
	assert.True(t, flags[FlagCryptoUse])

	flags = ExtractFlags(`import hashlib`, "python")
	assert.True(t, flags[FlagCryptoUse])

	// Unknown language still matches generic patterns only
	flags = ExtractFlags(`import hashlib`, "rust")
	assert.False(t, flags[FlagCryptoUse])
}
