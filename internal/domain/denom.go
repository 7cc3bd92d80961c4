package domain

import "strings"

const (
	// NativeSymbol is the canonical lowercase form of the chain's native asset.
	NativeSymbol = "inj"

	// DefaultDecimals is assumed when the upstream asset record omits the
	// decimals field. 18 matches the chain's native precision; assuming 0
	// here would silently collapse every conversion.
	DefaultDecimals = 18
)

// Structured denom prefixes are already canonical and must never be re-derived.
const (
	prefixFactory = "factory/"
	prefixIBC     = "ibc/"
)

// NormalizeDenom canonicalizes a user-supplied asset identifier into the
// network's comparison form. It is pure and idempotent:
//   - "factory/..." and "ibc/..." pass through unchanged
//   - any casing of the native symbol becomes its lowercase form
//   - everything else passes through unchanged
func NormalizeDenom(denom string) string {
	if IsStructuredDenom(denom) {
		return denom
	}
	if strings.EqualFold(denom, NativeSymbol) {
		return NativeSymbol
	}
	return denom
}

// IsStructuredDenom reports whether the denom carries a structured prefix.
func IsStructuredDenom(denom string) bool {
	return strings.HasPrefix(denom, prefixFactory) || strings.HasPrefix(denom, prefixIBC)
}
