// Package schema canonicalizes column headers so that datasets exported by
// different tools can be joined on the same names.
package schema

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const utf8BOM = "\uFEFF"

// NormalizeHeader returns the canonical form of one column name: BOM
// removed, Unicode NFC, surrounding whitespace trimmed, lower-cased.
// Normalizing an already normalized name returns it unchanged.
func NormalizeHeader(name string) string {
	name = strings.TrimPrefix(name, utf8BOM)
	name = norm.NFC.String(name)
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeHeaders returns a new slice with every header normalized in order.
// Length and order are preserved; the input is not modified.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}
