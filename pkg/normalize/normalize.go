// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package normalize canonicalizes user-supplied identity strings.
//
// # Usage
//
// Usernames and emails are stored case-normalized so that uniqueness holds
// regardless of how the client typed them. Display names keep their case but
// are NFC-composed and whitespace-collapsed.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Identifier trims, NFC-normalizes and lowercases a username or email.
func Identifier(s string) string {
	composed := norm.NFC.String(strings.TrimSpace(s))
	return cases.Lower(language.Und).String(composed)
}

// DisplayName trims, NFC-normalizes and collapses internal whitespace.
func DisplayName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
