package model

import (
	"strings"
	"time"
)

// Account is the durable per-phone user record.
type Account struct {
	Phone      string    `json:"phone"`
	Subscribed bool      `json:"subscribed"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Clone returns a copy that callers may mutate freely.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// CanonicalPhone trims raw and drops the separators people type into phone
// numbers (spaces, tabs, dashes, dots, parentheses). It does not validate.
func CanonicalPhone(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '.', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}
