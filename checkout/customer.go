/*
customer.go - Customer contact fields and their format checks

PURPOSE:
  The customer-supplied fields required before checkout, with the format
  rules the storefront has always enforced: a bare 10-digit US phone number
  (punctuation stripped before matching), a local@domain.tld email, and a
  5-digit or 5+4 ZIP.
*/
package checkout

import (
	"regexp"
	"strings"
)

// Customer holds the checkout form fields.
type Customer struct {
	Name   string
	Phone  string
	Email  string
	Street string
	City   string
	ZIP    string
}

var (
	phonePattern    = regexp.MustCompile(`^\d{10}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipPattern      = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	nonDigitPattern = regexp.MustCompile(`\D`)
)

// validate returns the first problem with the fields, in form order, or ""
// when everything is present and well-formed.
func (c Customer) validate() string {
	if strings.TrimSpace(c.Name) == "" {
		return "please enter your full name"
	}
	phone := nonDigitPattern.ReplaceAllString(c.Phone, "")
	if !phonePattern.MatchString(phone) {
		return "please enter a valid 10-digit phone number"
	}
	if !emailPattern.MatchString(strings.TrimSpace(c.Email)) {
		return "please enter a valid email address"
	}
	if strings.TrimSpace(c.Street) == "" {
		return "please enter your street address"
	}
	if strings.TrimSpace(c.City) == "" {
		return "please enter your city"
	}
	if !zipPattern.MatchString(strings.TrimSpace(c.ZIP)) {
		return "please enter a valid ZIP code"
	}
	return ""
}

// addressChanged reports whether any delivery-relevant field differs.
// Contact-only edits (name, phone, email) do not invalidate a resolution.
func (c Customer) addressChanged(o Customer) bool {
	return c.Street != o.Street || c.City != o.City || c.ZIP != o.ZIP
}
