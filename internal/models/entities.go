// internal/models/entities.go
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ContactChannel classifies how the sender asks to be reached.
type ContactChannel string

const (
	ChannelEmail    ContactChannel = "email"
	ChannelPhone    ContactChannel = "phone"
	ChannelWhatsapp ContactChannel = "whatsapp"
	ChannelTelegram ContactChannel = "telegram"
	ChannelOther    ContactChannel = "other"
)

// PayPeriod qualifies a compensation amount.
type PayPeriod string

const (
	PerHour  PayPeriod = "hour"
	PerDay   PayPeriod = "day"
	PerWeek  PayPeriod = "week"
	PerMonth PayPeriod = "month"
	PerYear  PayPeriod = "year"
)

// EmailAddress is a normalized extracted email. FreeMail marks addresses on
// generic consumer providers, a weak signal consumed downstream.
type EmailAddress struct {
	Address  string `json:"address"`
	Domain   string `json:"domain"`
	FreeMail bool   `json:"freeMail"`
}

// FeeRecord is one upfront-payment mention.
type FeeRecord struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Purpose  string          `json:"purpose"`
}

// CompensationMention is the offered pay, as stated in the text.
type CompensationMention struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Period   PayPeriod       `json:"period"`
}

// ExtractedEntities is the structured output of the extraction stage.
// Read-only after extraction; email and URL slices never contain duplicates
// and preserve first-occurrence order. Empty strings stand in for absent
// company name and job role.
type ExtractedEntities struct {
	CompanyName  string               `json:"companyName,omitempty"`
	Emails       []EmailAddress       `json:"emails,omitempty"`
	URLs         []string             `json:"urls,omitempty"`
	Fees         []FeeRecord          `json:"fees,omitempty"`
	JobRole      string               `json:"jobRole,omitempty"`
	Compensation *CompensationMention `json:"compensation,omitempty"`
	Channels     []ContactChannel     `json:"channels,omitempty"`
}

// Domains returns the unique fully-qualified domains reachable from the
// extracted emails and URLs, first-occurrence order.
func (e *ExtractedEntities) Domains() []string {
	seen := make(map[string]bool)
	var out []string
	for _, em := range e.Emails {
		if em.Domain != "" && !seen[em.Domain] {
			seen[em.Domain] = true
			out = append(out, em.Domain)
		}
	}
	for _, u := range e.URLs {
		d := DomainOfURL(u)
		if d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// HasFees reports whether any upfront payment was mentioned.
func (e *ExtractedEntities) HasFees() bool {
	return len(e.Fees) > 0
}

// HasFreeMailContact reports whether any contact email is on a consumer
// provider rather than a corporate domain.
func (e *ExtractedEntities) HasFreeMailContact() bool {
	for _, em := range e.Emails {
		if em.FreeMail {
			return true
		}
	}
	return false
}

// HasChannel reports membership in the contact-channel set.
func (e *ExtractedEntities) HasChannel(c ContactChannel) bool {
	for _, ch := range e.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// DomainOfURL returns the lowercase host of an already-normalized URL,
// stripping scheme, path, port, and a leading "www.".
func DomainOfURL(u string) string {
	s := strings.ToLower(u)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#:"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}
