// internal/agents/patterns/rules.go
package patterns

import "scam-analyzer/pkg/ruleset"

// DefaultRules is the built-in red-flag catalog, used when no rule file is
// configured. Order matters: matches are reported in definition order.
func DefaultRules() []ruleset.PatternRuleDef {
	return []ruleset.PatternRuleDef{
		{
			ID:          "upfront-fee",
			Severity:    "high",
			Target:      "fee",
			Description: "asks for an upfront payment before work starts",
		},
		{
			ID:          "telegram-contact",
			Severity:    "medium",
			Target:      "channel:telegram",
			Description: "moves the conversation to Telegram",
		},
		{
			ID:          "whatsapp-contact",
			Severity:    "medium",
			Target:      "channel:whatsapp",
			Description: "moves the conversation to WhatsApp",
		},
		{
			ID:          "freemail-recruiter",
			Severity:    "low",
			Target:      "free_mail",
			Description: "recruiter contact uses a consumer email provider",
		},
		{
			ID:          "urgency-pressure",
			Severity:    "medium",
			Target:      "text",
			Trigger:     `(?i)\b(urgent(ly)?|immediately|act now|today only|limited (time|slots|positions))\b`,
			Description: "pressures the reader to act without thinking",
		},
		{
			ID:          "no-experience-needed",
			Severity:    "medium",
			Target:      "text",
			Trigger:     `(?i)no (prior )?(experience|skills?|qualifications?) (required|needed|necessary)`,
			Description: "promises employment with no qualifications",
		},
		{
			ID:          "guaranteed-income",
			Severity:    "high",
			Target:      "text",
			Trigger:     `(?i)(guaranteed\s+(income|earnings|profit|salary|returns?)|earn up to)`,
			Description: "guarantees income, a hallmark of work-from-home fraud",
		},
		{
			ID:          "untraceable-payment",
			Severity:    "high",
			Target:      "text",
			Trigger:     `(?i)\b(bitcoin|crypto(currency)?|usdt|western union|moneygram|wire transfer|gift ?cards?)\b`,
			Description: "requests payment over an untraceable rail",
		},
		{
			ID:          "paid-certificate",
			Severity:    "medium",
			Target:      "text",
			Trigger:     `(?i)(pay|fee|cost)[^.]{0,40}certificat|certificat[^.]{0,40}(pay|fee|cost)`,
			Description: "charges for a certificate as a hiring condition",
		},
	}
}
