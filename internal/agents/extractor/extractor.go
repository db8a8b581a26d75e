// internal/agents/extractor/extractor.go
package extractor

import (
	"context"
	"regexp"
	"strings"

	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"']+`)
	phonePattern = regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// Currency-tagged amounts, optional thousands separators and k-suffix.
	moneyPattern = regexp.MustCompile(`(?i)(\$|€|£|₹|usd|eur|gbp|inr|rs\.?)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)\s*(k\b)?`)

	// Pay period immediately following an amount, e.g. "/hour", "per year".
	periodPattern = regexp.MustCompile(`(?i)^\s*(?:/|per\s+|an?\s+)(hour|hr|day|week|month|year|yr|annum)`)

	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:[Jj]oin|at|with|from)\s+([A-Z][A-Za-z0-9&'-]*(?:\s+[A-Z][A-Za-z0-9&'-]*)*)`),
		regexp.MustCompile(`([A-Z][A-Za-z0-9&'-]*(?:\s+[A-Z][A-Za-z0-9&'-]*)*)\s+is\s+hiring`),
	}

	rolePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bas\s+(?:an?\s+)?([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*)`),
		regexp.MustCompile(`([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*)\s+(?:role|position|opening|vacancy)`),
	}

	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	htmlScriptPattern = regexp.MustCompile(`(?is)<(script|style).*?>.*?</(script|style)>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// freeMailDomains are consumer providers; a recruiter contact on one of these
// is a weak scam signal, not a hard rule.
var freeMailDomains = map[string]bool{
	"gmail.com":      true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"protonmail.com": true,
	"proton.me":      true,
	"aol.com":        true,
	"icloud.com":     true,
	"mail.ru":        true,
	"yandex.ru":      true,
	"gmx.com":        true,
}

var feePurposes = []struct {
	keyword string
	purpose string
}{
	{"verification", "verification"},
	{"training", "training"},
	{"registration", "registration"},
	{"onboarding", "onboarding"},
	{"deposit", "deposit"},
	{"laptop", "equipment"},
	{"equipment", "equipment"},
	{"processing", "processing"},
}

// Extractor turns raw text into structured entities. Extraction is a total
// function: it never fails and absent fields stay at their zero values.
type Extractor struct {
	config *Config
	llm    ReasoningClient
	logger logger.Logger
}

// New creates an Extractor. llm may be nil; extraction then runs on the
// regex path alone.
func New(config *Config, llm ReasoningClient, log logger.Logger) *Extractor {
	return &Extractor{
		config: config,
		llm:    llm,
		logger: log.WithFields(map[string]interface{}{"stage": "extractor"}),
	}
}

// Extract parses text into ExtractedEntities. Deterministic for a given
// text on the regex path; LLM-supplied additions are schema-validated and
// merged, and a malformed LLM response contributes nothing.
func (x *Extractor) Extract(ctx context.Context, text string) *models.ExtractedEntities {
	clean := Normalize(text)

	entities := &models.ExtractedEntities{
		CompanyName: extractCompany(clean),
		JobRole:     extractRole(clean),
		Emails:      extractEmails(clean),
		URLs:        extractURLs(clean),
	}
	entities.Fees, entities.Compensation = extractMoney(clean)
	entities.Channels = extractChannels(clean, entities)

	if x.llm != nil {
		x.mergeLLMEntities(ctx, clean, entities)
	}

	x.logger.Debug("extraction complete", map[string]interface{}{
		"company":  entities.CompanyName,
		"emails":   len(entities.Emails),
		"urls":     len(entities.URLs),
		"fees":     len(entities.Fees),
		"channels": len(entities.Channels),
	})

	return entities
}

// Normalize strips HTML and collapses whitespace. Casing is preserved so the
// company/role heuristics can use capitalization.
func Normalize(text string) string {
	t := htmlScriptPattern.ReplaceAllString(text, " ")
	t = htmlTagPattern.ReplaceAllString(t, " ")
	t = strings.NewReplacer("“", `"`, "”", `"`, "–", "-", "—", "-").Replace(t)
	t = whitespacePattern.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

func extractEmails(text string) []models.EmailAddress {
	seen := make(map[string]bool)
	var out []models.EmailAddress
	for _, m := range emailPattern.FindAllString(text, -1) {
		addr := strings.ToLower(strings.Trim(m, "."))
		if seen[addr] {
			continue
		}
		seen[addr] = true
		domain := addr[strings.LastIndex(addr, "@")+1:]
		out = append(out, models.EmailAddress{
			Address:  addr,
			Domain:   domain,
			FreeMail: freeMailDomains[domain],
		})
	}
	return out
}

func extractURLs(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range urlPattern.FindAllString(text, -1) {
		u := strings.ToLower(strings.TrimRight(m, ".,;:!?)"))
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func extractCompany(text string) string {
	for _, p := range companyPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			name := strings.TrimSpace(m[1])
			// A single trailing connective is an artifact of the
			// capitalized-run heuristic.
			name = strings.TrimSuffix(name, " As")
			if len(name) >= 2 && len(name) <= 60 {
				return name
			}
		}
	}
	return ""
}

func extractRole(text string) string {
	for _, p := range rolePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			role := strings.TrimSpace(m[1])
			if len(role) >= 3 && len(role) <= 60 {
				return role
			}
		}
	}
	return ""
}

// extractMoney walks currency-tagged amounts. An amount followed by a pay
// period is the offered compensation; an amount with a fee keyword nearby is
// an upfront fee; anything else is dropped, never flagged as an error.
func extractMoney(text string) ([]models.FeeRecord, *models.CompensationMention) {
	var fees []models.FeeRecord
	var comp *models.CompensationMention

	for _, loc := range moneyPattern.FindAllStringSubmatchIndex(text, -1) {
		m := matchGroups(text, loc)
		amount, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
		if err != nil {
			continue
		}
		if strings.EqualFold(m[3], "k") {
			amount = amount.Mul(decimal.NewFromInt(1000))
		}
		currency := currencyCode(m[1])

		after := text[loc[1]:]
		if pm := periodPattern.FindStringSubmatch(after); pm != nil {
			if comp == nil {
				comp = &models.CompensationMention{
					Amount:   amount,
					Currency: currency,
					Period:   normalizePeriod(pm[1]),
				}
			}
			continue
		}

		window := contextWindow(text, loc[0], loc[1], 40)
		if purpose, ok := classifyFee(window); ok {
			fees = append(fees, models.FeeRecord{
				Amount:   amount,
				Currency: currency,
				Purpose:  purpose,
			})
		}
	}

	return fees, comp
}

func matchGroups(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := 0; i < len(loc); i += 2 {
		if loc[i] >= 0 {
			groups[i/2] = text[loc[i]:loc[i+1]]
		}
	}
	return groups
}

func contextWindow(text string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	return strings.ToLower(text[lo:hi])
}

func classifyFee(window string) (string, bool) {
	for _, fp := range feePurposes {
		if strings.Contains(window, fp.keyword) {
			return fp.purpose, true
		}
	}
	for _, kw := range []string{"fee", "deposit", "charge", "pay "} {
		if strings.Contains(window, kw) {
			return "other", true
		}
	}
	return "", false
}

func currencyCode(symbol string) string {
	switch strings.ToLower(strings.TrimSuffix(symbol, ".")) {
	case "$", "usd":
		return "USD"
	case "€", "eur":
		return "EUR"
	case "£", "gbp":
		return "GBP"
	case "₹", "inr", "rs":
		return "INR"
	default:
		return "USD"
	}
}

func normalizePeriod(p string) models.PayPeriod {
	switch strings.ToLower(p) {
	case "hour", "hr":
		return models.PerHour
	case "day":
		return models.PerDay
	case "week":
		return models.PerWeek
	case "month":
		return models.PerMonth
	default:
		return models.PerYear
	}
}

func extractChannels(text string, entities *models.ExtractedEntities) []models.ContactChannel {
	lower := strings.ToLower(text)
	var out []models.ContactChannel
	add := func(c models.ContactChannel) {
		for _, existing := range out {
			if existing == c {
				return
			}
		}
		out = append(out, c)
	}

	if len(entities.Emails) > 0 {
		add(models.ChannelEmail)
	}
	if phonePattern.MatchString(text) {
		add(models.ChannelPhone)
	}
	if strings.Contains(lower, "whatsapp") || strings.Contains(lower, "wa.me") {
		add(models.ChannelWhatsapp)
	}
	if strings.Contains(lower, "telegram") || strings.Contains(lower, "t.me/") {
		add(models.ChannelTelegram)
	}
	for _, kw := range []string{"discord", "signal", "viber", "wechat"} {
		if strings.Contains(lower, kw) {
			add(models.ChannelOther)
			break
		}
	}
	return out
}
