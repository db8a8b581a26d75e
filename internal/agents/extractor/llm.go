// internal/agents/extractor/llm.go
package extractor

import (
	"context"
	"encoding/json"
	"strings"

	commonerrors "scam-analyzer/internal/common/errors"
	"scam-analyzer/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// ReasoningClient is the optional external reasoning capability used to
// resolve ambiguous extractions. Its output is never trusted directly: it is
// validated against the entity schema and merged additively, and a malformed
// response is treated as "no additional entities found".
type ReasoningClient interface {
	ExtractEntities(ctx context.Context, text string) ([]byte, error)
}

// entitySchema constrains what an LLM response may contribute.
const entitySchema = `{
	"type": "object",
	"properties": {
		"companyName": {"type": "string", "maxLength": 120},
		"jobRole": {"type": "string", "maxLength": 120},
		"emails": {"type": "array", "items": {"type": "string", "format": "email"}},
		"urls": {"type": "array", "items": {"type": "string"}}
	},
	"additionalProperties": false
}`

var entitySchemaLoader = gojsonschema.NewStringLoader(entitySchema)

// llmEntities is the validated transport shape of a reasoning response.
type llmEntities struct {
	CompanyName string   `json:"companyName"`
	JobRole     string   `json:"jobRole"`
	Emails      []string `json:"emails"`
	URLs        []string `json:"urls"`
}

// mergeLLMEntities asks the reasoning client for additional entities and
// merges any that pass schema validation. Failures degrade to a no-op.
func (x *Extractor) mergeLLMEntities(ctx context.Context, text string, entities *models.ExtractedEntities) {
	llmCtx, cancel := context.WithTimeout(ctx, x.config.LLMTimeout)
	defer cancel()

	raw, err := x.llm.ExtractEntities(llmCtx, text)
	if err != nil {
		x.logger.Warn("llm extraction unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	result, err := gojsonschema.Validate(entitySchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil || !result.Valid() {
		details := "unparseable response"
		if err == nil {
			var msgs []string
			for _, e := range result.Errors() {
				msgs = append(msgs, e.String())
			}
			details = strings.Join(msgs, "; ")
		}
		schemaErr := commonerrors.NewExtractionSchemaInvalidError(details)
		x.logger.Warn("llm extraction response rejected", map[string]interface{}{
			"error": schemaErr.Error(),
		})
		return
	}

	var extra llmEntities
	if err := json.Unmarshal(raw, &extra); err != nil {
		return
	}

	if entities.CompanyName == "" && extra.CompanyName != "" {
		entities.CompanyName = strings.TrimSpace(extra.CompanyName)
	}
	if entities.JobRole == "" && extra.JobRole != "" {
		entities.JobRole = strings.TrimSpace(extra.JobRole)
	}

	for _, addr := range extra.Emails {
		appendEmail(entities, strings.ToLower(strings.TrimSpace(addr)))
	}
	for _, u := range extra.URLs {
		appendURL(entities, strings.ToLower(strings.TrimSpace(u)))
	}
}

func appendEmail(entities *models.ExtractedEntities, addr string) {
	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return
	}
	for _, existing := range entities.Emails {
		if existing.Address == addr {
			return
		}
	}
	domain := addr[at+1:]
	entities.Emails = append(entities.Emails, models.EmailAddress{
		Address:  addr,
		Domain:   domain,
		FreeMail: freeMailDomains[domain],
	})
}

func appendURL(entities *models.ExtractedEntities, u string) {
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return
	}
	for _, existing := range entities.URLs {
		if existing == u {
			return
		}
	}
	entities.URLs = append(entities.URLs, u)
}
