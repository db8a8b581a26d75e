// pkg/ruleset/schema.go
package ruleset

// PatternRuleDef is one declarative red-flag rule. Target selects what the
// trigger runs against: "text" applies the regex to the normalized message
// text, entity targets ("free_mail", "fee", "channel:<name>") test a
// structured entity field instead.
type PatternRuleDef struct {
	ID          string `json:"id"`
	Severity    string `json:"severity"`
	Target      string `json:"target"`
	Trigger     string `json:"trigger,omitempty"`
	Description string `json:"description"`
}

// PatternRuleSet is the on-disk rule file.
type PatternRuleSet struct {
	Version string           `json:"version"`
	Rules   []PatternRuleDef `json:"rules"`
}

// SalaryBand is an expected annual USD band for a role.
type SalaryBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SalaryTable maps normalized role names to expected bands, with a coarse
// default for unknown roles.
type SalaryTable struct {
	Version string                `json:"version"`
	Roles   map[string]SalaryBand `json:"roles"`
	Default SalaryBand            `json:"default"`
}
