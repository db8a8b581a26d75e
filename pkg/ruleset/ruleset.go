// pkg/ruleset/ruleset.go
package ruleset

import (
	"encoding/json"
	"os"
)

func LoadPatternRules(path string) (*PatternRuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rs PatternRuleSet
	err = json.Unmarshal(data, &rs)
	return &rs, err
}

func LoadSalaryTable(path string) (*SalaryTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var st SalaryTable
	err = json.Unmarshal(data, &st)
	return &st, err
}
