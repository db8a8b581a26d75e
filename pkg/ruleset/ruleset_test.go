// pkg/ruleset/ruleset_test.go
package ruleset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPatternRules(t *testing.T) {
	path := writeFile(t, "patterns.json", `{
		"version": "1.0.0",
		"rules": [
			{"id": "upfront-fee", "severity": "high", "target": "fee", "description": "asks for money"},
			{"id": "urgency", "severity": "medium", "target": "text", "trigger": "(?i)act now", "description": "urgency"}
		]
	}`)

	rs, err := LoadPatternRules(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", rs.Version)
	require.Len(t, rs.Rules, 2)
	assert.Equal(t, "upfront-fee", rs.Rules[0].ID)
	assert.Equal(t, "(?i)act now", rs.Rules[1].Trigger)
}

func TestLoadPatternRules_MissingFile(t *testing.T) {
	_, err := LoadPatternRules(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadSalaryTable(t *testing.T) {
	path := writeFile(t, "salary.json", `{
		"version": "1.0.0",
		"roles": {"data entry": {"min": 25000, "max": 38000}},
		"default": {"min": 30000, "max": 70000}
	}`)

	st, err := LoadSalaryTable(path)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, st.Roles["data entry"].Min)
	assert.Equal(t, 70000.0, st.Default.Max)
}

func TestLoadSalaryTable_BadJSON(t *testing.T) {
	path := writeFile(t, "salary.json", `{"roles": [`)
	_, err := LoadSalaryTable(path)
	assert.Error(t, err)
}
