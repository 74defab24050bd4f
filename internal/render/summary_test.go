package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryRenderer(t *testing.T) {
	out := renderString(t, "summary", Options{}, mustParse(t, `{"rows":[{"a":1,"b":2}],"tags":["x"]}`))

	assert.Regexp(t, `Metric\s+│\s+Value`, out)
	assert.Regexp(t, `nodes\s+│\s+7`, out)
	assert.Regexp(t, `max depth\s+│\s+3`, out)
	assert.Regexp(t, `tables\s+│\s+1`, out)
	assert.Regexp(t, `nestedObject\s+│\s+1`, out)
	assert.Regexp(t, `simpleTable\s+│\s+1`, out)
	assert.Regexp(t, `widest table\s+│\s+\$\.rows \(2 columns\)`, out)
	assert.NotContains(t, out, "unknown")
}

func TestSummaryRenderer_NoTables(t *testing.T) {
	out := renderString(t, "summary", Options{}, mustParse(t, `"just a string"`))

	assert.Regexp(t, `simple\s+│\s+1`, out)
	assert.NotContains(t, out, "widest table")
}
