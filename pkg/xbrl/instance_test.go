package xbrl_test

import (
	"strings"
	"testing"

	"github.com/nk-xbrl/jpxbrl/pkg/xbrl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInlineDoc = `<html><body>
<xbrli:context id="CurrentYearInstant">
  <xbrli:instant>2024-03-31</xbrli:instant>
</xbrli:context>
<xbrli:context id="CurrentYearDuration">
  <xbrli:startdate>2023-04-01</xbrli:startdate>
  <xbrli:enddate>2024-03-31</xbrli:enddate>
</xbrli:context>
<xbrli:context id="CurrentYearInstant_jppfs_cor_ConsolidatedOrNonConsolidatedAxisjppfs_cor_NonConsolidatedMember">
  <xbrli:instant>2024-03-31</xbrli:instant>
  <xbrli:explicitmember dimension="jppfs_cor:ConsolidatedOrNonConsolidatedAxis">jppfs_cor:NonConsolidatedMember</xbrli:explicitmember>
</xbrli:context>
<ix:nonfraction name="jppfs_cor:Assets" contextref="CurrentYearInstant" unitref="JPY" scale="3" sign="" decimals="0">1,234</ix:nonfraction>
<ix:nonnumeric name="jppfs_cor:CompanyName" contextref="CurrentYearDuration">Example Corp</ix:nonnumeric>
</body></html>`

func TestAnalyzerAddDocumentParsesContextsAndFacts(t *testing.T) {
	t.Parallel()

	a := xbrl.NewAnalyzer()
	err := a.AddDocument(strings.NewReader(sampleInlineDoc))
	require.NoError(t, err)

	contexts := a.Contexts()
	require.Contains(t, contexts, "CurrentYearInstant")
	require.Contains(t, contexts, "CurrentYearDuration")

	instant := contexts["CurrentYearInstant"]
	assert.Equal(t, xbrl.PeriodInstant, instant.PeriodType)

	duration := contexts["CurrentYearDuration"]
	assert.Equal(t, xbrl.PeriodDuration, duration.PeriodType)

	scenarioCtx := contexts["CurrentYearInstant_jppfs_cor_ConsolidatedOrNonConsolidatedAxisjppfs_cor_NonConsolidatedMember"]
	assert.Equal(t, "jppfs_cor_NonConsolidatedMember", scenarioCtx.Scenario["jppfs_cor_ConsolidatedOrNonConsolidatedAxis"])

	value, found, err := a.FactValue("jppfs_cor_Assets", "CurrentYearInstant")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1234000", value)
	assert.Equal(t, "JPY", a.UnitRef("jppfs_cor_Assets", "CurrentYearInstant"))

	text, found, err := a.FactValue("jppfs_cor_CompanyName", "CurrentYearDuration")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Example Corp", text)

	_, found, err = a.FactValue("jppfs_cor_Assets", "NoSuchContext")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAnalyzerContextListReturnsIndependentCopies(t *testing.T) {
	t.Parallel()

	a := xbrl.NewAnalyzer()
	require.NoError(t, a.AddDocument(strings.NewReader(sampleInlineDoc)))

	list := a.ContextList()
	require.NotEmpty(t, list)

	for i := range list {
		list[i].Scenario["mutated"] = "yes"
	}

	for _, ctx := range a.Contexts() {
		_, ok := ctx.Scenario["mutated"]
		assert.False(t, ok, "mutating a ContextList copy must not affect the analyzer's own contexts")
	}
}
