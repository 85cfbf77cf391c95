package xbrl_test

import (
	"strings"
	"testing"

	"github.com/nk-xbrl/jpxbrl/pkg/xbrl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const presentationLinkbaseXML = `<?xml version="1.0" encoding="UTF-8"?>
<linkbase xmlns="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <roleRef roleURI="http://example.com/role/test" xlink:href="test.xsd#role-test"/>
  <presentationLink xlink:type="extended" xlink:role="http://example.com/role/test">
    <loc xlink:type="locator" xlink:label="loc_Ahead" xlink:href="taxonomy.xsd#A"/>
    <loc xlink:type="locator" xlink:label="loc_Bnode" xlink:href="taxonomy.xsd#B"/>
    <loc xlink:type="locator" xlink:label="loc_Cph" xlink:href="taxonomy.xsd#C"/>
    <loc xlink:type="locator" xlink:label="loc_Corphan" xlink:href="taxonomy.xsd#C"/>
    <loc xlink:type="locator" xlink:label="loc_Dnode" xlink:href="taxonomy.xsd#D"/>
    <presentationArc xlink:type="arc" xlink:from="loc_Ahead" xlink:to="loc_Bnode" order="1"/>
    <presentationArc xlink:type="arc" xlink:from="loc_Ahead" xlink:to="loc_Cph" order="2"/>
    <presentationArc xlink:type="arc" xlink:from="loc_Corphan" xlink:to="loc_Dnode" order="1"/>
  </presentationLink>
</linkbase>`

func TestBuildLinkbaseTreeRepairsOrphanSubgraph(t *testing.T) {
	t.Parallel()

	tr, err := xbrl.BuildLinkbaseTree(xbrl.LinkPresentation, strings.NewReader(presentationLinkbaseXML), "https://example.com/taxonomy/")
	require.NoError(t, err)

	roleHandle, ok := tr.RoleHandle("test")
	require.True(t, ok)

	children := tr.NodeChildren(roleHandle)
	require.Len(t, children, 1, "only the real heading should remain at the role root")

	heading := children[0]
	assert.Equal(t, "A", tr.NodeID(heading))

	headingChildren := tr.NodeChildren(heading)
	require.Len(t, headingChildren, 2)
	assert.Equal(t, "B", tr.NodeID(headingChildren[0]))
	assert.Equal(t, "C", tr.NodeID(headingChildren[1]))

	splicedOrphan := headingChildren[1]
	orphanChildren := tr.NodeChildren(splicedOrphan)
	require.Len(t, orphanChildren, 1)
	assert.Equal(t, "D", tr.NodeID(orphanChildren[0]))
}

func TestBuildLinkbaseTreeSingleChainNeedsNoRepair(t *testing.T) {
	t.Parallel()

	const noHeadingXML = `<?xml version="1.0" encoding="UTF-8"?>
<linkbase xmlns="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <roleRef roleURI="http://example.com/role/broken" xlink:href="test.xsd#role-broken"/>
  <presentationLink xlink:type="extended" xlink:role="http://example.com/role/broken">
    <loc xlink:type="locator" xlink:label="loc_X" xlink:href="taxonomy.xsd#X"/>
    <loc xlink:type="locator" xlink:label="loc_Y" xlink:href="taxonomy.xsd#Y"/>
    <presentationArc xlink:type="arc" xlink:from="loc_X" xlink:to="loc_Y" order="1"/>
  </presentationLink>
</linkbase>`

	_, err := xbrl.BuildLinkbaseTree(xbrl.LinkPresentation, strings.NewReader(noHeadingXML), "https://example.com/taxonomy/")
	require.NoError(t, err, "X has no in-tree parent and Y's id never appears elsewhere, so X alone must qualify as a heading")
}

func TestBuildLinkbaseTreeHarvestsDimensionDefaults(t *testing.T) {
	t.Parallel()

	const definitionXML = `<?xml version="1.0" encoding="UTF-8"?>
<linkbase xmlns="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <roleRef roleURI="http://example.com/role/dim" xlink:href="test.xsd#role-dim"/>
  <definitionLink xlink:type="extended" xlink:role="http://example.com/role/dim">
    <loc xlink:type="locator" xlink:label="loc_Axis" xlink:href="taxonomy.xsd#Axis"/>
    <loc xlink:type="locator" xlink:label="loc_Table" xlink:href="taxonomy.xsd#Table"/>
    <loc xlink:type="locator" xlink:label="loc_DefaultMember" xlink:href="taxonomy.xsd#DefaultMember"/>
    <definitionArc xlink:type="arc" xlink:from="loc_Table" xlink:to="loc_Axis" order="1"/>
    <definitionArc xlink:type="arc" xlink:arcrole="http://xbrl.org/int/dim/arcrole/dimension-default" xlink:from="loc_Axis" xlink:to="loc_DefaultMember"/>
  </definitionLink>
</linkbase>`

	tr, err := xbrl.BuildLinkbaseTree(xbrl.LinkDefinition, strings.NewReader(definitionXML), "https://example.com/taxonomy/")
	require.NoError(t, err)

	roleHandle, ok := tr.RoleHandle("dim")
	require.True(t, ok)

	// The default-arc target never becomes a parent-child edge, so it's
	// spliced out entirely and the table's only child is the axis.
	children := tr.NodeChildren(roleHandle)
	require.Len(t, children, 1)
	assert.Equal(t, "Table", tr.NodeID(children[0]))

	axisChildren := tr.NodeChildren(children[0])
	require.Len(t, axisChildren, 1)
	assert.Equal(t, "Axis", tr.NodeID(axisChildren[0]))
	assert.Empty(t, tr.NodeChildren(axisChildren[0]))
}
