package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nk-xbrl/jpxbrl/pkg/source"
	"github.com/nk-xbrl/jpxbrl/pkg/xbrl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderGetLocalFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xsd")
	require.NoError(t, os.WriteFile(path, []byte("<xs:schema/>"), 0o644))

	p, err := source.NewProvider(filepath.Join(dir, "cache"), 10)
	require.NoError(t, err)

	b, err := p.Get(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "<xs:schema/>", string(b))

	// Second call should be served from the in-memory cache without erroring
	// even if the underlying file is removed.
	require.NoError(t, os.Remove(path))
	b2, err := p.Get(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, b, b2)
}

func TestProviderElementDecls(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.xsd")
	xsd := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element id="jppfs_cor_Assets" name="Assets" type="xbrli:monetaryItemType" substitutionGroup="xbrli:item" xbrli:periodType="instant" abstract="false"/>
</xs:schema>`
	require.NoError(t, os.WriteFile(path, []byte(xsd), 0o644))

	p, err := source.NewProvider(filepath.Join(dir, "cache"), 10)
	require.NoError(t, err)

	decls, err := p.ElementDecls(context.Background(), path)
	require.NoError(t, err)
	require.Contains(t, decls, "jppfs_cor_Assets")
	assert.Equal(t, "Assets", decls["jppfs_cor_Assets"].Name)
}

func TestProviderFetchLinkbase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pre.xml")
	linkbase := `<?xml version="1.0"?>
<linkbase xmlns="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <roleRef roleURI="http://example.com/role/bs" xlink:href="t.xsd#role-bs"/>
  <presentationLink xlink:type="extended" xlink:role="http://example.com/role/bs">
    <loc xlink:type="locator" xlink:label="loc_A" xlink:href="taxonomy.xsd#A"/>
  </presentationLink>
</linkbase>`
	require.NoError(t, os.WriteFile(path, []byte(linkbase), 0o644))

	p, err := source.NewProvider(filepath.Join(dir, "cache"), 10)
	require.NoError(t, err)

	tr, err := p.FetchLinkbase(context.Background(), xbrl.LinkPresentation, path, "https://example.com/taxonomy/")
	require.NoError(t, err)

	_, ok := tr.RoleHandle("bs")
	assert.True(t, ok)
}
