package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samplePage mimics the Bulletin results table: names linked through
// code= anchors, years in their own cells, plus decoy anchors and cells.
const samplePage = `
<html><body>
<table>
<tr>
  <td><a href="metbull.php?code=57165">Hoba</a></td>
  <td>Iron, IVB</td><td>1920</td>
</tr>
<tr>
  <td><a href="metbull.php?sea=x&code=2278&ty=2">&nbsp;Allende&nbsp;</a></td>
  <td>CV3</td><td>1969</td>
</tr>
<tr>
  <td><a href="metbull.php?code=31890"><b>NWA 869</b></a></td>
  <td>L3-6</td><td>2000</td>
</tr>
<tr>
  <td><a href="help.php">Help</a></td>
  <td>not a year: 123</td><td>20000</td>
</tr>
</table>
</body></html>`

func TestExtract(t *testing.T) {
	page := Extract(samplePage)

	require.Len(t, page.Entries, 3)
	assert.Equal(t, Entry{Code: 57165, Name: "Hoba"}, page.Entries[0])
	assert.Equal(t, Entry{Code: 2278, Name: "Allende"}, page.Entries[1])
	assert.Equal(t, Entry{Code: 31890, Name: "NWA 869"}, page.Entries[2])

	assert.Equal(t, []int{1920, 1969, 2000}, page.Years)
}

func TestExtract_StripsMarkupAndEntities(t *testing.T) {
	page := Extract(`<a href="?code=5"><b>Santa&nbsp;Vit&oacute;ria</b> </a>`)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "Santa Vitória", page.Entries[0].Name)
}

func TestExtract_CaseInsensitiveCodeParam(t *testing.T) {
	page := Extract(`<a href="?CODE=42">Upper</a>`)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, int64(42), page.Entries[0].Code)
}

func TestExtract_EmptyAndMalformed(t *testing.T) {
	assert.Empty(t, Extract("").Entries)
	assert.Empty(t, Extract("<html><body>Server busy</body></html>").Entries)
	// Truncated tag soup must not error, just yield nothing usable.
	assert.Empty(t, Extract("<table><tr><td><a href=").Entries)
}

func TestExtract_SkipsBlankNamesAndBadCodes(t *testing.T) {
	page := Extract(`
		<a href="?code=10"></a>
		<a href="?code=0">Zero</a>
		<a href="?code=11">Valid</a>`)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "Valid", page.Entries[0].Name)
}

func TestMinYear(t *testing.T) {
	p := &Page{Years: []int{2024, 2011, 2019}}
	min, ok := p.MinYear()
	assert.True(t, ok)
	assert.Equal(t, 2011, min)

	_, ok = (&Page{}).MinYear()
	assert.False(t, ok)
}
