// External test package: internal/builtins and internal/xmlcursor both
// import scval, so these end-to-end tests cannot live in package scval.
package scval_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyakoo/scval"
	"github.com/gyakoo/scval/internal/builtins"
	"github.com/gyakoo/scval/internal/xmlcursor"
)

// catalogSchema and mustCompile repeat the helpers of the same name in
// compiler_test.go, which belong to package scval and are not visible here.
const catalogSchema = `
@author #AUTHOR  @date #DATE  @price #PRICE
!catalog { *book[id(str)] {
  !author(author) !title(str) !genre(str)
  !price(price)  !publish_date(date) !description(str) } }
`

func mustCompile(t *testing.T, src string, cfg *scval.Config) *scval.Bytecode {
	t.Helper()
	tree, err := scval.Parse([]byte(src))
	require.NoError(t, err)
	bc, err := scval.Compile(tree, cfg)
	require.NoError(t, err)
	return bc
}

// validate compiles schema, parses doc as XML, and runs the compiled
// bytecode against it through the reference xmlcursor+builtins stack
// — end to end, no mock Cursor — matching SPEC_FULL.md §8's S1-S7
// scenarios over the catalog schema from original_source/main.cpp.
func validate(t *testing.T, schema, doc string) (bool, error) {
	t.Helper()
	bc := mustCompile(t, schema, nil)
	cursor, err := xmlcursor.New(strings.NewReader(doc), builtins.Registry())
	require.NoError(t, err)
	return scval.Run(bc, cursor)
}

const goodBook = `
<book id="978-0">
  <author>author</author>
  <title>title</title>
  <genre>genre</genre>
  <price>19.99</price>
  <publish_date>2020-01-01</publish_date>
  <description>description</description>
</book>`

func TestScenarioS1EmptyCatalogAccepted(t *testing.T) {
	ok, err := validate(t, catalogSchema, `<catalog/>`)
	require.NoError(t, err)
	assert.True(t, ok, "*book allows zero books")
}

func TestScenarioS2FullyPopulatedBookAccepted(t *testing.T) {
	ok, err := validate(t, catalogSchema, `<catalog>`+goodBook+`</catalog>`)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScenarioS3MissingPriceRejected(t *testing.T) {
	doc := `<catalog><book id="978-0">
  <author>author</author>
  <title>title</title>
  <genre>genre</genre>
  <publish_date>2020-01-01</publish_date>
  <description>description</description>
</book></catalog>`
	ok, err := validate(t, catalogSchema, doc)
	require.NoError(t, err)
	assert.False(t, ok, "price's ONE cardinality counter is 0")
}

func TestScenarioS4DuplicateTitleRejected(t *testing.T) {
	doc := `<catalog><book id="978-0">
  <author>author</author>
  <title>title</title>
  <title>title2</title>
  <genre>genre</genre>
  <price>19.99</price>
  <publish_date>2020-01-01</publish_date>
  <description>description</description>
</book></catalog>`
	ok, err := validate(t, catalogSchema, doc)
	require.NoError(t, err)
	assert.False(t, ok, "title's ONE cardinality counter is 2")
}

func TestScenarioS5MissingIdAttributeRejected(t *testing.T) {
	doc := `<catalog><book>
  <author>author</author>
  <title>title</title>
  <genre>genre</genre>
  <price>19.99</price>
  <publish_date>2020-01-01</publish_date>
  <description>description</description>
</book></catalog>`
	ok, err := validate(t, catalogSchema, doc)
	require.NoError(t, err)
	assert.False(t, ok, "id attribute's ONE cardinality counter is 0")
}

func TestScenarioS6RejectingCallbackRejectsDocument(t *testing.T) {
	bc := mustCompile(t, catalogSchema, nil)
	cursor, err := xmlcursor.New(strings.NewReader(`<catalog>`+goodBook+`</catalog>`), map[uint32]func(string) bool{
		scval.HashString("AUTHOR"): func(string) bool { return false },
		scval.HashString("DATE"):   builtins.CheckDate,
		scval.HashString("PRICE"):  builtins.CheckPrice,
	})
	require.NoError(t, err)

	ok, err := scval.Run(bc, cursor)
	require.NoError(t, err)
	assert.False(t, ok, "AUTHOR callback rejecting must reject the document via CHKC -> CALL -> JE ERR_ADDR")
}

func TestScenarioS7SaveLoadPreservesOutcome(t *testing.T) {
	cases := []struct {
		Name string
		Doc  string
		Want bool
	}{
		{"S1", `<catalog/>`, true},
		{"S2", `<catalog>` + goodBook + `</catalog>`, true},
	}
	bc := mustCompile(t, catalogSchema, nil)
	reloaded, err := scval.Load(bc.Save())
	require.NoError(t, err)

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			before, err := scval.Run(bc, mustCursor(t, c.Doc))
			require.NoError(t, err)
			after, err := scval.Run(reloaded, mustCursor(t, c.Doc))
			require.NoError(t, err)
			assert.Equal(t, c.Want, before)
			assert.Equal(t, before, after, "save/load must not change the validation outcome")
		})
	}
}

func mustCursor(t *testing.T, doc string) *xmlcursor.Cursor {
	t.Helper()
	cursor, err := xmlcursor.New(strings.NewReader(doc), builtins.Registry())
	require.NoError(t, err)
	return cursor
}
