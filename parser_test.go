package scval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopLevelElementsGetSeparateChildrenNodes(t *testing.T) {
	tree, err := Parse([]byte("!catalog {} !index {}"))
	require.NoError(t, err)

	root := tree.Root()
	first := tree.FirstChild(root)
	second := tree.NextSibling(first)
	require.NotEqual(t, NoHandle, second)
	assert.Equal(t, NoHandle, tree.NextSibling(second), "exactly two top-level CHILDREN wrappers")

	assert.Equal(t, NCHILDREN, tree.Kind(first))
	assert.Equal(t, NCHILDREN, tree.Kind(second))

	firstElem := tree.FirstChild(first)
	secondElem := tree.FirstChild(second)
	assert.Equal(t, NoHandle, tree.NextSibling(firstElem), "each wrapper holds exactly one element_def")
	assert.Equal(t, "catalog", tree.Leaf(tree.LeafHandle(tree.FirstChild(firstElem))).Name)
	assert.Equal(t, "index", tree.Leaf(tree.LeafHandle(tree.FirstChild(secondElem))).Name)
}

func TestParseBaseTypesCarryALeaf(t *testing.T) {
	tree, err := Parse([]byte("!book[count(int)]"))
	require.NoError(t, err)

	// root -> CHILDREN -> book(ONE_) -> ID(book), ATTRS -> count(ONE_) -> ID(count), INT
	children := tree.FirstChild(tree.Root())
	book := tree.FirstChild(children)
	bookName := tree.FirstChild(book)
	attrs := tree.NextSibling(bookName)
	require.Equal(t, NATTRS, tree.Kind(attrs))

	count := tree.FirstChild(attrs)
	countName := tree.FirstChild(count)
	typeNode := tree.NextSibling(countName)

	assert.Equal(t, NINT, tree.Kind(typeNode))
	assert.True(t, tree.HasLeaf(typeNode), "base type nodes carry a leaf holding their keyword")
	assert.Equal(t, "int", tree.Leaf(tree.LeafHandle(typeNode)).Name)
}

func TestParseElementWithNestedChildren(t *testing.T) {
	tree, err := Parse([]byte("!catalog { *book[id(str)] { !title(str) } }"))
	require.NoError(t, err)

	topChildren := tree.FirstChild(tree.Root())
	catalog := tree.FirstChild(topChildren)
	catalogName := tree.FirstChild(catalog)
	nested := tree.NextSibling(catalogName)
	require.Equal(t, NCHILDREN, tree.Kind(nested))

	book := tree.FirstChild(nested)
	assert.Equal(t, NZERO_MORE, tree.Kind(book))

	bookName := tree.FirstChild(book)
	attrs := tree.NextSibling(bookName)
	require.Equal(t, NATTRS, tree.Kind(attrs))

	grandchildren := tree.NextSibling(attrs)
	require.Equal(t, NCHILDREN, tree.Kind(grandchildren))
	title := tree.FirstChild(grandchildren)
	assert.Equal(t, NONE_, tree.Kind(title))
}

func TestParseTypedefCallback(t *testing.T) {
	tree, err := Parse([]byte("@author #AUTHOR"))
	require.NoError(t, err)

	typedef := tree.FirstChild(tree.Root())
	require.Equal(t, NTYPEDEF, tree.Kind(typedef))

	name := tree.FirstChild(typedef)
	assert.Equal(t, "author", tree.Leaf(tree.LeafHandle(name)).Name)

	callback := tree.NextSibling(name)
	require.Equal(t, NCALLBACK, tree.Kind(callback))
	cbName := tree.FirstChild(callback)
	assert.Equal(t, "AUTHOR", tree.Leaf(tree.LeafHandle(cbName)).Name)
}

func TestParseTypedefEnum(t *testing.T) {
	tree, err := Parse([]byte("@color (red | green | blue)"))
	require.NoError(t, err)

	typedef := tree.FirstChild(tree.Root())
	name := tree.FirstChild(typedef)
	or := tree.NextSibling(name)
	require.Equal(t, NOR, tree.Kind(or))

	red := tree.FirstChild(or)
	green := tree.NextSibling(red)
	blue := tree.NextSibling(green)
	assert.Equal(t, "red", tree.Leaf(tree.LeafHandle(red)).Name)
	assert.Equal(t, "green", tree.Leaf(tree.LeafHandle(green)).Name)
	assert.Equal(t, "blue", tree.Leaf(tree.LeafHandle(blue)).Name)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("!catalog {"))
	require.Error(t, err)
	var synErr SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParseLexError(t *testing.T) {
	_, err := Parse([]byte("!catalog['oops"))
	require.Error(t, err)
	var lexErr LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestParseAttributeDefaultsToOne(t *testing.T) {
	tree, err := Parse([]byte("!book[id(str)]"))
	require.NoError(t, err)

	children := tree.FirstChild(tree.Root())
	book := tree.FirstChild(children)
	bookName := tree.FirstChild(book)
	attrs := tree.NextSibling(bookName)
	id := tree.FirstChild(attrs)
	assert.Equal(t, NONE_, tree.Kind(id), "a bare attribute (no cardinality glyph) defaults to exactly one")
}
