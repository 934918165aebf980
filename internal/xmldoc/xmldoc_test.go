package xmldoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<Projects>
		<Project ID="1" Title="Library Annex"/>
		<Project ID="2"/>
	</Projects>`))
	require.NoError(t, err)

	root := doc.First("Projects")
	require.NotNil(t, root)

	projects := root.All("Project")
	require.Len(t, projects, 2)
	require.NotNil(t, projects[0].Attr("ID"))
	assert.Equal(t, "1", *projects[0].Attr("ID"))
	assert.Equal(t, "Library Annex", *projects[0].Attr("Title"))
	assert.Nil(t, projects[1].Attr("Title"))
}

func TestParse_SingleVsList(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<Projects><Project ID="only"/></Projects>`))
	require.NoError(t, err)

	// A single child still comes back as a one-element sequence.
	projects := doc.First("Projects").All("Project")
	require.Len(t, projects, 1)
	assert.Equal(t, "only", *projects[0].Attr("ID"))
}

func TestParse_TextAndChildText(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<Contact Name="Ada">
		<Email> ada@example.com </Email>
		<Phone>555-0100</Phone>
	</Contact>`))
	require.NoError(t, err)

	c := doc.First("Contact")
	require.NotNil(t, c.ChildText("Email"))
	assert.Equal(t, "ada@example.com", *c.ChildText("Email"))
	assert.Equal(t, "555-0100", *c.ChildText("Phone"))
	assert.Nil(t, c.ChildText("LinkedIn"))
}

func TestParse_OwnText(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<Phone Type="Office"> 555-0199 </Phone>`))
	require.NoError(t, err)

	ph := doc.First("Phone")
	assert.Equal(t, "555-0199", ph.Text())
	assert.Equal(t, "Office", *ph.Attr("Type"))
}

func TestNode_NilSafety(t *testing.T) {
	var n *Node
	assert.Empty(t, n.All("anything"))
	assert.Nil(t, n.First("anything"))
	assert.Nil(t, n.Attr("anything"))
	assert.Nil(t, n.ChildText("anything"))
	assert.Equal(t, "", n.Text())

	// Chained misses stay absent without panicking.
	doc, err := Parse(strings.NewReader(`<Root/>`))
	require.NoError(t, err)
	assert.Nil(t, doc.First("Missing").First("Deeper").Attr("Attr"))
}

func TestParse_MalformedXML(t *testing.T) {
	_, err := Parse(strings.NewReader(`<Projects><Project></Projects>`))
	require.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	require.Error(t, err)
}

func TestParse_DeclaredCharset(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<?xml version="1.0" encoding="ISO-8859-1"?><Projects><Project ID="9"/></Projects>`))
	require.NoError(t, err)
	assert.Len(t, doc.First("Projects").All("Project"), 1)
}

func TestParse_UnknownCharset(t *testing.T) {
	_, err := Parse(strings.NewReader(`<?xml version="1.0" encoding="no-such-charset"?><Root/>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charset")
}
