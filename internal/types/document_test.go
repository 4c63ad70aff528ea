package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_Defaults(t *testing.T) {
	doc := NewDocument()

	assert.Equal(t, CurrentSchemaVersion, doc.SchemaVersion)
	assert.Equal(t, DefaultCountryCode, doc.Basics.Location.CountryCode)
	assert.Equal(t, DefaultJobCategory, doc.Meta.JobCategory)
	assert.Equal(t, DefaultSeniority, doc.Meta.Seniority)
	assert.NotNil(t, doc.Work)
	assert.NotNil(t, doc.Skills)
	assert.NotNil(t, doc.Basics.Profiles)
}

func TestNewDocument_JSONRoundTrip(t *testing.T) {
	doc := NewDocument()

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"work":[]`)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, doc, &decoded)
}

func TestDocument_Clone(t *testing.T) {
	doc := NewDocument()
	doc.Basics.Name = "Jane Doe"
	doc.Work = append(doc.Work, Work{Name: "Acme"})
	doc.Projects = append(doc.Projects, Project{Name: "Editor", Keywords: []string{"go"}})

	clone := doc.Clone()
	require.Equal(t, doc, clone)

	clone.Work[0].Name = "Globex"
	clone.Projects[0].Keywords[0] = "rust"
	clone.Skills = append(clone.Skills, "Go")
	assert.Equal(t, "Acme", doc.Work[0].Name)
	assert.Equal(t, "go", doc.Projects[0].Keywords[0])
	assert.Empty(t, doc.Skills)
}

func TestDocument_CloneNil(t *testing.T) {
	var doc *Document
	assert.Nil(t, doc.Clone())
}
