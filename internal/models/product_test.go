package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProduct_ReplacementFields(t *testing.T) {
	catID := primitive.NewObjectID()
	p := &Product{
		ID:          primitive.NewObjectID(),
		Name:        "Bed A+",
		Description: "single bed",
		CategoryID:  &catID,
		DateCreated: time.Now(),
	}

	set := p.ReplacementFields()

	assert.Equal(t, "Bed A+", set["name"])
	assert.Equal(t, &catID, set["category"])
	assert.Equal(t, []string{}, set["images"])
	assert.NotContains(t, set, "_id")
	assert.NotContains(t, set, "dateCreated")
}

func TestProduct_JSONHidesCategoryReference(t *testing.T) {
	catID := primitive.NewObjectID()
	p := Product{
		ID:         primitive.NewObjectID(),
		Name:       "Bed A",
		CategoryID: &catID,
		Category:   &Category{ID: catID, Name: "Beds"},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, p.ID.Hex(), body["id"])
	category, ok := body["category"].(map[string]any)
	require.True(t, ok, "category should be embedded")
	assert.Equal(t, "Beds", category["name"])
}

func TestProduct_BSONOmitsPopulatedCategory(t *testing.T) {
	catID := primitive.NewObjectID()
	p := Product{Name: "Bed A", CategoryID: &catID}

	raw, err := bson.Marshal(p)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, catID, doc["category"])
	assert.NotContains(t, doc, "categoryDoc")
	assert.NotContains(t, doc, "_id")
}
