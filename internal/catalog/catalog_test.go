package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy-ai/backend/internal/catalog"
	"fantasy-ai/backend/internal/model"
)

func testModels() catalog.Models {
	return catalog.Models{
		Default:   "m-default",
		Academic:  "m-academic",
		Creative:  "m-creative",
		Fitness:   "m-fitness",
		Nutrition: "m-nutrition",
		Coaching:  "m-coaching",
	}
}

func TestCatalog_Character(t *testing.T) {
	c := catalog.New(testModels())

	t.Run("Success - Fitness default character", func(t *testing.T) {
		ch := c.Character("4")
		require.NotNil(t, ch)

		assert.Equal(t, "Fitness", ch.Name)
		assert.Equal(t, model.SourceCatalog, ch.Source)
		assert.Equal(t, "m-fitness", ch.Model)
		assert.NotEmpty(t, ch.SystemPrompt)
		assert.Equal(t, []string{
			"Create a 15-minute home workout plan.",
			"What are the benefits of stretching daily?",
		}, ch.ExampleQuestions)
		assert.Equal(t, []string{"Suggest healthy post-workout snacks."}, ch.SuggestedQuestions)
		assert.Equal(t, "Hello! I'm your Fitness assistant.", ch.Greeting)
		assert.Equal(t, []string{"Health"}, ch.Tags)
		assert.Equal(t, "wellness_guide", ch.Type)
	})

	t.Run("Success - Model selection by group", func(t *testing.T) {
		assert.Equal(t, "m-nutrition", c.Character("13").Model)
		assert.Equal(t, "m-academic", c.Character("5").Model)
		assert.Equal(t, "m-academic", c.Character("18").Model)
		assert.Equal(t, "m-creative", c.Character("11").Model)
		assert.Equal(t, "m-coaching", c.Character("1").Model)
		assert.Equal(t, "m-coaching", c.Character("23").Model)
	})

	t.Run("Success - Category without subtasks", func(t *testing.T) {
		ch := c.Character(" 7 ")
		require.NotNil(t, ch)
		assert.Empty(t, ch.ExampleQuestions)
		assert.NotNil(t, ch.ExampleQuestions)
		assert.Empty(t, ch.SubTasks)
	})

	t.Run("Failure - Unknown id", func(t *testing.T) {
		assert.Nil(t, c.Character("999"))
		assert.Nil(t, c.Character("abc"))
	})

	t.Run("Returned character is a copy", func(t *testing.T) {
		ch := c.Character("1")
		ch.SubTasks[0] = "changed"
		assert.NotEqual(t, "changed", c.Character("1").SubTasks[0])
	})
}

func TestCatalog_Categories(t *testing.T) {
	c := catalog.New(testModels())
	cats := c.Categories()

	assert.Len(t, cats, 24)
	assert.Equal(t, int64(1), cats[0].ID)
	assert.Equal(t, "Self-Growth", cats[0].Title)
}

func TestCatalog_Normalize(t *testing.T) {
	c := catalog.New(testModels())

	t.Run("Fills missing fields", func(t *testing.T) {
		ch := c.Normalize(model.Character{ID: " 42 "})

		assert.Equal(t, "42", ch.ID)
		assert.Equal(t, "Assistant", ch.Name)
		assert.Equal(t, "A helpful AI assistant.", ch.Description)
		assert.Equal(t, "m-default", ch.Model)
		assert.Equal(t, "You are Assistant. A helpful AI assistant.", ch.SystemPrompt)
		assert.Equal(t, "Hello! I'm Assistant.", ch.Greeting)
		assert.Equal(t, ch.Greeting, ch.OpeningMessage)
		assert.NotNil(t, ch.Tags)
	})

	t.Run("Unknown model is replaced by type mapping", func(t *testing.T) {
		ch := c.Normalize(model.Character{ID: "7", Name: "Coach", Model: "gpt-unknown", Type: "life_coach"})
		assert.Equal(t, "m-coaching", ch.Model)
	})

	t.Run("Category drives type and prompt", func(t *testing.T) {
		ch := c.Normalize(model.Character{ID: "30", Name: "Buddy", Category: "Career"})
		assert.Equal(t, "career_helper", ch.Type)
		assert.Equal(t, "m-academic", ch.Model)
		assert.Contains(t, ch.SystemPrompt, "You are Buddy")
	})

	t.Run("Existing values are kept", func(t *testing.T) {
		ch := c.Normalize(model.Character{ID: "1", Name: "X", SystemPrompt: "custom", Model: "m-creative", Greeting: "Hey"})
		assert.Equal(t, "custom", ch.SystemPrompt)
		assert.Equal(t, "m-creative", ch.Model)
		assert.Equal(t, "Hey", ch.Greeting)
	})
}

func TestCatalog_CharactersByCategory(t *testing.T) {
	c := catalog.New(testModels())

	got := c.CharactersByCategory("nutrition")
	require.Len(t, got, 1)
	assert.Equal(t, "13", got[0].ID)

	assert.Empty(t, c.CharactersByCategory("Unknown"))
}
