package mealdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-explorer/internal/core/recipe"
)

func teriyakiMeal() Meal {
	return Meal{
		"idMeal":          "52772",
		"strMeal":         "Teriyaki Chicken Casserole",
		"strCategory":     "Chicken",
		"strArea":         "Japanese",
		"strInstructions": "Preheat oven to 350° F.\r\nCombine soy sauce and brown sugar in a pan.\r\nPour over the chicken.",
		"strTags":         "Meat,Casserole",
		"strIngredient1":  "soy sauce",
		"strMeasure1":     "3/4 cup",
		"strIngredient2":  "water",
		"strMeasure2":     " ",
		"strIngredient3":  "",
		"strMeasure3":     "1 cup",
		"strIngredient4":  nil,
	}
}

func TestTransform(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	r, err := Transform(teriyakiMeal(), now)
	require.NoError(t, err)

	assert.Equal(t, "52772", r.ID)
	assert.Equal(t, "Teriyaki Chicken Casserole", r.Title)
	assert.Equal(t, "Japanese", r.Region)
	assert.Equal(t, "Japanese", r.Cuisine)
	assert.Equal(t, recipe.SourceExternal, r.Source)
	assert.Equal(t, now, r.CreatedAt)
	assert.Equal(t, []string{"3/4 cup soy sauce", "water"}, r.Ingredients)
	assert.Equal(t, []string{"Meat", "Casserole", "Chicken"}, r.Tags)
	assert.Equal(t, []string{
		"Preheat oven to 350° F.",
		"Combine soy sauce and brown sugar in a pan.",
		"Pour over the chicken.",
	}, r.Instructions)
	assert.Equal(t,
		"A delicious Japanese dish from the Chicken category This Teriyaki Chicken Casserole is sourced from TheMealDB community database.",
		r.Description)
}

func TestTransformDefaults(t *testing.T) {
	r, err := Transform(Meal{"idMeal": "1"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Unknown Recipe", r.Title)
	assert.Equal(t, "International", r.Region)
	assert.Equal(t, []string{"No ingredients listed"}, r.Ingredients)
	assert.Equal(t, []string{"No instructions provided"}, r.Instructions)
	assert.Empty(t, r.Tags)
	assert.NotNil(t, r.Tags)
	assert.Equal(t, "A delicious recipe This recipe is sourced from TheMealDB community database.", r.Description)
}

func TestTransformRequiresID(t *testing.T) {
	_, err := Transform(Meal{"strMeal": "No id"}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidMeal)
}

func TestParseInstructions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"blank", "   ", []string{"No instructions provided"}},
		{
			"step markers",
			"STEP 1: Boil the water well\nSTEP 2: Add the pasta slowly\nok",
			[]string{"Boil the water well", "Add the pasta slowly"},
		},
		{
			"numbered lines",
			"1. Chop the onions finely\n2) Fry them in butter",
			[]string{"Chop the onions finely", "Fry them in butter"},
		},
		{
			"sentence fallback",
			"Mix everything together well. Bake for twenty minutes. Eat.",
			[]string{"Mix everything together well", "Bake for twenty minutes"},
		},
		{"single short text", "Serve", []string{"Serve"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseInstructions(tt.in))
		})
	}
}

func TestExtractTagsCapped(t *testing.T) {
	meal := Meal{"strTags": "", "strCategory": "Dessert"}
	for i := 0; i < 25; i++ {
		meal["strTags"] = fmt.Sprintf("%s,t%d", meal["strTags"], i)
	}

	tags := extractTags(meal)
	assert.Len(t, tags, maxTags)
	assert.NotContains(t, tags, "Dessert")
}
