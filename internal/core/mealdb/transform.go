package mealdb

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"recipe-explorer/internal/core/recipe"
	"recipe-explorer/internal/pkg/common"
)

// Transform 將 TheMealDB 資料轉換為食譜
func Transform(meal Meal, now time.Time) (recipe.Recipe, error) {
	id := meal.trimmed("idMeal")
	if id == "" {
		return recipe.Recipe{}, fmt.Errorf("%w: missing idMeal", ErrInvalidMeal)
	}

	title := meal.trimmed("strMeal")
	if title == "" {
		title = "Unknown Recipe"
	}
	area := meal.trimmed("strArea")
	if area == "" {
		area = "International"
	}

	return recipe.Recipe{
		ID:           id,
		Title:        title,
		Description:  buildDescription(meal),
		Ingredients:  extractIngredients(meal),
		Instructions: parseInstructions(meal.str("strInstructions")),
		Tags:         extractTags(meal),
		Region:       area,
		Cuisine:      area,
		Source:       recipe.SourceExternal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// extractIngredients 合併份量與食材
func extractIngredients(meal Meal) []string {
	ingredients := make([]string, 0, maxIngredientSlots)
	for i := 1; i <= maxIngredientSlots; i++ {
		ingredient := meal.trimmed(fmt.Sprintf("strIngredient%d", i))
		if ingredient == "" {
			continue
		}
		if measure := meal.trimmed(fmt.Sprintf("strMeasure%d", i)); measure != "" {
			ingredient = measure + " " + ingredient
		}
		ingredients = append(ingredients, ingredient)
	}

	if len(ingredients) == 0 {
		return []string{"No ingredients listed"}
	}
	return ingredients
}

// parseInstructions 將整段說明拆成步驟
func parseInstructions(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{"No instructions provided"}
	}

	steps := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= 5 {
			continue
		}
		line = strings.TrimSpace(strings.ReplaceAll(line, "STEP", ""))
		if strings.HasPrefix(line, ":") {
			line = strings.TrimSpace(line[1:])
		}
		if line != "" && line[0] >= '0' && line[0] <= '9' {
			line = strings.TrimSpace(strings.TrimLeft(line, "0123456789.:) "))
		}
		if line != "" {
			steps = append(steps, line)
		}
	}

	// 換行拆不出足夠步驟時改以句點拆分
	if len(steps) < 2 && strings.Contains(text, ".") {
		steps = steps[:0]
		for _, sentence := range strings.Split(text, ".") {
			sentence = strings.TrimSpace(sentence)
			if utf8.RuneCountInString(sentence) > 10 {
				steps = append(steps, sentence)
			}
		}
	}

	if len(steps) == 0 {
		return []string{trimmed}
	}
	return steps
}

// extractTags 解析標籤並附加分類
func extractTags(meal Meal) []string {
	tags := common.SplitNonEmpty(meal.str("strTags"), ",")

	if category := meal.trimmed("strCategory"); category != "" && !slices.Contains(tags, category) {
		tags = append(tags, category)
	}
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}

// buildDescription 由地區與分類組成描述
func buildDescription(meal Meal) string {
	parts := make([]string, 0, 3)

	if area := meal.trimmed("strArea"); area != "" {
		parts = append(parts, fmt.Sprintf("A delicious %s dish", area))
	} else {
		parts = append(parts, "A delicious recipe")
	}
	if category := meal.trimmed("strCategory"); category != "" {
		parts = append(parts, fmt.Sprintf("from the %s category", category))
	}

	name := meal.trimmed("strMeal")
	if name == "" {
		name = "recipe"
	}
	parts = append(parts, fmt.Sprintf("This %s is sourced from TheMealDB community database.", name))

	return strings.Join(parts, " ")
}

