package mealdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"recipe-explorer/internal/core/recipe"
)

// DefaultBaseURL TheMealDB 公開 API
const DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

// 操作名稱
const (
	OpSearchMeals = "search_meals"
	OpGetMealByID = "get_meal_by_id"
)

// maxIngredientSlots TheMealDB 以 strIngredient1..20 存放食材
const maxIngredientSlots = 20

// maxTags 外部食譜標籤上限
const maxTags = 20

// 錯誤定義
var (
	ErrMealNotFound = fmt.Errorf("meal: %w", recipe.ErrNotFound)
	ErrUpstream     = errors.New("themealdb request failed")
	ErrInvalidMeal  = errors.New("invalid meal")
)

// Meal TheMealDB 原始資料，欄位可能為 null
type Meal map[string]any

// str 取得字串欄位，null 或非字串時回傳空字串
func (m Meal) str(key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// trimmed 取得去除空白後的字串欄位
func (m Meal) trimmed(key string) string {
	return strings.TrimSpace(m.str(key))
}

// mealsResponse search.php 與 lookup.php 的回應
type mealsResponse struct {
	Meals []Meal `json:"meals"`
}
