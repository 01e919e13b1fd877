package recipe

import (
	"context"
	"errors"
	"time"
)

// Source 食譜來源
type Source string

const (
	SourceInternal Source = "internal"
	SourceExternal Source = "external"
)

// Recipe 食譜
type Recipe struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Ingredients  []string  `json:"ingredients" yaml:"ingredients"`
	Instructions []string  `json:"instructions" yaml:"instructions"`
	Tags         []string  `json:"tags" yaml:"tags"`
	Region       string    `json:"region" yaml:"region"`
	Cuisine      string    `json:"cuisine" yaml:"cuisine"`
	Source       Source    `json:"source" yaml:"source"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// RecipeInput 建立與更新食譜的資料
type RecipeInput struct {
	Title        string   `json:"title" validate:"required,min=3,max=200"`
	Description  string   `json:"description" validate:"required,min=10,max=2000"`
	Ingredients  []string `json:"ingredients" validate:"required,min=1,max=50,dive,required,min=2"`
	Instructions []string `json:"instructions" validate:"required,min=1,max=50,dive,required,min=5"`
	Tags         []string `json:"tags" validate:"omitempty,max=20,dive,required,max=30"`
	Region       string   `json:"region" validate:"required,min=2"`
	Cuisine      string   `json:"cuisine" validate:"required,min=2"`
}

// ImportRecord 匯入檔案中的單筆食譜，id 與時間戳可省略
type ImportRecord struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags"`
	Region       string   `json:"region"`
	Cuisine      string   `json:"cuisine"`
	Source       Source   `json:"source"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// ExternalSource 外部食譜來源
type ExternalSource interface {
	SearchMeals(ctx context.Context, query string) ([]Recipe, error)
	GetMealByID(ctx context.Context, id string) (*Recipe, error)
}

// Performance 搜尋耗時拆解（毫秒）
type Performance struct {
	TotalRequestMS  float64 `json:"total_request_ms"`
	InternalQueryMS float64 `json:"internal_query_ms"`
	ExternalAPIMS   float64 `json:"external_api_ms"`
}

// ListResult 列表或合併搜尋結果
type ListResult struct {
	Recipes       []Recipe
	InternalCount int
	ExternalCount int
	SearchQuery   string
	HasSearch     bool
	Performance   Performance
}

// 錯誤定義
var (
	ErrNotFound = errors.New("recipe not found")
)

func (r *Recipe) clone() Recipe {
	cp := *r
	cp.Ingredients = cloneStrings(r.Ingredients)
	cp.Instructions = cloneStrings(r.Instructions)
	cp.Tags = cloneStrings(r.Tags)
	return cp
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
