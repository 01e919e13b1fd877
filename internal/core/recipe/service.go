package recipe

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipe-explorer/internal/core/metrics"
	"recipe-explorer/internal/pkg/common"
)

// 內部操作名稱
const (
	OpGetAllRecipes = "get_all_recipes"
	OpSearchRecipes = "search_recipes"
	OpGetRecipe     = "get_recipe"
	OpCreateRecipe  = "create_recipe"
	OpUpdateRecipe  = "update_recipe"
	OpDeleteRecipe  = "delete_recipe"
	OpImportRecipes = "import_recipes"
	OpExportRecipes = "export_recipes"
)

// Service 食譜服務，串接儲存、驗證、外部來源與計時收集器
type Service struct {
	store     *Store
	validator *Validator
	external  ExternalSource
	collector *metrics.Collector
}

// NewService 創建新的食譜服務；external 為 nil 時搜尋只查內部資料
func NewService(store *Store, validator *Validator, external ExternalSource, collector *metrics.Collector) *Service {
	return &Service{
		store:     store,
		validator: validator,
		external:  external,
		collector: collector,
	}
}

// Validator 回傳服務使用的驗證器
func (s *Service) Validator() *Validator {
	return s.validator
}

// ListRecipes 列出全部食譜，或同時搜尋內部與外部來源
func (s *Service) ListRecipes(ctx context.Context, search *string) (*ListResult, error) {
	if result := ValidateSearchQuery(search); !result.IsValid() {
		return nil, common.NewValidationFailed(result)
	}

	total := metrics.StartTimer("list_recipes")

	if search == nil {
		timer := metrics.StartTimer(OpGetAllRecipes)
		recipes := s.store.List()
		d := timer.StopAndRecord(s.collector, metrics.TypeInternal, OpGetAllRecipes, map[string]any{
			"count": len(recipes),
		})
		total.Stop()

		common.LogInfo("Retrieved all internal recipes", zap.Int("count", len(recipes)))
		return &ListResult{
			Recipes:       recipes,
			InternalCount: len(recipes),
			Performance: Performance{
				TotalRequestMS:  total.DurationMS(),
				InternalQueryMS: common.RoundMS(common.DurationMS(d)),
			},
		}, nil
	}

	query := strings.TrimSpace(*search)

	var (
		internal, external []Recipe
		internalTimer      = metrics.StartTimer(OpSearchRecipes)
		externalTimer      = metrics.StartTimer("external_search")
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		internal = s.store.Search(query)
		internalTimer.StopAndRecord(s.collector, metrics.TypeInternal, OpSearchRecipes, map[string]any{
			"query":        query,
			"result_count": len(internal),
		})
		return nil
	})
	g.Go(func() error {
		defer externalTimer.Stop()
		if s.external == nil {
			return nil
		}
		found, err := s.external.SearchMeals(gctx, query)
		if err != nil {
			// 外部來源失敗時降級為零筆結果
			common.LogWarn("External search failed, continuing with internal results",
				zap.String("query", query),
				zap.Error(err),
			)
			return nil
		}
		external = found
		return nil
	})
	_ = g.Wait()
	total.Stop()

	recipes := make([]Recipe, 0, len(internal)+len(external))
	recipes = append(recipes, internal...)
	recipes = append(recipes, external...)

	common.LogInfo("Search completed",
		zap.String("query", query),
		zap.Int("internal", len(internal)),
		zap.Int("external", len(external)),
	)

	return &ListResult{
		Recipes:       recipes,
		InternalCount: len(internal),
		ExternalCount: len(external),
		SearchQuery:   query,
		HasSearch:     true,
		Performance: Performance{
			TotalRequestMS:  total.DurationMS(),
			InternalQueryMS: internalTimer.DurationMS(),
			ExternalAPIMS:   externalTimer.DurationMS(),
		},
	}, nil
}

// ListInternal 只查詢內部儲存；query 為空白時回傳全部
func (s *Service) ListInternal(ctx context.Context, query string) []Recipe {
	query = strings.TrimSpace(query)
	if query == "" {
		timer := metrics.StartTimer(OpGetAllRecipes)
		recipes := s.store.List()
		timer.StopAndRecord(s.collector, metrics.TypeInternal, OpGetAllRecipes, map[string]any{
			"count": len(recipes),
		})
		return recipes
	}

	timer := metrics.StartTimer(OpSearchRecipes)
	recipes := s.store.Search(query)
	timer.StopAndRecord(s.collector, metrics.TypeInternal, OpSearchRecipes, map[string]any{
		"query":        query,
		"result_count": len(recipes),
	})
	return recipes
}

// GetRecipe 取得內部食譜；resourceType 用於 404 訊息，例如 "Recipe" 或 "Internal recipe"
func (s *Service) GetRecipe(ctx context.Context, id, resourceType string) (*Recipe, error) {
	if result := ValidateRecipeID(id); !result.IsValid() {
		return nil, common.NewValidationFailed(result)
	}

	timer := metrics.StartTimer(OpGetRecipe)
	r, err := s.store.Get(id)
	timer.StopAndRecord(s.collector, metrics.TypeInternal, OpGetRecipe, map[string]any{
		"recipe_id": id,
		"found":     err == nil,
	})
	if err != nil {
		return nil, common.NewNotFound(resourceType, id)
	}
	return &r, nil
}

// GetExternalRecipe 從外部來源取得食譜
func (s *Service) GetExternalRecipe(ctx context.Context, id string) (*Recipe, error) {
	if result := ValidateRecipeID(id); !result.IsValid() {
		return nil, common.NewValidationFailed(result)
	}
	if s.external == nil {
		return nil, common.NewNotFound("External recipe", id)
	}

	r, err := s.external.GetMealByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFound("External recipe", id)
		}
		return nil, common.NewExternalAPIError("Failed to retrieve external recipe", err)
	}
	return r, nil
}

// CreateRecipe 驗證並建立食譜
func (s *Service) CreateRecipe(ctx context.Context, data map[string]any) (*Recipe, error) {
	input, result := s.validator.ValidateRecipe(data)
	if !result.IsValid() {
		return nil, common.NewValidationFailed(result)
	}

	timer := metrics.StartTimer(OpCreateRecipe)
	r := s.store.Create(input)
	timer.StopAndRecord(s.collector, metrics.TypeInternal, OpCreateRecipe, map[string]any{
		"recipe_id": r.ID,
	})

	common.LogInfo("Created new recipe", zap.String("recipe_id", r.ID))
	return &r, nil
}

// UpdateRecipe 先確認存在，再驗證並更新食譜
func (s *Service) UpdateRecipe(ctx context.Context, id string, data map[string]any) (*Recipe, error) {
	if result := ValidateRecipeID(id); !result.IsValid() {
		return nil, common.NewValidationFailed(result)
	}
	if _, err := s.store.Get(id); err != nil {
		return nil, common.NewNotFound("Recipe", id)
	}

	input, result := s.validator.ValidateRecipe(data)
	if !result.IsValid() {
		return nil, common.NewValidationFailed(result)
	}

	timer := metrics.StartTimer(OpUpdateRecipe)
	r, err := s.store.Update(id, input)
	timer.StopAndRecord(s.collector, metrics.TypeInternal, OpUpdateRecipe, map[string]any{
		"recipe_id": id,
	})
	if err != nil {
		// 驗證期間被刪除
		return nil, common.NewNotFound("Recipe", id)
	}

	common.LogInfo("Updated recipe", zap.String("recipe_id", id))
	return &r, nil
}

// DeleteRecipe 刪除食譜
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	if result := ValidateRecipeID(id); !result.IsValid() {
		return common.NewValidationFailed(result)
	}

	timer := metrics.StartTimer(OpDeleteRecipe)
	deleted := s.store.Delete(id)
	timer.StopAndRecord(s.collector, metrics.TypeInternal, OpDeleteRecipe, map[string]any{
		"recipe_id": id,
		"deleted":   deleted,
	})
	if !deleted {
		return common.NewNotFound("Recipe", id)
	}

	common.LogInfo("Deleted recipe", zap.String("recipe_id", id))
	return nil
}

// ImportRecipes 驗證匯入資料後取代所有食譜，回傳匯入數量與檔案內筆數
func (s *Service) ImportRecipes(ctx context.Context, data any) (imported int, total int, err error) {
	records, result := s.validator.ValidateImport(data)
	if !result.IsValid() {
		return 0, 0, common.NewValidationFailed(result)
	}

	timer := metrics.StartTimer(OpImportRecipes)
	imported = s.store.Import(records)
	timer.StopAndRecord(s.collector, metrics.TypeInternal, OpImportRecipes, map[string]any{
		"total":    len(records),
		"imported": imported,
	})

	common.LogInfo("Imported recipes", zap.Int("count", imported), zap.Int("total", len(records)))
	return imported, len(records), nil
}

// ExportRecipes 匯出所有內部食譜
func (s *Service) ExportRecipes(ctx context.Context) []Recipe {
	timer := metrics.StartTimer(OpExportRecipes)
	recipes := s.store.List()
	timer.StopAndRecord(s.collector, metrics.TypeInternal, OpExportRecipes, map[string]any{
		"count": len(recipes),
	})
	return recipes
}
