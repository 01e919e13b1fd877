package recipe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-explorer/internal/core/metrics"
	"recipe-explorer/internal/pkg/common"
)

type fakeExternal struct {
	recipes   []Recipe
	searchErr error
	lookupErr error
}

func (f *fakeExternal) SearchMeals(ctx context.Context, query string) ([]Recipe, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.recipes, nil
}

func (f *fakeExternal) GetMealByID(ctx context.Context, id string) (*Recipe, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, r := range f.recipes {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("meal: %w", ErrNotFound)
}

func newTestService(ext ExternalSource) (*Service, *metrics.Collector) {
	collector := metrics.NewCollector(100, nil)
	return NewService(NewStore(true), NewValidator(0), ext, collector), collector
}

func strPtr(s string) *string { return &s }

func requireCustomError(t *testing.T, err error, status int, code string) *common.CustomError {
	t.Helper()
	var ce *common.CustomError
	require.True(t, errors.As(err, &ce), "expected CustomError, got %v", err)
	assert.Equal(t, status, ce.Status)
	assert.Equal(t, code, ce.Code)
	return ce
}

func TestListRecipesWithoutSearch(t *testing.T) {
	svc, collector := newTestService(&fakeExternal{})

	res, err := svc.ListRecipes(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, res.Recipes, 1)
	assert.Equal(t, 1, res.InternalCount)
	assert.False(t, res.HasSearch)
	assert.Equal(t, 0.0, res.Performance.ExternalAPIMS)
	assert.Equal(t, 1, collector.Statistics().Operations[OpGetAllRecipes].Count)
}

func TestListRecipesMergesExternal(t *testing.T) {
	ext := &fakeExternal{recipes: []Recipe{{ID: "52772", Title: "Teriyaki Test", Source: SourceExternal}}}
	svc, _ := newTestService(ext)

	res, err := svc.ListRecipes(context.Background(), strPtr("test"))
	require.NoError(t, err)
	require.Len(t, res.Recipes, 2)
	assert.Equal(t, SourceInternal, res.Recipes[0].Source)
	assert.Equal(t, SourceExternal, res.Recipes[1].Source)
	assert.Equal(t, 1, res.InternalCount)
	assert.Equal(t, 1, res.ExternalCount)
	assert.Equal(t, "test", res.SearchQuery)
	assert.True(t, res.HasSearch)
}

func TestListRecipesDegradesOnExternalFailure(t *testing.T) {
	svc, _ := newTestService(&fakeExternal{searchErr: errors.New("boom")})

	res, err := svc.ListRecipes(context.Background(), strPtr("schema"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.InternalCount)
	assert.Equal(t, 0, res.ExternalCount)
}

func TestListRecipesWithoutExternalSource(t *testing.T) {
	svc, _ := newTestService(nil)

	res, err := svc.ListRecipes(context.Background(), strPtr("schema"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.InternalCount)
}

func TestListRecipesInvalidSearch(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.ListRecipes(context.Background(), strPtr("   "))
	ce := requireCustomError(t, err, http.StatusUnprocessableEntity, common.ErrCodeValidationFailed)
	assert.Equal(t, "search", ce.ValidationErrors[0].Field)
}

func TestGetRecipe(t *testing.T) {
	svc, _ := newTestService(nil)

	r, err := svc.GetRecipe(context.Background(), SeedRecipeID, "Recipe")
	require.NoError(t, err)
	assert.Equal(t, SeedRecipeID, r.ID)

	_, err = svc.GetRecipe(context.Background(), "does-not-exist", "Internal recipe")
	ce := requireCustomError(t, err, http.StatusNotFound, common.ErrCodeNotFound)
	assert.Equal(t, "Internal recipe not found with ID 'does-not-exist'", ce.Message)

	_, err = svc.GetRecipe(context.Background(), "bad id!", "Recipe")
	requireCustomError(t, err, http.StatusUnprocessableEntity, common.ErrCodeValidationFailed)
}

func TestGetExternalRecipe(t *testing.T) {
	ext := &fakeExternal{recipes: []Recipe{{ID: "52772", Title: "Teriyaki", Source: SourceExternal}}}
	svc, _ := newTestService(ext)

	r, err := svc.GetExternalRecipe(context.Background(), "52772")
	require.NoError(t, err)
	assert.Equal(t, "Teriyaki", r.Title)

	_, err = svc.GetExternalRecipe(context.Background(), "1")
	requireCustomError(t, err, http.StatusNotFound, common.ErrCodeNotFound)

	ext.lookupErr = errors.New("connection refused")
	_, err = svc.GetExternalRecipe(context.Background(), "52772")
	requireCustomError(t, err, http.StatusBadGateway, common.ErrCodeExternalAPI)
}

func TestCreateUpdateDeleteRecipe(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	created, err := svc.CreateRecipe(ctx, validPayload())
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", created.Title)

	payload := validPayload()
	payload["title"] = "Pad Thai Deluxe"
	updated, err := svc.UpdateRecipe(ctx, created.ID, payload)
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai Deluxe", updated.Title)

	require.NoError(t, svc.DeleteRecipe(ctx, created.ID))
	err = svc.DeleteRecipe(ctx, created.ID)
	requireCustomError(t, err, http.StatusNotFound, common.ErrCodeNotFound)
}

func TestCreateRecipeValidationFailure(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.CreateRecipe(context.Background(), map[string]any{"title": "ab"})
	ce := requireCustomError(t, err, http.StatusUnprocessableEntity, common.ErrCodeValidationFailed)
	assert.Equal(t, len(ce.ValidationErrors), ce.Details["error_count"])
}

func TestUpdateRecipeChecksExistenceFirst(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.UpdateRecipe(context.Background(), "missing-recipe", map[string]any{})
	requireCustomError(t, err, http.StatusNotFound, common.ErrCodeNotFound)
}

func TestImportAndExportRecipes(t *testing.T) {
	svc, collector := newTestService(nil)
	ctx := context.Background()

	imported, total, err := svc.ImportRecipes(ctx, []any{validPayload(), validPayload()})
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 2, total)

	exported := svc.ExportRecipes(ctx)
	assert.Len(t, exported, 2)

	_, _, err = svc.ImportRecipes(ctx, []any{})
	requireCustomError(t, err, http.StatusUnprocessableEntity, common.ErrCodeValidationFailed)

	stats := collector.Statistics()
	assert.Equal(t, 1, stats.Operations[OpImportRecipes].Count)
	assert.Equal(t, 1, stats.Operations[OpExportRecipes].Count)
}

func TestListInternalIgnoresExternalSource(t *testing.T) {
	ext := &fakeExternal{recipes: []Recipe{{ID: "52772", Title: "Test Teriyaki", Source: SourceExternal}}}
	svc, collector := newTestService(ext)

	assert.Len(t, svc.ListInternal(context.Background(), "  "), 1)

	found := svc.ListInternal(context.Background(), " TEST ")
	require.Len(t, found, 1)
	assert.Equal(t, SeedRecipeID, found[0].ID)

	assert.Empty(t, svc.ListInternal(context.Background(), "teriyaki"))

	stats := collector.Statistics()
	assert.Equal(t, 1, stats.Operations[OpGetAllRecipes].Count)
	assert.Equal(t, 2, stats.Operations[OpSearchRecipes].Count)
	assert.Equal(t, 0, stats.ExternalCount)
}
