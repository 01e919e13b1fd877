package recipe

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"recipe-explorer/internal/api/response"
	recipeService "recipe-explorer/internal/core/recipe"
	"recipe-explorer/internal/infrastructure/config"
	"recipe-explorer/internal/pkg/common"
)

// 匯出格式
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Handler 食譜 REST API 處理器
type Handler struct {
	service   *recipeService.Service
	importCfg config.ImportConfig
}

// NewHandler 創建食譜處理器
func NewHandler(service *recipeService.Service, importCfg config.ImportConfig) *Handler {
	return &Handler{
		service:   service,
		importCfg: importCfg,
	}
}

// HandleListRecipes 列出或搜尋食譜
func (h *Handler) HandleListRecipes(c *gin.Context) {
	search := searchParam(c)

	result, err := h.service.ListRecipes(c.Request.Context(), search)
	if err != nil {
		response.Error(c, err)
		return
	}

	var searchQuery any
	if result.HasSearch {
		searchQuery = result.SearchQuery
	}

	response.Success(c, http.StatusOK,
		gin.H{"recipes": result.Recipes},
		fmt.Sprintf("Successfully retrieved %d recipes", len(result.Recipes)),
		map[string]any{
			"count":          len(result.Recipes),
			"internal_count": result.InternalCount,
			"external_count": result.ExternalCount,
			"search_query":   searchQuery,
			"has_search":     result.HasSearch,
			"performance":    result.Performance,
		},
	)
}

// HandleExportRecipes 匯出全部內部食譜為 JSON 或 YAML 附件
func (h *Handler) HandleExportRecipes(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", FormatJSON))
	if format != FormatJSON && format != FormatYAML {
		result := common.NewValidationResult()
		result.Addf("format", common.CodeInvalidFormat, "Export format must be '%s' or '%s'", FormatJSON, FormatYAML)
		response.Error(c, common.NewValidationFailed(result))
		return
	}

	recipes := h.service.ExportRecipes(c.Request.Context())
	if len(recipes) == 0 {
		response.Success(c, http.StatusOK, []recipeService.Recipe{}, "No recipes found to export", map[string]any{
			"count":  0,
			"action": "export",
		})
		return
	}

	common.LogInfo("Exported recipes",
		zap.Int("count", len(recipes)),
		zap.String("format", format),
		zap.String("request_id", requestid.Get(c)),
	)

	if format == FormatYAML {
		out, err := yaml.Marshal(recipes)
		if err != nil {
			response.Error(c, common.NewServerError("Failed to export recipes", err))
			return
		}
		c.Header("Content-Disposition", "attachment; filename=recipes_export.yaml")
		c.Data(http.StatusOK, "application/x-yaml; charset=utf-8", out)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=recipes_export.json")
	response.Success(c, http.StatusOK, recipes,
		fmt.Sprintf("Successfully exported %d recipes", len(recipes)),
		map[string]any{
			"count":            len(recipes),
			"export_timestamp": time.Now().Format(time.RFC3339Nano),
			"action":           "export",
		},
	)
}

// HandleGetInternalRecipe 取得內部食譜
func (h *Handler) HandleGetInternalRecipe(c *gin.Context) {
	id := c.Param("id")
	r, err := h.service.GetRecipe(c.Request.Context(), id, "Internal recipe")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, r, "Internal recipe retrieved successfully", map[string]any{
		"recipe_id": id,
		"source":    recipeService.SourceInternal,
	})
}

// HandleGetExternalRecipe 從 TheMealDB 取得食譜
func (h *Handler) HandleGetExternalRecipe(c *gin.Context) {
	id := c.Param("id")
	r, err := h.service.GetExternalRecipe(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, r, "External recipe retrieved successfully", map[string]any{
		"recipe_id": id,
		"source":    recipeService.SourceExternal,
	})
}

// HandleGetRecipe 取得內部食譜（舊路徑）
func (h *Handler) HandleGetRecipe(c *gin.Context) {
	id := c.Param("id")
	r, err := h.service.GetRecipe(c.Request.Context(), id, "Recipe")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, r, "Recipe retrieved successfully", map[string]any{
		"recipe_id": id,
	})
}

// HandleCreateRecipe 建立食譜
func (h *Handler) HandleCreateRecipe(c *gin.Context) {
	data, err := readJSONObject(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := h.service.CreateRecipe(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, r, "Recipe created successfully", map[string]any{
		"recipe_id": r.ID,
		"action":    "create",
	})
}

// HandleUpdateRecipe 更新食譜
func (h *Handler) HandleUpdateRecipe(c *gin.Context) {
	id := c.Param("id")
	data, err := readJSONObject(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := h.service.UpdateRecipe(c.Request.Context(), id, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, r, "Recipe updated successfully", map[string]any{
		"recipe_id": id,
		"action":    "update",
	})
}

// HandleDeleteRecipe 刪除食譜
func (h *Handler) HandleDeleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteRecipe(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted_recipe_id": id}, "Recipe deleted successfully", map[string]any{
		"recipe_id": id,
		"action":    "delete",
	})
}

// HandleImportRecipes 由上傳的 JSON 檔取代全部食譜
func (h *Handler) HandleImportRecipes(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, common.NewFileError("No file uploaded. Use multipart field 'file'", map[string]any{
			"expected_field": "file",
		}))
		return
	}

	filename := fileHeader.Filename
	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		response.Error(c, common.NewFileError("Invalid file type. Only JSON files are allowed", map[string]any{
			"filename":           filename,
			"expected_extension": ".json",
		}))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, common.NewFileError("Failed to read uploaded file", map[string]any{"filename": filename}))
		return
	}
	defer f.Close()

	maxSize := h.importCfg.MaxFileBytes
	content, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		response.Error(c, common.NewFileError("Failed to read uploaded file", map[string]any{"filename": filename}))
		return
	}
	if int64(len(content)) > maxSize {
		response.Error(c, common.NewFileError(
			fmt.Sprintf("File too large. Maximum size is %.1fMB", float64(maxSize)/1024/1024),
			map[string]any{
				"file_size": fileHeader.Size,
				"max_size":  maxSize,
				"filename":  filename,
			},
		))
		return
	}

	var data any
	if err := common.ParseJSONBytes(content, &data); err != nil {
		response.Error(c, common.NewBadRequest("Invalid JSON format in uploaded file", map[string]any{
			"json_error": err.Error(),
			"filename":   filename,
		}))
		return
	}

	imported, total, err := h.service.ImportRecipes(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}

	common.LogInfo("Imported recipes from file",
		zap.String("filename", filename),
		zap.Int("imported", imported),
		zap.String("request_id", requestid.Get(c)),
	)

	response.Success(c, http.StatusCreated,
		gin.H{"imported_count": imported, "filename": filename},
		fmt.Sprintf("Successfully imported %d recipes", imported),
		map[string]any{
			"total_recipes_in_file": total,
			"successfully_imported": imported,
			"filename":              filename,
			"action":                "import",
		},
	)
}
