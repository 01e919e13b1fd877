package pages

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	recipeService "recipe-explorer/internal/core/recipe"
	"recipe-explorer/internal/pkg/common"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates 解析內嵌的頁面模板
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.html")
}

// Handler HTML 前端頁面處理器
type Handler struct {
	service *recipeService.Service
}

// NewHandler 創建頁面處理器
func NewHandler(service *recipeService.Service) *Handler {
	return &Handler{service: service}
}

// HandleHome 食譜列表與搜尋
func (h *Handler) HandleHome(c *gin.Context) {
	search := c.Query("search")
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":       "Recipes",
		"Recipes":     h.service.ListInternal(c.Request.Context(), search),
		"SearchQuery": search,
		"Message":     c.Query("message"),
	})
}

// HandleNewForm 新增食譜表單
func (h *Handler) HandleNewForm(c *gin.Context) {
	c.HTML(http.StatusOK, "recipe_form.html", gin.H{
		"Title":  "New recipe",
		"Recipe": nil,
		"IsEdit": false,
		"Action": "/recipes/new",
	})
}

// HandleCreate 處理新增表單
func (h *Handler) HandleCreate(c *gin.Context) {
	r, err := h.service.CreateRecipe(c.Request.Context(), formData(c))
	if err != nil {
		common.LogWarn("Recipe form rejected", zap.Error(err))
		redirect(c, "/", "Error creating recipe: "+describe(err))
		return
	}
	redirect(c, "/recipes/"+r.ID, "Recipe created successfully")
}

// HandleDetail 食譜詳細頁
func (h *Handler) HandleDetail(c *gin.Context) {
	r, ok := h.load(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "recipe_detail.html", gin.H{
		"Title":   r.Title,
		"Recipe":  r,
		"Message": c.Query("message"),
	})
}

// HandleEditForm 編輯食譜表單
func (h *Handler) HandleEditForm(c *gin.Context) {
	r, ok := h.load(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "recipe_form.html", gin.H{
		"Title":  "Edit " + r.Title,
		"Recipe": r,
		"IsEdit": true,
		"Action": "/recipes/" + r.ID + "/edit",
	})
}

// HandleUpdate 處理編輯表單
func (h *Handler) HandleUpdate(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.service.UpdateRecipe(c.Request.Context(), id, formData(c)); err != nil {
		if isNotFound(err) {
			redirect(c, "/", "Recipe not found")
			return
		}
		common.LogWarn("Recipe form rejected", zap.String("recipe_id", id), zap.Error(err))
		redirect(c, "/recipes/"+url.PathEscape(id), "Error updating recipe: "+describe(err))
		return
	}
	redirect(c, "/recipes/"+url.PathEscape(id), "Recipe updated successfully")
}

// HandleDelete 處理刪除
func (h *Handler) HandleDelete(c *gin.Context) {
	if err := h.service.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		redirect(c, "/", "Recipe not found")
		return
	}
	redirect(c, "/", "Recipe deleted successfully")
}

// HandleImportPage 匯入頁面
func (h *Handler) HandleImportPage(c *gin.Context) {
	c.HTML(http.StatusOK, "import.html", gin.H{
		"Title":   "Import",
		"Message": c.Query("message"),
	})
}

// load 讀取路徑中的食譜，找不到時輸出 404 頁面
func (h *Handler) load(c *gin.Context) (*recipeService.Recipe, bool) {
	r, err := h.service.GetRecipe(c.Request.Context(), c.Param("id"), "Recipe")
	if err != nil {
		ce := common.AsCustomError(err)
		c.HTML(ce.Status, "error.html", gin.H{
			"Title":  "Recipe not found",
			"Detail": ce.Message,
		})
		return nil, false
	}
	return r, true
}

// formData 將表單欄位轉為與 JSON API 相同的資料結構
func formData(c *gin.Context) map[string]any {
	return map[string]any{
		"title":        c.PostForm("title"),
		"description":  c.PostForm("description"),
		"region":       c.PostForm("region"),
		"cuisine":      c.PostForm("cuisine"),
		"ingredients":  toList(common.SplitNonEmpty(c.PostForm("ingredients"), "\n")),
		"instructions": toList(common.SplitNonEmpty(c.PostForm("instructions"), "\n")),
		"tags":         toList(common.SplitNonEmpty(c.PostForm("tags"), ",")),
	}
}

func toList(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

// describe 將錯誤轉為適合顯示的訊息
func describe(err error) string {
	ce := common.AsCustomError(err)
	if len(ce.ValidationErrors) == 0 {
		return ce.Message
	}
	msgs := make([]string, 0, len(ce.ValidationErrors))
	for _, fe := range ce.ValidationErrors {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

func isNotFound(err error) bool {
	var ce *common.CustomError
	return errors.As(err, &ce) && ce.Code == common.ErrCodeNotFound
}

func redirect(c *gin.Context, path, message string) {
	c.Redirect(http.StatusSeeOther, path+"?message="+url.QueryEscape(message))
}
