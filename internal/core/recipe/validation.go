package recipe

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"recipe-explorer/internal/pkg/common"
)

// 欄位限制
const (
	MaxTitleLength       = 200
	MinTitleLength       = 3
	MinDescriptionLength = 10
	MaxDescriptionLength = 2000
	MaxIngredients       = 50
	MinIngredientLength  = 2
	MaxInstructions      = 50
	MinInstructionLength = 5
	MinRegionLength      = 2
	MaxTags              = 20
	MaxTagLength         = 30
	MaxRecipeIDLength    = 100
	MaxSearchLength      = 100
	DefaultMaxImport     = 1000
)

var (
	idPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	uuidPattern = regexp.MustCompile(`^[a-f0-9-]{36}$`)
)

// Validator 食譜資料驗證器
type Validator struct {
	schema    *validator.Validate
	maxImport int
}

// NewValidator 創建驗證器，maxImport <= 0 時使用預設上限
func NewValidator(maxImport int) *Validator {
	if maxImport <= 0 {
		maxImport = DefaultMaxImport
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{schema: v, maxImport: maxImport}
}

// ValidateRecipe 驗證建立或更新食譜的原始資料，通過時回傳整理後的輸入
func (v *Validator) ValidateRecipe(data map[string]any) (RecipeInput, *common.ValidationResult) {
	result := common.NewValidationResult()

	validateText(result, data["title"], textRule{
		field: "title", label: "Title", min: MinTitleLength, max: MaxTitleLength,
		requiredMsg: "Title is required and cannot be empty",
		emptyMsg:    "Title cannot be empty or whitespace only",
	})
	validateText(result, data["description"], textRule{
		field: "description", label: "Description", min: MinDescriptionLength, max: MaxDescriptionLength,
		requiredMsg: "Description is required and cannot be empty",
		emptyMsg:    "Description cannot be empty or whitespace only",
	})
	validateList(result, data["ingredients"], listRule{
		field: "ingredients", label: "Ingredients", noun: "ingredients", item: "ingredient",
		maxItems: MaxIngredients, minLen: MinIngredientLength, required: true,
		requiredMsg: "At least one ingredient is required",
		typeMsg:     "Ingredients must be a list",
		itemEmpty:   "Ingredient cannot be empty",
	})
	validateList(result, data["instructions"], listRule{
		field: "instructions", label: "Instructions", noun: "instruction steps", item: "instruction",
		maxItems: MaxInstructions, minLen: MinInstructionLength, required: true,
		requiredMsg: "At least one instruction step is required",
		typeMsg:     "Instructions must be a list of steps",
		itemEmpty:   "Instruction step cannot be empty",
	})
	validateText(result, data["region"], textRule{
		field: "region", label: "Region", min: MinRegionLength,
		requiredMsg: "Region is required",
		emptyMsg:    "Region cannot be empty",
	})
	validateText(result, data["cuisine"], textRule{
		field: "cuisine", label: "Cuisine", min: MinRegionLength,
		requiredMsg: "Cuisine is required",
		emptyMsg:    "Cuisine cannot be empty",
	})
	if tags, ok := data["tags"]; ok && tags != nil {
		validateList(result, tags, listRule{
			field: "tags", label: "Tags", noun: "tags", item: "tag",
			maxItems: MaxTags, maxLen: MaxTagLength,
			typeMsg:   "Tags must be a list",
			itemEmpty: "Tag cannot be empty",
		})
	}

	if !result.IsValid() {
		return RecipeInput{}, result
	}

	var input RecipeInput
	if err := common.Convert(data, &input); err != nil {
		result.Add("body", fmt.Sprintf("Validation failed: %v", err), common.CodeSchemaError)
		return RecipeInput{}, result
	}
	input.normalize()

	if err := v.schema.Struct(input); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				result.Add(schemaField(fe), fmt.Sprintf("Validation failed: %s violates '%s'", fe.Field(), fe.Tag()), common.CodeSchemaError)
			}
		} else {
			result.Add("body", fmt.Sprintf("Validation failed: %v", err), common.CodeSchemaError)
		}
		return RecipeInput{}, result
	}

	return input, result
}

// ValidateRecipeID 驗證食譜 ID 格式
func ValidateRecipeID(id string) *common.ValidationResult {
	result := common.NewValidationResult()

	switch {
	case id == "":
		result.Add("recipe_id", "Recipe ID is required", common.CodeRequired)
	case strings.TrimSpace(id) == "":
		result.Add("recipe_id", "Recipe ID cannot be empty", common.CodeEmpty)
	case utf8.RuneCountInString(id) > MaxRecipeIDLength:
		result.Addf("recipe_id", common.CodeTooLong, "Recipe ID cannot exceed %d characters", MaxRecipeIDLength)
	case !(uuidPattern.MatchString(id) || strings.HasPrefix(id, "test-") || idPattern.MatchString(id)):
		result.Add("recipe_id", "Recipe ID contains invalid characters", common.CodeInvalidFormat)
	}

	return result
}

// ValidateSearchQuery 驗證搜尋參數，nil 表示未提供
func ValidateSearchQuery(query *string) *common.ValidationResult {
	result := common.NewValidationResult()
	if query == nil {
		return result
	}

	switch {
	case strings.TrimSpace(*query) == "":
		result.Add("search", "Search query cannot be empty", common.CodeEmpty)
	case utf8.RuneCountInString(*query) > MaxSearchLength:
		result.Addf("search", common.CodeTooLong, "Search query cannot exceed %d characters", MaxSearchLength)
	}
	return result
}

// ValidateImport 驗證匯入資料，通過時回傳每筆食譜物件
func (v *Validator) ValidateImport(data any) ([]map[string]any, *common.ValidationResult) {
	result := common.NewValidationResult()

	items, ok := data.([]any)
	if !ok {
		result.Add("data", "Import data must be an array of recipes", common.CodeTypeError)
		return nil, result
	}
	if len(items) == 0 {
		result.Add("data", "Import data cannot be empty", common.CodeEmpty)
		return nil, result
	}
	if len(items) > v.maxImport {
		result.Addf("data", common.CodeTooMany, "Cannot import more than %d recipes at once", v.maxImport)
		return nil, result
	}

	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("data[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			result.Add(prefix, "Each recipe must be an object", common.CodeTypeError)
			continue
		}
		_, itemResult := v.ValidateRecipe(obj)
		result.Merge(prefix, itemResult)
		records = append(records, obj)
	}

	if !result.IsValid() {
		return nil, result
	}
	return records, result
}

type textRule struct {
	field, label          string
	min, max              int
	requiredMsg, emptyMsg string
}

func validateText(result *common.ValidationResult, value any, rule textRule) {
	if isFalsy(value) {
		result.Add(rule.field, rule.requiredMsg, common.CodeRequired)
		return
	}
	s, ok := value.(string)
	if !ok {
		result.Addf(rule.field, common.CodeTypeError, "%s must be a string", rule.label)
		return
	}

	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		result.Add(rule.field, rule.emptyMsg, common.CodeEmpty)
	case rule.max > 0 && n > rule.max:
		result.Addf(rule.field, common.CodeTooLong, "%s cannot exceed %d characters (current: %d)", rule.label, rule.max, n)
	case n < rule.min:
		result.Addf(rule.field, common.CodeTooShort, "%s must be at least %d characters%s", rule.label, rule.min, longSuffix(rule.field))
	}
}

// title 與 description 的訊息帶有 "long" 字尾
func longSuffix(field string) string {
	if field == "title" || field == "description" {
		return " long"
	}
	return ""
}

type listRule struct {
	field, label, noun, item string
	maxItems, minLen, maxLen int
	required                 bool
	requiredMsg, typeMsg     string
	itemEmpty                string
}

func validateList(result *common.ValidationResult, value any, rule listRule) {
	if rule.required && isFalsy(value) {
		result.Add(rule.field, rule.requiredMsg, common.CodeRequired)
		return
	}
	items, ok := value.([]any)
	if !ok {
		result.Add(rule.field, rule.typeMsg, common.CodeTypeError)
		return
	}
	if len(items) > rule.maxItems {
		result.Addf(rule.field, common.CodeTooMany, "Cannot exceed %d %s (current: %d)", rule.maxItems, rule.noun, len(items))
	}

	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", rule.field, i)
		s, ok := item.(string)
		if !ok {
			result.Addf(field, common.CodeTypeError, "Each %s must be a string", rule.item)
			continue
		}
		s = strings.TrimSpace(s)
		n := utf8.RuneCountInString(s)
		switch {
		case n == 0:
			result.Add(field, rule.itemEmpty, common.CodeEmpty)
		case rule.minLen > 0 && n < rule.minLen:
			result.Addf(field, common.CodeTooShort, "Each %s must be at least %d characters", rule.item, rule.minLen)
		case rule.maxLen > 0 && n > rule.maxLen:
			result.Addf(field, common.CodeTooLong, "Each %s cannot exceed %d characters", rule.item, rule.maxLen)
		}
	}
}

// isFalsy 判斷 JSON 值是否為空值：null、空字串、空陣列、空物件、0 或 false
func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case float64:
		return v == 0
	}
	return false
}

func schemaField(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func (in *RecipeInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Ingredients = trimAll(in.Ingredients)
	in.Instructions = trimAll(in.Instructions)
	in.Region = strings.TrimSpace(in.Region)
	in.Cuisine = strings.TrimSpace(in.Cuisine)
	if in.Tags == nil {
		in.Tags = []string{}
	}
	in.Tags = trimAll(in.Tags)
}
