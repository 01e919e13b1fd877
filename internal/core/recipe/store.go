package recipe

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-explorer/internal/pkg/common"
)

// SeedRecipeID 預設種子食譜 ID
const SeedRecipeID = "test-recipe-schema-001"

// Store 記憶體食譜儲存，保留插入順序
type Store struct {
	mu      sync.RWMutex
	recipes map[string]*Recipe
	order   []string
	seed    bool
	now     func() time.Time
}

// NewStore 創建新的儲存，seed 為 true 時放入預設食譜
func NewStore(seed bool) *Store {
	s := &Store{
		recipes: make(map[string]*Recipe),
		seed:    seed,
		now:     time.Now,
	}
	if seed {
		s.addSeed()
	}
	return s
}

func (s *Store) addSeed() {
	now := s.now()
	s.put(&Recipe{
		ID:          SeedRecipeID,
		Title:       "Test Recipe - Jamie Chen Schema Update",
		Description: "A test recipe to validate the new schema with cuisine field, instructions as array, and no difficulty field.",
		Ingredients: []string{
			"2 cups test ingredient A",
			"1 cup test ingredient B",
			"3 tablespoons test seasoning",
			"Salt and pepper to taste",
		},
		Instructions: []string{
			"Prepare all ingredients by washing and chopping as needed.",
			"Heat oil in a large pan over medium heat.",
			"Add ingredient A and cook for 5 minutes, stirring occasionally.",
			"Mix in ingredient B and test seasoning.",
			"Season with salt and pepper, cook for another 3 minutes.",
			"Serve immediately while hot.",
		},
		Tags:      []string{"test", "schema-validation", "quick"},
		Region:    "Test Region",
		Cuisine:   "Test Cuisine",
		Source:    SourceInternal,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// put 需持有寫鎖
func (s *Store) put(r *Recipe) {
	if _, exists := s.recipes[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.recipes[r.ID] = r
}

// List 依插入順序回傳所有食譜
func (s *Store) List() []Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Recipe, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.recipes[id].clone())
	}
	return out
}

// Count 食譜數量
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Get 依 ID 取得食譜
func (s *Store) Get(id string) (Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return Recipe{}, ErrNotFound
	}
	return r.clone(), nil
}

// Search 標題不分大小寫的子字串搜尋，空查詢回傳全部
func (s *Store) Search(query string) []Recipe {
	if query == "" {
		return s.List()
	}

	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Recipe, 0)
	for _, id := range s.order {
		r := s.recipes[id]
		if strings.Contains(strings.ToLower(r.Title), q) {
			out = append(out, r.clone())
		}
	}
	return out
}

// Create 建立新的內部食譜
func (s *Store) Create(input RecipeInput) Recipe {
	now := s.now()
	r := &Recipe{
		ID:        common.GenerateUUID(),
		Source:    SourceInternal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.apply(input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(r)
	return r.clone()
}

// Update 取代所有可變欄位，保留 id、created_at 與 source
func (s *Store) Update(id string, input RecipeInput) (Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[id]
	if !ok {
		return Recipe{}, ErrNotFound
	}
	r.apply(input)
	r.UpdatedAt = s.now()
	return r.clone(), nil
}

// Delete 刪除食譜，成功時回傳 true
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return false
	}
	delete(s.recipes, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Import 清空儲存後匯入所有可轉換的紀錄，回傳匯入數量
func (s *Store) Import(records []map[string]any) int {
	converted := make([]*Recipe, 0, len(records))
	for i, raw := range records {
		r, err := s.fromRecord(raw)
		if err != nil {
			common.LogWarn("Skipping import record",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		converted = append(converted, r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipes = make(map[string]*Recipe, len(converted))
	s.order = make([]string, 0, len(converted))
	for _, r := range converted {
		s.put(r)
	}
	return len(converted)
}

// Reset 清空儲存，啟用種子時重新放入預設食譜
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipes = make(map[string]*Recipe)
	s.order = nil
	if s.seed {
		s.addSeed()
	}
}

func (s *Store) fromRecord(raw map[string]any) (*Recipe, error) {
	var rec ImportRecord
	if err := common.Convert(raw, &rec); err != nil {
		return nil, fmt.Errorf("convert record: %w", err)
	}
	if rec.Title == "" || rec.Description == "" || rec.Region == "" {
		return nil, fmt.Errorf("record is missing required fields")
	}
	if rec.Ingredients == nil || rec.Instructions == nil {
		return nil, fmt.Errorf("record is missing ingredients or instructions")
	}

	now := s.now()
	r := &Recipe{
		ID:           rec.ID,
		Title:        rec.Title,
		Description:  rec.Description,
		Ingredients:  rec.Ingredients,
		Instructions: rec.Instructions,
		Tags:         rec.Tags,
		Region:       rec.Region,
		Cuisine:      rec.Cuisine,
		Source:       SourceInternal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if r.ID == "" {
		r.ID = common.GenerateUUID()
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if rec.Source == SourceExternal {
		r.Source = SourceExternal
	}

	var err error
	if rec.CreatedAt != "" {
		if r.CreatedAt, err = parseTimestamp(rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("created_at: %w", err)
		}
	}
	if rec.UpdatedAt != "" {
		if r.UpdatedAt, err = parseTimestamp(rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("updated_at: %w", err)
		}
	}
	return r, nil
}

// 接受 RFC3339 以及不含時區的 ISO 8601 時間（視為本地時間）
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(v string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, v, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (r *Recipe) apply(in RecipeInput) {
	r.Title = strings.TrimSpace(in.Title)
	r.Description = strings.TrimSpace(in.Description)
	r.Ingredients = trimAll(in.Ingredients)
	r.Instructions = trimAll(in.Instructions)
	r.Tags = trimAll(in.Tags)
	r.Region = strings.TrimSpace(in.Region)
	r.Cuisine = strings.TrimSpace(in.Cuisine)
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
