package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/metrics"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

const recipeLoadConcurrency = 4

// ShoppingService manages shopping lists and generates them from meal plans
type ShoppingService struct {
	db           *gorm.DB
	consolidator Consolidator
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

var _ IShoppingService = (*ShoppingService)(nil)

// NewShoppingService creates a ShoppingService. consolidator may be nil,
// in which case use_ai requests fall back to plain aggregation.
func NewShoppingService(db *gorm.DB, consolidator Consolidator, logger *zap.Logger, m *metrics.Metrics) *ShoppingService {
	return &ShoppingService{db: db, consolidator: consolidator, logger: logger, metrics: m}
}

func (s *ShoppingService) ListLists(ctx context.Context, userID uuid.UUID, q types.PageQuery) ([]models.ShoppingList, types.Pagination, error) {
	page := q.Normalize()
	query := s.db.WithContext(ctx).Model(&models.ShoppingList{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, types.Pagination{}, fmt.Errorf("failed to count shopping lists: %w", err)
	}

	lists := []models.ShoppingList{}
	err := query.Preload("Items").
		Order("CASE WHEN week_start IS NULL THEN 1 ELSE 0 END").
		Order("week_start DESC").Order("created_at DESC").
		Limit(page.PageSize).Offset(page.Offset()).
		Find(&lists).Error
	if err != nil {
		return nil, types.Pagination{}, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	return lists, types.NewPagination(page, total), nil
}

func (s *ShoppingService) GetList(ctx context.Context, userID, listID uuid.UUID) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := s.db.WithContext(ctx).Preload("Items").
		First(&list, "id = ? AND user_id = ?", listID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	return &list, nil
}

// CreateList stores a manual list
func (s *ShoppingService) CreateList(ctx context.Context, userID uuid.UUID, req *types.ShoppingListRequest) (*models.ShoppingList, error) {
	list := &models.ShoppingList{
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
	}
	if req.WeekStart != "" {
		ws, err := models.ParseDate(req.WeekStart)
		if err != nil {
			return nil, NewValidationError("week_start", "must be a date formatted YYYY-MM-DD")
		}
		list.WeekStart = &ws
	}
	for _, in := range req.Items {
		list.Items = append(list.Items, newItem(in))
	}
	renumberPositions(list.Items)

	if err := s.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}
	return list, nil
}

func newItem(in types.ShoppingItemInput) models.ShoppingItem {
	name := strings.TrimSpace(in.Name)
	return models.ShoppingItem{
		Name:      name,
		Quantity:  in.Quantity,
		Unit:      strings.TrimSpace(in.Unit),
		Category:  categoryFor(in.Category, name),
		RecipeIDs: models.JSONBStringArray{},
	}
}

func (s *ShoppingService) RenameList(ctx context.Context, userID, listID uuid.UUID, name string) (*models.ShoppingList, error) {
	list, err := s.GetList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	list.Name = strings.TrimSpace(name)
	if err := s.db.WithContext(ctx).Model(list).Update("name", list.Name).Error; err != nil {
		return nil, fmt.Errorf("failed to rename shopping list: %w", err)
	}
	return list, nil
}

func (s *ShoppingService) DeleteList(ctx context.Context, userID, listID uuid.UUID) error {
	list, err := s.GetList(ctx, userID, listID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteList(tx, list.ID)
	}); err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	return nil
}

func deleteList(tx *gorm.DB, listID uuid.UUID) error {
	if err := tx.Where("list_id = ?", listID).Delete(&models.ShoppingItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", listID).Delete(&models.ShoppingList{}).Error
}

func (s *ShoppingService) nextPosition(ctx context.Context, listID uuid.UUID, category string) (int, error) {
	var maxPos sql.NullInt64
	err := s.db.WithContext(ctx).Model(&models.ShoppingItem{}).
		Where("list_id = ? AND category = ?", listID, category).
		Select("MAX(position)").Scan(&maxPos).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find item position: %w", err)
	}
	if !maxPos.Valid {
		return 0, nil
	}
	return int(maxPos.Int64) + 1, nil
}

// AddItem appends an item to the end of its category
func (s *ShoppingService) AddItem(ctx context.Context, userID, listID uuid.UUID, in *types.ShoppingItemInput) (*models.ShoppingItem, error) {
	list, err := s.GetList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	item := newItem(*in)
	item.ListID = list.ID
	if item.Position, err = s.nextPosition(ctx, list.ID, item.Category); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}
	return &item, nil
}

// UpdateItem applies the present fields and returns the whole list. The
// item keeps its position when toggled; moving it to another category puts
// it last there.
func (s *ShoppingService) UpdateItem(ctx context.Context, userID, listID, itemID uuid.UUID, req *types.UpdateShoppingItemRequest) (*models.ShoppingList, error) {
	list, err := s.GetList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	var item *models.ShoppingItem
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			item = &list.Items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrNotFound
	}

	if req.Checked != nil {
		item.Checked = *req.Checked
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		item.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.Category != nil {
		category := categoryFor(*req.Category, item.Name)
		if category != item.Category {
			pos, err := s.nextPosition(ctx, list.ID, category)
			if err != nil {
				return nil, err
			}
			item.Category, item.Position = category, pos
		}
	}

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return list, nil
}

func (s *ShoppingService) DeleteItem(ctx context.Context, userID, listID, itemID uuid.UUID) error {
	list, err := s.GetList(ctx, userID, listID)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ? AND list_id = ?", itemID, list.ID).Delete(&models.ShoppingItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GenerateList builds a list from the meal plan of the week starting at
// req.WeekStart. An existing generated list for that week is only replaced
// when req.Replace is set.
func (s *ShoppingService) GenerateList(ctx context.Context, userID uuid.UUID, req *types.GenerateShoppingListRequest) (*models.ShoppingList, error) {
	weekStart, err := models.ParseDate(req.WeekStart)
	if err != nil {
		return nil, NewValidationError("week_start", "must be a date formatted YYYY-MM-DD")
	}

	var entries []models.MealPlanEntry
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, weekStart, weekStart.AddDays(6)).
		Order("date ASC").Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan: %w", err)
	}
	if len(entries) == 0 {
		return nil, NewValidationError("week_start", "no meals are planned for this week")
	}

	recipes, err := s.loadRecipes(ctx, entries)
	if err != nil {
		return nil, err
	}

	items := AggregateIngredients(entries, recipes)
	mode := "deterministic"
	if req.UseAI && s.consolidator != nil && len(items) > 0 {
		consolidated, err := s.consolidator.Consolidate(ctx, items)
		if err != nil {
			s.logger.Warn("shopping list consolidation failed, keeping aggregated items",
				zap.String("user_id", userID.String()), zap.Error(err))
		} else {
			items, mode = consolidated, "ai"
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Week of " + weekStart.String()
	}
	list := &models.ShoppingList{
		UserID:    userID,
		Name:      name,
		WeekStart: &weekStart,
		Generated: true,
		Items:     items,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ShoppingList
		err := tx.Where("user_id = ? AND week_start = ? AND generated = ?", userID, weekStart, true).
			First(&existing).Error
		switch {
		case err == nil:
			if !req.Replace {
				return &ShoppingListExistsError{ListID: existing.ID}
			}
			if err := deleteList(tx, existing.ID); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(list).Error
	})
	if err != nil {
		var exists *ShoppingListExistsError
		if errors.As(err, &exists) {
			return nil, err
		}
		// A concurrent generate for the same week can take the unique
		// index between the lookup and the insert.
		if id, ok := s.generatedListID(ctx, userID, weekStart); ok {
			return nil, &ShoppingListExistsError{ListID: id}
		}
		return nil, fmt.Errorf("failed to save shopping list: %w", err)
	}

	s.metrics.ShoppingListGenerated(mode)
	return list, nil
}

func (s *ShoppingService) generatedListID(ctx context.Context, userID uuid.UUID, weekStart models.Date) (uuid.UUID, bool) {
	var existing models.ShoppingList
	err := s.db.WithContext(ctx).Select("id").
		Where("user_id = ? AND week_start = ? AND generated = ?", userID, weekStart, true).
		First(&existing).Error
	if err != nil {
		return uuid.Nil, false
	}
	return existing.ID, true
}

// loadRecipes fetches the distinct recipes of entries concurrently
func (s *ShoppingService) loadRecipes(ctx context.Context, entries []models.MealPlanEntry) (map[uuid.UUID]*models.Recipe, error) {
	ids := map[uuid.UUID]bool{}
	for _, e := range entries {
		ids[e.RecipeID] = true
	}

	var mu sync.Mutex
	recipes := make(map[uuid.UUID]*models.Recipe, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recipeLoadConcurrency)
	for id := range ids {
		id := id
		g.Go(func() error {
			var recipe models.Recipe
			err := s.db.WithContext(gctx).First(&recipe, "id = ?", id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load recipe %s: %w", id, err)
			}
			mu.Lock()
			recipes[id] = &recipe
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recipes, nil
}
