package models

import (
	"sort"

	"github.com/google/uuid"
)

// CategoryOrder is the aisle order shopping items are grouped in.
var CategoryOrder = []string{
	"produce",
	"meat & seafood",
	"dairy & eggs",
	"bakery",
	"pantry",
	"frozen",
	"beverages",
	"other",
}

const DefaultCategory = "other"

type ShoppingList struct {
	Base
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	WeekStart *Date          `gorm:"type:date;index" json:"week_start"`
	Generated bool           `gorm:"not null" json:"generated"`
	Items     []ShoppingItem `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for the ShoppingList model
func (ShoppingList) TableName() string {
	return "shopping_lists"
}

// ShoppingItem keeps its Position when checked, so unchecking restores its place.
type ShoppingItem struct {
	Base
	ListID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"list_id"`
	Name      string           `gorm:"size:200;not null" json:"name"`
	Quantity  float64          `json:"quantity"`
	Unit      string           `gorm:"size:30" json:"unit"`
	Category  string           `gorm:"size:50;not null" json:"category"`
	Checked   bool             `gorm:"not null" json:"checked"`
	Position  int              `gorm:"not null" json:"position"`
	RecipeIDs JSONBStringArray `gorm:"type:jsonb" json:"recipe_ids"`
}

// TableName returns the table name for the ShoppingItem model
func (ShoppingItem) TableName() string {
	return "shopping_items"
}

// CategoryGroup is one category section of a list in display order.
type CategoryGroup struct {
	Category string         `json:"category"`
	Items    []ShoppingItem `json:"items"`
}

func categoryRank(c string) int {
	for i, known := range CategoryOrder {
		if known == c {
			return i
		}
	}
	return len(CategoryOrder)
}

// SortItems orders items by category, then unchecked before checked,
// then by position.
func SortItems(items []ShoppingItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Category != b.Category {
			ra, rb := categoryRank(a.Category), categoryRank(b.Category)
			if ra != rb {
				return ra < rb
			}
			return a.Category < b.Category
		}
		if a.Checked != b.Checked {
			return !a.Checked
		}
		return a.Position < b.Position
	})
}

// Grouped sorts the list's items and splits them by category.
func (l *ShoppingList) Grouped() []CategoryGroup {
	SortItems(l.Items)
	groups := []CategoryGroup{}
	for _, item := range l.Items {
		if n := len(groups); n == 0 || groups[n-1].Category != item.Category {
			groups = append(groups, CategoryGroup{Category: item.Category})
		}
		groups[len(groups)-1].Items = append(groups[len(groups)-1].Items, item)
	}
	return groups
}
