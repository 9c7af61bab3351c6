package service

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/recipebox/backend/internal/models"
)

// newTitleCaser returns a fresh caser. A cases.Caser keeps state and must
// not be shared between goroutines.
func newTitleCaser() cases.Caser {
	return cases.Title(language.English)
}

// NormalizeIngredientName lowercases, trims and folds simple plurals so
// "Tomatoes" and "tomato" aggregate together.
func NormalizeIngredientName(name string) string {
	name = strings.Join(strings.Fields(strings.ToLower(name)), " ")
	words := strings.Split(name, " ")
	last := words[len(words)-1]
	switch {
	case len(last) > 4 && strings.HasSuffix(last, "ies"):
		last = strings.TrimSuffix(last, "ies") + "y"
	case len(last) > 4 && strings.HasSuffix(last, "oes"):
		last = strings.TrimSuffix(last, "es")
	case len(last) > 3 && strings.HasSuffix(last, "s") && !strings.HasSuffix(last, "ss") && !strings.HasSuffix(last, "us"):
		last = strings.TrimSuffix(last, "s")
	}
	words[len(words)-1] = last
	return strings.Join(words, " ")
}

func roundQuantity(q float64) float64 {
	return math.Round(q*100) / 100
}

// scaleFactor is entry servings over recipe servings, or 1 when either is
// unset.
func scaleFactor(entry models.MealPlanEntry, recipe *models.Recipe) float64 {
	if entry.Servings == nil || *entry.Servings <= 0 || recipe.Servings <= 0 {
		return 1
	}
	return float64(*entry.Servings) / float64(recipe.Servings)
}

// AggregateIngredients merges the ingredients of every planned recipe into
// shopping items keyed by normalized name and unit. Items keep the order in
// which they were first seen; positions count up within each category.
func AggregateIngredients(entries []models.MealPlanEntry, recipes map[uuid.UUID]*models.Recipe) []models.ShoppingItem {
	type acc struct {
		item    models.ShoppingItem
		recipes map[string]bool
	}
	caser := newTitleCaser()
	byKey := map[string]*acc{}
	var order []string

	for _, entry := range entries {
		recipe, ok := recipes[entry.RecipeID]
		if !ok {
			continue
		}
		factor := scaleFactor(entry, recipe)
		for _, ing := range recipe.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				continue
			}
			name := NormalizeIngredientName(ing.Name)
			unit := strings.ToLower(strings.TrimSpace(ing.Unit))
			key := name + "|" + unit

			a, seen := byKey[key]
			if !seen {
				a = &acc{
					item: models.ShoppingItem{
						Name:     caser.String(name),
						Unit:     unit,
						Category: categoryFor(ing.Category, name),
					},
					recipes: map[string]bool{},
				}
				byKey[key] = a
				order = append(order, key)
			}
			a.item.Quantity += ing.Quantity * factor
			a.recipes[recipe.ID.String()] = true
		}
	}

	items := make([]models.ShoppingItem, 0, len(order))
	positions := map[string]int{}
	for _, key := range order {
		a := byKey[key]
		item := a.item
		item.Quantity = roundQuantity(item.Quantity)
		item.RecipeIDs = sortedKeys(a.recipes)
		item.Position = positions[item.Category]
		positions[item.Category]++
		items = append(items, item)
	}
	return items
}

func sortedKeys(m map[string]bool) models.JSONBStringArray {
	out := make(models.JSONBStringArray, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// renumberPositions assigns positions 0..n within each category in slice
// order.
func renumberPositions(items []models.ShoppingItem) {
	positions := map[string]int{}
	for i := range items {
		items[i].Position = positions[items[i].Category]
		positions[items[i].Category]++
	}
}
