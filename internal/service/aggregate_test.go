package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
)

func TestNormalizeIngredientName(t *testing.T) {
	tests := map[string]string{
		"Tomatoes":        "tomato",
		"  Red   Onions ": "red onion",
		"berries":         "berry",
		"eggs":            "egg",
		"asparagus":       "asparagus",
		"glass":           "glass",
		"peas":            "pea",
		"gas":             "gas",
		"Cherry Tomato":   "cherry tomato",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeIngredientName(in), in)
	}
}

func TestCategorize(t *testing.T) {
	tests := map[string]string{
		"carrot":          "produce",
		"chicken breast":  "meat & seafood",
		"chicken stock":   "pantry",
		"garlic powder":   "pantry",
		"olive oil":       "pantry",
		"frozen peas":     "frozen",
		"cheddar cheese":  "dairy & eggs",
		"sourdough bread": "bakery",
		"orange juice":    "produce",
		"ground beef":     "meat & seafood",
		"dragonfruit":     models.DefaultCategory,
	}
	for in, want := range tests {
		assert.Equal(t, want, Categorize(in), in)
	}

	assert.Equal(t, "beverages", categoryFor(" Beverages ", "orange juice"), "explicit category wins")
}

func TestAggregateIngredients(t *testing.T) {
	soup := &models.Recipe{
		Base:     models.Base{ID: uuid.New()},
		Servings: 4,
		Ingredients: []models.Ingredient{
			{Name: "Tomatoes", Quantity: 4},
			{Name: "Onion", Quantity: 1},
			{Name: "Stock", Quantity: 500, Unit: "ml"},
		},
	}
	salad := &models.Recipe{
		Base:     models.Base{ID: uuid.New()},
		Servings: 2,
		Ingredients: []models.Ingredient{
			{Name: "tomato", Quantity: 2},
			{Name: "Onion", Quantity: 50, Unit: "g"},
			{Name: " "},
		},
	}
	eight := 8
	entries := []models.MealPlanEntry{
		{RecipeID: soup.ID, Servings: &eight},
		{RecipeID: salad.ID},
		{RecipeID: uuid.New()},
	}

	items := AggregateIngredients(entries, map[uuid.UUID]*models.Recipe{soup.ID: soup, salad.ID: salad})
	require.Len(t, items, 4)

	tomato := items[0]
	assert.Equal(t, "Tomato", tomato.Name)
	assert.Equal(t, 10.0, tomato.Quantity, "soup doubled plus salad")
	assert.Equal(t, "produce", tomato.Category)
	assert.Len(t, tomato.RecipeIDs, 2)
	assert.Equal(t, 0, tomato.Position)

	onion := items[1]
	assert.Equal(t, "Onion", onion.Name)
	assert.Equal(t, 2.0, onion.Quantity)
	assert.Equal(t, 1, onion.Position)

	stock := items[2]
	assert.Equal(t, "ml", stock.Unit)
	assert.Equal(t, 1000.0, stock.Quantity)
	assert.Equal(t, "pantry", stock.Category)
	assert.Equal(t, 0, stock.Position)

	grams := items[3]
	assert.Equal(t, "g", grams.Unit, "different units stay separate")
	assert.Equal(t, 50.0, grams.Quantity)
	assert.Equal(t, models.JSONBStringArray{salad.ID.String()}, grams.RecipeIDs)
}

func TestAggregateIngredientsConcurrent(t *testing.T) {
	recipe := &models.Recipe{
		Base: models.Base{ID: uuid.New()},
		Ingredients: []models.Ingredient{
			{Name: "red onions", Quantity: 2},
			{Name: "sweet potatoes", Quantity: 3},
			{Name: "fresh basil leaves", Quantity: 1, Unit: "bunch"},
		},
	}
	entries := []models.MealPlanEntry{{RecipeID: recipe.ID}}
	recipes := map[uuid.UUID]*models.Recipe{recipe.ID: recipe}
	want := []string{"Red Onion", "Sweet Potato", "Fresh Basil Leave"}

	var wg sync.WaitGroup
	errs := make(chan string, 8*100*len(want))
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				items := AggregateIngredients(entries, recipes)
				for j, item := range items {
					if item.Name != want[j] {
						errs <- item.Name
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	var bad []string
	for name := range errs {
		bad = append(bad, name)
	}
	assert.Empty(t, bad)
}

func TestMergeConsolidated(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	items := []models.ShoppingItem{
		{Name: "Scallion", Quantity: 2, Category: "produce", RecipeIDs: models.JSONBStringArray{a}},
		{Name: "Spring Onion", Quantity: 3, Category: "produce", RecipeIDs: models.JSONBStringArray{b}},
		{Name: "Rice", Quantity: 200, Unit: "g", Category: "pantry", RecipeIDs: models.JSONBStringArray{a}},
	}

	t.Run("valid answer", func(t *testing.T) {
		var out consolidateOutput
		require.NoError(t, decodeJSONReply("```json\n"+`{"items":[
			{"name":"spring onions","quantity":5,"unit":"","category":"produce","merged_from":[0,1]},
			{"name":"rice","quantity":200,"unit":"G","category":"grains","merged_from":[2]}
		]}`+"\n```", &out))

		merged, err := mergeConsolidated(items, out)
		require.NoError(t, err)
		require.Len(t, merged, 2)
		assert.Equal(t, "Spring Onions", merged[0].Name)
		assert.Equal(t, 5.0, merged[0].Quantity)
		assert.ElementsMatch(t, []string{a, b}, merged[0].RecipeIDs)
		assert.Equal(t, "pantry", merged[1].Category, "unknown category is re-guessed")
		assert.Equal(t, "g", merged[1].Unit)
	})

	t.Run("dropped item", func(t *testing.T) {
		var out consolidateOutput
		require.NoError(t, decodeJSONReply(`{"items":[{"name":"onion","quantity":5,"merged_from":[0,1]}]}`, &out))
		_, err := mergeConsolidated(items, out)
		assert.Error(t, err)
	})

	t.Run("repeated index", func(t *testing.T) {
		var out consolidateOutput
		require.NoError(t, decodeJSONReply(`{"items":[
			{"name":"onion","quantity":5,"merged_from":[0,1]},
			{"name":"rice","quantity":200,"merged_from":[2,0]}
		]}`, &out))
		_, err := mergeConsolidated(items, out)
		assert.Error(t, err)
	})
}
