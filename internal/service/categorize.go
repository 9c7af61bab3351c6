package service

import (
	"strings"

	"github.com/pageza/recipebox/backend/internal/models"
)

// categoryKeywords maps an aisle to words that place an ingredient there.
// Checked in CategoryOrder order, first hit wins.
var categoryKeywords = map[string][]string{
	"produce": {
		"apple", "avocado", "banana", "basil", "bean sprout", "berry", "broccoli", "cabbage",
		"carrot", "cauliflower", "celery", "chili", "cilantro", "cucumber", "eggplant", "garlic",
		"ginger", "herb", "kale", "leek", "lemon", "lettuce", "lime", "mint", "mushroom", "onion",
		"orange", "parsley", "pepper", "potato", "scallion", "shallot", "spinach", "squash",
		"thyme", "tomato", "zucchini",
	},
	"meat & seafood": {
		"bacon", "beef", "chicken", "chorizo", "cod", "fish", "ham", "lamb", "mince", "pork",
		"prawn", "salmon", "sausage", "shrimp", "steak", "tuna", "turkey",
	},
	"dairy & eggs": {
		"butter", "cheese", "cream", "egg", "feta", "milk", "mozzarella", "parmesan", "yogurt",
		"yoghurt",
	},
	"bakery": {
		"bagel", "baguette", "bread", "bun", "croissant", "pita", "roll", "tortilla",
	},
	"frozen": {
		"frozen", "ice cream",
	},
	"beverages": {
		"beer", "coffee", "juice", "soda", "tea", "water", "wine",
	},
	"pantry": {
		"baking", "broth", "cinnamon", "cocoa", "cornstarch", "cumin", "flour", "honey", "lentil",
		"noodle", "oat", "oil", "oregano", "paprika", "pasta", "rice", "salt", "sauce", "spice",
		"stock", "sugar", "vanilla", "vinegar", "yeast",
	},
}

// shelfStable words override the base ingredient: "chicken stock" and
// "garlic powder" live in the pantry aisle.
var shelfStable = []string{"stock", "broth", "sauce", "powder", "paste", "dried", "canned", "oil"}

// Categorize guesses the aisle for an ingredient name
func Categorize(name string) string {
	name = strings.ToLower(name)
	for _, kw := range categoryKeywords["frozen"] {
		if strings.Contains(name, kw) {
			return "frozen"
		}
	}
	for _, kw := range shelfStable {
		if strings.Contains(name, kw) {
			return "pantry"
		}
	}
	for _, category := range models.CategoryOrder {
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(name, kw) {
				return category
			}
		}
	}
	return models.DefaultCategory
}

// categoryFor keeps an explicit category and falls back to the keyword guess
func categoryFor(explicit, name string) string {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	if explicit != "" {
		return explicit
	}
	return Categorize(name)
}
