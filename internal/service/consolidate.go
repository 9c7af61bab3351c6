package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pageza/recipebox/backend/internal/models"
)

// Consolidator merges near-duplicate shopping items (e.g. "spring onion"
// and "scallion"). Implementations return the merged list or an error;
// callers keep their input on error.
type Consolidator interface {
	Consolidate(ctx context.Context, items []models.ShoppingItem) ([]models.ShoppingItem, error)
}

// LLMConsolidator asks the assistant model to merge items
type LLMConsolidator struct {
	llm LLMClient
}

func NewLLMConsolidator(llm LLMClient) *LLMConsolidator {
	return &LLMConsolidator{llm: llm}
}

const consolidatePrompt = `You tidy grocery lists. You receive a JSON array of items, each with an index.
Merge items that are the same product under different names or compatible units, converting units when needed.
Do not invent items and do not drop any. Categories must be one of: %s.
Respond with a JSON object only: {"items":[{"name":"","quantity":0,"unit":"","category":"","merged_from":[0]}]}
where merged_from lists the indexes of every input item the output item replaces.`

type consolidateInput struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

type consolidateOutput struct {
	Items []struct {
		Name       string  `json:"name"`
		Quantity   float64 `json:"quantity"`
		Unit       string  `json:"unit"`
		Category   string  `json:"category"`
		MergedFrom []int   `json:"merged_from"`
	} `json:"items"`
}

// Consolidate sends items to the model and maps its answer back. Every input
// item must be covered exactly once, otherwise the answer is rejected.
func (c *LLMConsolidator) Consolidate(ctx context.Context, items []models.ShoppingItem) ([]models.ShoppingItem, error) {
	input := make([]consolidateInput, len(items))
	for i, it := range items {
		input[i] = consolidateInput{Index: i, Name: it.Name, Quantity: it.Quantity, Unit: it.Unit, Category: it.Category}
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}

	raw, err := c.llm.Complete(ctx, []Message{
		{Role: "system", Content: fmt.Sprintf(consolidatePrompt, strings.Join(models.CategoryOrder, ", "))},
		{Role: "user", Content: string(payload)},
	}, true)
	if err != nil {
		return nil, err
	}

	var out consolidateOutput
	if err := decodeJSONReply(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid consolidation reply: %w", err)
	}
	return mergeConsolidated(items, out)
}

func mergeConsolidated(items []models.ShoppingItem, out consolidateOutput) ([]models.ShoppingItem, error) {
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("consolidation returned no items")
	}

	covered := make([]bool, len(items))
	caser := newTitleCaser()
	merged := make([]models.ShoppingItem, 0, len(out.Items))
	for _, o := range out.Items {
		name := strings.TrimSpace(o.Name)
		if name == "" || len(o.MergedFrom) == 0 || o.Quantity < 0 {
			return nil, fmt.Errorf("consolidation returned an invalid item")
		}
		recipes := map[string]bool{}
		for _, idx := range o.MergedFrom {
			if idx < 0 || idx >= len(items) || covered[idx] {
				return nil, fmt.Errorf("consolidation index %d is invalid or repeated", idx)
			}
			covered[idx] = true
			for _, id := range items[idx].RecipeIDs {
				recipes[id] = true
			}
		}
		merged = append(merged, models.ShoppingItem{
			Name:      caser.String(strings.ToLower(name)),
			Quantity:  roundQuantity(o.Quantity),
			Unit:      strings.ToLower(strings.TrimSpace(o.Unit)),
			Category:  knownCategory(o.Category, name),
			RecipeIDs: sortedKeys(recipes),
		})
	}
	for i, ok := range covered {
		if !ok {
			return nil, fmt.Errorf("consolidation dropped item %d", i)
		}
	}
	renumberPositions(merged)
	return merged, nil
}

func knownCategory(c, name string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	for _, known := range models.CategoryOrder {
		if c == known {
			return c
		}
	}
	return Categorize(name)
}
