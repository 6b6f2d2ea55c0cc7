package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

const searchLimit = 50

// SearchMeals runs a full-text query over meal names and returns matches by
// relevance. The index is rebuilt in memory per query because the history
// may be changed by another process.
func (s *Store) SearchMeals(ctx context.Context, text string) ([]MealRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []MealRecord{}, nil
	}
	meals := s.Meals(ctx)
	if len(meals) == 0 {
		return []MealRecord{}, nil
	}

	index, err := bleve.NewMemOnly(buildMealMapping())
	if err != nil {
		return nil, fmt.Errorf("search meals: create index: %w", err)
	}
	defer index.Close()

	byID := make(map[string]MealRecord, len(meals))
	batch := index.NewBatch()
	for _, meal := range meals {
		byID[meal.ID] = meal
		if err := batch.Index(meal.ID, map[string]any{"name": meal.Name}); err != nil {
			return nil, fmt.Errorf("search meals: index %s: %w", meal.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("search meals: batch index: %w", err)
	}

	match := bleve.NewMatchQuery(text)
	match.SetField("name")
	match.SetFuzziness(1)
	prefix := bleve.NewPrefixQuery(strings.ToLower(text))
	prefix.SetField("name")

	request := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(match, prefix), searchLimit, 0, false)
	result, err := index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search meals: %w", err)
	}

	found := make([]MealRecord, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if meal, ok := byID[hit.ID]; ok {
			found = append(found, meal)
		}
	}
	return found, nil
}

func buildMealMapping() mapping.IndexMapping {
	mealMapping := bleve.NewDocumentMapping()
	mealMapping.AddFieldMappingsAt("name", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = mealMapping
	return indexMapping
}
