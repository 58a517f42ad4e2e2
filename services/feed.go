package services

import (
	"strings"

	"github.com/hometaste/hometaste-api/models"
)

// FilterDishes returns the active dishes matching term and category, in feed order.
// term matches name, description or cook name case-insensitively; an empty term or category
// does not filter.
func FilterDishes(dishes []models.Dish, term, category string) []models.Dish {
	needle := strings.ToLower(strings.TrimSpace(term))

	filtered := make([]models.Dish, 0, len(dishes))
	for _, d := range dishes {
		if !d.IsActive {
			continue
		}
		if category != "" && d.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(d.Name), needle) &&
			!strings.Contains(strings.ToLower(d.Description), needle) &&
			!strings.Contains(strings.ToLower(d.CookName()), needle) {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

// DishCategories returns the distinct non-blank categories of dishes in first-seen order
func DishCategories(dishes []models.Dish) []string {
	seen := make(map[string]bool)
	categories := []string{}
	for _, d := range dishes {
		if strings.TrimSpace(d.Category) == "" || seen[d.Category] {
			continue
		}
		seen[d.Category] = true
		categories = append(categories, d.Category)
	}
	return categories
}
