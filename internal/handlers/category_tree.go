package handlers

import (
	"sort"

	"backend/internal/models"
)

// buildCategoryTree partitions categories into top-level and child sets and
// attaches each child to its parent. Children whose parent id does not match
// any top-level category are dropped. Both levels are sorted by name.
func buildCategoryTree(categories []models.Category) []models.NestedCategory {
	topLevel := make([]models.Category, 0)
	childrenByParent := make(map[string][]models.Category)

	for _, category := range categories {
		if category.Parent == nil {
			topLevel = append(topLevel, category)
			continue
		}
		key := category.Parent.Hex()
		childrenByParent[key] = append(childrenByParent[key], category)
	}

	sort.Slice(topLevel, func(i, j int) bool {
		return topLevel[i].Name < topLevel[j].Name
	})

	tree := make([]models.NestedCategory, 0, len(topLevel))
	for _, parent := range topLevel {
		children := childrenByParent[parent.ID.Hex()]
		sort.Slice(children, func(i, j int) bool {
			return children[i].Name < children[j].Name
		})
		if children == nil {
			children = []models.Category{}
		}
		tree = append(tree, models.NestedCategory{
			Category:      parent,
			Subcategories: children,
		})
	}

	return tree
}
