package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func category(name string, parent *primitive.ObjectID) models.Category {
	return models.Category{ID: primitive.NewObjectID(), Name: name, Parent: parent}
}

func TestBuildCategoryTreeAttachesChildren(t *testing.T) {
	shoes := category("Shoes", nil)
	clothing := category("Clothing", nil)
	sneakers := category("Sneakers", &shoes.ID)
	boots := category("Boots", &shoes.ID)

	tree := buildCategoryTree([]models.Category{shoes, sneakers, clothing, boots})

	if len(tree) != 2 {
		t.Fatalf("expected 2 top-level categories, got %d", len(tree))
	}
	// sorted by name: Clothing, Shoes
	if tree[0].Name != "Clothing" || tree[1].Name != "Shoes" {
		t.Fatalf("expected [Clothing, Shoes], got [%s, %s]", tree[0].Name, tree[1].Name)
	}
	if len(tree[0].Subcategories) != 0 {
		t.Fatalf("expected Clothing to have no children, got %d", len(tree[0].Subcategories))
	}
	if len(tree[1].Subcategories) != 2 {
		t.Fatalf("expected Shoes to have 2 children, got %d", len(tree[1].Subcategories))
	}
	// children sorted by name: Boots, Sneakers
	if tree[1].Subcategories[0].Name != "Boots" || tree[1].Subcategories[1].Name != "Sneakers" {
		t.Fatalf("expected children [Boots, Sneakers], got [%s, %s]",
			tree[1].Subcategories[0].Name, tree[1].Subcategories[1].Name)
	}
}

func TestBuildCategoryTreeDropsOrphans(t *testing.T) {
	deletedParent := primitive.NewObjectID()
	shoes := category("Shoes", nil)
	orphan := category("Orphan", &deletedParent)

	tree := buildCategoryTree([]models.Category{shoes, orphan})

	if len(tree) != 1 {
		t.Fatalf("expected 1 top-level category, got %d", len(tree))
	}
	if len(tree[0].Subcategories) != 0 {
		t.Fatalf("expected orphan to be dropped, got %d children", len(tree[0].Subcategories))
	}
}

func TestBuildCategoryTreeEmptyInput(t *testing.T) {
	tree := buildCategoryTree(nil)
	if tree == nil || len(tree) != 0 {
		t.Fatalf("expected empty non-nil tree, got %v", tree)
	}
}

func TestBuildCategoryTreeSubcategoriesNeverNil(t *testing.T) {
	tree := buildCategoryTree([]models.Category{category("Solo", nil)})
	if tree[0].Subcategories == nil {
		t.Fatal("expected empty slice, got nil")
	}
}
