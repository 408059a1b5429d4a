package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Parent      string `json:"parent"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Parent      *string `json:"parent"`
}

func fetchCategories(ctx context.Context, db *mongo.Database, filter bson.M) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := db.Collection("categories").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := make([]models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

/*
GET /api/categories
- nested tree by default, flat list with ?flat=true
*/
func GetCategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		categories, err := fetchCategories(ctx, db, bson.M{})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if c.Query("flat") == "true" {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data":    categories,
				"count":   len(categories),
			})
			return
		}

		tree := buildCategoryTree(categories)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    tree,
			"count":   len(tree),
		})
	}
}

// GET /api/categories/main
func GetMainCategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories/main"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		categories, err := fetchCategories(ctx, db, bson.M{"parent": nil})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    categories,
			"count":   len(categories),
		})
	}
}

// GET /api/categories/:id
func GetCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var category models.Category
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&category)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "category not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, category)
	}
}

// GET /api/categories/:id/subcategories
func GetSubcategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories/:id/subcategories"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		categories, err := fetchCategories(ctx, db, bson.M{"parent": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    categories,
			"count":   len(categories),
		})
	}
}

/*
POST /api/categories (admin)
- name must be unique under the same parent; the store-level
  parent_name_unique index backs this check against concurrent creates
*/
func CreateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/categories"
		defer handlePanic(c, route)

		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondError(c, http.StatusBadRequest, route, "name required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var parent *primitive.ObjectID
		if raw := strings.TrimSpace(req.Parent); raw != "" {
			parentID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid parent id")
				return
			}
			count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"_id": parentID})
			if err != nil {
				respondError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if count == 0 {
				respondError(c, http.StatusBadRequest, route, "parent category not found")
				return
			}
			parent = &parentID
		}

		duplicate, err := db.Collection("categories").CountDocuments(ctx, bson.M{
			"name":   name,
			"parent": parent,
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if duplicate > 0 {
			respondError(c, http.StatusBadRequest, route, "Category already exists")
			return
		}

		now := time.Now()
		category := models.Category{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			Image:       strings.TrimSpace(req.Image),
			Parent:      parent,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		result, err := db.Collection("categories").InsertOne(ctx, category)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusBadRequest, route, "Category already exists")
				return
			}
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		category.ID = result.InsertedID.(primitive.ObjectID)

		log.Printf("[%s] category created: %s", route, name)
		respondData(c, http.StatusCreated, category)
	}
}

/*
PUT /api/categories/:id (admin)
- a category can never become its own parent
*/
func UpdateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/categories/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Category
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "category not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		update := bson.M{}
		name := existing.Name
		parent := existing.Parent

		if req.Name != nil {
			name = strings.TrimSpace(*req.Name)
			if name == "" {
				respondError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
		}

		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}

		if req.Image != nil {
			update["image"] = strings.TrimSpace(*req.Image)
		}

		if req.Parent != nil {
			raw := strings.TrimSpace(*req.Parent)
			if raw == "" {
				parent = nil
				update["parent"] = nil
			} else {
				parentID, err := primitive.ObjectIDFromHex(raw)
				if err != nil {
					respondError(c, http.StatusBadRequest, route, "invalid parent id")
					return
				}
				if parentID == id {
					respondError(c, http.StatusBadRequest, route, "category cannot be its own parent")
					return
				}
				count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"_id": parentID})
				if err != nil {
					respondError(c, http.StatusInternalServerError, route, "db error")
					return
				}
				if count == 0 {
					respondError(c, http.StatusBadRequest, route, "parent category not found")
					return
				}
				parent = &parentID
				update["parent"] = parentID
			}
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		if req.Name != nil || req.Parent != nil {
			duplicate, err := db.Collection("categories").CountDocuments(ctx, bson.M{
				"_id":    bson.M{"$ne": id},
				"name":   name,
				"parent": parent,
			})
			if err != nil {
				respondError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if duplicate > 0 {
				respondError(c, http.StatusBadRequest, route, "Category already exists")
				return
			}
		}

		update["updatedAt"] = time.Now()

		var updated models.Category
		err = db.Collection("categories").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "category not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, updated)
	}
}

/*
DELETE /api/categories/:id (admin)
- refused while subcategories exist
*/
func DeleteCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/categories/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		children, err := db.Collection("categories").CountDocuments(ctx, bson.M{"parent": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if children > 0 {
			respondError(c, http.StatusBadRequest, route, "Category has subcategories")
			return
		}

		result, err := db.Collection("categories").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "category not found")
			return
		}

		log.Printf("[%s] category deleted: %s", route, id.Hex())
		respondMessage(c, http.StatusOK, "category deleted")
	}
}
