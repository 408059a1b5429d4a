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

type ProductCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Price       *float64 `json:"price" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Image       string   `json:"image"`
	Gallery     []string `json:"gallery"`
	Stock       *int     `json:"stock"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
}

type ProductUpdateRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Brand       *string   `json:"brand"`
	Price       *float64  `json:"price"`
	Category    *string   `json:"category"`
	Image       *string   `json:"image"`
	Gallery     *[]string `json:"gallery"`
	Stock       *int      `json:"stock"`
	Sizes       *[]string `json:"sizes"`
	Colors      *[]string `json:"colors"`
}

func markStock(products []models.Product) []models.Product {
	for i := range products {
		products[i].InStock = products[i].Stock > 0
	}
	return products
}

func categoryExists(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (bool, error) {
	count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

/*
GET /api/products
- filters: category, brand, minPrice, maxPrice, search
- pagination: page, limit; total/pages computed independent of the window
- also returns the distinct non-empty brand set for the same filter
*/
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		query, err := parseProductListQuery(c.Query)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter, err := buildProductFilter(query)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		collection := db.Collection("products")

		total, err := collection.CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := collection.Find(ctx, filter, findOptions)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}
		products = markStock(products)

		rawBrands, err := collection.Distinct(ctx, "brand", filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		brands := make([]string, 0, len(rawBrands))
		for _, value := range rawBrands {
			if brand, ok := value.(string); ok && strings.TrimSpace(brand) != "" {
				brands = append(brands, brand)
			}
		}

		log.Printf("[%s] returning %d of %d products", route, len(products), total)
		respondList(c, products, len(products), total, page, totalPages(total, limit), gin.H{
			"brands": brands,
		})
	}
}

// GET /api/products/:id
func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		product.InStock = product.Stock > 0

		respondData(c, http.StatusOK, product)
	}
}

// POST /api/products (admin)
func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if *req.Price < 0 {
			respondError(c, http.StatusBadRequest, route, "price must not be negative")
			return
		}

		stock := 0
		if req.Stock != nil {
			if *req.Stock < 0 {
				respondError(c, http.StatusBadRequest, route, "stock must not be negative")
				return
			}
			stock = *req.Stock
		}

		categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.Category))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid category id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		exists, err := categoryExists(ctx, db, categoryID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !exists {
			respondError(c, http.StatusBadRequest, route, "category not found")
			return
		}

		now := time.Now()
		product := models.Product{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			Brand:       strings.TrimSpace(req.Brand),
			Price:       *req.Price,
			Category:    categoryID,
			Image:       strings.TrimSpace(req.Image),
			Gallery:     req.Gallery,
			Stock:       stock,
			Sizes:       req.Sizes,
			Colors:      req.Colors,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		result, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		product.ID = result.InsertedID.(primitive.ObjectID)
		product.InStock = product.Stock > 0

		log.Printf("[%s] product created: %s", route, product.Name)
		respondData(c, http.StatusCreated, product)
	}
}

// PUT /api/products/:id (admin)
func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		update := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Brand != nil {
			update["brand"] = strings.TrimSpace(*req.Brand)
		}
		if req.Price != nil {
			if *req.Price < 0 {
				respondError(c, http.StatusBadRequest, route, "price must not be negative")
				return
			}
			update["price"] = *req.Price
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				respondError(c, http.StatusBadRequest, route, "stock must not be negative")
				return
			}
			update["stock"] = *req.Stock
		}
		if req.Category != nil {
			categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(*req.Category))
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid category id")
				return
			}
			exists, err := categoryExists(ctx, db, categoryID)
			if err != nil {
				respondError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if !exists {
				respondError(c, http.StatusBadRequest, route, "category not found")
				return
			}
			update["category"] = categoryID
		}
		if req.Image != nil {
			update["image"] = strings.TrimSpace(*req.Image)
		}
		if req.Gallery != nil {
			update["gallery"] = *req.Gallery
		}
		if req.Sizes != nil {
			update["sizes"] = *req.Sizes
		}
		if req.Colors != nil {
			update["colors"] = *req.Colors
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		var updated models.Product
		err = db.Collection("products").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		updated.InStock = updated.Stock > 0

		respondData(c, http.StatusOK, updated)
	}
}

// DELETE /api/products/:id (admin). Local upload files referenced by the
// product are removed best-effort; data URIs have nothing on disk.
func DeleteProduct(db *mongo.Database, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		for _, path := range append([]string{product.Image}, product.Gallery...) {
			if err := safeDeleteUpload(uploadDir, path); err != nil {
				log.Printf("[%s] upload cleanup failed: %v", route, err)
			}
		}

		log.Printf("[%s] product deleted: %s", route, id.Hex())
		respondMessage(c, http.StatusOK, "product deleted")
	}
}
