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

	"backend/internal/middleware"
	"backend/internal/models"
)

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	ShippingAddress models.ShippingAddress   `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

/*
POST /api/orders
- snapshots name/price from the live product for each line item
- stock is not decremented here; inventory is managed by admins
*/
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if len(req.Items) == 0 {
			respondError(c, http.StatusBadRequest, route, "at least one item is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid productId")
				return
			}

			var product models.Product
			err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusBadRequest, route, "product not found: "+productID.Hex())
				return
			}
			if err != nil {
				respondError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
				Size:      strings.TrimSpace(item.Size),
				Color:     strings.TrimSpace(item.Color),
			})
		}

		itemsPrice, taxPrice, shippingPrice, totalPrice := orderTotals(items)

		now := time.Now()
		order := models.Order{
			UserID:          user.ID,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
			ItemsPrice:      itemsPrice,
			TaxPrice:        taxPrice,
			ShippingPrice:   shippingPrice,
			TotalPrice:      totalPrice,
			Status:          models.OrderPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		result, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] insert failed:", err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		order.ID = result.InsertedID.(primitive.ObjectID)

		log.Println("[ORDER] [INFO] order created for user:", user.ID.Hex())
		respondData(c, http.StatusCreated, order)
	}
}

/*
GET /api/orders
- admins see all orders, customers only their own
*/
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		filter := bson.M{}
		if !user.IsAdmin() {
			filter["user"] = user.ID
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		respondList(c, orders, len(orders), total, page, totalPages(total, limit), nil)
	}
}

/*
GET /api/orders/:id
- owner or admin only; others get 403
*/
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !user.IsAdmin() && order.UserID != user.ID {
			respondError(c, http.StatusForbidden, route, "not allowed to view this order")
			return
		}

		respondData(c, http.StatusOK, order)
	}
}

/*
PUT /api/orders/:id/status (admin)
- only transitions allowed by the order state machine are accepted
- entering paid/delivered stamps paidAt/deliveredAt; stamps are never cleared
*/
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/status"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		status := strings.ToLower(strings.TrimSpace(req.Status))
		if !models.KnownOrderStatus(status) {
			respondError(c, http.StatusBadRequest, route, "unknown status: "+req.Status)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !models.CanTransitionOrder(order.Status, status) {
			respondError(c, http.StatusBadRequest, route,
				"illegal status transition: "+order.Status+" -> "+status)
			return
		}

		now := time.Now()
		update := bson.M{
			"status":    status,
			"updatedAt": now,
		}
		if status == models.OrderPaid && order.PaidAt == nil {
			update["paidAt"] = now
		}
		if status == models.OrderDelivered && order.DeliveredAt == nil {
			update["deliveredAt"] = now
		}

		var updated models.Order
		err = db.Collection("orders").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] order %s: %s -> %s", route, id.Hex(), order.Status, status)
		respondData(c, http.StatusOK, updated)
	}
}

// DELETE /api/orders/:id (admin)
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/orders/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}

		respondMessage(c, http.StatusOK, "order deleted")
	}
}
