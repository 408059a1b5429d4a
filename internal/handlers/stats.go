package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"backend/internal/models"
)

type statusCount struct {
	Status string `bson:"_id" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

// recentOrder joins the purchaser's name and email onto the order summary.
type recentOrder struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UserName   string             `bson:"userName" json:"userName"`
	UserEmail  string             `bson:"userEmail" json:"userEmail"`
}

/*
GET /api/stats (admin)
- point-in-time snapshot, recomputed on every call; the independent queries
  run in parallel
*/
func GetStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/stats"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var (
			productCount  int64
			categoryCount int64
			orderCount    int64
			userCount     int64
			recentUsers   []models.User
			recentOrders  []recentOrder
			byStatus      []statusCount
			revenue       float64
			lowStock      []models.Product
		)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			var err error
			productCount, err = db.Collection("products").CountDocuments(gctx, bson.M{})
			return err
		})

		g.Go(func() error {
			var err error
			categoryCount, err = db.Collection("categories").CountDocuments(gctx, bson.M{"parent": nil})
			return err
		})

		g.Go(func() error {
			var err error
			orderCount, err = db.Collection("orders").CountDocuments(gctx, bson.M{})
			return err
		})

		g.Go(func() error {
			var err error
			userCount, err = db.Collection("users").CountDocuments(gctx, bson.M{})
			return err
		})

		g.Go(func() error {
			opts := options.Find().
				SetSort(bson.D{{Key: "createdAt", Value: -1}}).
				SetLimit(5).
				SetProjection(bson.M{"passwordHash": 0})
			cursor, err := db.Collection("users").Find(gctx, bson.M{}, opts)
			if err != nil {
				return err
			}
			defer cursor.Close(gctx)
			recentUsers = make([]models.User, 0, 5)
			return cursor.All(gctx, &recentUsers)
		})

		g.Go(func() error {
			pipeline := mongo.Pipeline{
				{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
				{{Key: "$limit", Value: 5}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "users"},
					{Key: "localField", Value: "user"},
					{Key: "foreignField", Value: "_id"},
					{Key: "as", Value: "purchaser"},
				}}},
				{{Key: "$unwind", Value: bson.D{
					{Key: "path", Value: "$purchaser"},
					{Key: "preserveNullAndEmptyArrays", Value: true},
				}}},
				{{Key: "$project", Value: bson.D{
					{Key: "totalPrice", Value: 1},
					{Key: "status", Value: 1},
					{Key: "createdAt", Value: 1},
					{Key: "userName", Value: "$purchaser.name"},
					{Key: "userEmail", Value: "$purchaser.email"},
				}}},
			}
			cursor, err := db.Collection("orders").Aggregate(gctx, pipeline)
			if err != nil {
				return err
			}
			defer cursor.Close(gctx)
			recentOrders = make([]recentOrder, 0, 5)
			return cursor.All(gctx, &recentOrders)
		})

		g.Go(func() error {
			pipeline := mongo.Pipeline{
				{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: "$status"},
					{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
				}}},
				{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
			}
			cursor, err := db.Collection("orders").Aggregate(gctx, pipeline)
			if err != nil {
				return err
			}
			defer cursor.Close(gctx)
			byStatus = make([]statusCount, 0)
			return cursor.All(gctx, &byStatus)
		})

		g.Go(func() error {
			pipeline := mongo.Pipeline{
				{{Key: "$match", Value: bson.D{
					{Key: "status", Value: bson.D{{Key: "$ne", Value: models.OrderCancelled}}},
				}}},
				{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: nil},
					{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
				}}},
			}
			cursor, err := db.Collection("orders").Aggregate(gctx, pipeline)
			if err != nil {
				return err
			}
			defer cursor.Close(gctx)

			var results []struct {
				Revenue float64 `bson:"revenue"`
			}
			if err := cursor.All(gctx, &results); err != nil {
				return err
			}
			if len(results) > 0 {
				revenue = results[0].Revenue
			}
			return nil
		})

		g.Go(func() error {
			opts := options.Find().
				SetSort(bson.D{{Key: "stock", Value: 1}}).
				SetLimit(5)
			cursor, err := db.Collection("products").Find(gctx, bson.M{}, opts)
			if err != nil {
				return err
			}
			defer cursor.Close(gctx)
			lowStock = make([]models.Product, 0, 5)
			if err := cursor.All(gctx, &lowStock); err != nil {
				return err
			}
			lowStock = markStock(lowStock)
			return nil
		})

		if err := g.Wait(); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"counts": gin.H{
				"products":   productCount,
				"categories": categoryCount,
				"orders":     orderCount,
				"users":      userCount,
			},
			"recentUsers":    recentUsers,
			"recentOrders":   recentOrders,
			"ordersByStatus": byStatus,
			"revenue":        revenue,
			"lowStock":       lowStock,
		})
	}
}
