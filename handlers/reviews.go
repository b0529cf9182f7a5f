package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/models"
)

func ListReviews(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cursor, err := database.DB.Collection("reviews").Find(
		ctx,
		bson.M{"productId": productID, "approved": true},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch reviews"})
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			continue
		}
		reviews = append(reviews, review)
	}

	return c.JSON(http.StatusOK, reviews)
}

func CreateReview(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	var req struct {
		Author string `json:"author"`
		Rating int    `json:"rating"`
		Body   string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Rating must be between 1 and 5"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if err := database.DB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Err(); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}

	review := models.Review{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		UserID:    userID,
		Author:    req.Author,
		Rating:    req.Rating,
		Body:      req.Body,
		CreatedAt: time.Now(),
	}

	if _, err := database.DB.Collection("reviews").InsertOne(ctx, review); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create review"})
	}

	return c.JSON(http.StatusCreated, review)
}
