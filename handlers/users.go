package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/models"
)

func GetUserProfile(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

func UpdateUserProfile(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "User not authenticated"})
	}

	var req struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.PhoneNumber != "" {
		update["phoneNumber"] = req.PhoneNumber
	}

	_, err := database.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update profile"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Profile updated"})
}

// AssignRole lets an admin grant a role to an email, registered or not.
// Registered users are updated in place; unknown emails get a pending
// assignment consumed at registration.
func AssignRole(c echo.Context) error {
	var req struct {
		Email string      `json:"email"`
		Role  models.Role `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	switch req.Role {
	case models.RoleCustomer, models.RoleAdmin, models.RoleOwner:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown role"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	res, err := database.DB.Collection("users").UpdateOne(
		ctx,
		bson.M{"email": req.Email},
		bson.M{"$set": bson.M{"role": req.Role, "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to assign role"})
	}
	if res.MatchedCount > 0 {
		return c.JSON(http.StatusOK, map[string]string{"message": "Role updated"})
	}

	assignment := models.RoleAssignment{
		Email:      req.Email,
		Role:       req.Role,
		AssignedBy: actor(c),
		CreatedAt:  time.Now(),
	}
	if _, err := database.DB.Collection("role_assignments").InsertOne(ctx, assignment); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to record assignment"})
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Role assignment pending registration"})
}
