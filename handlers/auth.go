package handlers

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/amberlane-studio/amberlane-backend-go/database"
	"github.com/amberlane-studio/amberlane-backend-go/models"
	"github.com/amberlane-studio/amberlane-backend-go/utils"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid email format"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Password must be at least 8 characters"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	users := database.DB.Collection("users")
	if err := users.FindOne(ctx, bson.M{"email": req.Email}).Err(); err == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process password"})
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      models.RoleCustomer,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// A role grant left for this email before the account existed is consumed
	// here, so owners can promote staff before they've signed up.
	var pending models.RoleAssignment
	err = database.DB.Collection("role_assignments").FindOneAndUpdate(
		ctx,
		bson.M{"email": req.Email, "consumed": false},
		bson.M{"$set": bson.M{"consumed": true}},
	).Decode(&pending)
	if err == nil {
		user.Role = pending.Role
	}

	if _, err := users.InsertOne(ctx, user); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}

	token, err := utils.GenerateSessionToken(user.ID.Hex(), user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(
		ctx,
		bson.M{"email": strings.ToLower(strings.TrimSpace(req.Email))},
	).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	token, err := utils.GenerateSessionToken(user.ID.Hex(), user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user, "token": token})
}
