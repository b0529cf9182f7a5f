package handlers

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"

	"github.com/amberlane-studio/amberlane-backend-go/mailer"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactForm acknowledges a contact-form submission by email. Fire and
// forget: the relay outcome is logged, not surfaced.
func ContactForm(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid email format"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
	}

	mailer.Dispatch(mailer.TemplateContactAck, req.Email,
		"We received your message", map[string]interface{}{
			"Name": req.Name,
		})

	return c.JSON(http.StatusOK, map[string]string{"message": "Thanks! We'll be in touch."})
}
