package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/savichev/kickora/internal/domain"
)

const principalKey = "principal"

// AuthMiddleware materializes the principal resolved by the upstream
// identity service. The gateway strips these headers from client traffic
// and sets them itself, so their presence implies an authenticated caller.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Set(principalKey, domain.Principal{
			UserID:   userID,
			IsActive: c.GetHeader("X-User-Active") == "true",
			IsAdmin:  c.GetHeader("X-User-Admin") == "true",
		})
		c.Next()
	}
}

func principalFrom(c *gin.Context) domain.Principal {
	p, _ := c.Get(principalKey)
	principal, _ := p.(domain.Principal)
	return principal
}

// writeError maps the domain taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMatchNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMatchInactive),
		errors.Is(err, domain.ErrMatchFull),
		errors.Is(err, domain.ErrAlreadyBooked),
		errors.Is(err, domain.ErrMatchHasBookings),
		errors.Is(err, domain.ErrDuplicatePayment):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUserInactive):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
