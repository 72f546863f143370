package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/savichev/kickora/internal/service/booking"
	"github.com/savichev/kickora/internal/service/matches"
)

type MatchHandler struct {
	matches  matches.MatchUseCase
	bookings booking.BookingUseCase
}

func NewMatchHandler(matchSvc matches.MatchUseCase, bookingSvc booking.BookingUseCase) *MatchHandler {
	return &MatchHandler{matches: matchSvc, bookings: bookingSvc}
}

func (h *MatchHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/user/bookings", h.userBookings)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.POST("/:id/book", h.book)
	router.POST("/:id/cancel", h.cancel)
}

func (h *MatchHandler) list(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	activeOnly := c.DefaultQuery("active_only", "true") != "false"

	list, err := h.matches.List(c.Request.Context(), activeOnly, skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MatchHandler) get(c *gin.Context) {
	match, err := h.matches.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

func (h *MatchHandler) create(c *gin.Context) {
	var input matches.CreateMatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.matches.Create(c.Request.Context(), principalFrom(c), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

func (h *MatchHandler) update(c *gin.Context) {
	var input matches.UpdateMatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.matches.Update(c.Request.Context(), principalFrom(c), c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

func (h *MatchHandler) delete(c *gin.Context) {
	if err := h.matches.Delete(c.Request.Context(), principalFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "match deleted successfully"})
}

func (h *MatchHandler) book(c *gin.Context) {
	booked, err := h.bookings.CreateBooking(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booked)
}

func (h *MatchHandler) cancel(c *gin.Context) {
	refund, err := h.bookings.CancelBooking(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "booking cancelled successfully",
		"refund_amount": refund,
	})
}

func (h *MatchHandler) userBookings(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	list, err := h.bookings.ListUserBookings(c.Request.Context(), principalFrom(c), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
