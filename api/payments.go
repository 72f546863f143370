package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/savichev/kickora/internal/service/payments"
)

type PaymentHandler struct {
	service payments.PaymentUseCase
}

func NewPaymentHandler(service payments.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/user/payments", h.userPayments)
	router.GET("/:id", h.get)
	router.POST("/:id/process", h.process)
}

func (h *PaymentHandler) create(c *gin.Context) {
	var input payments.CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.service.Create(c.Request.Context(), principalFrom(c), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) get(c *gin.Context) {
	payment, err := h.service.Get(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) process(c *gin.Context) {
	payment, err := h.service.Process(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "payment processed successfully",
		"transaction_id": payment.TransactionID,
		"status":         payment.Status,
	})
}

func (h *PaymentHandler) userPayments(c *gin.Context) {
	list, err := h.service.ListUserPayments(c.Request.Context(), principalFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
