// controllers/orders.go
package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"
	"spa-booking-backend/services"
	"spa-booking-backend/utils"

	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

type OrderController struct {
	Orders  *services.OrderService
	History *services.HistoryService
	Idem    repository.IdempotencyStore
	Log     *config.Logger
}

// CustomerInput defines the customer block of an order
type CustomerInput struct {
	Name   string `json:"name"`
	Phone  string `json:"phone" binding:"omitempty,phone"`
	Email  string `json:"email" binding:"omitempty,email"`
	Gender string `json:"gender"`
	Note   string `json:"note"`
}

func (in CustomerInput) snapshot() models.CustomerSnapshot {
	return models.CustomerSnapshot{Name: in.Name, Phone: in.Phone, Email: in.Email, Gender: in.Gender}
}

// CreateOrderInput defines the expected JSON structure for submitting an order.
// TotalVND is advisory; the server always recomputes it.
type CreateOrderInput struct {
	Customer      CustomerInput        `json:"customer"`
	Items         []services.OrderItem `json:"items"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	AmountPaid    *int64               `json:"amountPaid" binding:"omitempty,min=0"`
	Currency      models.Currency      `json:"currency"`
	TotalVND      *int64               `json:"totalVND"`
	Lang          string               `json:"lang"`
}

func (in CreateOrderInput) request(c *gin.Context) services.OrderRequest {
	return services.OrderRequest{
		Customer:       in.Customer.snapshot(),
		Note:           in.Customer.Note,
		Items:          in.Items,
		PaymentMethod:  in.PaymentMethod,
		Currency:       in.Currency,
		AmountPaid:     in.AmountPaid,
		ClientTotalVND: in.TotalVND,
		Lang:           utils.ResolveLang(in.Lang, c.GetHeader("Accept-Language")),
	}
}

type OrderResponse struct {
	Success   bool              `json:"success"`
	BillNum   string            `json:"billNum"`
	BookingID string            `json:"bookingId"`
	TotalVND  int64             `json:"totalVND"`
	TotalUSD  int64             `json:"totalUSD"`
	Change    int64             `json:"change"`
	Estimate  services.Estimate `json:"estimate"`
}

func orderResponse(res *services.OrderResult) OrderResponse {
	return OrderResponse{
		Success:   true,
		BillNum:   res.Booking.BillNumber,
		BookingID: res.Booking.ID.String(),
		TotalVND:  res.Booking.TotalVND,
		TotalUSD:  res.Booking.TotalUSD,
		Change:    res.Booking.Change,
		Estimate:  res.Estimate,
	}
}

// replyIdempotent writes fn's result, replaying the stored response when the
// request repeats an Idempotency-Key.
func replyIdempotent(c *gin.Context, store repository.IdempotencyStore, log *config.Logger, status int, fn func() (any, error)) {
	key := strings.TrimSpace(c.GetHeader(idempotencyHeader))
	if key != "" {
		key = c.FullPath() + ":" + key
	}
	body, replayed, err := services.Idempotent(c.Request.Context(), store, log, key, func() ([]byte, error) {
		v, err := fn()
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		respondError(c, log, err)
		return
	}
	if replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

// CreateOrder submits an order; totals and the bill number are assigned here
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	replyIdempotent(c, oc.Idem, oc.Log, http.StatusCreated, func() (any, error) {
		res, err := oc.Orders.Submit(c.Request.Context(), input.request(c))
		if err != nil {
			return nil, err
		}
		return orderResponse(res), nil
	})
}

// CreateBooking is the alternate submission path with its own response shape
func (oc *OrderController) CreateBooking(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	replyIdempotent(c, oc.Idem, oc.Log, http.StatusCreated, func() (any, error) {
		res, err := oc.Orders.Submit(c.Request.Context(), input.request(c))
		if err != nil {
			return nil, err
		}
		return gin.H{
			"success": true,
			"message": "Booking created",
			"data": gin.H{
				"bookingId": res.Booking.ID.String(),
				"billNum":   res.Booking.BillNumber,
				"totalVND":  res.Booking.TotalVND,
				"items":     res.Booking.Lines,
			},
		}, nil
	})
}

func (oc *OrderController) ListOrders(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "email is required")
		return
	}
	orders, err := oc.History.ListOrders(c.Request.Context(), email, requestLang(c))
	if err != nil {
		respondError(c, oc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
