package controllers

import (
	"net/http"

	"spa-booking-backend/cart"
	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"
	"spa-booking-backend/services"
	"spa-booking-backend/utils"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	Carts   *services.CartService
	History *services.HistoryService
	Idem    repository.IdempotencyStore
	Log     *config.Logger
}

type AddLineInput struct {
	ServiceID string          `json:"serviceId" binding:"required"`
	Quantity  int             `json:"qty" binding:"required,min=1,max=99"`
	Options   *models.Options `json:"options"`
}

type UpdateLineInput struct {
	Quantity *int `json:"qty" binding:"required,max=99"`
}

type ToggleAreaInput struct {
	Kind cart.Kind   `json:"kind" binding:"required,oneof=focus avoid"`
	Area models.Area `json:"area" binding:"required,area"`
}

type RestoreInput struct {
	OrderID string `json:"orderId" binding:"required"`
}

type CheckoutInput struct {
	Customer      CustomerInput        `json:"customer"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
	Currency      models.Currency      `json:"currency"`
	AmountPaid    *int64               `json:"amountPaid"`
	Lang          string               `json:"lang"`
}

type lineView struct {
	ID          string         `json:"id"`
	ServiceID   string         `json:"serviceId"`
	Name        string         `json:"name"`
	Qty         int            `json:"qty"`
	PriceVND    int64          `json:"priceVND"`
	PriceUSD    int64          `json:"priceUSD"`
	Duration    int            `json:"duration"`
	SubtotalVND int64          `json:"subtotalVND"`
	SubtotalUSD int64          `json:"subtotalUSD"`
	Options     models.Options `json:"options"`
}

type cartView struct {
	Lines  []lineView   `json:"lines"`
	Groups []cart.Group `json:"groups"`
	Totals cart.Totals  `json:"totals"`
}

func renderCart(ct *cart.Cart, lang string) cartView {
	v := cartView{
		Lines:  make([]lineView, 0, ct.Len()),
		Groups: ct.GroupByVariant(),
		Totals: ct.Totals(),
	}
	for _, l := range ct.Lines {
		v.Lines = append(v.Lines, lineView{
			ID:          l.ID,
			ServiceID:   l.Service.ID,
			Name:        l.Service.Name.In(lang),
			Qty:         l.Quantity,
			PriceVND:    l.Service.PriceVND,
			PriceUSD:    l.Service.PriceUSD,
			Duration:    l.Service.Duration,
			SubtotalVND: l.SubtotalVND(),
			SubtotalUSD: l.SubtotalUSD(),
			Options:     l.Options,
		})
	}
	return v
}

func (cc *CartController) respond(c *gin.Context, ct *cart.Cart, err error) {
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": renderCart(ct, requestLang(c))})
}

func (cc *CartController) GetCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	ct, err := cc.Carts.Get(c.Request.Context(), sid)
	cc.respond(c, ct, err)
}

// AddLine always appends a new line, even for a service already in the cart
func (cc *CartController) AddLine(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var input AddLineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ct, lineID, err := cc.Carts.AddLine(c.Request.Context(), sid, input.ServiceID, input.Quantity, input.Options)
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "lineId": lineID, "cart": renderCart(ct, requestLang(c))})
}

// UpdateLine sets the quantity; zero or less removes the line
func (cc *CartController) UpdateLine(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var input UpdateLineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ct, err := cc.Carts.UpdateLine(c.Request.Context(), sid, c.Param("lineId"), *input.Quantity)
	cc.respond(c, ct, err)
}

func (cc *CartController) UpdateLineOptions(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var patch models.OptionsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ct, err := cc.Carts.UpdateLineOptions(c.Request.Context(), sid, c.Param("lineId"), patch)
	cc.respond(c, ct, err)
}

func (cc *CartController) UpdateAllOptions(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var patch models.OptionsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ct, err := cc.Carts.UpdateAllOptions(c.Request.Context(), sid, patch)
	cc.respond(c, ct, err)
}

func (cc *CartController) ToggleArea(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var input ToggleAreaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	ct, err := cc.Carts.ToggleArea(c.Request.Context(), sid, c.Param("lineId"), input.Kind, input.Area)
	cc.respond(c, ct, err)
}

func (cc *CartController) RemoveLine(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	ct, err := cc.Carts.RemoveLine(c.Request.Context(), sid, c.Param("lineId"))
	cc.respond(c, ct, err)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	if err := cc.Carts.Clear(c.Request.Context(), sid); err != nil {
		respondError(c, cc.Log, err)
		return
	}
	cc.respond(c, cart.New(), nil)
}

// Restore copies a past order into the cart at today's prices
func (cc *CartController) Restore(c *gin.Context) {
	claims, ok := utils.SessionFromContext(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Session required")
		return
	}
	var input RestoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	owner := ""
	if claims.Customer != nil {
		owner = claims.Customer.Email
	}
	ct, skipped, err := cc.History.Restore(c.Request.Context(), claims.SessionID, owner, input.OrderID)
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	if skipped == nil {
		skipped = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "skipped": skipped, "cart": renderCart(ct, requestLang(c))})
}

// Checkout submits the session cart. Customer fields missing from the body
// fall back to the session's customer.
func (cc *CartController) Checkout(c *gin.Context) {
	claims, ok := utils.SessionFromContext(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Session required")
		return
	}
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	customer := input.Customer.snapshot()
	if claims.Customer != nil {
		customer = mergeCustomer(customer, *claims.Customer)
	}
	lang := input.Lang
	if lang == "" {
		lang = claims.Lang
	}

	replyIdempotent(c, cc.Idem, cc.Log, http.StatusCreated, func() (any, error) {
		res, err := cc.Carts.Checkout(c.Request.Context(), claims.SessionID, services.CheckoutRequest{
			Customer:      customer,
			Note:          input.Customer.Note,
			PaymentMethod: input.PaymentMethod,
			Currency:      input.Currency,
			AmountPaid:    input.AmountPaid,
			Lang:          utils.ResolveLang(lang, c.GetHeader("Accept-Language")),
		})
		if err != nil {
			return nil, err
		}
		return orderResponse(res), nil
	})
}

func mergeCustomer(in, fallback models.CustomerSnapshot) models.CustomerSnapshot {
	if in.Name == "" {
		in.Name = fallback.Name
	}
	if in.Email == "" {
		in.Email = fallback.Email
	}
	if in.Phone == "" {
		in.Phone = fallback.Phone
	}
	if in.Gender == "" {
		in.Gender = fallback.Gender
	}
	return in
}
