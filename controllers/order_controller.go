package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/models"
	"github.com/piternoufi/quarry-orders-api/services"
	"github.com/piternoufi/quarry-orders-api/utils"
	"gorm.io/gorm"
)

// listOrdersLimit caps the bulk order fetch
const listOrdersLimit = 1000

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	ClientID         uint    `json:"client_id" binding:"required"`
	SiteID           *uint   `json:"site_id"`
	ProductID        uint    `json:"product_id" binding:"required"`
	Supplier         string  `json:"supplier" binding:"required,oneof=shifuli_har maavar_rabin"`
	QuantityTons     float64 `json:"quantity_tons" binding:"required,gt=0"`
	DeliveryDate     string  `json:"delivery_date" binding:"required"` // YYYY-MM-DD
	DeliveryWindow   string  `json:"delivery_window" binding:"required,oneof=morning afternoon"`
	DeliveryMethod   string  `json:"delivery_method" binding:"required,oneof=self external"`
	TruckAccessSpace bool    `json:"truck_access_space"`
	DeliveryNotes    *string `json:"delivery_notes"`
}

// CreateOrder handles POST /api/v1/orders - places a new order in pending
func CreateOrder(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	deliveryDate, err := time.ParseInLocation("2006-01-02", req.DeliveryDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "delivery_date must be formatted YYYY-MM-DD",
			},
		})
		return
	}

	db := config.GetDB()

	var client models.Client
	if err := db.First(&client, req.ClientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CLIENT_NOT_FOUND",
				"message": "Client not found",
			},
		})
		return
	}

	// Orders may be unlinked from a site; when a site is given it must
	// belong to the billed client
	regionType := models.RegionEilat
	if req.SiteID != nil {
		var site models.Site
		if err := db.First(&site, *req.SiteID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SITE_NOT_FOUND",
					"message": "Site not found",
				},
			})
			return
		}
		if site.ClientID != client.ID {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SITE_CLIENT_MISMATCH",
					"message": "Site does not belong to the selected client",
				},
			})
			return
		}
		regionType = site.RegionType
	}

	var product models.Product
	if err := db.First(&product, req.ProductID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	// Business validation: date window first, then quantity rules
	now := time.Now()
	if verr := utils.ValidateOrderDate(deliveryDate, req.DeliveryWindow, now); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    verr.Code,
				"message": verr.Message,
			},
		})
		return
	}
	if verr := utils.ValidateOrderQuantity(regionType, req.DeliveryMethod, req.QuantityTons); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    verr.Code,
				"message": verr.Message,
			},
		})
		return
	}

	orderNumber, err := services.AllocateOrderNumber(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to allocate order number",
			},
		})
		return
	}

	order := models.Order{
		OrderNumber:      orderNumber,
		ClientID:         client.ID,
		SiteID:           req.SiteID,
		ProductID:        product.ID,
		Supplier:         req.Supplier,
		QuantityTons:     req.QuantityTons,
		DeliveryDate:     deliveryDate,
		DeliveryWindow:   req.DeliveryWindow,
		DeliveryMethod:   req.DeliveryMethod,
		TruckAccessSpace: utils.DefaultTruckAccess(req.Supplier, req.DeliveryMethod, req.QuantityTons, req.TruckAccessSpace),
		DeliveryNotes:    req.DeliveryNotes,
		Status:           models.StatusPending,
		CreatedBy:        user.Email,
	}

	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	// Load relationships to return complete data
	if err := db.Preload("Client").Preload("Site").Preload("Product").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	// Best-effort side effects; never block the write
	services.NotifyOrderCreated(db, &order)
	services.RecordAudit(db, user, "Order", order.ID, models.AuditActionCreate, nil, order)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - clients see their own orders,
// managers see everything. An optional ?status= filter matches the effective
// status, so fully-delivered orders surface as completed whatever the raw
// status says.
func ListOrders(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Preload("Client").Preload("Site").Preload("Product").
		Order("created_at DESC").Limit(listOrdersLimit)

	if !user.CanManageOrders() {
		query = query.Where("created_by = ?", user.Email)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	if status := c.Query("status"); status != "" {
		filtered := make([]models.Order, 0, len(orders))
		for i := range orders {
			if orders[i].ComputeEffectiveStatus() == status {
				filtered = append(filtered, orders[i])
			}
		}
		orders = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	if !user.CanManageOrders() && order.CreatedBy != user.Email {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to view this order",
			},
		})
		return
	}

	attachDeliveryNoteURL(order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrderRequest represents the editable commercial facts of a pending order
type UpdateOrderRequest struct {
	SiteID           *uint    `json:"site_id"`
	ProductID        *uint    `json:"product_id"`
	QuantityTons     *float64 `json:"quantity_tons" binding:"omitempty,gt=0"`
	DeliveryDate     *string  `json:"delivery_date"`
	DeliveryWindow   *string  `json:"delivery_window" binding:"omitempty,oneof=morning afternoon"`
	DeliveryMethod   *string  `json:"delivery_method" binding:"omitempty,oneof=self external"`
	TruckAccessSpace *bool    `json:"truck_access_space"`
	DeliveryNotes    *string  `json:"delivery_notes"`
}

// UpdateOrder handles PUT /api/v1/orders/:id - edits a pending order.
// Clients may only edit their own orders; managers may edit any.
func UpdateOrder(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	if !user.CanManageOrders() && order.CreatedBy != user.Email {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to update this order",
			},
		})
		return
	}

	if order.ComputeEffectiveStatus() != models.StatusPending {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_EDITABLE",
				"message": "Only pending orders can be edited",
			},
		})
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	before := *order

	if req.SiteID != nil {
		var site models.Site
		if err := db.First(&site, *req.SiteID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SITE_NOT_FOUND",
					"message": "Site not found",
				},
			})
			return
		}
		if site.ClientID != order.ClientID {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SITE_CLIENT_MISMATCH",
					"message": "Site does not belong to the order's client",
				},
			})
			return
		}
		order.SiteID = req.SiteID
	}
	if req.ProductID != nil {
		var product models.Product
		if err := db.First(&product, *req.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PRODUCT_NOT_FOUND",
					"message": "Product not found",
				},
			})
			return
		}
		order.ProductID = *req.ProductID
	}
	if req.QuantityTons != nil {
		order.QuantityTons = *req.QuantityTons
	}
	if req.DeliveryDate != nil {
		parsed, err := time.ParseInLocation("2006-01-02", *req.DeliveryDate, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "delivery_date must be formatted YYYY-MM-DD",
				},
			})
			return
		}
		order.DeliveryDate = parsed
	}
	if req.DeliveryWindow != nil {
		order.DeliveryWindow = *req.DeliveryWindow
	}
	if req.DeliveryMethod != nil {
		order.DeliveryMethod = *req.DeliveryMethod
	}
	if req.DeliveryNotes != nil {
		order.DeliveryNotes = req.DeliveryNotes
	}

	// Re-run business validation against the merged state
	regionType := models.RegionEilat
	if order.SiteID != nil {
		var site models.Site
		if err := db.First(&site, *order.SiteID).Error; err == nil {
			regionType = site.RegionType
		}
	}
	now := time.Now()
	if verr := utils.ValidateOrderDate(order.DeliveryDate, order.DeliveryWindow, now); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    verr.Code,
				"message": verr.Message,
			},
		})
		return
	}
	if verr := utils.ValidateOrderQuantity(regionType, order.DeliveryMethod, order.QuantityTons); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    verr.Code,
				"message": verr.Message,
			},
		})
		return
	}

	requested := order.TruckAccessSpace
	if req.TruckAccessSpace != nil {
		requested = *req.TruckAccessSpace
	}
	order.TruckAccessSpace = utils.DefaultTruckAccess(order.Supplier, order.DeliveryMethod, order.QuantityTons, requested)

	if err := db.Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	services.RecordAudit(db, user, "Order", order.ID, models.AuditActionUpdate, before, order)

	reloadOrder(c, order)
}

// UpdateOrderStatusRequest carries an explicit status transition
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status - explicit manager
// transitions through the order state machine
func UpdateOrderStatus(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can change order status") {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if !models.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Unknown order status",
			},
		})
		return
	}

	if !models.CanTransition(order.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": "Status transition not allowed from " + order.Status + " to " + req.Status,
			},
		})
		return
	}

	db := config.GetDB()
	before := *order
	order.Status = req.Status

	if err := db.Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order status",
			},
		})
		return
	}

	services.NotifyStatusChanged(db, order, req.Status)
	services.RecordAudit(db, user, "Order", order.ID, models.AuditActionStatusChange, before, order)

	reloadOrder(c, order)
}

// RecordDeliveryRequest carries the facts of a (possibly partial) delivery
type RecordDeliveryRequest struct {
	DeliveredQuantityTons float64 `json:"delivered_quantity_tons" binding:"required"`
	DeliveryNoteNumber    string  `json:"delivery_note_number" binding:"required"`
	DriverName            string  `json:"driver_name"`
	DeliveryNotes         *string `json:"delivery_notes"`
}

// RecordOrderDelivery handles PUT /api/v1/orders/:id/delivery - accumulates
// delivered tonnage against the order. The running total is capped at the
// ordered quantity; reaching it flags the order delivered. Raw status is not
// touched, the effective status carries completion.
func RecordOrderDelivery(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can record deliveries") {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	var req RecordDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if verr := utils.ValidateDeliveryUpdate(req.DeliveryNoteNumber, req.DeliveredQuantityTons); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    verr.Code,
				"message": verr.Message,
			},
		})
		return
	}

	if order.ComputeEffectiveStatus() == models.StatusCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_ALREADY_DELIVERED",
				"message": "Order is already fully delivered",
			},
		})
		return
	}

	if order.Status == models.StatusPending || order.Status == models.StatusRejected {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_APPROVED",
				"message": "Deliveries can only be recorded against approved orders",
			},
		})
		return
	}

	db := config.GetDB()
	before := *order

	order.RecordDelivery(req.DeliveredQuantityTons, req.DeliveryNoteNumber, req.DriverName, req.DeliveryNotes, time.Now())

	if err := db.Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record delivery",
			},
		})
		return
	}

	if order.IsDelivered {
		services.NotifyOrderDelivered(db, order)
	}
	services.RecordAudit(db, user, "Order", order.ID, models.AuditActionUpdate, before, order)

	reloadOrder(c, order)
}

// ConfirmOrderDelivery handles PUT /api/v1/orders/:id/confirm - the client
// acknowledges the delivery. One-way gate: only after the order is delivered,
// and only by the client who placed it.
func ConfirmOrderDelivery(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	if order.CreatedBy != user.Email {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the ordering client can confirm delivery",
			},
		})
		return
	}

	if !order.IsDelivered {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_DELIVERED",
				"message": "Delivery must be recorded before it can be confirmed",
			},
		})
		return
	}

	db := config.GetDB()
	order.IsClientConfirmed = true

	if err := db.Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to confirm delivery",
			},
		})
		return
	}

	reloadOrder(c, order)
}

// RateOrderRequest carries the client's rating of a confirmed delivery
type RateOrderRequest struct {
	Rating        int     `json:"rating" binding:"required,min=1,max=5"`
	RatingComment *string `json:"rating_comment"`
}

// RateOrder handles PUT /api/v1/orders/:id/rating - only after the client has
// confirmed the delivery
func RateOrder(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	if order.CreatedBy != user.Email {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only the ordering client can rate the delivery",
			},
		})
		return
	}

	if !order.IsClientConfirmed {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_CONFIRMED",
				"message": "Delivery must be confirmed before it can be rated",
			},
		})
		return
	}

	var req RateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Rating must be between 1 and 5",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	now := time.Now()
	order.Rating = &req.Rating
	order.RatingComment = req.RatingComment
	order.RatedAt = &now

	if err := db.Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save rating",
			},
		})
		return
	}

	reloadOrder(c, order)
}

// DuplicateOrderRequest provides the new delivery slot for a reorder
type DuplicateOrderRequest struct {
	DeliveryDate   string `json:"delivery_date" binding:"required"` // YYYY-MM-DD
	DeliveryWindow string `json:"delivery_window" binding:"required,oneof=morning afternoon"`
}

// DuplicateOrder handles POST /api/v1/orders/:id/duplicate - creates a fresh
// pending order copying product, site, supplier, quantity and delivery method
// from a completed order. Not a state transition; the source stays terminal.
func DuplicateOrder(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	source, ok := findOrder(c)
	if !ok {
		return
	}

	if !user.CanManageOrders() && source.CreatedBy != user.Email {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to duplicate this order",
			},
		})
		return
	}

	if source.ComputeEffectiveStatus() != models.StatusCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_COMPLETED",
				"message": "Only completed orders can be duplicated",
			},
		})
		return
	}

	var req DuplicateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	deliveryDate, err := time.ParseInLocation("2006-01-02", req.DeliveryDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "delivery_date must be formatted YYYY-MM-DD",
			},
		})
		return
	}

	if verr := utils.ValidateOrderDate(deliveryDate, req.DeliveryWindow, time.Now()); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    verr.Code,
				"message": verr.Message,
			},
		})
		return
	}

	db := config.GetDB()

	orderNumber, err := services.AllocateOrderNumber(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to allocate order number",
			},
		})
		return
	}

	duplicate := models.Order{
		OrderNumber:      orderNumber,
		ClientID:         source.ClientID,
		SiteID:           source.SiteID,
		ProductID:        source.ProductID,
		Supplier:         source.Supplier,
		QuantityTons:     source.QuantityTons,
		DeliveryDate:     deliveryDate,
		DeliveryWindow:   req.DeliveryWindow,
		DeliveryMethod:   source.DeliveryMethod,
		TruckAccessSpace: source.TruckAccessSpace,
		Status:           models.StatusPending,
		CreatedBy:        user.Email,
	}

	if err := db.Create(&duplicate).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	if err := db.Preload("Client").Preload("Site").Preload("Product").First(&duplicate, duplicate.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	services.NotifyOrderCreated(db, &duplicate)
	services.RecordAudit(db, user, "Order", duplicate.ID, models.AuditActionCreate, nil, duplicate)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    duplicate,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id - manager only. The order is
// soft-deleted; its notifications and messages are cleaned up best-effort.
func DeleteOrder(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can delete orders") {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	db := config.GetDB()
	before := *order

	if err := db.Delete(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	// Best-effort cascade; partial failure is accepted
	db.Where("order_number = ?", order.OrderNumber).Delete(&models.Notification{})
	db.Where("order_id = ?", order.ID).Delete(&models.Message{})

	services.RecordAudit(db, user, "Order", order.ID, models.AuditActionSoftDelete, before, nil)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Order deleted",
		},
	})
}

// UploadDeliveryNote handles POST /api/v1/orders/:id/delivery-note - attaches
// a scanned delivery note document to the order (manager only)
func UploadDeliveryNote(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can upload delivery notes") {
		return
	}

	order, ok := findOrder(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A delivery note file is required",
			},
		})
		return
	}

	documentService := services.GetDocumentService()
	s3Key, err := documentService.UploadDeliveryNote(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to upload delivery note",
			},
		})
		return
	}

	// Replace a previously attached scan best-effort
	if order.DeliveryNoteS3Key != nil && *order.DeliveryNoteS3Key != "" {
		_ = documentService.DeleteDeliveryNote(*order.DeliveryNoteS3Key)
	}

	db := config.GetDB()
	order.DeliveryNoteS3Key = &s3Key

	if err := db.Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save delivery note reference",
			},
		})
		return
	}

	attachDeliveryNoteURL(order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// findOrder loads the order referenced by the :id path parameter, writing the
// 404 response itself when missing
func findOrder(c *gin.Context) (*models.Order, bool) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Order ID is required",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Client").Preload("Site").Preload("Product").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order not found",
				},
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to fetch order",
				},
			})
		}
		return nil, false
	}

	return &order, true
}

// reloadOrder re-reads the order with associations and writes the 200 response
func reloadOrder(c *gin.Context, order *models.Order) {
	db := config.GetDB()
	var fresh models.Order
	if err := db.Preload("Client").Preload("Site").Preload("Product").First(&fresh, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	attachDeliveryNoteURL(&fresh)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    fresh,
	})
}

// attachDeliveryNoteURL populates the computed presigned URL when a scan is attached
func attachDeliveryNoteURL(order *models.Order) {
	if order.DeliveryNoteS3Key == nil || *order.DeliveryNoteS3Key == "" {
		return
	}
	documentService := services.GetDocumentService()
	if documentService == nil {
		return
	}
	if url, err := documentService.GetDeliveryNoteURL(*order.DeliveryNoteS3Key); err == nil && url != "" {
		order.DeliveryNoteURL = &url
	}
}
