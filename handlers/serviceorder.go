package handlers

import (
	"net/http"
	"strconv"

	"servicedesk/apperrors"
	"servicedesk/models"
	"servicedesk/services/serviceorder"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
)

// ServiceOrderHandler exposes service-order CRUD and the lifecycle actions.
type ServiceOrderHandler struct {
	Service serviceorder.ServiceOrderService
}

func NewServiceOrderHandler(svc serviceorder.ServiceOrderService) *ServiceOrderHandler {
	return &ServiceOrderHandler{Service: svc}
}

// CreateHandler handles POST /api/service-orders.
func (h *ServiceOrderHandler) CreateHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.CreateServiceOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.Service.Create(c.Request.Context(), me, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListHandler handles GET /api/service-orders. The listing is scoped to the
// caller's role before the query filters apply.
func (h *ServiceOrderHandler) ListHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	filter, err := orderFilterFromQuery(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	orders, err := h.Service.List(c.Request.Context(), me, filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func orderFilterFromQuery(c *gin.Context) (models.ServiceOrderFilter, error) {
	filter := models.ServiceOrderFilter{
		Status:          models.OrderStatus(c.Query("status")),
		Priority:        models.Priority(c.Query("priority")),
		EstablishmentID: c.Query("establishmentId"),
		TechnicianID:    c.Query("technicianId"),
	}
	var err error
	if filter.CreatedFrom, err = queryTime(c, "from"); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = queryTime(c, "to"); err != nil {
		return filter, err
	}
	if raw := c.Query("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return filter, apperrors.NewValidationError("invalid limit",
				apperrors.ValidationDetail{Field: "limit", Message: "must be a non-negative integer"})
		}
		filter.Limit = n
	}
	return filter, nil
}

func (h *ServiceOrderHandler) GetHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	order, err := h.Service.Get(c.Request.Context(), me, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateHandler handles PUT /api/service-orders/:id (descriptive fields only).
func (h *ServiceOrderHandler) UpdateHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.UpdateServiceOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.Service.UpdateDetails(c.Request.Context(), me, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *ServiceOrderHandler) DeleteHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), me, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service order deleted"})
}

func (h *ServiceOrderHandler) HistoryHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	entries, err := h.Service.History(c.Request.Context(), me, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// transition is the shape shared by every lifecycle endpoint: decode an
// optional body, run one service call, return the updated order.
func (h *ServiceOrderHandler) transition(c *gin.Context, body interface{}, run func(me models.User, id string) (*models.ServiceOrder, error)) {
	me, ok := actor(c)
	if !ok {
		return
	}
	if body != nil && !bindJSON(c, body) {
		return
	}
	order, err := run(me, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *ServiceOrderHandler) AssignHandler(c *gin.Context) {
	var req models.AssignRequest
	h.transition(c, &req, func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.Assign(c.Request.Context(), me, id, req.TechnicianID)
	})
}

func (h *ServiceOrderHandler) StartHandler(c *gin.Context) {
	h.transition(c, nil, func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.Start(c.Request.Context(), me, id)
	})
}

func (h *ServiceOrderHandler) PauseHandler(c *gin.Context) {
	var req models.ReasonRequest
	h.transition(c, &req, func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.Pause(c.Request.Context(), me, id, req.Reason)
	})
}

func (h *ServiceOrderHandler) ResumeHandler(c *gin.Context) {
	h.transition(c, nil, func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.Resume(c.Request.Context(), me, id)
	})
}

// CompleteHandler accepts an empty body; notes are optional.
func (h *ServiceOrderHandler) CompleteHandler(c *gin.Context) {
	var req models.CompleteRequest
	h.transition(c, optionalBody(c, &req), func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.Complete(c.Request.Context(), me, id, req.Notes)
	})
}

// ConfirmHandler accepts an empty body; rating and feedback are optional.
func (h *ServiceOrderHandler) ConfirmHandler(c *gin.Context) {
	var req models.ConfirmRequest
	h.transition(c, optionalBody(c, &req), func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.Confirm(c.Request.Context(), me, id, req.Rating, req.Feedback)
	})
}

func (h *ServiceOrderHandler) ReopenHandler(c *gin.Context) {
	var req models.ReasonRequest
	h.transition(c, &req, func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.Reopen(c.Request.Context(), me, id, req.Reason)
	})
}

func (h *ServiceOrderHandler) CancelHandler(c *gin.Context) {
	var req models.ReasonRequest
	h.transition(c, &req, func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.Cancel(c.Request.Context(), me, id, req.Reason)
	})
}

// StatusHandler handles PATCH /api/service-orders/:id/status, the generic
// transition addressed by target status.
func (h *ServiceOrderHandler) StatusHandler(c *gin.Context) {
	var req models.StatusChangeRequest
	h.transition(c, &req, func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.ChangeStatus(c.Request.Context(), me, id, req)
	})
}

func (h *ServiceOrderHandler) FeedbackHandler(c *gin.Context) {
	var req models.FeedbackRequest
	h.transition(c, &req, func(me models.User, id string) (*models.ServiceOrder, error) {
		return h.Service.SubmitFeedback(c.Request.Context(), me, id, *req.Rating, req.Feedback)
	})
}

// optionalBody returns dst when the request carries a body and nil otherwise,
// so that bodiless calls skip binding.
func optionalBody(c *gin.Context, dst interface{}) interface{} {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return dst
}
