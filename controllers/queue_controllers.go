package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/store"
	"github.com/yeremiapane/queue-app/utils"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

var (
	errInternal           = errors.New("Internal server error")
	errInvalidBody        = errors.New("Invalid request body")
	errQueueNameRequired  = errors.New("Queue name is required")
	errNameRequired       = errors.New("Name is required")
	errCustomerIDRequired = errors.New("Customer ID is required")
	errIsActiveRequired   = errors.New("isActive is required")
	errActivityDisabled   = errors.New("Activity log is disabled")
)

// ActivityLog is the read side of the activity recorder.
type ActivityLog interface {
	Recent(ctx context.Context, queueID string, limit int) ([]models.QueueEvent, error)
}

type QueueController struct {
	Store         *store.QueueStore
	Activity      ActivityLog
	PublicBaseURL string
	SeedDemoData  bool
}

func NewQueueController(s *store.QueueStore, activity ActivityLog, publicBaseURL string, seedDemoData bool) *QueueController {
	return &QueueController{
		Store:         s,
		Activity:      activity,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		SeedDemoData:  seedDemoData,
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

type customerRequest struct {
	CustomerID string `json:"customerId"`
}

// CreateQueue -> POST /api/queue/create
func (qc *QueueController) CreateQueue(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errInvalidBody)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.RespondError(c, http.StatusBadRequest, errQueueNameRequired)
		return
	}

	queue, err := qc.Store.Create(qc.Store.NewQueueID(), name)
	if err != nil {
		switch store.KindOf(err) {
		case store.KindConflict:
			utils.RespondError(c, http.StatusConflict, err)
		case store.KindValidation:
			utils.RespondError(c, http.StatusBadRequest, err)
		default:
			respondInternal(c, "create queue", err)
		}
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{"queue_id": queue.ID, "name": queue.Name}).Info("Queue created")
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"queue":   queue,
		"message": fmt.Sprintf("Queue \"%s\" created successfully", queue.Name),
	})
}

// GetQueue -> GET /api/queue/:id
func (qc *QueueController) GetQueue(c *gin.Context) {
	queueID := c.Param("id")

	queue, ok := qc.Store.Get(queueID)
	if !ok {
		utils.InfoLogger.WithField("queue_id", queueID).Debug("Queue not found")
		utils.RespondErrorWith(c, http.StatusNotFound, store.ErrQueueNotFound, gin.H{
			"queueId":         queueID,
			"availableQueues": qc.Store.IDs(),
		})
		return
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{"queue": queue})
}

// GetAllQueues -> GET /api/queue/all, dipakai dashboard
func (qc *QueueController) GetAllQueues(c *gin.Context) {
	if qc.SeedDemoData {
		if created := qc.Store.EnsureDemoData(); created > 0 {
			utils.InfoLogger.WithField("created", created).Info("Demo queues materialized")
		}
	}

	queues := qc.Store.All()
	stats := make([]models.QueueStats, 0, len(queues))
	for _, q := range queues {
		stats = append(stats, q.Stats())
	}
	utils.InfoLogger.WithField("count", len(queues)).Debug("Returning queues to dashboard")
	utils.RespondJSON(c, http.StatusOK, gin.H{"queues": queues, "stats": stats})
}

// JoinQueue -> POST /api/queue/:id/join
func (qc *QueueController) JoinQueue(c *gin.Context) {
	queueID := c.Param("id")

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errInvalidBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.RespondError(c, http.StatusBadRequest, errNameRequired)
		return
	}

	customer, err := qc.Store.Join(queueID, req.Name)
	if err != nil {
		qc.respondStoreError(c, http.StatusBadRequest, "join queue", err)
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"queue_id":    queueID,
		"customer_id": customer.ID,
		"position":    customer.Position,
	}).Info("Customer joined queue")
	utils.RespondJSON(c, http.StatusOK, gin.H{"customer": customer})
}

// RemoveCustomer -> DELETE /api/queue/:id/remove
func (qc *QueueController) RemoveCustomer(c *gin.Context) {
	queueID := c.Param("id")

	customerID, ok := bindCustomerID(c)
	if !ok {
		return
	}

	if err := qc.Store.Remove(queueID, customerID); err != nil {
		qc.respondStoreError(c, http.StatusBadRequest, "remove customer", err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Customer removed from queue"})
}

// ServeCustomer -> POST /api/queue/:id/serve
func (qc *QueueController) ServeCustomer(c *gin.Context) {
	queueID := c.Param("id")

	customerID, ok := bindCustomerID(c)
	if !ok {
		return
	}

	if err := qc.Store.Serve(queueID, customerID); err != nil {
		qc.respondStoreError(c, http.StatusBadRequest, "serve customer", err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Customer marked as served"})
}

// DeleteQueue -> DELETE /api/queue/:id/delete
func (qc *QueueController) DeleteQueue(c *gin.Context) {
	queueID := c.Param("id")

	if err := qc.Store.Delete(queueID); err != nil {
		qc.respondStoreError(c, http.StatusNotFound, "delete queue", err)
		return
	}

	utils.InfoLogger.WithField("queue_id", queueID).Info("Queue deleted")
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "Queue deleted successfully"})
}

// SetQueueStatus -> PATCH /api/queue/:id/status, buka/tutup antrian
func (qc *QueueController) SetQueueStatus(c *gin.Context) {
	queueID := c.Param("id")

	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.IsActive == nil {
		utils.RespondError(c, http.StatusBadRequest, errIsActiveRequired)
		return
	}

	queue, err := qc.Store.SetActive(queueID, *req.IsActive)
	if err != nil {
		qc.respondStoreError(c, http.StatusNotFound, "set queue status", err)
		return
	}

	message := "Queue closed"
	if queue.IsActive {
		message = "Queue opened"
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"queue": queue, "message": message})
}

// GetCustomer -> GET /api/queue/:id/customer/:customerId
// The client keeps its own customer id and polls this to learn its position.
func (qc *QueueController) GetCustomer(c *gin.Context) {
	customer, err := qc.Store.Customer(c.Param("id"), c.Param("customerId"))
	if err != nil {
		qc.respondStoreError(c, http.StatusNotFound, "get customer", err)
		return
	}

	ahead := 0
	if customer.Status == models.CustomerWaiting {
		ahead = customer.Position - 1
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"customer": customer, "ahead": ahead})
}

// ShareQueue -> GET /api/queue/:id/share
func (qc *QueueController) ShareQueue(c *gin.Context) {
	queueID := c.Param("id")
	if _, ok := qc.Store.Get(queueID); !ok {
		utils.RespondError(c, http.StatusNotFound, store.ErrQueueNotFound)
		return
	}

	utils.RespondJSON(c, http.StatusOK, gin.H{
		"queueId": queueID,
		"joinUrl": qc.PublicBaseURL + "/queue/" + queueID,
	})
}

// GetActivity -> GET /api/queue/:id/activity?limit=N
func (qc *QueueController) GetActivity(c *gin.Context) {
	if qc.Activity == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errActivityDisabled)
		return
	}

	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxActivityLimit)
	}

	rows, err := qc.Activity.Recent(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondInternal(c, "read activity", err)
		return
	}
	if rows == nil {
		rows = []models.QueueEvent{}
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"activity": rows})
}

// MethodNotAllowed answers every method a route does not implement.
func MethodNotAllowed(c *gin.Context) {
	utils.RespondError(c, http.StatusMethodNotAllowed, errors.New("Method not allowed"))
}

func bindCustomerID(c *gin.Context) (string, bool) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errInvalidBody)
		return "", false
	}
	if strings.TrimSpace(req.CustomerID) == "" {
		utils.RespondError(c, http.StatusBadRequest, errCustomerIDRequired)
		return "", false
	}
	return req.CustomerID, true
}

// respondStoreError maps expected store failures to status; anything else is a 500.
func (qc *QueueController) respondStoreError(c *gin.Context, status int, op string, err error) {
	if store.KindOf(err) == 0 {
		respondInternal(c, op, err)
		return
	}
	utils.RespondError(c, status, err)
}

func respondInternal(c *gin.Context, op string, err error) {
	utils.ErrorLogger.WithError(err).WithField("op", op).Error("Unexpected failure")
	utils.RespondError(c, http.StatusInternalServerError, errInternal)
}
