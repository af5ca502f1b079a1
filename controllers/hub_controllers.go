package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/queue-app/hub"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/store"
	"github.com/yeremiapane/queue-app/utils"
)

type HubController struct {
	Hub      *hub.Hub
	Store    *store.QueueStore
	upgrader websocket.Upgrader
}

func NewHubController(h *hub.Hub, s *store.QueueStore, allowedOrigin string) *HubController {
	return &HubController{
		Hub:   h,
		Store: s,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// QueueSocket -> GET /api/queue/:id/ws, push snapshot antrian ke customer
func (hc *HubController) QueueSocket(c *gin.Context) {
	queueID := c.Param("id")
	if _, ok := hc.Store.Get(queueID); !ok {
		utils.RespondError(c, http.StatusNotFound, store.ErrQueueNotFound)
		return
	}

	hc.serve(c, queueID, func(conn *websocket.Conn) {
		hc.Store.Observe(queueID, func(snapshot *models.QueueSnapshot) {
			hc.Hub.Register(conn, queueID, snapshot)
		})
	})
}

// DashboardSocket -> GET /ws/queues, semua perubahan untuk dashboard staff
func (hc *HubController) DashboardSocket(c *gin.Context) {
	hc.serve(c, hub.AllQueues, func(conn *websocket.Conn) {
		hc.Hub.Register(conn, hub.AllQueues, nil)
	})
}

func (hc *HubController) serve(c *gin.Context, queueID string, register func(*websocket.Conn)) {
	ws, err := hc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.InfoLogger.WithError(err).Debug("Websocket upgrade failed")
		return
	}

	register(ws)
	utils.InfoLogger.WithField("queue_id", queueID).Debug("Websocket client connected")

	// Client tidak mengirim apa-apa; baca sampai koneksi putus.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	hc.Hub.Unregister(ws)
}
