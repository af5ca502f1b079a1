package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/store"
	"github.com/yeremiapane/queue-app/utils"
)

// Event types
const (
	EventSnapshot     = "queue_snapshot"
	EventQueueUpdate  = "queue_update"
	EventQueueDeleted = "queue_deleted"
)

// AllQueues is the subscription key of dashboard clients that follow every queue.
const AllQueues = ""

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many messages a client may fall behind before it is dropped.
	sendBuffer = 32
)

type Message struct {
	Event   string                `json:"event"`
	Type    string                `json:"type,omitempty"`
	QueueID string                `json:"queueId"`
	Queue   *models.QueueSnapshot `json:"queue,omitempty"`
}

// client punya antrian kirim sendiri; hanya writePump yang menulis ke conn.
type client struct {
	conn    *websocket.Conn
	queueID string
	send    chan []byte
}

// Hub menampung semua client websocket beserta queue yang mereka ikuti.
// Broadcast tidak pernah menunggu socket yang lambat.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
	}
}

// Register menambahkan connection dan langsung mengirim snapshot awal bila ada.
// Pemanggil bertanggung jawab mengambil snapshot dalam urutan yang sama dengan
// event store (lihat store.QueueStore.Observe).
func (h *Hub) Register(conn *websocket.Conn, queueID string, snapshot *models.QueueSnapshot) {
	c := &client{
		conn:    conn,
		queueID: queueID,
		send:    make(chan []byte, sendBuffer),
	}

	h.mutex.Lock()
	h.clients[conn] = c
	if snapshot != nil {
		if data, ok := encode(Message{Event: EventSnapshot, QueueID: snapshot.ID, Queue: snapshot}); ok {
			c.send <- data
		}
	}
	h.mutex.Unlock()

	go c.writePump()
}

// Unregister melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if c, ok := h.clients[conn]; ok {
		h.removeLocked(c)
	}
}

func (h *Hub) ClientCount(queueID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	n := 0
	for _, c := range h.clients {
		if c.queueID == queueID {
			n++
		}
	}
	return n
}

// QueueChanged implements store.Listener.
func (h *Hub) QueueChanged(ev store.Event) {
	msg := Message{
		Event:   EventQueueUpdate,
		Type:    string(ev.Type),
		QueueID: ev.QueueID,
		Queue:   ev.Queue,
	}
	if ev.Type == store.EventQueueDeleted {
		msg.Event = EventQueueDeleted
	}
	h.broadcast(msg)
}

func (h *Hub) broadcast(msg Message) {
	data, ok := encode(msg)
	if !ok {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, c := range h.clients {
		if c.queueID != AllQueues && c.queueID != msg.QueueID {
			continue
		}
		select {
		case c.send <- data:
		default:
			utils.InfoLogger.WithField("queue_id", c.queueID).Warn("Websocket client too slow, dropping")
			h.removeLocked(c)
		}
	}
}

// removeLocked must be called with h.mutex held. Closing send stops the
// client's writePump, which then closes the connection.
func (h *Hub) removeLocked(c *client) {
	delete(h.clients, c.conn)
	close(c.send)
}

func (c *client) writePump() {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.InfoLogger.WithFields(logrus.Fields{
				"queue_id": c.queueID,
				"error":    err,
			}).Debug("Websocket write failed")
			// the read loop notices the closed conn and unregisters
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

func encode(msg Message) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("Error marshaling hub message")
		return nil, false
	}
	return data, true
}
