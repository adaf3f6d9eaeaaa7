package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 모든 origin 허용
		return true
	},
}

const (
	sendBufferSize = 256

	// 종료 이벤트를 기억하는 최근 작업 수
	maxFinishedJobs = 256
)

// Event - 구독자에게 전달되는 단계 이벤트
type Event struct {
	Type   string    `json:"type"`
	JobID  string    `json:"jobId"`
	Stage  string    `json:"stage"`
	Detail string    `json:"detail,omitempty"`
	Time   time.Time `json:"time"`
}

// 작업 하나를 구독하는 연결
type subscriber struct {
	conn  *websocket.Conn
	jobID string
	send  chan []byte
}

// 작업별 구독자 묶음
type jobRoom struct {
	subscribers  map[*subscriber]struct{}
	createdAt    time.Time
	lastActivity time.Time
}

// Metrics - 허브 메트릭 스냅샷
type Metrics struct {
	StartTime          time.Time `json:"startTime"`
	Uptime             string    `json:"uptime"`
	TotalConnections   int       `json:"totalConnections"`
	ActiveJobs         int       `json:"activeJobs"`
	CurrentSubscribers int       `json:"currentSubscribers"`
	PublishedEvents    int       `json:"publishedEvents"`
}

// Hub - 작업 ID → 구독자 매핑
type Hub struct {
	jobs  map[string]*jobRoom
	mutex sync.RWMutex

	// 최근 종료된 작업의 마지막 이벤트 (늦게 붙은 구독자에게 즉시 전달 후 종료)
	finished      map[string][]byte
	finishedOrder []string

	startTime        time.Time
	totalConnections int
	publishedEvents  int
}

func NewHub() *Hub {
	return &Hub{
		jobs:      make(map[string]*jobRoom),
		finished:  make(map[string][]byte),
		startTime: time.Now(),
	}
}

// HandleWebSocket - GET /ws?job=<id>
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		http.Error(w, "missing job parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [Progress] WebSocket upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		conn:  conn,
		jobID: jobID,
		send:  make(chan []byte, sendBufferSize),
	}
	h.add(sub)

	go sub.writePump()
	go h.readPump(sub)
}

// Publish - 단계 이벤트 전송 (done/failed면 구독 종료)
func (h *Hub) Publish(jobID, stage, detail string) {
	event := Event{
		Type:   "stage",
		JobID:  jobID,
		Stage:  stage,
		Detail: detail,
		Time:   time.Now(),
	}
	h.Broadcast(jobID, event)
	if stage == "done" || stage == "failed" {
		h.markFinished(jobID, event)
		h.Close(jobID)
	}
}

// markFinished - 종료 이벤트 기록 (오래된 것부터 밀려남)
func (h *Hub) markFinished(jobID string, event Event) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, exists := h.finished[jobID]; !exists {
		h.finishedOrder = append(h.finishedOrder, jobID)
	}
	h.finished[jobID] = messageBytes
	for len(h.finishedOrder) > maxFinishedJobs {
		delete(h.finished, h.finishedOrder[0])
		h.finishedOrder = h.finishedOrder[1:]
	}
}

// Broadcast - 작업 구독자 전체에 이벤트 전송 (느린 구독자는 제거)
func (h *Hub) Broadcast(jobID string, event Event) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ [Progress] Error marshaling event: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.publishedEvents++
	room, exists := h.jobs[jobID]
	if !exists {
		return
	}
	room.lastActivity = time.Now()

	for sub := range room.subscribers {
		select {
		case sub.send <- messageBytes:
		default:
			log.Printf("⚠️ [Progress] Dropping slow subscriber for job %s", jobID)
			close(sub.send)
			delete(room.subscribers, sub)
		}
	}
}

// Close - 작업의 모든 구독 종료 (close frame 전송)
func (h *Hub) Close(jobID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.jobs[jobID]
	if !exists {
		return
	}
	for sub := range room.subscribers {
		close(sub.send)
	}
	delete(h.jobs, jobID)
	log.Printf("🗑️  [Progress] Closed job %s", jobID)
}

// SubscriberCount - 작업 구독자 수
func (h *Hub) SubscriberCount(jobID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if room, ok := h.jobs[jobID]; ok {
		return len(room.subscribers)
	}
	return 0
}

// Metrics - 현재 메트릭
func (h *Hub) Metrics() Metrics {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	current := 0
	for _, room := range h.jobs {
		current += len(room.subscribers)
	}
	return Metrics{
		StartTime:          h.startTime,
		Uptime:             time.Since(h.startTime).String(),
		TotalConnections:   h.totalConnections,
		ActiveJobs:         len(h.jobs),
		CurrentSubscribers: current,
		PublishedEvents:    h.publishedEvents,
	}
}

func (h *Hub) add(sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.totalConnections++
	if last, done := h.finished[sub.jobID]; done {
		sub.send <- last
		close(sub.send)
		log.Printf("🏁 [Progress] Job %s already finished, closing subscriber", sub.jobID)
		return
	}

	room, exists := h.jobs[sub.jobID]
	if !exists {
		now := time.Now()
		room = &jobRoom{
			subscribers:  make(map[*subscriber]struct{}),
			createdAt:    now,
			lastActivity: now,
		}
		h.jobs[sub.jobID] = room
	}
	room.subscribers[sub] = struct{}{}

	log.Printf("🔍 [Progress] New subscriber for job %s (subscribers: %d)", sub.jobID, len(room.subscribers))
}

func (h *Hub) remove(sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.jobs[sub.jobID]
	if !exists {
		return
	}
	if _, ok := room.subscribers[sub]; !ok {
		return
	}
	close(sub.send)
	delete(room.subscribers, sub)
	if len(room.subscribers) == 0 {
		delete(h.jobs, sub.jobID)
	}
	log.Printf("👋 [Progress] Subscriber left job %s", sub.jobID)
}

// 구독자는 메시지를 보내지 않음, 연결 종료 감지용
func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		h.remove(sub)
		sub.conn.Close()
	}()

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ [Progress] WebSocket error: %v", err)
			}
			return
		}
	}
}

func (s *subscriber) writePump() {
	defer s.conn.Close()

	for message := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("❌ [Progress] WebSocket write error: %v", err)
			return
		}
	}
	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
}
