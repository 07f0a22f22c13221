package ws

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/potluckhq/potluck/internal/pkg/redis"
	"github.com/potluckhq/potluck/internal/service"
)

// Hub 维护活跃的客户端连接并广播消息
type Hub struct {
	// 注册的客户端
	clients map[*Client]bool

	// 房间（Party）对应的客户端集合 PartyID -> Client -> bool
	rooms map[string]map[*Client]bool

	// 互斥锁，保护 map 的并发读写
	mu sync.RWMutex

	// 注册请求通道
	register chan *Client

	// 注销请求通道
	unregister chan *Client

	// 广播消息通道 (内部使用)
	broadcast chan *FeedMessage

	// 跨实例扇出。为 nil 时事件只在本实例内广播。
	rdb redis.RedisClient
}

// FeedMessage 发送给观看者的一条活动事件
type FeedMessage struct {
	PartyID string              `json:"party_id"`
	Event   *service.PartyEvent `json:"event"`
}

func NewHub(rdb redis.RedisClient) *Hub {
	return &Hub{
		broadcast:  make(chan *FeedMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		rdb:        rdb,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if _, ok := h.rooms[client.partyID]; !ok {
				h.rooms[client.partyID] = make(map[*Client]bool)
			}
			h.rooms[client.partyID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if room, ok := h.rooms[client.partyID]; ok {
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.partyID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.rooms[msg.PartyID]; ok {
				for client := range clients {
					select {
					case client.send <- msg:
					default:
						// 发送缓冲区满，关闭连接并移除
						close(client.send)
						delete(h.clients, client)
						delete(clients, client)
					}
				}
				if len(clients) == 0 {
					delete(h.rooms, msg.PartyID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishPartyEvent implements service.FeedPublisher. With Redis attached
// the event goes through pub/sub and comes back via RunFanout, so every
// instance (this one included) delivers it exactly once.
func (h *Hub) PublishPartyEvent(event *service.PartyEvent) {
	if h.rdb == nil {
		h.broadcast <- &FeedMessage{PartyID: event.PartyID, Event: event}
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("序列化活动事件失败: %v", err)
		return
	}
	if err := h.rdb.Publish(context.Background(), redis.PartyFeedChannel(event.PartyID), payload); err != nil {
		log.Printf("发布活动事件失败: %v", err)
		// 降级为本地广播，本实例的观看者仍能收到
		h.broadcast <- &FeedMessage{PartyID: event.PartyID, Event: event}
	}
}

// RunFanout 订阅所有 party feed 频道并把事件送进本地广播
func (h *Hub) RunFanout(ctx context.Context) error {
	if h.rdb == nil {
		return nil
	}

	pubsub, err := h.rdb.PSubscribe(ctx, redis.PartyFeedPattern)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return nil
			}
			partyID := strings.TrimPrefix(msg.Channel, redis.PartyFeedChannel(""))
			var event service.PartyEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("反序列化活动事件失败: %v", err)
				continue
			}
			h.broadcast <- &FeedMessage{PartyID: partyID, Event: &event}
		}
	}
}
