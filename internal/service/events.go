package service

import "context"

// Event kinds pushed to the live party feed and onto the notification topic.
const (
	EventParticipantJoined  = "participant.joined"
	EventContributionPut    = "contribution.put"
	EventContributionDelete = "contribution.deleted"
)

// PartyEvent is what party viewers receive over the live feed.
type PartyEvent struct {
	Kind    string `json:"kind"`
	PartyID string `json:"party_id"`
	UserID  string `json:"user_id,omitempty"`
	DishID  string `json:"dish_id,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
	Seats   int    `json:"seats,omitempty"`
}

// JoinNotification is the message emitted to the host when a redeemer
// attaches a greeting. Delivery is fire-and-forget: a failed emit is logged
// and never unwinds a committed admission.
type JoinNotification struct {
	PartyID  string `json:"party_id"`
	HostID   string `json:"host_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"username"`
	Message  string `json:"message"`
}

// Notifier is the notification sink (Kafka in production).
type Notifier interface {
	PublishJoin(ctx context.Context, n *JoinNotification) error
}

// FeedPublisher fans out party events to connected live-feed clients.
type FeedPublisher interface {
	PublishPartyEvent(event *PartyEvent)
}
