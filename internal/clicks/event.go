package clicks

import "time"

const (
	// TopicLinkAccessed carries one event per successful redirect resolution.
	TopicLinkAccessed = "link.accessed"
	// TopicLinkCreated carries one event per committed registration.
	TopicLinkCreated = "link.created"
)

// LinkAccessedEvent is emitted by the redirect path for every resolved code.
// Delivery is at-least-once; the consumer deduplicates on the message id.
type LinkAccessedEvent struct {
	Code       string    `json:"code"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientIP   string    `json:"clientIp,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
}

// LinkCreatedEvent is emitted when a registration commits a new link.
type LinkCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	OwnerID     string    `json:"ownerId"`
	Mode        string    `json:"mode"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
}
