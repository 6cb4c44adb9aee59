package dao

import "encoding/json"

const (
	NotifyTypeEvent   = "event"
	NotifyTypeSummary = "summary"
)

// NotifyMessage is the envelope posted to the notification server and fanned
// out to websocket observers. Type selects which of the payload fields are
// meaningful.
type NotifyMessage struct {
	Type     string `json:"type" binding:"required,oneof=event summary"`
	DeviceId string `json:"device_id" binding:"required"`

	// event fields
	Timestamp     int64         `json:"timestamp,omitempty"`
	Thumbnail     string        `json:"thumbnail,omitempty"`
	Description   string        `json:"description,omitempty"`
	EventCategory EventCategory `json:"event_category,omitempty" binding:"omitempty,eventcategory"`
	TriggerAlarm  float64       `json:"trigger_alarm,omitempty"`

	// summary fields
	StartTimestamp int64       `json:"start_timestamp,omitempty"`
	EndTimestamp   int64       `json:"end_timestamp,omitempty"`
	Title          string      `json:"title,omitempty"`
	Events         []EventLine `json:"events,omitempty"`
}

// EventLine is one chronological entry of a summarized window.
type EventLine struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

func (m *NotifyMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}
