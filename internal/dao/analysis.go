package dao

// EventCategory is the closed set of event types the analyzer may assign to
// a keyframe.
type EventCategory string

const (
	EventFire            EventCategory = "fire"
	EventAbnormalLoiter  EventCategory = "abnormal-loitering"
	EventIntrusion       EventCategory = "intrusion"
	EventPersonFall      EventCategory = "person-fall"
	EventPackageDelivery EventCategory = "package-delivery"
	EventNone            EventCategory = "no-event"
	EventOther           EventCategory = "other"
)

var eventCategories = map[EventCategory]bool{
	EventFire:            true,
	EventAbnormalLoiter:  true,
	EventIntrusion:       true,
	EventPersonFall:      true,
	EventPackageDelivery: true,
	EventNone:            true,
	EventOther:           true,
}

func (c EventCategory) Valid() bool {
	return eventCategories[c]
}

// EventCategories lists the categories in prompt order.
func EventCategories() []EventCategory {
	return []EventCategory{
		EventFire, EventAbnormalLoiter, EventIntrusion, EventPersonFall,
		EventPackageDelivery, EventNone, EventOther,
	}
}

// FrameAnalysis is the validated result of one analyzer call.
type FrameAnalysis struct {
	Description   string        `json:"description"`
	EventCategory EventCategory `json:"event_category"`
	TriggerAlarm  float64       `json:"trigger_alarm"`
	// IsNewEvent is the analyzer's judgement whether this frame starts a new
	// event relative to the supplied context; 1 or 0.
	IsNewEvent int `json:"is_new_event"`
}

// EventSummary is the validated result of one summarizer call.
type EventSummary struct {
	Title        string `json:"title"`
	EventSummary string `json:"event_summary"`
}
