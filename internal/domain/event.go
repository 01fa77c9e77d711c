package domain

// EventType names a user interaction delivered to a session.
type EventType string

const (
	EventQuestionnaireFieldChanged EventType = "questionnaire_field_changed"
	EventFilterChanged             EventType = "filter_changed"
	EventPageRequested             EventType = "page_requested"
	EventRecommendationRequested   EventType = "recommendation_requested"
	EventDetailRequested           EventType = "detail_requested"
	EventReviewExpandToggled       EventType = "review_expand_toggled"
)

// Event is one interaction. Which fields are meaningful depends on Type:
// Field and Value for field changes, View and Target for page requests,
// Vehicle for detail and expand events.
type Event struct {
	Type    EventType `json:"type" validate:"required,oneof=questionnaire_field_changed filter_changed page_requested recommendation_requested detail_requested review_expand_toggled"`
	Field   string    `json:"field,omitempty" validate:"required_if=Type questionnaire_field_changed,required_if=Type filter_changed"`
	Value   string    `json:"value,omitempty"`
	View    string    `json:"view,omitempty" validate:"required_if=Type page_requested"`
	Target  int       `json:"target,omitempty" validate:"gte=0"`
	Vehicle string    `json:"vehicle,omitempty" validate:"required_if=Type detail_requested,required_if=Type review_expand_toggled"`
}
