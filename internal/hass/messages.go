package hass

import (
	"encoding/json"
	"fmt"
)

// Message types of the Home Assistant websocket API.
const (
	typeAuthRequired    = "auth_required"
	typeAuth            = "auth"
	typeAuthOK          = "auth_ok"
	typeAuthInvalid     = "auth_invalid"
	typeResult          = "result"
	typeEvent           = "event"
	typeGetStates       = "get_states"
	typeSubscribeEvents = "subscribe_events"
	typeCallService     = "call_service"

	eventStateChanged = "state_changed"
)

// outgoing is any client -> server message.
type outgoing struct {
	ID          int64          `json:"id,omitempty"`
	Type        string         `json:"type"`
	AccessToken string         `json:"access_token,omitempty"`
	EventType   string         `json:"event_type,omitempty"`
	Domain      string         `json:"domain,omitempty"`
	Service     string         `json:"service,omitempty"`
	ServiceData map[string]any `json:"service_data,omitempty"`
}

// incoming is any server -> client message.
type incoming struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Success   bool            `json:"success"`
	Result    json.RawMessage `json:"result"`
	Error     *ServiceError   `json:"error"`
	Event     *event          `json:"event"`
	Message   string          `json:"message"`    // auth_invalid reason
	HAVersion string          `json:"ha_version"` // auth_required / auth_ok
}

type event struct {
	EventType string    `json:"event_type"`
	Data      eventData `json:"data"`
	TimeFired string    `json:"time_fired"`
}

type eventData struct {
	EntityID string    `json:"entity_id"`
	NewState *rawState `json:"new_state"` // nil when the entity was removed
	OldState *rawState `json:"old_state"`
}

// rawState is an entity state as Home Assistant serializes it.
type rawState struct {
	EntityID    string                     `json:"entity_id"`
	State       string                     `json:"state"`
	Attributes  map[string]json.RawMessage `json:"attributes"`
	LastChanged string                     `json:"last_changed"`
	LastUpdated string                     `json:"last_updated"`
}

// ServiceError is the error object of a failed result.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("home assistant: %s: %s", e.Code, e.Message)
}
