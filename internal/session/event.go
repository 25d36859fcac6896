package session

import (
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/dramaturgy/pkg/interaction"
)

var (
	// ErrUnknownEvent is returned for an event type the session cannot handle.
	ErrUnknownEvent = errors.New("unknown event type")
	ErrInvalidEvent = errors.New("invalid event")
)

// Event types accepted by Session.Dispatch.
const (
	EventHover           = "hover"
	EventUnhover         = "unhover"
	EventHoverLink       = "hover_link"
	EventUnhoverLink     = "unhover_link"
	EventClick           = "click"
	EventClickBackground = "click_background"
	EventBack            = "back"
	EventSelect          = "select"
	EventResetView       = "reset_view"
	EventToggleLabels    = "toggle_labels"
	EventNodeScale       = "node_scale"
	EventTransform       = "transform"
	EventDragStart       = "drag_start"
	EventDrag            = "drag"
	EventDragEnd         = "drag_end"
)

// Event is a pointer or control event sent by the page.
type Event struct {
	Type      string                 `json:"type" validate:"required"`
	Name      string                 `json:"name,omitempty"`
	Target    string                 `json:"target,omitempty"`
	X         float64                `json:"x,omitempty"`
	Y         float64                `json:"y,omitempty"`
	Scale     float64                `json:"scale,omitempty"`
	Transform *interaction.Transform `json:"transform,omitempty"`
}

func apply(h *interaction.Handle, e Event) error {
	switch e.Type {
	case EventHover:
		h.Hover(e.Name)
	case EventUnhover:
		h.Unhover()
	case EventHoverLink:
		h.HoverLink(e.Name, e.Target)
	case EventUnhoverLink:
		h.UnhoverLink()
	case EventClick:
		h.Click(e.Name)
	case EventClickBackground:
		h.ClickBackground()
	case EventBack:
		h.Back()
	case EventSelect:
		h.SelectByName(e.Name)
	case EventResetView:
		h.ResetView()
	case EventToggleLabels:
		h.ToggleLabels()
	case EventNodeScale:
		h.SetNodeScale(e.Scale)
	case EventTransform:
		if e.Transform == nil {
			return fmt.Errorf("%w: transform event without transform", ErrInvalidEvent)
		}
		h.SetTransform(*e.Transform)
	case EventDragStart:
		return h.DragStart(e.Name)
	case EventDrag:
		return h.Drag(e.Name, e.X, e.Y)
	case EventDragEnd:
		return h.DragEnd(e.Name)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	return nil
}
