// Package models defines data structures used throughout the chat widget service.
package models

import (
	"encoding/json"
	"time"

	contextutils "gabaychat/internal/utils"
)

// Message represents one chat message in a widget session. A message is
// created optimistically on send (Pending=true, id derived from the current
// time) and reconciled with the server-assigned id and translation once the
// save call resolves.
type Message struct {
	ID          string     `json:"id" yaml:"id"`
	Original    string     `json:"original" yaml:"original"`
	Translation *string    `json:"translation" yaml:"translation"`
	Timestamp   time.Time  `json:"timestamp" yaml:"timestamp"`
	Pending     bool       `json:"pending" yaml:"pending"`
	// ShowOriginal flips per-message display between original and translated
	// text; in-memory only, never persisted.
	ShowOriginal bool `json:"show_original" yaml:"show_original"`
}

// DisplayText returns the text the widget should render for this message.
// A server-confirmed translation is authoritative only when it differs from
// the original; otherwise the caller falls back to a live translation or the
// original.
func (m *Message) DisplayText(liveTranslation string) string {
	if m.ShowOriginal {
		return m.Original
	}
	if m.Translation != nil && *m.Translation != "" && *m.Translation != m.Original {
		return *m.Translation
	}
	if liveTranslation != "" {
		return liveTranslation
	}
	return m.Original
}

// DisplayTimestamp renders the message time in the fixed UTC+8 display zone.
func (m *Message) DisplayTimestamp() string {
	return contextutils.FormatInDisplayZone(m.Timestamp, "2006-01-02 15:04")
}

// MarshalJSON adds the rendered display timestamp alongside the raw fields.
func (m Message) MarshalJSON() (result0 []byte, err error) {
	type alias Message
	return json.Marshal(&struct {
		alias
		DisplayTimestamp string `json:"display_timestamp"`
	}{
		alias:            alias(m),
		DisplayTimestamp: m.DisplayTimestamp(),
	})
}

// ConnectionStatus is the transient result of an explicit test-connection
// action. It has no lifecycle beyond the request that produced it.
type ConnectionStatus struct {
	Success bool   `json:"success" yaml:"success"`
	Status  int    `json:"status,omitempty" yaml:"status,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SavedMessage is the upstream backend's view of a persisted message, as
// returned by the save endpoint.
type SavedMessage struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Translation *string `json:"translation"`
	Timestamp   string  `json:"timestamp"`
}

// MessageView pairs a message with its resolved display text. Display text
// depends on the session's live-translation cache, which lives outside the
// message itself.
type MessageView struct {
	Message     Message `json:"message"`
	DisplayText string  `json:"display_text"`
}

// WidgetSnapshot is the full widget state a client needs to render the panel.
type WidgetSnapshot struct {
	Open          bool          `json:"open"`
	Sending       bool          `json:"sending"`
	Error         string        `json:"error,omitempty"`
	Messages      []MessageView `json:"messages"`
	RefreshDelays []int         `json:"refresh_delays"`
}

// SelectionItem is one entry in a single-select settings group.
type SelectionItem struct {
	Label   string `json:"label" yaml:"label"`
	Value   string `json:"value" yaml:"value"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
	Active  bool   `json:"active" yaml:"active"`
}

// SelectionGroup is a single-select group: exactly one item is active at a
// time. ActiveSection tracks the visible content section for navigation
// groups and is empty for plain pickers.
type SelectionGroup struct {
	Name          string          `json:"name" yaml:"name"`
	Items         []SelectionItem `json:"items" yaml:"items"`
	ActiveSection string          `json:"active_section,omitempty" yaml:"active_section,omitempty"`
}

// ActiveItem returns the currently active item, or nil if the group is empty.
func (g *SelectionGroup) ActiveItem() *SelectionItem {
	for i := range g.Items {
		if g.Items[i].Active {
			return &g.Items[i]
		}
	}
	return nil
}
