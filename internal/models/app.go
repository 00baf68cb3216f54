package models

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Messages        []Message // Transcript as received from core
	Status          string    // Status bar text
	Sending         bool      // A chat request is in flight
	HasPendingImage bool      // Core holds an image for the next send
	Notice          string    // Blocking notification; input is ignored until dismissed
	Width           int       // Terminal width
	Height          int       // Terminal height
}
