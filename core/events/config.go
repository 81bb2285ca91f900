package events

// Config holds configuration for change-event publication.
type Config struct {
	// Buffer is the capacity of the in-process event queue. Publication
	// fails once the buffer is full, surfacing backpressure to the caller
	// instead of silently dropping events.
	Buffer int `mapstructure:"buffer" default:"1024"`
}
