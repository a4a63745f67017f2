package publisher

// Publisher represents a service for publishing scraped offers downstream
type Publisher interface {
	// Publish publishes one offer record, keyed by store name
	Publish(store string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
