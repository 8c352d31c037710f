package ports

// APIServer defines the lifecycle of the gateway's inbound HTTP surface
type APIServer interface {
	// Start begins serving requests; it does not block
	Start() error

	// Stop shuts the server down gracefully
	Stop() error
}
