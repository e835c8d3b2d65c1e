package server

// Server is the lifecycle contract of a transport server. RunServer blocks
// until a shutdown signal arrives or serving fails; Shutdown drains
// in-flight requests and releases the listener. The vault API runs a single
// HTTP server behind this contract, but the aggregate in server.go does not
// care which transports sit behind it.
type Server interface {
	RunServer()
	Shutdown()
}
