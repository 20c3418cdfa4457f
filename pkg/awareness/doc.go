// Package awareness defines the contract of the external context service
// the bridge drives: a connect/disconnect client handle, its connection
// callbacks, and the callback-driven request APIs for snapshot queries and
// fences (named boolean conditions evaluated by the service).
//
// # Connection protocol
//
// A Client is created by a ClientFactory for a set of APIs. Connect starts
// an asynchronous attempt whose outcome is reported exactly once through
// ConnectionCallbacks: OnConnected, or OnConnectionFailed with a reason. A
// connected client may later report OnConnectionSuspended. Disconnect
// releases the service side of the connection.
//
// # Request protocol
//
// Every request returns a PendingResult. The result callback fires once
// with a Result whose Status tells success from failure.
//
// # Fences
//
// UpdateFences adds or removes named conditions. Each added fence carries a
// DeliveryTarget: a LocalTarget invokes a function inside the calling
// process, a PersistentTarget sends a wire.Envelope to a fixed dispatch
// address that outlives the caller. QueryFences returns the current state
// of every fence registered under the client's credentials.
package awareness
