package awareness

// API identifies a capability set of the service.
type API string

const (
	// APIAwareness covers snapshot queries and fences.
	APIAwareness API = "awareness"

	// APIPlaces is needed for nearby place lookups.
	APIPlaces API = "places"

	// APIBeacons is needed for nearby beacon lookups.
	APIBeacons API = "beacons"
)

// String returns the API name.
func (a API) String() string {
	return string(a)
}

// ConnectionCallbacks receives the outcome of Client.Connect.
// Implementations must be safe to call from any goroutine.
type ConnectionCallbacks interface {
	// OnConnected is called once the client is ready for requests.
	OnConnected()

	// OnConnectionSuspended is called when an established connection drops.
	OnConnectionSuspended(reason string)

	// OnConnectionFailed is called when a connect attempt is rejected.
	OnConnectionFailed(reason string)
}

// Client is one connection to the service.
type Client interface {
	// Connect starts an asynchronous connect attempt.
	Connect()

	// Disconnect releases the connection.
	Disconnect()

	// IsConnected reports whether the client is connected.
	IsConnected() bool

	// IsConnecting reports whether a connect attempt is in progress.
	IsConnecting() bool

	// Snapshot returns the snapshot query API. Only valid while connected.
	Snapshot() SnapshotAPI

	// Fences returns the fence API. Only valid while connected.
	Fences() FenceAPI
}

// ClientFactory creates clients bound to a set of APIs.
type ClientFactory interface {
	NewClient(apis []API, callbacks ConnectionCallbacks) Client
}

// ClientFactoryFunc adapts a function to ClientFactory.
type ClientFactoryFunc func(apis []API, callbacks ConnectionCallbacks) Client

// NewClient calls f.
func (f ClientFactoryFunc) NewClient(apis []API, callbacks ConnectionCallbacks) Client {
	return f(apis, callbacks)
}
