package domain

// DeviceAuthSession is the in-flight state of one device-authorization
// flow. It is created by StartDeviceFlow, consumed exactly once by the
// matching CompleteDeviceFlow, then discarded. Never persisted.
type DeviceAuthSession struct {
	ID              string
	Provider        ProviderKind
	VerificationURL string
	UserCode        string
	DeviceCode      string
	IntervalSeconds int
	// Metadata carries flow-specific values resolved at start time, e.g.
	// the Copilot enterprise domain the completion step must poll.
	Metadata map[string]string
}

// OAuthTokenResult is the terminal output of a completed device or browser
// flow. Ownership transfers to the caller, who merges it into a
// RuntimeConfig and persists it.
type OAuthTokenResult struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is epoch milliseconds; 0 means the token does not expire.
	ExpiresAt     int64
	AccountID     string
	EnterpriseURL string
}
