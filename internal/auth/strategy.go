package auth

// strategyKind identifies one credential acquisition strategy. The set is
// closed; the chain dispatches on kind rather than through an interface.
type strategyKind int

const (
	// kindCachedRecord replays a persisted interactive login silently.
	kindCachedRecord strategyKind = iota
	// kindSharedCache picks up a token cached by any prior login,
	// optionally filtered to a preferred account.
	kindSharedCache
	// kindBrowser runs an interactive browser login with PKCE.
	kindBrowser
	// kindDeviceCode runs the device code flow. Always last in the chain
	// because it works on fully headless hosts.
	kindDeviceCode
)

// String returns the strategy name for logging.
func (k strategyKind) String() string {
	switch k {
	case kindCachedRecord:
		return "cached-record"
	case kindSharedCache:
		return "shared-cache"
	case kindBrowser:
		return "interactive-browser"
	case kindDeviceCode:
		return "device-code"
	default:
		return "unknown"
	}
}
