package gpu

// SessionInfo describes the configured GPU session. It marshals to
// JSON for the probe output of the slate command.
type SessionInfo struct {
	Backend       string `json:"backend"`
	SwapchainSize int    `json:"swapchainSize"`
	Width         uint32 `json:"width"`
	Height        uint32 `json:"height"`
}
