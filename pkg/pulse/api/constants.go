package api

import "time"

// DefaultHeartbeatInterval is how often an idle event stream sends a
// keep-alive comment.
const DefaultHeartbeatInterval = 15 * time.Second

const (
	sortByTime     = "time"
	sortBySeverity = "severity"
)
