package stream

import (
	"time"

	"k8s.io/utils/clock"
)

// Clock is the time source and delayed-execution primitive a Simulator
// runs on. clock.RealClock satisfies it.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clock.Timer
}

var _ Clock = clock.RealClock{}
