package services

import "time"

// Timer is a cancellable scheduled callback
type Timer interface {
	Stop() bool
}

// Clock abstracts time so tests can drive reconnect scheduling
// deterministically instead of racing wall-clock delays.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall-clock implementation used in production
var SystemClock Clock = systemClock{}
