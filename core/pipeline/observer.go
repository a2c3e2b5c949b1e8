package pipeline

import "time"

// Lifecycle stages reported to the Observer and in logs.
const (
	StagePreflight        = "preflight"
	StageRouting          = "routing"
	StageBeforeParsing    = "before_parsing"
	StageValidation       = "validation"
	StageBeforeHandling   = "before_handling"
	StageHandler          = "handler"
	StageBeforeResponding = "before_responding"
	StageFormatting       = "formatting"
)

// Observer receives dispatch measurements.
type Observer interface {
	ObserveDispatch(method string, status int, d time.Duration)
	StageFailed(stage string)
	CacheLookup(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveDispatch(string, int, time.Duration) {}
func (nopObserver) StageFailed(string)                         {}
func (nopObserver) CacheLookup(bool)                           {}
