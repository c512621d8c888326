package model

// SignalSet bundles the five agent signals of one evaluation run in their
// fixed order
type SignalSet struct {
	Clinical   Signal
	Literature Signal
	Market     Signal
	IP         Signal
	Supply     Signal
}
