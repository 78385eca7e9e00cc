// Package databar holds the data-side event variants: the arrival of a
// new bar of genesis data and the completion of field processing.
package databar

import (
	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/eventtypes/event"
)

// NewBar announces that a bar of genesis data has become observable. Its
// time is the bar start plus the configured data delay
type NewBar struct {
	event.Base
	GenesisData map[common.AssetID]map[common.FieldID]common.Value
}

// CompletedProcessing announces that lattice propagation for the current
// bar has finished; its time accounts for the measured computation cost.
// The user data callback runs on this event
type CompletedProcessing struct {
	event.Base
}
