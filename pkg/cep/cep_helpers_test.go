package cep

import "time"

// mkEvent builds a CURRENT stream event on streamID, timestamped
// secOffset seconds after a fixed test epoch, carrying value as its sole
// before-window attribute. Shared across the unit and scenario test files.
func mkEvent(streamID string, secOffset int, value AttributeValue) StreamEvent {
	return StreamEvent{
		StreamID:         streamID,
		Timestamp:        testEpoch.Add(time.Duration(secOffset) * time.Second),
		Kind:             EventCurrent,
		BeforeWindowData: AttributeRow{value},
	}
}

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
