package errors

import "errors"

var (
	ErrSlotTaken = errors.New("time slot overlaps an existing booking")

	ErrSlotLocked = errors.New("time slot is being booked by another request")

	ErrInvalidTimeRange = errors.New("end time must be after start time")
)
