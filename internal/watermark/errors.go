package watermark

import "errors"

// ErrCapacityInsufficient is returned when a frame's block capacity across
// the selected carriers cannot hold redundancy*bitCount blocks.
var ErrCapacityInsufficient = errors.New("capacity_insufficient")
