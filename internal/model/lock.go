package model

import "github.com/holiman/uint256"

// Lock is a vote-escrow position: Amount tokens locked until End (unix seconds).
type Lock struct {
	Amount *uint256.Int
	End    uint64
}
