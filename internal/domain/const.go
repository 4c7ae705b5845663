package domain

import "time"

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// ACTIVE_VOTER_WINDOW is how long a voter counts towards the active supply after its last vote
	ACTIVE_VOTER_WINDOW = 180 * 24 * time.Hour

	// ONE_DAY is the width of a metrics bucket
	ONE_DAY = 24 * time.Hour

	// QUORUM_SNAPSHOT_OFFSET is how many blocks behind the head snapshot governors are read at
	QUORUM_SNAPSHOT_OFFSET = 10
)
