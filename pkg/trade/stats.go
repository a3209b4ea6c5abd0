package trade

import (
	"github.com/catanatron/gameclient/pkg/game/types"
)

// Stats counts a seat's trade activity over the authoritative history.
type Stats struct {
	Offered   int
	Completed int
}

// AcceptanceStats tallies trades offered and trades completed per seat from
// the action history. Confirmations count for the confirming offerer.
func AcceptanceStats(snapshot *types.GameSnapshot) map[types.Color]Stats {
	stats := make(map[types.Color]Stats)
	if snapshot == nil {
		return stats
	}
	for _, record := range snapshot.ActionRecords {
		switch record.Outcome.Type {
		case types.ActionTypeOfferTrade:
			entry := stats[record.Outcome.Color]
			entry.Offered++
			stats[record.Outcome.Color] = entry
		case types.ActionTypeConfirmTrade:
			entry := stats[record.Outcome.Color]
			entry.Completed++
			stats[record.Outcome.Color] = entry
		}
	}
	return stats
}
