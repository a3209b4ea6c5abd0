package gateway

import (
	"fmt"
	"strings"

	"github.com/catanatron/gameclient/pkg/game/types"
)

// DescribeRecord renders one action record as a short human-readable
// sentence for transient notification.
func DescribeRecord(record types.ActionRecord) string {
	action := record.Outcome
	who := string(action.Color)
	switch action.Type {
	case types.ActionTypeRoll:
		if die1, die2, ok := action.Dice(); ok {
			return fmt.Sprintf("%s rolled %d + %d", who, die1, die2)
		}
		return fmt.Sprintf("%s rolled", who)
	case types.ActionTypeMoveRobber:
		return fmt.Sprintf("%s moved the robber", who)
	case types.ActionTypeDiscard:
		return fmt.Sprintf("%s discarded", who)
	case types.ActionTypeBuildRoad:
		return fmt.Sprintf("%s built a road", who)
	case types.ActionTypeBuildSettlement:
		return fmt.Sprintf("%s built a settlement", who)
	case types.ActionTypeBuildCity:
		return fmt.Sprintf("%s built a city", who)
	case types.ActionTypeBuyDevelopmentCard:
		return fmt.Sprintf("%s bought a development card", who)
	case types.ActionTypePlayKnightCard:
		return fmt.Sprintf("%s played a knight", who)
	case types.ActionTypePlayYearOfPlenty:
		return fmt.Sprintf("%s played year of plenty", who)
	case types.ActionTypePlayMonopoly:
		return fmt.Sprintf("%s played monopoly", who)
	case types.ActionTypePlayRoadBuilding:
		return fmt.Sprintf("%s played road building", who)
	case types.ActionTypeMaritimeTrade:
		return fmt.Sprintf("%s traded with the bank", who)
	case types.ActionTypeOfferTrade:
		if vector, ok := action.TradeVector(); ok {
			var offer, request [5]int
			copy(offer[:], vector[:5])
			copy(request[:], vector[5:])
			return fmt.Sprintf("%s offered %s for %s", who, FormatResources(offer), FormatResources(request))
		}
		return fmt.Sprintf("%s offered a trade", who)
	case types.ActionTypeAcceptTrade:
		return fmt.Sprintf("%s accepted the trade", who)
	case types.ActionTypeRejectTrade:
		return fmt.Sprintf("%s rejected the trade", who)
	case types.ActionTypeConfirmTrade:
		return fmt.Sprintf("%s completed the trade", who)
	case types.ActionTypeCancelTrade:
		return fmt.Sprintf("%s withdrew the trade", who)
	case types.ActionTypeEndTurn:
		return fmt.Sprintf("%s ended their turn", who)
	default:
		return fmt.Sprintf("%s: %s", who, action.Type)
	}
}

// FormatResources renders a trade-order resource vector, e.g. "2 WOOD, 1 ORE".
func FormatResources(counts [5]int) string {
	var parts []string
	for i, resource := range types.Resources {
		if counts[i] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[i], resource))
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}
