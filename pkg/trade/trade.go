// Package trade derives trade-negotiation affordances from authoritative
// game snapshots. Everything here is a pure function of (snapshot, viewer);
// nothing holds state between snapshots.
package trade

import (
	"github.com/catanatron/gameclient/pkg/game/types"
)

// ResponseStatus is a seat's standing toward the active trade.
type ResponseStatus string

const (
	StatusWaiting  ResponseStatus = "WAITING"
	StatusAccepted ResponseStatus = "ACCEPTED"
	StatusRejected ResponseStatus = "REJECTED"
)

// SeatStatus pairs a non-offering seat with its response status.
type SeatStatus struct {
	Color  types.Color
	Status ResponseStatus
}

// View describes the trade UI affordances for one viewer against one
// snapshot.
type View struct {
	// Active reports whether a trade proposal is in flight.
	Active       bool
	OffererColor types.Color
	IsOfferer    bool
	// YouGive and YouGet are relabeled from the viewer's perspective: for
	// the offerer YouGive is the offer, for everyone else YouGive is what
	// the offerer requests.
	YouGive [5]int
	YouGet  [5]int
	Seats   []SeatStatus
	// CanPropose: the viewer may submit a new proposal (or amend the
	// active one by withdrawing and reproposing).
	CanPropose bool
	// CanRespond: the viewer is an acceptee that has not yet responded.
	CanRespond bool
	// MustCancel: every acceptee responded and none accepted, so the only
	// move left to the offerer is a withdraw.
	MustCancel bool
	// ConfirmableWith lists the seats the offerer may confirm against.
	// Empty for non-offering viewers.
	ConfirmableWith []types.Color
}

// DeriveView computes the viewer-relative trade view for a snapshot. A nil
// snapshot yields the zero view.
func DeriveView(snapshot *types.GameSnapshot, viewer types.Color) View {
	var view View
	if snapshot == nil {
		return view
	}

	proposal := snapshot.Trade
	if proposal != nil {
		view.Active = true
		view.OffererColor = proposal.OffererColor
		view.IsOfferer = proposal.OffererColor == viewer
		if view.IsOfferer {
			view.YouGive = proposal.Offer
			view.YouGet = proposal.Request
		} else {
			view.YouGive = proposal.Request
			view.YouGet = proposal.Offer
		}

		allResponded := true
		anyAccepted := false
		for _, acceptee := range proposal.Acceptees {
			status := StatusWaiting
			switch {
			case !acceptee.Responded:
				allResponded = false
			case acceptee.Accepted:
				status = StatusAccepted
				anyAccepted = true
			default:
				status = StatusRejected
			}
			view.Seats = append(view.Seats, SeatStatus{Color: acceptee.Color, Status: status})
			if view.IsOfferer && acceptee.Responded && acceptee.Accepted {
				view.ConfirmableWith = append(view.ConfirmableWith, acceptee.Color)
			}
		}
		view.MustCancel = view.IsOfferer && allResponded && !anyAccepted

		if acceptee, ok := proposal.Acceptee(viewer); ok {
			// One response per trade; after responding further clicks are
			// no-ops until a new trade appears.
			view.CanRespond = !acceptee.Responded && !snapshot.Ended()
		}
	}

	view.CanPropose = canPropose(snapshot, viewer)
	return view
}

func canPropose(snapshot *types.GameSnapshot, viewer types.Color) bool {
	if snapshot.Ended() {
		return false
	}
	if snapshot.CurrentColor != viewer && (snapshot.Trade == nil || snapshot.Trade.OffererColor != viewer) {
		return false
	}
	if !snapshot.HasRolled(viewer) {
		return false
	}
	if snapshot.Trade != nil && snapshot.Trade.OffererColor != viewer {
		return false
	}
	return true
}

// Vector flattens a proposal into the ten-element wire vector.
func Vector(offer, request [5]int) [10]int {
	var vector [10]int
	copy(vector[:5], offer[:])
	copy(vector[5:], request[:])
	return vector
}

// OfferAction builds the action submitting a new proposal.
func OfferAction(viewer types.Color, offer, request [5]int) types.Action {
	return types.NewAction(viewer, types.ActionTypeOfferTrade, Vector(offer, request))
}

// AcceptAction builds the acceptee's accept response to the active trade.
func AcceptAction(viewer types.Color, proposal *types.TradeProposal) types.Action {
	return types.NewAction(viewer, types.ActionTypeAcceptTrade, Vector(proposal.Offer, proposal.Request))
}

// RejectAction builds the acceptee's reject response to the active trade.
func RejectAction(viewer types.Color, proposal *types.TradeProposal) types.Action {
	return types.NewAction(viewer, types.ActionTypeRejectTrade, Vector(proposal.Offer, proposal.Request))
}

// ConfirmAction builds the offerer's confirmation against one accepted
// partner. The wire value is the trade vector with the partner appended.
func ConfirmAction(offerer types.Color, proposal *types.TradeProposal, partner types.Color) types.Action {
	vector := Vector(proposal.Offer, proposal.Request)
	value := make([]interface{}, 0, 11)
	for _, count := range vector {
		value = append(value, count)
	}
	value = append(value, partner)
	return types.NewAction(offerer, types.ActionTypeConfirmTrade, value)
}

// CancelAction builds the offerer's withdrawal of the active trade.
func CancelAction(offerer types.Color, proposal *types.TradeProposal) types.Action {
	return types.NewAction(offerer, types.ActionTypeCancelTrade, Vector(proposal.Offer, proposal.Request))
}
