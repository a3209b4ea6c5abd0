package trade

import (
	"fmt"

	"github.com/catanatron/gameclient/pkg/game/types"
)

// Validation failures never reach the network. Each violated rule is its
// own error type so the UI can surface the specific rule, not a generic
// message.

type EmptyOfferError struct{}

func (e *EmptyOfferError) Error() string {
	return "offer must include at least one resource"
}

type EmptyRequestError struct{}

func (e *EmptyRequestError) Error() string {
	return "request must include at least one resource"
}

type OverlappingResourceError struct {
	Resource types.Resource
}

func (e *OverlappingResourceError) Error() string {
	return fmt.Sprintf("cannot offer and request %s in the same trade", e.Resource)
}

type NegativeCountError struct {
	Resource types.Resource
}

func (e *NegativeCountError) Error() string {
	return fmt.Sprintf("negative %s count in trade", e.Resource)
}

type InsufficientResourcesError struct {
	Resource types.Resource
	Offered  int
	Held     int
}

func (e *InsufficientResourcesError) Error() string {
	return fmt.Sprintf("offering %d %s but only %d in hand", e.Offered, e.Resource, e.Held)
}

// ValidateProposal checks a new proposal against the viewer's known
// holdings before any network call: both sides non-empty, no resource on
// both sides, no negative counts, offered amounts within holdings.
func ValidateProposal(snapshot *types.GameSnapshot, viewer types.Color, offer, request [5]int) error {
	offerTotal, requestTotal := 0, 0
	for i, resource := range types.Resources {
		if offer[i] < 0 || request[i] < 0 {
			return &NegativeCountError{Resource: resource}
		}
		if offer[i] > 0 && request[i] > 0 {
			return &OverlappingResourceError{Resource: resource}
		}
		offerTotal += offer[i]
		requestTotal += request[i]
	}
	if offerTotal == 0 {
		return &EmptyOfferError{}
	}
	if requestTotal == 0 {
		return &EmptyRequestError{}
	}

	hand, ok := snapshot.ResourcesInHand(viewer)
	if !ok {
		return fmt.Errorf("no holdings known for %s", viewer)
	}
	for i, resource := range types.Resources {
		if offer[i] > hand[i] {
			return &InsufficientResourcesError{Resource: resource, Offered: offer[i], Held: hand[i]}
		}
	}
	return nil
}
