package types

// RollRecord is the most recent dice roll in the authoritative history,
// recomputed from each snapshot rather than stored.
type RollRecord struct {
	Color Color
	Die1  int
	Die2  int
	// Index is the roll's position in the action history. Two rolls with
	// identical die values at different positions are distinct events.
	Index int
}

// Identity uniquely identifies a roll event within one game.
type RollIdentity struct {
	Die1  int
	Die2  int
	Index int
}

func (r RollRecord) Identity() RollIdentity {
	return RollIdentity{Die1: r.Die1, Die2: r.Die2, Index: r.Index}
}

// LatestRoll scans the action history right-to-left for the most recent
// ROLL outcome.
func (s *GameSnapshot) LatestRoll() (RollRecord, bool) {
	for i := len(s.ActionRecords) - 1; i >= 0; i-- {
		outcome := s.ActionRecords[i].Outcome
		die1, die2, ok := outcome.Dice()
		if !ok {
			continue
		}
		return RollRecord{
			Color: outcome.Color,
			Die1:  die1,
			Die2:  die2,
			Index: i,
		}, true
	}
	return RollRecord{}, false
}
