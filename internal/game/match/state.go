// Package match drives one duel from the first player turn to a terminal
// outcome, and the post-game rematch loop around it.
package match

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/ruleset"
)

// ErrMatchOver is returned by Step once the match has reached a terminal state.
var ErrMatchOver = errors.New("match is over")

// State is a node of the turn state machine.
type State int

const (
	StatePlayerTurn State = iota
	StateEnemyTurn
	StateDefeat
	StateVictory
	StateAborted
)

// Terminal reports whether no further turns are taken in s.
func (s State) Terminal() bool {
	return s == StateDefeat || s == StateVictory || s == StateAborted
}

// String returns the state name as stored in match history.
func (s State) String() string {
	switch s {
	case StatePlayerTurn:
		return "player_turn"
	case StateEnemyTurn:
		return "enemy_turn"
	case StateDefeat:
		return "defeat"
	case StateVictory:
		return "victory"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, bool) {
	for st := StatePlayerTurn; st <= StateAborted; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

func turnState(side combat.Side) State {
	if side == combat.SidePlayer {
		return StatePlayerTurn
	}
	return StateEnemyTurn
}

// Result summarises a finished match.
type Result struct {
	ID           uuid.UUID
	Outcome      State
	Mode         ruleset.Mode
	Scale        int
	Rounds       int
	PlayerHealth int
	EnemyHealth  int
	StartedAt    time.Time
	EndedAt      time.Time
	// Narration is the text of the final turn.
	Narration []combat.Event
}

// Tally counts recorded outcomes.
type Tally struct {
	Wins   int
	Losses int
	Aborts int
}

// Total returns the number of recorded matches.
func (t Tally) Total() int { return t.Wins + t.Losses + t.Aborts }
