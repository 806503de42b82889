// Package collision decides whether a player action clears an obstacle.
package collision

import (
	"maps"

	"github.com/okian/heist/internal/domain/level"
	"github.com/okian/heist/internal/domain/model"
)

// Player actions.
const (
	ActionJump   = "jump"
	ActionFreeze = "freeze"
	ActionGadget = "gadget"
	ActionMove   = "move"
)

var safeActions = map[string]string{
	level.Laser:    ActionJump,
	level.Camera:   ActionFreeze,
	level.Guard:    ActionGadget,
	level.Trapdoor: ActionMove,
}

// Collides reports whether action fails to clear obstacle. Only the exact
// safe action clears a known obstacle; unknown obstacles always collide.
func Collides(action, obstacle string) bool {
	safe, ok := safeActions[obstacle]
	return !ok || action != safe
}

// SafeAction returns the action that clears obstacle.
func SafeAction(obstacle string) (string, bool) {
	a, ok := safeActions[obstacle]
	return a, ok
}

// Rules returns a copy of the obstacle to safe action table.
func Rules() map[string]string {
	return maps.Clone(safeActions)
}

// ActionFor maps detected signals to a player action. When several signals
// fire, jump wins over freeze, freeze over gadget, and gadget over move.
// No active signal yields "".
func ActionFor(s model.Signals) string {
	switch {
	case s.MouthOpen:
		return ActionJump
	case s.EyebrowRaise:
		return ActionFreeze
	case s.Blink:
		return ActionGadget
	case s.HeadDirection == model.DirectionLeft, s.HeadDirection == model.DirectionRight:
		return ActionMove
	default:
		return ""
	}
}
