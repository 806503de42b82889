// Package tutorial provides the static how-to-play content.
package tutorial

import (
	"sort"

	"github.com/okian/heist/internal/domain/collision"
)

// Control pairs a gesture with the in-game action it triggers.
type Control struct {
	Gesture string `json:"gesture"`
	Action  string `json:"action"`
}

// Rule names the action that clears an obstacle.
type Rule struct {
	Obstacle   string `json:"obstacle"`
	SafeAction string `json:"safe_action"`
}

// Tutorial is the full tutorial payload.
type Tutorial struct {
	Controls []Control `json:"controls"`
	Tips     []string  `json:"tips"`
	Rules    []Rule    `json:"rules"`
}

// Get returns a fresh copy of the tutorial. Rules are sorted by obstacle.
func Get() Tutorial {
	rules := collision.Rules()
	out := Tutorial{
		Controls: []Control{
			{Gesture: "Head Left/Right", Action: "Move left/right"},
			{Gesture: "Mouth Open", Action: "Jump over lasers"},
			{Gesture: "Eyebrow Raise", Action: "Freeze to avoid cameras"},
			{Gesture: "Blink", Action: "Use gadget (EMP)"},
		},
		Tips: []string{
			"Each level has unique obstacles.",
			"React quickly to avoid detection!",
			"Use gadgets wisely, they have cooldowns.",
		},
		Rules: make([]Rule, 0, len(rules)),
	}
	for obstacle, action := range rules {
		out.Rules = append(out.Rules, Rule{Obstacle: obstacle, SafeAction: action})
	}
	sort.Slice(out.Rules, func(i, j int) bool { return out.Rules[i].Obstacle < out.Rules[j].Obstacle })
	return out
}
