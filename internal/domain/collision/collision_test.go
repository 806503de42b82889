package collision_test

import (
	"testing"

	"github.com/okian/heist/internal/domain/collision"
	"github.com/okian/heist/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCollides(t *testing.T) {
	Convey("Given the collision table", t, func() {
		table := map[string]string{
			"laser":    "jump",
			"camera":   "freeze",
			"guard":    "gadget",
			"trapdoor": "move",
		}
		actions := []string{"jump", "freeze", "gadget", "move", "", "dance"}

		Convey("Then only the matching action should clear each obstacle", func() {
			for obstacle, safe := range table {
				for _, action := range actions {
					So(collision.Collides(action, obstacle), ShouldEqual, action != safe)
				}
			}
		})

		Convey("Then unknown obstacles should always collide", func() {
			for _, action := range actions {
				So(collision.Collides(action, "piano"), ShouldBeTrue)
			}
		})

		Convey("Then matching should be case sensitive", func() {
			So(collision.Collides("Jump", "laser"), ShouldBeTrue)
			So(collision.Collides("jump", "Laser"), ShouldBeTrue)
		})
	})
}

func TestSafeActionAndRules(t *testing.T) {
	Convey("Given a known obstacle", t, func() {
		a, ok := collision.SafeAction("camera")

		Convey("Then its safe action should be returned", func() {
			So(ok, ShouldBeTrue)
			So(a, ShouldEqual, collision.ActionFreeze)
		})
	})

	Convey("Given an unknown obstacle", t, func() {
		_, ok := collision.SafeAction("piano")
		So(ok, ShouldBeFalse)
	})

	Convey("Given a copy of the rules", t, func() {
		rules := collision.Rules()
		rules["laser"] = "dance"

		Convey("Then the resolver should be unaffected", func() {
			So(rules, ShouldHaveLength, 4)
			So(collision.Collides("jump", "laser"), ShouldBeFalse)
		})
	})
}

func TestActionFor(t *testing.T) {
	Convey("Given detected signals", t, func() {
		Convey("Then each signal should map to its action", func() {
			So(collision.ActionFor(model.Signals{MouthOpen: true}), ShouldEqual, collision.ActionJump)
			So(collision.ActionFor(model.Signals{EyebrowRaise: true}), ShouldEqual, collision.ActionFreeze)
			So(collision.ActionFor(model.Signals{Blink: true}), ShouldEqual, collision.ActionGadget)
			So(collision.ActionFor(model.Signals{HeadDirection: model.DirectionLeft}), ShouldEqual, collision.ActionMove)
			So(collision.ActionFor(model.Signals{HeadDirection: model.DirectionRight}), ShouldEqual, collision.ActionMove)
		})

		Convey("Then neutral signals should map to no action", func() {
			So(collision.ActionFor(model.NeutralSignals()), ShouldEqual, "")
		})

		Convey("Then jump should win when several signals fire", func() {
			s := model.Signals{MouthOpen: true, EyebrowRaise: true, Blink: true, HeadDirection: model.DirectionLeft}
			So(collision.ActionFor(s), ShouldEqual, collision.ActionJump)
			s.MouthOpen = false
			So(collision.ActionFor(s), ShouldEqual, collision.ActionFreeze)
			s.EyebrowRaise = false
			So(collision.ActionFor(s), ShouldEqual, collision.ActionGadget)
		})
	})
}
