package model_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	model "github.com/sportlink/swipedeck/internal/domain/model"
)

func TestSwipeDecision(t *testing.T) {
	convey.Convey("Given a SwipeDecision struct", t, func() {
		convey.Convey("When creating a like decision", func() {
			ts := time.Now()
			d := model.SwipeDecision{
				DecisionID: "decision-1",
				CardID:     "user-42",
				Direction:  model.DirectionLike,
				CommitTS:   ts,
			}

			convey.Convey("Then it should have the correct values", func() {
				convey.So(d.DecisionID, convey.ShouldEqual, "decision-1")
				convey.So(d.CardID, convey.ShouldEqual, "user-42")
				convey.So(d.Direction, convey.ShouldEqual, model.DirectionLike)
				convey.So(d.CommitTS, convey.ShouldEqual, ts)
			})
		})

		convey.Convey("When creating a zero-value decision", func() {
			d := model.SwipeDecision{}

			convey.Convey("Then fields should be empty", func() {
				convey.So(d.CardID, convey.ShouldEqual, "")
				convey.So(string(d.Direction), convey.ShouldEqual, "")
			})
		})
	})
}

func TestProfileTypes(t *testing.T) {
	convey.Convey("Given the profile type constants", t, func() {
		convey.Convey("Then they should match the backend wire values", func() {
			convey.So(string(model.ProfileAthlete), convey.ShouldEqual, "athlete")
			convey.So(string(model.ProfileAgent), convey.ShouldEqual, "agent")
			convey.So(string(model.ProfileTeam), convey.ShouldEqual, "team")
		})

		convey.Convey("Then directions should match the swipe endpoint actions", func() {
			convey.So(string(model.DirectionLike), convey.ShouldEqual, "like")
			convey.So(string(model.DirectionDislike), convey.ShouldEqual, "dislike")
		})
	})
}
