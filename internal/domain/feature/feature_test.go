package feature_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	feature "github.com/sportlink/swipedeck/internal/domain/feature"
)

func TestPolicyGate(t *testing.T) {
	Convey("Given the static policy gate", t, func() {
		gate := feature.NewPolicyGate()
		ctx := context.Background()

		Convey("When a premium account checks any feature", func() {
			keys := []feature.Key{feature.UnlimitedSwipes, feature.ProfileFilters, feature.DirectContact}

			Convey("Then every check is allowed with no paywall copy", func() {
				for _, key := range keys {
					d := gate.Check(ctx, key, true)
					So(d.Allowed, ShouldBeTrue)
					So(d.Feature, ShouldEqual, key)
					So(d.Copy.Title, ShouldBeEmpty)
				}
			})
		})

		Convey("When a free account checks any feature", func() {
			keys := []feature.Key{feature.UnlimitedSwipes, feature.ProfileFilters, feature.DirectContact}

			Convey("Then every check is denied with feature-specific copy", func() {
				for _, key := range keys {
					d := gate.Check(ctx, key, false)
					So(d.Allowed, ShouldBeFalse)
					So(d.Feature, ShouldEqual, key)
					So(d.Copy.Title, ShouldNotBeEmpty)
					So(d.Copy.Message, ShouldNotBeEmpty)
					So(len(d.Copy.Benefits), ShouldBeGreaterThan, 0)
				}
			})

			Convey("Then the copy differs per feature", func() {
				swipes := gate.Check(ctx, feature.UnlimitedSwipes, false)
				filters := gate.Check(ctx, feature.ProfileFilters, false)
				contact := gate.Check(ctx, feature.DirectContact, false)
				So(swipes.Copy.Title, ShouldNotEqual, filters.Copy.Title)
				So(filters.Copy.Title, ShouldNotEqual, contact.Copy.Title)
			})
		})
	})
}

func TestCopyFor(t *testing.T) {
	Convey("Given the paywall copy table", t, func() {
		Convey("When asking for an unknown key", func() {
			c := feature.CopyFor(feature.Key("something_else"))

			Convey("Then the fallback copy is returned", func() {
				So(c.Title, ShouldEqual, feature.CopyFor(feature.UnlimitedSwipes).Title)
			})
		})
	})
}
