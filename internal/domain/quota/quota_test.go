package quota_test

import (
	"context"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	quota "github.com/sportlink/swipedeck/internal/domain/quota"
)

func TestTracker(t *testing.T) {
	Convey("Given a quota tracker", t, func() {
		tr := quota.NewTracker()
		ctx := context.Background()

		Convey("When nothing has been loaded yet", func() {
			Convey("Then the state is unknown", func() {
				So(tr.Known(), ShouldBeFalse)
				So(tr.Premium(), ShouldBeFalse)
			})
		})

		Convey("When reset from a free-account stats snapshot", func() {
			tr.Reset(ctx, quota.State{Premium: false, Remaining: 3, DailyLimit: 10})

			Convey("Then the snapshot reflects the backend values", func() {
				s := tr.Snapshot(ctx)
				So(tr.Known(), ShouldBeTrue)
				So(s.Premium, ShouldBeFalse)
				So(s.Remaining, ShouldEqual, 3)
				So(s.DailyLimit, ShouldEqual, 10)
			})

			Convey("And each Consume decrements by exactly one", func() {
				So(tr.Consume(ctx).Remaining, ShouldEqual, 2)
				So(tr.Consume(ctx).Remaining, ShouldEqual, 1)
				So(tr.Consume(ctx).Remaining, ShouldEqual, 0)

				Convey("Then remaining never drops below zero", func() {
					So(tr.Consume(ctx).Remaining, ShouldEqual, 0)
					So(tr.Consume(ctx).Remaining, ShouldEqual, 0)
				})
			})
		})

		Convey("When reset from a premium stats snapshot", func() {
			tr.Reset(ctx, quota.State{Premium: true, Remaining: 0, DailyLimit: 0})

			Convey("Then Consume never decrements", func() {
				for i := 0; i < 50; i++ {
					s := tr.Consume(ctx)
					So(s.Remaining, ShouldEqual, 0)
					So(s.Premium, ShouldBeTrue)
				}
			})
		})

		Convey("When consumed concurrently", func() {
			tr.Reset(ctx, quota.State{Premium: false, Remaining: 100, DailyLimit: 100})

			var wg sync.WaitGroup
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					tr.Consume(ctx)
				}()
			}
			wg.Wait()

			Convey("Then exactly one decrement is applied per call", func() {
				So(tr.Snapshot(ctx).Remaining, ShouldEqual, 60)
			})
		})
	})
}
