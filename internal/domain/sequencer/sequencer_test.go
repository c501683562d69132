package sequencer_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/sportlink/swipedeck/internal/domain/model"
	sequencer "github.com/sportlink/swipedeck/internal/domain/sequencer"
	"github.com/sportlink/swipedeck/pkg/bus"
)

const waitFor = 500 * time.Millisecond

func recv(t *testing.T, ch <-chan bus.Event) bus.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for bus event")
		return bus.Event{}
	}
}

func expectNone(ch <-chan bus.Event, d time.Duration) bool {
	select {
	case <-ch:
		return false
	case <-time.After(d):
		return true
	}
}

func TestSequencer(t *testing.T) {
	Convey("Given a sequencer with short timings", t, func() {
		ctx := context.Background()
		b := bus.New()
		s := sequencer.New(b,
			sequencer.WithBannerDuration(60*time.Millisecond),
			sequencer.WithModalDelay(20*time.Millisecond),
		)
		defer s.Stop()

		banners, cancelBanners := b.Subscribe(bus.TopicBannerShow)
		defer cancelBanners()
		hides, cancelHides := b.Subscribe(bus.TopicBannerHide)
		defer cancelHides()
		modals, cancelModals := b.Subscribe(bus.TopicModalShow)
		defer cancelModals()

		Convey("When one match outcome arrives", func() {
			s.OnMatch(ctx, model.SwipeOutcome{CardID: "user-1", Matched: true, Message: "It's a match!"})

			Convey("Then the banner shows before the modal", func() {
				banner := recv(t, banners)
				So(banner.Payload.(model.SwipeOutcome).CardID, ShouldEqual, "user-1")

				modal := recv(t, modals)
				So(modal.Payload.(model.SwipeOutcome).CardID, ShouldEqual, "user-1")
				So(modal.TS.Before(banner.TS), ShouldBeFalse)
				So(s.ModalOpen(), ShouldBeTrue)
			})

			Convey("Then the banner auto-dismisses", func() {
				recv(t, banners)
				hide := recv(t, hides)
				So(hide.Payload, ShouldEqual, "user-1")
			})

			Convey("Then the modal stays open until dismissed", func() {
				recv(t, modals)
				So(s.ModalOpen(), ShouldBeTrue)
				So(s.DismissModal(ctx), ShouldBeTrue)
				So(s.ModalOpen(), ShouldBeFalse)
				So(s.DismissModal(ctx), ShouldBeFalse)
			})
		})

		Convey("When a second match arrives during a presentation", func() {
			s.OnMatch(ctx, model.SwipeOutcome{CardID: "user-1", Matched: true})
			s.OnMatch(ctx, model.SwipeOutcome{CardID: "user-2", Matched: true})

			Convey("Then the second waits for the first modal's dismissal", func() {
				first := recv(t, banners)
				So(first.Payload.(model.SwipeOutcome).CardID, ShouldEqual, "user-1")
				recv(t, modals)
				So(s.PendingCount(), ShouldEqual, 1)

				// No second banner while the first modal is open.
				So(expectNone(banners, 100*time.Millisecond), ShouldBeTrue)

				So(s.DismissModal(ctx), ShouldBeTrue)
				second := recv(t, banners)
				So(second.Payload.(model.SwipeOutcome).CardID, ShouldEqual, "user-2")
				recv(t, modals)
				So(s.PendingCount(), ShouldEqual, 0)
			})
		})

		Convey("When the sequencer stops", func() {
			s.OnMatch(ctx, model.SwipeOutcome{CardID: "user-1", Matched: true})
			recv(t, banners)
			s.Stop()

			Convey("Then queued work is dropped and new matches ignored", func() {
				s.OnMatch(ctx, model.SwipeOutcome{CardID: "user-2", Matched: true})
				So(expectNone(banners, 100*time.Millisecond), ShouldBeTrue)
				So(s.PendingCount(), ShouldEqual, 0)
			})
		})
	})
}
