package config_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/sportlink/swipedeck/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.BackendBaseURL, convey.ShouldEqual, "http://localhost:8000")
			convey.So(cfg.CommitThresholdPX, convey.ShouldEqual, 120)
			convey.So(cfg.FetchLimit, convey.ShouldEqual, 10)
			convey.So(cfg.LowWater, convey.ShouldEqual, 3)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.WorkerCount, convey.ShouldBeGreaterThan, 0)
			convey.So(cfg.BannerMS, convey.ShouldEqual, 4000)
			convey.So(cfg.ModalDelayMS, convey.ShouldEqual, 1000)
			convey.So(cfg.BreakerThreshold, convey.ShouldEqual, 5)
		})
	})
}
