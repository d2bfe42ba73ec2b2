package media

import (
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBaselineEstimate(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a playing baseline with a known duration", t, func() {
		b := Baseline{PositionMs: 1000, DurationMs: 10_000, At: start, Playing: true}

		Convey("The position advances with wall time", func() {
			So(b.Estimate(start.Add(2*time.Second)), ShouldEqual, 3000)
		})

		Convey("Successive estimates are non-decreasing and bounded by the duration", func() {
			last := int64(-1)
			for i := 0; i < 200; i++ {
				pos := b.Estimate(start.Add(time.Duration(i) * 100 * time.Millisecond))
				So(pos, ShouldBeGreaterThanOrEqualTo, last)
				So(pos, ShouldBeLessThanOrEqualTo, b.DurationMs)
				last = pos
			}
		})

		Convey("A clock going backwards does not rewind the position", func() {
			So(b.Estimate(start.Add(-time.Second)), ShouldEqual, 1000)
		})
	})

	Convey("Given a paused baseline", t, func() {
		b := Baseline{PositionMs: 4200, DurationMs: 10_000, At: start}

		Convey("The position does not advance", func() {
			So(b.Estimate(start.Add(time.Minute)), ShouldEqual, 4200)
		})
	})

	Convey("Given an unknown duration", t, func() {
		b := Baseline{PositionMs: 4200, At: start, Playing: true}

		Convey("No extrapolation happens", func() {
			So(b.Estimate(start.Add(time.Minute)), ShouldEqual, 4200)
		})
	})

	Convey("For arbitrary inputs the estimate stays inside [0, duration]", t, func() {
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 1000; i++ {
			b := Baseline{
				PositionMs: rng.Int63n(400_000) - 100_000,
				DurationMs: rng.Int63n(300_000) + 1,
				At:         start,
				Playing:    rng.Intn(2) == 0,
			}
			pos := b.Estimate(start.Add(time.Duration(rng.Int63n(600)) * time.Second))
			So(pos, ShouldBeBetweenOrEqual, 0, b.DurationMs)
		}
	})
}

func TestRebase(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	track := Properties{Title: "Song", Artist: "Band", Album: "Record"}

	prevAt := func(pos int64) cell {
		r := reading{status: Playing, app: "player", properties: track, timeline: Timeline{DurationMs: 200_000}}
		return cell{
			present:  true,
			meta:     r.state(),
			baseline: Baseline{PositionMs: pos, DurationMs: 200_000, At: start, Playing: true},
		}
	}

	Convey("Given an extrapolated position of 50000ms", t, func() {
		prev := prevAt(0)
		now := start.Add(50 * time.Second)
		So(prev.baseline.Estimate(now), ShouldEqual, 50_000)

		Convey("An authoritative 40000ms read snaps exactly", func() {
			r := reading{status: Playing, app: "player", properties: track, timeline: Timeline{PositionMs: 40_000, DurationMs: 200_000}}
			next := rebase(prev, r, now)
			So(next.Estimate(now), ShouldEqual, 40_000)
		})

		Convey("A zero read on the same track keeps extrapolating", func() {
			r := reading{status: Playing, app: "player", properties: track, timeline: Timeline{DurationMs: 200_000}}
			next := rebase(prev, r, now)
			So(next.Estimate(now), ShouldEqual, 50_000)
			So(next.Estimate(now.Add(time.Second)), ShouldEqual, 51_000)
		})

		Convey("A zero read after stopping resets to zero", func() {
			r := reading{status: Stopped, app: "player", properties: track, timeline: Timeline{DurationMs: 200_000}}
			So(rebase(prev, r, now).Estimate(now), ShouldEqual, 0)
		})

		Convey("A track change resets to the reported position", func() {
			r := reading{status: Playing, app: "player", properties: Properties{Title: "Other"}, timeline: Timeline{PositionMs: 1234, DurationMs: 180_000}}
			So(rebase(prev, r, now).Estimate(now), ShouldEqual, 1234)
		})

		Convey("A track change without a position resets to zero", func() {
			r := reading{status: Playing, app: "player", properties: Properties{Title: "Other"}, timeline: Timeline{DurationMs: 180_000}}
			So(rebase(prev, r, now).Estimate(now), ShouldEqual, 0)
		})

		Convey("A reported position past the duration is clamped", func() {
			r := reading{status: Paused, app: "player", properties: track, timeline: Timeline{PositionMs: 999_999, DurationMs: 200_000}}
			So(rebase(prev, r, now).Estimate(now), ShouldEqual, 200_000)
		})
	})
}

func TestTimelineLength(t *testing.T) {
	Convey("Length prefers the explicit duration", t, func() {
		So(Timeline{DurationMs: 5, EndMs: 10}.Length(), ShouldEqual, 5)
		So(Timeline{StartMs: 2, EndMs: 10}.Length(), ShouldEqual, 8)
		So(Timeline{}.Length(), ShouldEqual, 0)
	})
}
