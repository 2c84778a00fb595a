package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	dedupe "github.com/okian/vigil/internal/domain/dedupe"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording frame IDs", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the ID is new", func() {
				seen := d.SeenAndRecord(context.Background(), "frame-1")

				Convey("Then it should return false and record the ID", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the ID was already seen", func() {
				d.SeenAndRecord(context.Background(), "frame-1")
				seen := d.SeenAndRecord(context.Background(), "frame-1")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When unrecording an ID", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(context.Background(), "frame-1")
			d.Unrecord(context.Background(), "frame-1")

			Convey("Then the ID can be recorded again", func() {
				So(d.SeenAndRecord(context.Background(), "frame-1"), ShouldBeFalse)
			})
		})

		Convey("When the window overflows", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithWindowSize(3))
			for i := 0; i < 4; i++ {
				d.SeenAndRecord(context.Background(), fmt.Sprintf("frame-%d", i))
			}

			Convey("Then the oldest ID is forgotten", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(context.Background(), "frame-0"), ShouldBeFalse)
			})

			Convey("And recent IDs are still tracked", func() {
				So(d.SeenAndRecord(context.Background(), "frame-3"), ShouldBeTrue)
			})
		})

		Convey("When accessed concurrently", func() {
			d := dedupe.NewInMemoryDeduper()
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						d.SeenAndRecord(context.Background(), fmt.Sprintf("g%d-f%d", n, j))
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every ID is tracked exactly once", func() {
				So(d.Size(), ShouldEqual, 1000)
			})
		})
	})
}
