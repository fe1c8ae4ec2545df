package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/langvote/internal/adapters/repository"
	"github.com/okian/langvote/internal/config"
)

func TestSeed(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

		Convey("When seeding demo data", func() {
			seeded, err := repository.Seed(ctx, store, now)
			So(err, ShouldBeNil)
			So(seeded, ShouldBeTrue)

			Convey("Then the three demo votes exist in order with past timestamps", func() {
				all, err := store.All(ctx)
				So(err, ShouldBeNil)
				So(emails(all), ShouldResemble, []string{"john@example.com", "jane@example.com", "bob@example.com"})
				So(all[0].Language, ShouldEqual, "javascript")
				So(all[0].TimeSubmitted, ShouldEqual, "2024-06-01T12:00:00.000Z")
				So(all[1].TimeSubmitted, ShouldEqual, "2024-06-02T00:00:00.000Z")
				So(all[2].TimeSubmitted, ShouldEqual, "2024-06-02T06:00:00.000Z")
			})

			Convey("And seeding again leaves the store alone", func() {
				seeded, err := repository.Seed(ctx, store, now.Add(time.Hour))
				So(err, ShouldBeNil)
				So(seeded, ShouldBeFalse)

				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given a config", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		Convey("When the backend is memory", func() {
			store, err := repository.Open(ctx, cfg)
			So(err, ShouldBeNil)
			So(store, ShouldHaveSameTypeAs, &repository.MemoryStore{})
			So(store.Close(), ShouldBeNil)
		})

		Convey("When the backend is sqlite", func() {
			cfg.StoreBackend = config.BackendSQLite
			cfg.SQLiteDSN = "file:open-test?mode=memory&cache=shared"

			store, err := repository.Open(ctx, cfg)
			So(err, ShouldBeNil)
			So(store, ShouldHaveSameTypeAs, &repository.SQLStore{})
			So(store.Close(), ShouldBeNil)
		})

		Convey("When the backend is unknown", func() {
			cfg.StoreBackend = "mongo"

			_, err := repository.Open(ctx, cfg)
			So(errors.Is(err, repository.ErrUnsupportedBackend), ShouldBeTrue)
		})
	})
}
