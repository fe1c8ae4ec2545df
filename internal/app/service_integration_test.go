package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/langvote/internal/adapters/repository"
	service "github.com/okian/langvote/internal/app"
	"github.com/okian/langvote/internal/domain/results"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by sqlite", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := repository.OpenSQL(ctx, repository.DialectSQLite, "file:service-integration?mode=memory&cache=shared")
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithStore(store, "sqlite"),
			service.WithSeedDemoData(true),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When many voters submit concurrently", func() {
			var wg sync.WaitGroup
			for i := range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					lang := []string{"go", "rust", "python"}[i%3]
					_, _, _ = svc.Submit(ctx, ballot(fmt.Sprintf("Voter %d", i), fmt.Sprintf("voter%d@example.com", i), lang))
				}()
			}
			wg.Wait()

			Convey("Then every vote is counted once on top of the demo data", func() {
				res, err := svc.Results(ctx)
				So(err, ShouldBeNil)
				So(res.TotalVotes, ShouldEqual, 23)
				So(len(res.AllSubmissions), ShouldEqual, 23)

				sum := 0
				for _, n := range res.LanguageCounts {
					sum += n
				}
				So(sum, ShouldEqual, 23)
			})

			Convey("Then the aggregate matches the raw counts", func() {
				res, err := svc.Results(ctx)
				So(err, ShouldBeNil)

				snap := results.Aggregate(res.AllSubmissions)
				So(snap.LanguageCounts, ShouldResemble, res.LanguageCounts)
				So(snap.TotalVotes, ShouldEqual, res.TotalVotes)
			})
		})
	})
}
