package golearn

import (
	"context"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wdm0006/catfill/pkg/io/csvio"
	"github.com/wdm0006/catfill/pkg/transform/impute"
)

func TestDenseInstancesHandOff(t *testing.T) {
	Convey("Given the survey data imputed by contingency", t, func() {
		p := filepath.FromSlash("../../examples/data/survey.csv")
		fr, err := csvio.ReadFile(p, csvio.ReaderOptions{HasHeader: true, ForceString: []string{"zip"}})
		So(err, ShouldBeNil)
		ctx := context.Background()
		fitted, err := (&impute.ContingencyImputer{}).Fit(ctx, fr)
		So(err, ShouldBeNil)
		clean, err := fitted.Apply(ctx, fr)
		So(err, ShouldBeNil)

		Convey("Converting with a named class attribute", func() {
			inst, err := ToDenseInstances(clean, Options{Class: "plan"})
			So(err, ShouldBeNil)
			cols, rows := inst.Size()
			So(cols, ShouldEqual, 6)
			So(rows, ShouldEqual, 12)
			classes := inst.AllClassAttributes()
			So(classes, ShouldHaveLength, 1)
			So(classes[0].GetName(), ShouldEqual, "plan")

			Convey("Converting back restores labels and missing cells", func() {
				back, err := FromDenseInstances(inst, "")
				So(err, ShouldBeNil)
				So(back.Rows(), ShouldEqual, 12)
				want, _ := clean.StringColumn("plan")
				got, err := back.StringColumn("plan")
				So(err, ShouldBeNil)
				for i := 0; i < 12; i++ {
					wv, wok := want.Get(i)
					gv, gok := got.Get(i)
					So(gok, ShouldEqual, wok)
					So(gv, ShouldEqual, wv)
				}
				score, _ := back.ColumnByName("score")
				So(score.Missing(), ShouldEqual, 1)
			})
		})

		Convey("An unknown class column is rejected", func() {
			_, err := ToDenseInstances(clean, Options{Class: "nope"})
			So(err, ShouldNotBeNil)
		})
	})
}
