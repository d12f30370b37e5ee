package entity_test

import (
	"encoding/json"
	"errors"
	"testing"

	"opecbrain/entity"

	"github.com/smartystreets/goconvey/convey"
)

func TestRecordApply(t *testing.T) {
	convey.Convey("Given a fresh record", t, func() {
		rec := entity.NewRecord("CAIXA 12")
		ts := entity.MustParseTimestamp("2024-03-10 08:00:00")

		convey.Convey("When a known status is applied", func() {
			ok := rec.Apply("desceu", ts)

			convey.Convey("Then only the matching field and the status change", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(rec.Lowered, convey.ShouldEqual, ts)
				convey.So(rec.Raised, convey.ShouldBeNil)
				convey.So(rec.Ready, convey.ShouldBeNil)
				convey.So(rec.Status, convey.ShouldEqual, entity.StatusLowered)
			})
		})

		convey.Convey("When an unknown status is applied", func() {
			rec.Apply(entity.StatusReady, ts)
			ok := rec.Apply("Sumiu", entity.MustParseTimestamp("2024-03-11 09:00:00"))

			convey.Convey("Then nothing changes", func() {
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(rec.Status, convey.ShouldEqual, entity.StatusReady)
				convey.So(rec.Ready.String(), convey.ShouldEqual, "2024-03-10 08:00:00")
				convey.So(rec.Dates(), convey.ShouldResemble, []string{"2024-03-10"})
			})
		})
	})
}

func TestRecordJSON(t *testing.T) {
	convey.Convey("Given a record with one timestamp", t, func() {
		rec := entity.NewRecord("Foo")
		rec.Apply(entity.StatusRaised, entity.MustParseTimestamp("2024-03-10 08:00:00"))

		convey.Convey("It serializes with exactly the five legacy keys", func() {
			data, err := json.Marshal(rec)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(data), convey.ShouldEqual,
				`{"objeto":"Foo","subiu":"2024-03-10 08:00:00","desceu":null,"pronto":null,"status":"Subiu"}`)
		})

		convey.Convey("A legacy document with null status decodes", func() {
			var got entity.Record
			err := json.Unmarshal([]byte(`{"objeto":"X","subiu":null,"desceu":null,"pronto":null,"status":null}`), &got)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got.Object, convey.ShouldEqual, "X")
			convey.So(got.Status, convey.ShouldEqual, entity.Status(""))
			convey.So(got.Dates(), convey.ShouldBeEmpty)
		})

		convey.Convey("A malformed timestamp is rejected", func() {
			var got entity.Record
			err := json.Unmarshal([]byte(`{"objeto":"X","subiu":"10/03/2024"}`), &got)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestParseEntry(t *testing.T) {
	convey.Convey("Given the add form input", t, func() {
		convey.Convey("Plain text keeps the selected status and is upper-cased", func() {
			name, st, err := entity.ParseEntry("  caixa 12 ", entity.StatusRaised)
			convey.So(err, convey.ShouldBeNil)
			convey.So(name, convey.ShouldEqual, "CAIXA 12")
			convey.So(st, convey.ShouldEqual, entity.StatusRaised)
		})

		convey.Convey("A trailing known status overrides the selection", func() {
			name, st, err := entity.ParseEntry("caixa 12 | PRONTO", entity.StatusRaised)
			convey.So(err, convey.ShouldBeNil)
			convey.So(name, convey.ShouldEqual, "CAIXA 12")
			convey.So(st, convey.ShouldEqual, entity.StatusReady)
		})

		convey.Convey("An unknown trailing token is part of the name", func() {
			name, st, err := entity.ParseEntry("a | b", entity.StatusLowered)
			convey.So(err, convey.ShouldBeNil)
			convey.So(name, convey.ShouldEqual, "A | B")
			convey.So(st, convey.ShouldEqual, entity.StatusLowered)
		})

		convey.Convey("An empty name is rejected", func() {
			_, _, err := entity.ParseEntry(" | subiu", entity.StatusLowered)
			convey.So(errors.Is(err, entity.ErrEmptyName), convey.ShouldBeTrue)
		})

		convey.Convey("An unknown selected status is rejected", func() {
			_, _, err := entity.ParseEntry("x", "Sumiu")
			convey.So(errors.Is(err, entity.ErrUnknownStatus), convey.ShouldBeTrue)
		})
	})
}
