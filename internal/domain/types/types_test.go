package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/tracescore/internal/domain/scoring"
	"github.com/okian/tracescore/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreRequestDecoding(t *testing.T) {
	Convey("Given a minimal score request body", t, func() {
		body := `{"stroke":[{"x":1,"y":2},{"x":3,"y":4}],"circle":{"x":0,"y":0,"radius":10}}`

		Convey("When it is decoded", func() {
			var req types.ScoreRequest
			err := json.Unmarshal([]byte(body), &req)

			Convey("Then optional fields stay unset", func() {
				So(err, ShouldBeNil)
				So(req.Stroke, ShouldHaveLength, 2)
				So(req.Circle.Radius, ShouldEqual, 10)
				So(req.Difficulty, ShouldBeNil)
				So(req.Thresholds, ShouldBeNil)
				So(req.Penalty, ShouldBeFalse)
			})
		})
	})

	Convey("Given a request with threshold overrides", t, func() {
		body := `{"stroke":[],"circle":{"radius":1},"difficulty":0,"thresholds":{"deviation":{"excellent":0.1,"good":0.2,"poor":0.3}}}`

		Convey("When it is decoded", func() {
			var req types.ScoreRequest
			So(json.Unmarshal([]byte(body), &req), ShouldBeNil)

			Convey("Then an explicit zero difficulty is preserved", func() {
				So(req.Difficulty, ShouldNotBeNil)
				So(*req.Difficulty, ShouldEqual, 0)
			})

			Convey("And the override tier is populated", func() {
				So(req.Thresholds.Deviation, ShouldResemble, scoring.Tier{Excellent: 0.1, Good: 0.2, Poor: 0.3})
			})
		})
	})
}

func TestScoreResponseEncoding(t *testing.T) {
	Convey("Given a score response", t, func() {
		resp := types.ScoreResponse{
			AttemptID: "a-1",
			Subscores: scoring.Subscores{StrokeDeviation: 90, AngularSmoothness: 80, CompletionOffset: 70, OverallScore: 83},
		}

		Convey("When it is encoded", func() {
			b, err := json.Marshal(resp)

			Convey("Then the subscores are flattened into the object", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"attempt_id":"a-1","stroke_deviation":90,"angular_smoothness":80,"completion_offset":70,"overall_score":83}`)
			})
		})
	})
}
