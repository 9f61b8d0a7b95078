package planner

import (
	"github.com/backmassage/dvstamp/internal/filter"
	"github.com/backmassage/dvstamp/internal/overlay"
)

// deinterlaceStage matches what a hand-tuned capture workflow would use:
// one frame per frame, parity detected, only interlaced frames touched.
var deinterlaceStage = filter.New("yadif",
	filter.Opt("mode", "send_frame"),
	filter.Opt("parity", "auto"),
	filter.Opt("deint", "interlaced"),
)

// BuildVideoChain returns the ordered video stages for req. The overlay is
// drawn last so user filters (crop, scale) never distort the text.
func BuildVideoChain(req Request) []filter.Stage {
	var stages []filter.Stage
	if req.Deinterlace {
		stages = append(stages, deinterlaceStage)
	}
	stages = append(stages, req.VideoFilters...)
	stages = append(stages, overlay.DrawStages(req.Overlay)...)
	return stages
}
