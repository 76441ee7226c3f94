package planning

import (
	"fmt"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

// ChannelBudgets is the total budget split into per-channel amounts.
type ChannelBudgets struct {
	Digital float64
	Print   float64
	Video   float64
}

// MixAllocator turns an objective into a channel split using the configured
// strategy table.
type MixAllocator struct {
	strategies   map[models.Objective]models.MixSplit
	noVideoSplit Redistribution
}

// NewMixAllocator returns an allocator over cfg's strategies.
func NewMixAllocator(cfg Config) MixAllocator {
	return MixAllocator{strategies: cfg.Strategies, noVideoSplit: cfg.NoVideoSplit}
}

// Split returns the budget fractions for objective. When the advertiser
// needs no video, the video fraction is handed to digital and print
// according to the no-video split and video is set to 0.
func (a MixAllocator) Split(objective models.Objective, need models.VideoNeed) (models.MixSplit, error) {
	mix, ok := a.strategies[objective]
	if !ok {
		return models.MixSplit{}, fmt.Errorf("%w: %q", ErrUnknownObjective, objective)
	}
	if need == models.VideoNone {
		v := mix.Video
		mix.Digital += v * a.noVideoSplit.Digital
		mix.Print += v * a.noVideoSplit.Print
		mix.Video = 0
	}
	return mix, nil
}

// Budgets applies mix to total.
func (a MixAllocator) Budgets(total float64, mix models.MixSplit) ChannelBudgets {
	return ChannelBudgets{
		Digital: total * mix.Digital,
		Print:   total * mix.Print,
		Video:   total * mix.Video,
	}
}
