package planning

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

// mixTolerance bounds the floating error allowed when fractions must sum to 1.
const mixTolerance = 1e-9

// DigitalRates are the delivery constants of the digital display channel.
type DigitalRates struct {
	DisplayCPM float64  `yaml:"display_cpm" json:"display_cpm"`
	NativeCPM  float64  `yaml:"native_cpm" json:"native_cpm"`
	ReachRate  float64  `yaml:"reach_rate" json:"reach_rate"` // unique share of impressions
	Formats    []string `yaml:"formats" json:"formats"`
}

// PrintRates are the delivery constants of the print channel. Plans buy
// half-page insertions.
type PrintRates struct {
	FullPage          float64 `yaml:"full_page" json:"full_page"`
	HalfPage          float64 `yaml:"half_page" json:"half_page"`
	Circulation       float64 `yaml:"circulation" json:"circulation"`
	ReadersPerCopy    float64 `yaml:"readers_per_copy" json:"readers_per_copy"`
	ReachPerInsertion float64 `yaml:"reach_per_insertion" json:"reach_per_insertion"`
	Format            string  `yaml:"format" json:"format"`
}

// VideoRates are the delivery constants of the video channel. Plans that
// need a spot produced are charged the 30 second production cost.
type VideoRates struct {
	CPM            float64 `yaml:"cpm" json:"cpm"`
	Production15s  float64 `yaml:"production_15s" json:"production_15s"`
	Production30s  float64 `yaml:"production_30s" json:"production_30s"`
	Production60s  float64 `yaml:"production_60s" json:"production_60s"`
	CompletionRate float64 `yaml:"completion_rate" json:"completion_rate"`
	Format         string  `yaml:"format" json:"format"`
}

// Rates groups the per-channel constants and the coverage denominator.
type Rates struct {
	Digital          DigitalRates `yaml:"digital" json:"digital"`
	Print            PrintRates   `yaml:"print" json:"print"`
	Video            VideoRates   `yaml:"video" json:"video"`
	TargetPopulation float64      `yaml:"target_population" json:"target_population"`
}

// Redistribution is how the video share is handed to the other channels
// when the advertiser needs no video.
type Redistribution struct {
	Digital float64 `yaml:"digital" json:"digital"`
	Print   float64 `yaml:"print" json:"print"`
}

// Config is the planning configuration: rate constants and mix strategies.
// It is read-only once handed to an Engine.
type Config struct {
	Version      string                               `yaml:"version" json:"version"`
	Rates        Rates                                `yaml:"rates" json:"rates"`
	Strategies   map[models.Objective]models.MixSplit `yaml:"strategies" json:"strategies"`
	NoVideoSplit Redistribution                       `yaml:"no_video_split" json:"no_video_split"`
}

// DefaultConfig returns the 2024 rate constants and mix strategies.
func DefaultConfig() Config {
	return Config{
		Version: "2024",
		Rates: Rates{
			Digital: DigitalRates{
				DisplayCPM: 6.0,
				NativeCPM:  8.0,
				ReachRate:  0.22,
				Formats:    []string{"Leaderboard 728×90", "MPU 300×250", "Mobile Interstitiel"},
			},
			Print: PrintRates{
				FullPage:          4800,
				HalfPage:          2500,
				Circulation:       45000,
				ReadersPerCopy:    1.9,
				ReachPerInsertion: 85000,
				Format:            "Demi-page couleur Le Soir Weekend",
			},
			Video: VideoRates{
				CPM:            5.0,
				Production15s:  1500,
				Production30s:  2000,
				Production60s:  3500,
				CompletionRate: 0.18,
				Format:         `Pre-roll 30" Sudinfo.be`,
			},
			TargetPopulation: 3500000,
		},
		Strategies: map[models.Objective]models.MixSplit{
			models.ObjectiveAwareness:  {Digital: 0.60, Print: 0.25, Video: 0.15},
			models.ObjectiveTraffic:    {Digital: 0.70, Print: 0.15, Video: 0.15},
			models.ObjectiveEngagement: {Digital: 0.50, Print: 0.20, Video: 0.30},
		},
		NoVideoSplit: Redistribution{Digital: 0.6, Print: 0.4},
	}
}

// LoadConfig reads a YAML planning configuration from path. Fields missing
// from the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read planning config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("planning config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML planning configuration over DefaultConfig and
// validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	// A strategies block in the file replaces the defaults instead of
	// merging into them.
	if overlay.Strategies != nil {
		cfg.Strategies = overlay.Strategies
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every constant is usable and every split sums to 1.
func (c Config) Validate() error {
	r := c.Rates
	positive := []struct {
		name  string
		value float64
	}{
		{"rates.digital.display_cpm", r.Digital.DisplayCPM},
		{"rates.digital.reach_rate", r.Digital.ReachRate},
		{"rates.print.half_page", r.Print.HalfPage},
		{"rates.print.circulation", r.Print.Circulation},
		{"rates.print.reach_per_insertion", r.Print.ReachPerInsertion},
		{"rates.video.cpm", r.Video.CPM},
		{"rates.video.completion_rate", r.Video.CompletionRate},
		{"rates.target_population", r.TargetPopulation},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%s must be positive, got %v", p.name, p.value)
		}
	}
	if r.Video.Production30s < 0 {
		return fmt.Errorf("rates.video.production_30s must not be negative")
	}
	if r.Digital.ReachRate > 1 || r.Video.CompletionRate > 1 {
		return fmt.Errorf("reach_rate and completion_rate must not exceed 1")
	}

	if len(c.Strategies) == 0 {
		return fmt.Errorf("no mix strategies configured")
	}
	for obj, mix := range c.Strategies {
		if !obj.Valid() {
			return fmt.Errorf("strategy for unknown objective %q", obj)
		}
		if mix.Digital < 0 || mix.Print < 0 || mix.Video < 0 {
			return fmt.Errorf("strategy %s has a negative share", obj)
		}
		if math.Abs(mix.Sum()-1) > mixTolerance {
			return fmt.Errorf("strategy %s sums to %v, want 1", obj, mix.Sum())
		}
	}

	rd := c.NoVideoSplit
	if rd.Digital < 0 || rd.Print < 0 || math.Abs(rd.Digital+rd.Print-1) > mixTolerance {
		return fmt.Errorf("no_video_split must be two non-negative shares summing to 1")
	}
	return nil
}
