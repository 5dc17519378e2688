package engine

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// PDCurveMethod is the base term-structure method ("simple" or "beta").
	// A scenario with a non-zero PD shift is computed as an overlay on top
	// of this base.
	PDCurveMethod string  `envconfig:"PD_CURVE_METHOD" default:"simple"`
	BetaAlpha     float64 `envconfig:"PD_BETA_ALPHA" default:"2"`
	BetaBeta      float64 `envconfig:"PD_BETA_BETA" default:"5"`

	// LGDHaircutStress is the stress haircut applied on top of the scenario
	// floors, e.g. 0.1 for +10%.
	LGDHaircutStress float64 `envconfig:"LGD_HAIRCUT_STRESS" default:"0"`

	// SegmentKey is the comma-separated list of exposure fields forming the
	// rollup segment id. Supported fields: exposure_class, entity, currency,
	// product_type.
	SegmentKey string `envconfig:"SEGMENT_KEY" default:"exposure_class,entity"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
