package ecl

// AdjustLGD applies the asset-class floor and the stress haircut to a base
// loss-given-default: max(base, floor) * (1 + haircut), clamped to [0, 1].
// A class missing from the floor map means a zero floor, not an error.
func AdjustLGD(lgdBase float64, assetClass string, floorMap map[string]float64, haircutStress float64) float64 {
	floor := floorMap[assetClass]
	lgd := lgdBase
	if floor > lgd {
		lgd = floor
	}
	return clamp01(lgd * (1 + haircutStress))
}
