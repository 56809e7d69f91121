package planning

// PadMinutes applies the arrival buffer to a raw travel or service
// estimate: rawMinutes * (1 + percent/100) + fixedMinutes.
//
// The model performs no clamping; out-of-range config values propagate
// as larger or smaller buffers. Bounds (0-100%, 0-120 min) are enforced
// at the request boundary.
func PadMinutes(rawMinutes float64, config ArrivalBufferConfig) float64 {
	return rawMinutes*(1+config.Percent/100) + config.FixedMinutes
}

// padTravel pads one travel leg.
func (cfg InsertionConfig) padTravel(rawMinutes float64) float64 {
	return PadMinutes(rawMinutes, cfg.Buffer)
}

// padService pads a service duration only when the engine is configured
// to buffer service time as well as travel.
func (cfg InsertionConfig) padService(minutes float64) float64 {
	if !cfg.BufferServiceTime {
		return minutes
	}
	return PadMinutes(minutes, cfg.Buffer)
}
