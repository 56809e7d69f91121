package planning

// ResolveServiceDuration resolves the effective service duration in
// minutes from the three-level override chain: stop override, device
// type default, global default.
//
// Zero or negative values on the first two tiers are treated as absent,
// not as an explicit zero duration. A zero override cannot be told
// apart from "unset" in the source data, so the next tier wins. The
// global default is returned unconditionally; configuration validates
// it is positive.
func ResolveServiceDuration(stopOverride, deviceTypeDefault, globalDefault int) int {
	if stopOverride > 0 {
		return stopOverride
	}
	if deviceTypeDefault > 0 {
		return deviceTypeDefault
	}
	return globalDefault
}

// resolveCandidateDuration applies the chain for one candidate using
// the engine configuration.
func (cfg InsertionConfig) resolveCandidateDuration(c Candidate) int {
	return ResolveServiceDuration(c.ServiceMinutes, cfg.DeviceTypeDurations[c.DeviceType], cfg.DefaultServiceMinutes)
}
