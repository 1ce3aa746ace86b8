// internal/platform/classifier/defaults.go
package classifier

// Built-in rule tables. Order is significant: waves files also satisfy the
// buoy pattern and must be listed before it.

// DefaultSiteRules returns the site rules for the deployed buoys.
func DefaultSiteRules() RuleSet {
	return mustRuleSet(
		MustRule("humboldt", `.*\.z05\..*`),
		MustRule("morro", `.*\.z06\..*`),
	)
}

// DefaultPipelineRules returns the pipeline kind rules.
func DefaultPipelineRules() RuleSet {
	return mustRuleSet(
		MustRule("a2e_waves_ingest", `.*waves\.csv`),
		MustRule("a2e_imu_ingest", `.*\.imu\.bin`),
		MustRule("a2e_lidar_ingest", `.*\.sta\.7z`),
		MustRule("a2e_buoy_ingest", `buoy\..*\.(?:csv|zip|tar|tar\.gz)`),
	)
}

func mustRuleSet(rules ...PatternRule) RuleSet {
	rs, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return rs
}
