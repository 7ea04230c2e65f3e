package audit

// Defaults applied by New for unset Config fields.
const (
	// DefaultWarnRatio and DefaultCritRatio are usage/hard-limit thresholds.
	DefaultWarnRatio = 0.7
	DefaultCritRatio = 0.9

	// DefaultWorkers keeps the gather sequential unless asked otherwise.
	DefaultWorkers = 1
)

// Config tunes an Auditor.
type Config struct {
	// WarnRatio and CritRatio classify a dimension once usage/hard reaches
	// them (inclusive).
	WarnRatio float64
	CritRatio float64

	// Workers bounds the gather pool; 1 reads sequentially.
	Workers int
}

func _defaultConfig() *Config {
	return &Config{
		WarnRatio: DefaultWarnRatio,
		CritRatio: DefaultCritRatio,
		Workers:   DefaultWorkers,
	}
}
