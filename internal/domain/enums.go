package domain

import "fmt"

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectDone     ProjectStatus = "done"
	ProjectArchived ProjectStatus = "archived"
)

// GenerationMode records how an auto-generated phase was produced.
// Manually defined phases carry GenerationNone.
type GenerationMode string

const (
	GenerationNone    GenerationMode = ""
	GenerationDaily   GenerationMode = "daily"
	GenerationWeekly  GenerationMode = "weekly"
	GenerationMonthly GenerationMode = "monthly"
)

// TimeScale is the display granularity of a project timeline. It is derived
// from the phases, never stored per phase.
type TimeScale string

const (
	ScaleDaily   TimeScale = "daily"
	ScaleWeekly  TimeScale = "weekly"
	ScaleMonthly TimeScale = "monthly"
	ScaleCustom  TimeScale = "custom"
)

// ValidTimeScales is the canonical set of accepted time scale strings.
var ValidTimeScales = map[string]bool{
	"daily": true, "weekly": true, "monthly": true, "custom": true,
}

// ParseTimeScale converts a user supplied string into a TimeScale.
func ParseTimeScale(s string) (TimeScale, error) {
	if !ValidTimeScales[s] {
		return "", fmt.Errorf("invalid time scale %q (expected daily, weekly, monthly or custom)", s)
	}
	return TimeScale(s), nil
}

// Scale returns the display scale a generation mode corresponds to.
func (m GenerationMode) Scale() TimeScale {
	switch m {
	case GenerationDaily:
		return ScaleDaily
	case GenerationWeekly:
		return ScaleWeekly
	case GenerationMonthly:
		return ScaleMonthly
	default:
		return ScaleCustom
	}
}

// GenerationMode returns the generation mode that produces phases of this
// scale. Custom has none.
func (s TimeScale) GenerationMode() GenerationMode {
	switch s {
	case ScaleDaily:
		return GenerationDaily
	case ScaleWeekly:
		return GenerationWeekly
	case ScaleMonthly:
		return GenerationMonthly
	default:
		return GenerationNone
	}
}

// NodeKind is the level of a node in the klasifikasi -> sub-klasifikasi ->
// pekerjaan tree. Only pekerjaan leaves carry volume.
type NodeKind string

const (
	NodeKlasifikasi    NodeKind = "klasifikasi"
	NodeSubKlasifikasi NodeKind = "sub-klasifikasi"
	NodePekerjaan      NodeKind = "pekerjaan"
)

// ValidNodeKinds is the canonical set of accepted node kind strings.
var ValidNodeKinds = map[string]bool{
	"klasifikasi": true, "sub-klasifikasi": true, "pekerjaan": true,
}
