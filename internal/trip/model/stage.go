package model

// Stage is the dialogue step derived from which slots are filled. It is
// never persisted.
type Stage string

const (
	StageNeedDestination      Stage = "NEED_DESTINATION"
	StageNeedOrigin           Stage = "NEED_ORIGIN"
	StageNeedTravelers        Stage = "NEED_TRAVELERS"
	StageNeedActivities       Stage = "NEED_ACTIVITIES"
	StageNeedBudget           Stage = "NEED_BUDGET"
	StageNeedBudgetAllocation Stage = "NEED_BUDGET_ALLOCATION"
	StageNeedDates            Stage = "NEED_DATES"
	StageNeedFlexibility      Stage = "NEED_FLEXIBILITY"
	StageNeedConfirmation     Stage = "NEED_CONFIRMATION"
	StageReady                Stage = "READY"
)

func (s Stage) String() string { return string(s) }
