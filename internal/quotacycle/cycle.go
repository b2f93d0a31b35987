package quotacycle

import (
	cycleDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/quotacycle"
)

// QuotaCycle is one recurring accounting window. At most one cycle is active
// per guild; shifts stay tagged to the cycle they were worked in, so history
// remains queryable after a rollover.
type QuotaCycle struct {
	ID        int64 `json:"id"`
	StartDate int64 `json:"start_date"`
	EndDate   int64 `json:"end_date"`
	IsActive  bool  `json:"is_active"`
}

// Default span of a freshly reset cycle.
const defaultCycleDays = 7

func ToDataModel(c *QuotaCycle) *cycleDatamodel.QuotaCycle {
	return &cycleDatamodel.QuotaCycle{
		ID:        c.ID,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		IsActive:  c.IsActive,
	}
}

func FromDataModel(dm *cycleDatamodel.QuotaCycle) *QuotaCycle {
	return &QuotaCycle{
		ID:        dm.ID,
		StartDate: dm.StartDate,
		EndDate:   dm.EndDate,
		IsActive:  dm.IsActive,
	}
}
