package constants

// Scorecard cells that are not tied to a criterion row.
const (
	CellTotal    = "B35"
	CellDecision = "B36"
	CellDate     = "B38"
	CellLocation = "B39"
)

// Scorecard columns for a criterion row.
const (
	ColEarned  = 4 // D
	ColPoints  = 6 // F
	ColComment = 7 // G
)

// criteria maps scorecard rows to the names used on the historical scorecards.
var criteria = map[int]string{
	6:  "Approved integrator",
	7:  "Bidder list clarity",
	8:  "Integrator competition",
	9:  "Client/GC relationship",
	11: "SCADA definition",
	12: "PLC brand",
	13: "SCADA brand",
	14: "Instrumentation definition",
	15: "Schedule realism",
	22: "Geography",
	23: "Bid timing",
	24: "Strategic value",
	25: "Liquidated damages",
	26: "Delivery model",
	27: "Installation responsibility",
}

// CriterionName returns the scorecard name for a row, if the row is a known criterion.
func CriterionName(row int) (string, bool) {
	name, ok := criteria[row]
	return name, ok
}
