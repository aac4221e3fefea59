package operations

// Stage identifiers, in pipeline order.
const (
	StageIDMerge         = "merge"
	StageIDEmployability = "employability"
	StageIDDemand        = "demand"
	StageIDSalary        = "salary"
	StageIDMarket        = "market"
	StageIDNormalize     = "normalize"
)

// Stage names
const (
	StageNameMerge         = "Sector Join"
	StageNameEmployability = "Employability"
	StageNameDemand        = "Demand Aggregation"
	StageNameSalary        = "Salary Median"
	StageNameMarket        = "Market Table"
	StageNameNormalize     = "Market Normalization"
)

// StageOrder lists every stage in the order a full run executes them.
var StageOrder = []string{
	StageIDMerge,
	StageIDEmployability,
	StageIDDemand,
	StageIDSalary,
	StageIDMarket,
	StageIDNormalize,
}

// OperationRequest selects the stages of one run.
type OperationRequest struct {
	// Stages lists stage IDs to run; empty runs every registered stage.
	Stages []string `json:"stages,omitempty"`
}

// OperationResponse summarizes a finished run.
type OperationResponse struct {
	ID     string                `json:"id"`
	Status OperationStatusValue  `json:"status"`
	Steps  map[string]*StepState `json:"steps"`
	Error  string                `json:"error,omitempty"`
}
