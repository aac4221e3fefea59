package domain

import "strings"

// Output column names shared by every stage that reads or writes summary tables.
// The raw extract uses the Portuguese labels of the RAIS export; summary tables use
// lower-case snake names so the dashboard can address them directly.
const (
	ColumnYear             = "ano"
	ColumnSector           = "setor"
	ColumnEmployability    = "empregabilidade"
	ColumnDemand           = "demanda"
	ColumnSalaryMedian     = "salario_mediana"
	ColumnDemandNorm       = "demanda_normalizada"
	ColumnSalaryMedianNorm = "salario_mediana_normalizado"
)

// Joined extract header, in the fixed order the join stage emits.
var JoinedHeader = []string{
	"Ano",
	"ID CNAE",
	"CNAE",
	"Massa Salarial",
	"Salário Médio",
	"Número de empregos",
	"Ganho de Oportunidade",
	"SETOR",
}

// GroupKey identifies one (year, sector) aggregation group.
// Both fields are trimmed; a key with an empty field never reaches an aggregator.
type GroupKey struct {
	Year   string `json:"ano" csv:"ano"`
	Sector string `json:"setor" csv:"setor"`
}

// NewGroupKey trims both fields.
func NewGroupKey(year, sector string) GroupKey {
	return GroupKey{Year: strings.TrimSpace(year), Sector: strings.TrimSpace(sector)}
}

// Valid reports whether both fields are non-empty.
func (k GroupKey) Valid() bool {
	return k.Year != "" && k.Sector != ""
}

// Less orders keys by year, then sector. Comparison is lexical on the raw text,
// which is what makes output ordering byte-stable across runs.
func (k GroupKey) Less(other GroupKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Sector < other.Sector
}

// GroupValue is one emitted summary row: a key and its metric.
type GroupValue struct {
	Key   GroupKey `json:"key"`
	Value float64  `json:"value"`
}

// MarketRecord is one row of the combined market table consumed by the dashboard.
// A nil metric means the source table had no row for this key.
type MarketRecord struct {
	Key           GroupKey `json:"key"`
	Employability *float64 `json:"empregabilidade,omitempty"`
	Demand        *float64 `json:"demanda,omitempty"`
	SalaryMedian  *float64 `json:"salario_mediana,omitempty"`
}
