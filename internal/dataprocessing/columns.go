package dataprocessing

import (
	"strings"

	"raisetl/internal/errors"
)

// FieldSpec names a logical field and the header spellings accepted for it,
// in order of preference.
type FieldSpec struct {
	Name       string
	Candidates []string
	Required   bool
}

// Require returns a copy of f marked as required.
func (f FieldSpec) Require() FieldSpec {
	f.Required = true
	return f
}

// Optional returns a copy of f marked as optional.
func (f FieldSpec) Optional() FieldSpec {
	f.Required = false
	return f
}

// Logical fields of the RAIS extract and the summary tables.
var (
	FieldYear = FieldSpec{Name: "ano", Candidates: []string{"Ano", "ano", "ANo", "ANO"}}

	FieldSectorID = FieldSpec{Name: "id_cnae", Candidates: []string{"ID CNAE", "id_cnae", "id cnae", "idcnae"}}

	FieldCNAE = FieldSpec{Name: "cnae", Candidates: []string{"CNAE", "cnae"}}

	FieldWageMass = FieldSpec{Name: "massa_salarial", Candidates: []string{"Massa Salarial", "massa_salarial", "massa salarial"}}

	FieldMeanWage = FieldSpec{Name: "salario_medio", Candidates: []string{
		"Salário Médio", "Salario Medio", "salario medio", "salario_medio", "Salário Medio",
	}}

	FieldEmployment = FieldSpec{Name: "num_empregos", Candidates: []string{
		"Número de empregos", "Numero de empregos", "numero de empregos", "numero_de_empregos", "num_empregos",
	}}

	FieldOpportunityGain = FieldSpec{Name: "ganho_oportunidade", Candidates: []string{
		"Ganho de Oportunidade", "Ganho de oportunidade", "ganho oportunidade", "ganho_oportunidade",
	}}

	FieldSector = FieldSpec{Name: "setor", Candidates: []string{"SETOR", "setor"}}

	FieldDemand = FieldSpec{Name: "demanda", Candidates: []string{"demanda", "Demanda"}}

	FieldSalaryMedian = FieldSpec{Name: "salario_mediana", Candidates: []string{"salario_mediana", "salario_medio"}}

	FieldEmployability = FieldSpec{Name: "empregabilidade", Candidates: []string{"empregabilidade", "Empregabilidade"}}

	FieldRate = FieldSpec{Name: "taxa", Candidates: []string{"taxa", "taxa_desocupacao", "desocupacao", "rate"}}
)

// normalizeHeader folds a header name for comparison.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// ChooseColumn returns the index in header of the first candidate that matches
// after trimming and case-folding. When two header names fold to the same text
// the later one wins.
func ChooseColumn(header []string, candidates []string) (int, bool) {
	norm := make(map[string]int, len(header))
	for i, h := range header {
		norm[normalizeHeader(h)] = i
	}
	for _, c := range candidates {
		if i, ok := norm[normalizeHeader(c)]; ok {
			return i, true
		}
	}
	return -1, false
}

// ColumnIndex maps logical field names to column positions for one file.
// It is resolved once from the header and reused for every row.
type ColumnIndex struct {
	Header []string
	fields map[string]int
}

// ResolveColumns resolves every spec against header. An unresolved required
// field fails with a missing-column error that lists the candidates and the
// header actually found; unresolved optional fields read as empty.
func ResolveColumns(path string, header []string, specs ...FieldSpec) (*ColumnIndex, error) {
	idx := &ColumnIndex{
		Header: header,
		fields: make(map[string]int, len(specs)),
	}

	missing := make(map[string][]string)
	for _, spec := range specs {
		i, ok := ChooseColumn(header, spec.Candidates)
		if !ok {
			if spec.Required {
				missing[spec.Name] = spec.Candidates
			}
			continue
		}
		idx.fields[spec.Name] = i
	}

	if len(missing) > 0 {
		return nil, errors.NewMissingColumnError(path, missing, header)
	}
	return idx, nil
}

// Has reports whether field was resolved.
func (c *ColumnIndex) Has(field string) bool {
	_, ok := c.fields[field]
	return ok
}

// Index returns the column position of field.
func (c *ColumnIndex) Index(field string) (int, bool) {
	i, ok := c.fields[field]
	return i, ok
}

// Value returns the trimmed cell of field in record, or "" when the field is
// unresolved or the record is short.
func (c *ColumnIndex) Value(record []string, field string) string {
	i, ok := c.fields[field]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// Raw returns the untrimmed cell of field in record.
func (c *ColumnIndex) Raw(record []string, field string) string {
	i, ok := c.fields[field]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
