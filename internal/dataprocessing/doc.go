// Package dataprocessing implements the streaming core of the RAIS pipeline.
// It resolves tolerant column names, parses locale-ambiguous decimals, joins the
// raw extract to the sector map, aggregates per (year, sector) and normalizes
// summary tables.
//
// # Architecture
//
// Every stage streams its source once through a TableReader:
//
// 1. SideTableLoader: small reference tables (sector map, rate table) loaded into memory
// 2. Joiner: the raw extract joined row by row to the sector map
// 3. Aggregator: sum or exact median per group
// 4. EmployabilityCalculator: employability from summed employment and the rate table
// 5. Normalizer: two passes, per-group ranges into a RangeStore then min-max scaling
// 6. MarketCombiner: outer join of the summary tables
//
// Columns are resolved once from the header. A required column that cannot be
// resolved is a MISSING_COLUMN error; problems in individual rows are counted
// in RowStats and never stop a stage.
//
// # Usage
//
//	agg := dataprocessing.NewAggregator(logger, dataprocessing.Options{ReportEvery: 100000})
//	medians, stats, err := agg.Median(ctx, "rais_com_cnaes_setor.csv", dataprocessing.FieldMeanWage, false)
package dataprocessing
