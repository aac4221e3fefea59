package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"raisetl/internal/config"
	"raisetl/internal/dataprocessing"
	"raisetl/internal/errors"
	"raisetl/internal/exporter"
	"raisetl/internal/files"
	"raisetl/internal/storage"
	"raisetl/internal/validation"
	"raisetl/pkg/contracts/domain"
)

// stageEnv is what every stage adapter shares.
type stageEnv struct {
	logger    *slog.Logger
	opts      dataprocessing.Options
	validator *validation.FileValidator
}

func newStageEnv(cfg config.PipelineConfig, logger *slog.Logger) stageEnv {
	if logger == nil {
		logger = slog.Default()
	}
	return stageEnv{
		logger:    logger,
		opts:      dataprocessing.Options{Encoding: cfg.Encoding, ReportEvery: cfg.ReportEvery},
		validator: validation.NewFileValidator(logger),
	}
}

// NewStage builds the stage adapter for id from the pipeline configuration.
// Paths left empty in cfg fall back to the layout under cfg.DataDir.
func NewStage(id string, cfg config.PipelineConfig, logger *slog.Logger) (Step, error) {
	env := newStageEnv(cfg, logger)
	paths := config.NewPaths(cfg.DataDir)

	switch id {
	case StageIDMerge:
		return newMergeStage(env,
			config.Or(cfg.Merge.Rais, paths.RaisCombined),
			config.Or(cfg.Merge.Cnaes, paths.CnaesUnicos),
			config.Or(cfg.Merge.Out, paths.Joined)), nil
	case StageIDEmployability:
		return newEmployabilityStage(env,
			config.Or(cfg.Employability.In, config.Or(cfg.Merge.Out, paths.Joined)),
			rateCandidates(cfg.Employability.Rates, paths.Desocupacao),
			config.Or(cfg.Employability.Out, paths.Employability)), nil
	case StageIDDemand:
		return newSumStage(env, StageIDDemand, StageNameDemand,
			config.Or(cfg.Demand.In, config.Or(cfg.Merge.Out, paths.Joined)),
			config.Or(cfg.Demand.Out, paths.Demand),
			dataprocessing.FieldOpportunityGain, domain.ColumnDemand), nil
	case StageIDSalary:
		return newSalaryStage(env,
			config.Or(cfg.Salary.In, config.Or(cfg.Merge.Out, paths.Joined)),
			config.Or(cfg.Salary.Out, paths.Salary),
			cfg.Salary.IncludeZeros), nil
	case StageIDMarket:
		return newMarketStage(env, dataprocessing.MarketInputs{
			Employability: config.Or(cfg.Employability.Out, paths.Employability),
			Demand:        config.Or(cfg.Demand.Out, paths.Demand),
			Salary:        config.Or(cfg.Salary.Out, paths.Salary),
		}, config.Or(cfg.Market.Out, paths.Market), cfg.Market.XLSXOut), nil
	case StageIDNormalize:
		return newNormalizeStage(env,
			config.Or(cfg.Normalize.In, config.Or(cfg.Market.Out, paths.Market)),
			config.Or(cfg.Normalize.Out, paths.Normalized),
			cfg.Normalize.GroupBy,
			cfg.Normalize.RangeStore), nil
	default:
		return nil, NewNotFoundError(id)
	}
}

// NewPipelineRegistry registers every stage in StageOrder.
func NewPipelineRegistry(cfg config.PipelineConfig, logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry()
	for _, id := range StageOrder {
		step, err := NewStage(id, cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// rateCandidates returns the configured rate table, or the default JSON file
// followed by a CSV of the same name.
func rateCandidates(configured, def string) []string {
	if configured != "" {
		return []string{configured}
	}
	return []string{def, strings.TrimSuffix(def, filepath.Ext(def)) + ".csv"}
}

// MergeStage joins the raw extract to the sector map.
type MergeStage struct {
	BaseStage
	stageEnv
	rais, cnaes, out string
}

// newMergeStage creates the merge stage.
func newMergeStage(env stageEnv, rais, cnaes, out string) *MergeStage {
	return &MergeStage{
		BaseStage: NewBaseStage(StageIDMerge, StageNameMerge),
		stageEnv:  env,
		rais:      rais,
		cnaes:     cnaes,
		out:       out,
	}
}

func (s *MergeStage) Validate(*OperationState) error {
	if err := s.validator.ValidateInputFiles(s.rais, s.cnaes); err != nil {
		return err
	}
	return s.validator.ValidateOutputDirectory(s.out)
}

func (s *MergeStage) Execute(ctx context.Context, state *OperationState) error {
	st := s.stepState(state)

	side, err := dataprocessing.NewSideTableLoader(s.logger, s.opts).LoadSectorMap(ctx, s.cnaes)
	if err != nil {
		return err
	}
	st.SetMetadata("sector_keys", len(side))

	joiner := dataprocessing.NewJoiner(s.logger, s.opts, dataprocessing.DefaultJoinConfig())
	w, err := exporter.CreateStreamWriter(s.out, joiner.Header())
	if err != nil {
		return err
	}
	defer w.Close()

	stats, err := joiner.Join(ctx, s.rais, side, w)
	st.AddStats(stats)
	if err != nil {
		return err
	}
	return w.Commit()
}

func (s *MergeStage) Outputs() []string { return []string{s.out} }

// EmployabilityStage sums employment per group and derives employability.
type EmployabilityStage struct {
	BaseStage
	stageEnv
	in    string
	rates []string
	out   string

	ratesPath string
}

// newEmployabilityStage creates the employability stage. rates lists
// candidate rate tables; the first that exists is used.
func newEmployabilityStage(env stageEnv, in string, rates []string, out string) *EmployabilityStage {
	return &EmployabilityStage{
		BaseStage: NewBaseStage(StageIDEmployability, StageNameEmployability),
		stageEnv:  env,
		in:        in,
		rates:     rates,
		out:       out,
	}
}

func (s *EmployabilityStage) Validate(*OperationState) error {
	if err := s.validator.ValidateInputFile(s.in); err != nil {
		return err
	}
	ratesPath, err := files.FindInput(s.rates...)
	if err != nil {
		return err
	}
	s.ratesPath = ratesPath
	return s.validator.ValidateOutputDirectory(s.out)
}

func (s *EmployabilityStage) Execute(ctx context.Context, state *OperationState) error {
	st := s.stepState(state)
	if s.ratesPath == "" {
		if err := s.Validate(state); err != nil {
			return err
		}
	}

	rates, err := dataprocessing.NewSideTableLoader(s.logger, s.opts).LoadRateTable(ctx, s.ratesPath)
	if err != nil {
		return err
	}

	counts, stats, err := dataprocessing.NewAggregator(s.logger, s.opts).Sum(ctx, s.in, dataprocessing.FieldEmployment)
	if err != nil {
		st.AddStats(stats)
		return err
	}

	res := dataprocessing.NewEmployabilityCalculator(s.logger).Calculate(ctx, counts, rates)
	st.SetMetadata("missing_years", res.MissingYears)
	st.SetMetadata("rate_file", s.ratesPath)

	stats.Written = int64(len(res.Values))
	st.AddStats(stats)
	return exporter.WriteGroupTable(s.out, domain.ColumnEmployability, res.Values)
}

func (s *EmployabilityStage) Outputs() []string { return []string{s.out} }

// SumStage sums one value column per group into a summary table.
type SumStage struct {
	BaseStage
	stageEnv
	in, out     string
	value       dataprocessing.FieldSpec
	valueColumn string
}

// newSumStage creates a sum-mode aggregation stage.
func newSumStage(env stageEnv, id, name, in, out string, value dataprocessing.FieldSpec, valueColumn string) *SumStage {
	return &SumStage{
		BaseStage:   NewBaseStage(id, name),
		stageEnv:    env,
		in:          in,
		out:         out,
		value:       value,
		valueColumn: valueColumn,
	}
}

func (s *SumStage) Validate(*OperationState) error {
	if err := s.validator.ValidateInputFile(s.in); err != nil {
		return err
	}
	return s.validator.ValidateOutputDirectory(s.out)
}

func (s *SumStage) Execute(ctx context.Context, state *OperationState) error {
	st := s.stepState(state)

	sums, stats, err := dataprocessing.NewAggregator(s.logger, s.opts).Sum(ctx, s.in, s.value)
	stats.Written = int64(len(sums))
	st.AddStats(stats)
	if err != nil {
		return err
	}
	return exporter.WriteGroupTable(s.out, s.valueColumn, sums)
}

func (s *SumStage) Outputs() []string { return []string{s.out} }

// SalaryStage writes the exact wage median per group.
type SalaryStage struct {
	BaseStage
	stageEnv
	in, out      string
	includeZeros bool
}

// newSalaryStage creates the salary median stage.
func newSalaryStage(env stageEnv, in, out string, includeZeros bool) *SalaryStage {
	return &SalaryStage{
		BaseStage:    NewBaseStage(StageIDSalary, StageNameSalary),
		stageEnv:     env,
		in:           in,
		out:          out,
		includeZeros: includeZeros,
	}
}

func (s *SalaryStage) Validate(*OperationState) error {
	if err := s.validator.ValidateInputFile(s.in); err != nil {
		return err
	}
	return s.validator.ValidateOutputDirectory(s.out)
}

func (s *SalaryStage) Execute(ctx context.Context, state *OperationState) error {
	st := s.stepState(state)

	medians, stats, err := dataprocessing.NewAggregator(s.logger, s.opts).Median(ctx, s.in, dataprocessing.FieldMeanWage, s.includeZeros)
	stats.Written = int64(len(medians))
	st.AddStats(stats)
	if err != nil {
		return err
	}
	return exporter.WriteGroupTable(s.out, domain.ColumnSalaryMedian, medians)
}

func (s *SalaryStage) Outputs() []string { return []string{s.out} }

// MarketStage combines the summary tables into the market table.
type MarketStage struct {
	BaseStage
	stageEnv
	in      dataprocessing.MarketInputs
	present dataprocessing.MarketInputs
	out     string
	xlsxOut string
}

// newMarketStage creates the market stage. An empty xlsxOut skips the workbook.
func newMarketStage(env stageEnv, in dataprocessing.MarketInputs, out, xlsxOut string) *MarketStage {
	return &MarketStage{
		BaseStage: NewBaseStage(StageIDMarket, StageNameMarket),
		stageEnv:  env,
		in:        in,
		out:       out,
		xlsxOut:   xlsxOut,
	}
}

// Validate keeps the summary tables that exist; a missing one leaves its
// column empty. At least one table is required.
func (s *MarketStage) Validate(*OperationState) error {
	s.present = dataprocessing.MarketInputs{}
	inputs := []struct {
		path string
		dst  *string
	}{
		{s.in.Employability, &s.present.Employability},
		{s.in.Demand, &s.present.Demand},
		{s.in.Salary, &s.present.Salary},
	}
	var found int
	for _, in := range inputs {
		if in.path == "" {
			continue
		}
		ok, err := s.validator.ValidateOptionalInputFile(in.path)
		if err != nil {
			return err
		}
		if ok {
			*in.dst = in.path
			found++
		}
	}
	if found == 0 {
		return errors.NewMissingInputError(
			strings.Join([]string{s.in.Employability, s.in.Demand, s.in.Salary}, ", "),
			fmt.Errorf("no summary table found"))
	}
	for _, out := range s.Outputs() {
		if err := s.validator.ValidateOutputDirectory(out); err != nil {
			return err
		}
	}
	return nil
}

func (s *MarketStage) Execute(ctx context.Context, state *OperationState) error {
	st := s.stepState(state)

	records, err := dataprocessing.NewMarketCombiner(s.logger, s.opts).Combine(ctx, s.present)
	if err != nil {
		return err
	}
	st.AddStats(dataprocessing.RowStats{Written: int64(len(records)), Groups: len(records)})

	if err := exporter.WriteMarketTable(s.out, records); err != nil {
		return err
	}
	if s.xlsxOut != "" {
		if err := exporter.WriteMarketXLSX(s.xlsxOut, records); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "Market workbook written", slog.String("file", s.xlsxOut))
	}
	return nil
}

func (s *MarketStage) Outputs() []string {
	if s.xlsxOut != "" {
		return []string{s.out, s.xlsxOut}
	}
	return []string{s.out}
}

// NormalizeStage runs the two-pass normalizer over the market table.
type NormalizeStage struct {
	BaseStage
	stageEnv
	in, out    string
	groupBy    []string
	rangeStore string
}

// newNormalizeStage creates the normalize stage. An empty rangeStore keeps
// the pass-1 ranges in memory; otherwise they go to a SQLite file.
func newNormalizeStage(env stageEnv, in, out string, groupBy []string, rangeStore string) *NormalizeStage {
	return &NormalizeStage{
		BaseStage:  NewBaseStage(StageIDNormalize, StageNameNormalize),
		stageEnv:   env,
		in:         in,
		out:        out,
		groupBy:    groupBy,
		rangeStore: rangeStore,
	}
}

func (s *NormalizeStage) Validate(*OperationState) error {
	if err := s.validator.ValidateInputFile(s.in); err != nil {
		return err
	}
	if s.rangeStore != "" {
		if err := s.validator.ValidateOutputDirectory(s.rangeStore); err != nil {
			return err
		}
	}
	return s.validator.ValidateOutputDirectory(s.out)
}

func (s *NormalizeStage) openStore(ctx context.Context) (dataprocessing.RangeStore, error) {
	if s.rangeStore == "" {
		return dataprocessing.NewMemoryRangeStore(), nil
	}
	return storage.OpenSQLiteRangeStore(ctx, s.rangeStore, s.logger)
}

func (s *NormalizeStage) Execute(ctx context.Context, state *OperationState) error {
	st := s.stepState(state)

	store, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var w *exporter.StreamWriter
	defer func() {
		if w != nil {
			w.Close()
		}
	}()
	open := func(header []string) (dataprocessing.RowWriter, error) {
		sw, err := exporter.CreateStreamWriter(s.out, header)
		if err != nil {
			return nil, err
		}
		w = sw
		return sw, nil
	}

	n := dataprocessing.NewNormalizer(s.logger, s.opts, dataprocessing.NormalizeConfig{GroupBy: s.groupBy})
	res, err := n.Run(ctx, s.in, store, open)
	st.AddStats(res.Pass1)
	st.AddStats(res.Pass2)
	st.SetMetadata("groups", res.Groups)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("normalizer produced no output for %s", s.in)
	}
	return w.Commit()
}

func (s *NormalizeStage) Outputs() []string { return []string{s.out} }
