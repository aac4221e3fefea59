package config

// Application constants
const (
	AppName = "raisetl"

	// EnvPrefix namespaces the ambient overrides, e.g. RAISETL_LOGGING_LEVEL=debug.
	EnvPrefix = "RAISETL"

	DefaultDataDir     = "data"
	DefaultLogFile     = "logs/raisetl.log"
	DefaultReportEvery = 100_000

	// Encodings accepted by the text reader.
	EncodingAuto   = "auto"
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"

	// Delimiters of the source and output tables.
	ExtractDelimiter   = ';'
	SideTableDelimiter = ','
	OutputDelimiter    = ';'

	// FloatPrecision is the number of decimals written for every float column.
	FloatPrecision = 6
)

// Well-known file names under the data directory.
const (
	RaisCombinedFile  = "rais-combinado.csv"
	CnaesUnicosFile   = "cnaes_unicos.csv"
	DesocupacaoFile   = "desocupacao.json"
	JoinedFile        = "rais_com_cnaes_setor.csv"
	EmployabilityFile = "empregabilidade_por_setor.csv"
	DemandFile        = "demanda_por_setor.csv"
	SalaryFile        = "salario_medio_por_setor.csv"
	MarketFile        = "mercado_por_setor.csv"
	MarketXLSXFile    = "mercado_por_setor.xlsx"
	NormalizedFile    = "indicie_de_receptividade_do_mercado.csv"
)
