package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Metrology/internal/filedef"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/config"
	"github.com/GriffinCanCode/Metrology/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Metrology/internal/numeric"
	"github.com/GriffinCanCode/Metrology/internal/quantity"
	core "github.com/GriffinCanCode/Metrology/internal/uncertainty"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// stdinPath selects standard input for -f
const stdinPath = "-"

type options struct {
	file     string
	format   string
	json     bool
	coverage float64
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("budget", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.file, "f", "", "Definition file, glob (defs/**/*.yaml) or - for stdin")
	fs.StringVar(&opts.format, "format", "", "Input format for stdin: yaml, toml or json (default: detect)")
	fs.BoolVar(&opts.json, "json", false, "Print JSON instead of the text report")
	fs.Float64Var(&opts.coverage, "k", 0, "Coverage factor of the expanded uncertainty and result (overrides the file)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.file == "" {
		fmt.Fprintln(stderr, "budget: -f is required")
		fs.Usage()
		return 2
	}

	cfg := config.LoadOrDefault()
	logger, err := logging.New(logging.FromConfig(cfg.Logging, "stderr"))
	if err != nil {
		fmt.Fprintf(stderr, "budget: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	numeric.SetPrecision(cfg.Measurement.PrecisionBits)

	if opts.coverage < 0 {
		fmt.Fprintln(stderr, "budget: -k must be positive")
		return 2
	}

	if err := execute(opts, stdin, stdout, logger.Component("budget")); err != nil {
		logger.Error("budget failed", zap.String("file", opts.file), zap.Error(err))
		fmt.Fprintf(stderr, "budget: %v\n", err)
		return 1
	}
	return 0
}

func execute(opts options, stdin io.Reader, stdout io.Writer, logger *logging.Logger) error {
	defs, err := load(opts, stdin)
	if err != nil {
		return err
	}

	built := make([]*filedef.Built, 0, len(defs))
	for _, d := range defs {
		b, err := filedef.Build(d.def)
		if err != nil {
			return fmt.Errorf("%s: %w", d.source, err)
		}
		if opts.coverage > 0 {
			if err := b.SetCoverage(opts.coverage); err != nil {
				return fmt.Errorf("%s: %w", d.source, err)
			}
		}
		logger.Debug("definition loaded",
			zap.String("source", d.source),
			zap.String("name", b.Name),
			zap.Int("sources", b.Budget.Len()),
			zap.Int("outliers", len(b.Outliers)))
		built = append(built, b)
	}

	if opts.json {
		return writeJSON(stdout, built)
	}
	for i, b := range built {
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		if err := textReport(stdout, b); err != nil {
			return err
		}
	}
	return nil
}

type loaded struct {
	source string
	def    *filedef.Definition
}

func load(opts options, stdin io.Reader) ([]loaded, error) {
	if opts.file == stdinPath {
		var format filedef.Format
		if opts.format != "" {
			f, err := filedef.ParseFormat(opts.format)
			if err != nil {
				return nil, err
			}
			format = f
		}
		def, err := filedef.Load(stdin, format)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return []loaded{{source: "stdin", def: def}}, nil
	}
	if opts.format != "" {
		return nil, errors.New("-format only applies to stdin")
	}

	paths, err := filedef.Expand(opts.file)
	if err != nil {
		return nil, err
	}
	out := make([]loaded, 0, len(paths))
	for _, path := range paths {
		def, err := filedef.LoadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, loaded{source: path, def: def})
	}
	return out, nil
}

// writeJSON prints one object for a single definition and an array otherwise.
func writeJSON(w io.Writer, built []*filedef.Built) error {
	reports := make([]*reportJSON, len(built))
	for i, b := range built {
		r, err := jsonReport(b)
		if err != nil {
			return err
		}
		reports[i] = r
	}

	var v interface{} = reports
	if len(reports) == 1 {
		v = reports[0]
	}
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func textReport(w io.Writer, b *filedef.Built) error {
	if b.Series != nil {
		if err := seriesText(w, b); err != nil {
			return err
		}
	}
	if b.Budget.Len() == 0 {
		return nil
	}
	report, err := b.Budget.ReportWithCoverage(b.Coverage)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, report); err != nil {
		return err
	}
	if b.Result != nil {
		_, err = fmt.Fprintf(w, "\nResult: %s\n        %s\n", b.Result.ScientificNotation(), b.Result.IntervalNotation())
	}
	return err
}

func seriesText(w io.Writer, b *filedef.Built) error {
	fmt.Fprintf(w, "Series: %d readings", b.Series.Count())
	if len(b.Outliers) > 0 {
		fmt.Fprintf(w, " (%d outliers excluded:", len(b.Outliers))
		for _, q := range b.Outliers {
			fmt.Fprintf(w, " %s", q)
		}
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)

	sum, err := b.Series.Summary()
	if err != nil {
		// fewer than two readings: the mean is all there is
		if mean, merr := b.Series.Mean(); merr == nil {
			_, err = fmt.Fprintf(w, "  mean %s\n\n", mean)
			return err
		}
		_, err = fmt.Fprintln(w)
		return err
	}
	_, err = fmt.Fprintf(w, "  mean %s  s %s  s/√n %s\n\n", sum.Mean, sum.StandardDeviation, sum.StandardError)
	return err
}

type entryJSON struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type quantityJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type reportJSON struct {
	Name          string         `json:"name"`
	Readings      int            `json:"readings,omitempty"`
	Outliers      []quantityJSON `json:"outliers,omitempty"`
	Combined      *quantityJSON  `json:"combined,omitempty"`
	Expanded      *quantityJSON  `json:"expanded,omitempty"`
	Coverage      float64        `json:"coverage_factor"`
	Contributions []entryJSON    `json:"contributions,omitempty"`
	Sensitivities []entryJSON    `json:"sensitivities,omitempty"`
	Result        *resultJSON    `json:"result,omitempty"`
}

type resultJSON struct {
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"`
	Unit        string  `json:"unit"`
	Confidence  float64 `json:"confidence"`
	Text        string  `json:"text"`
}

func toQuantityJSON(q quantity.Quantity) quantityJSON {
	return quantityJSON{Value: q.Float64(), Unit: q.Unit().Symbol()}
}

func toEntries(in []core.Entry) []entryJSON {
	out := make([]entryJSON, len(in))
	for i, e := range in {
		out[i] = entryJSON{Name: e.Name, Value: e.Value}
	}
	return out
}

func jsonReport(b *filedef.Built) (*reportJSON, error) {
	out := &reportJSON{Name: b.Name, Coverage: b.Coverage}
	if b.Series != nil {
		out.Readings = b.Series.Count()
		for _, q := range b.Outliers {
			out.Outliers = append(out.Outliers, toQuantityJSON(q))
		}
	}
	if b.Budget.Len() == 0 {
		return out, nil
	}

	uc, err := b.Budget.CombinedUncertainty()
	if err != nil {
		return nil, err
	}
	contrib, err := b.Budget.Contributions()
	if err != nil {
		return nil, err
	}
	combined := toQuantityJSON(uc)
	expanded := toQuantityJSON(uc.Scale(numeric.NewReal(b.Coverage)))
	out.Combined = &combined
	out.Expanded = &expanded
	out.Contributions = toEntries(contrib)
	out.Sensitivities = toEntries(b.Budget.SensitivityCoefficients())

	if b.Result != nil {
		out.Result = &resultJSON{
			Value:       b.Result.Value().Float64(),
			Uncertainty: b.Result.Uncertainty().Float64(),
			Unit:        b.Result.Value().Unit().Symbol(),
			Confidence:  b.Result.ConfidenceLevel(),
			Text:        b.Result.String(),
		}
	}
	return out, nil
}
