// Command report builds a monthly, comparison or trend report from one or
// two reservation files (local paths or http(s) URLs).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/stayreport/internal/config"
	"github.com/AngelCh415/stayreport/internal/ingest"
	"github.com/AngelCh415/stayreport/internal/metrics"
	"github.com/AngelCh415/stayreport/internal/report"
	"github.com/AngelCh415/stayreport/internal/store"
)

type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

type options struct {
	fileA, fileB string
	period       string
	month        string
	trend        string
	properties   stringList
	format       string
	lang         string
	missing      string
	out          string
	bom          bool
}

func main() {
	var o options
	flag.StringVar(&o.fileA, "a", "", "input file or URL (earlier period in comparisons)")
	flag.StringVar(&o.fileB, "b", "", "second input file or URL; enables comparison mode")
	flag.StringVar(&o.period, "period", "", "period to summarize, YYYY-MM")
	flag.StringVar(&o.month, "month", "", "month (1-12) to compare across -a and -b")
	flag.StringVar(&o.trend, "trend", "", "metric to chart over every period of -a")
	flag.Var(&o.properties, "property", "property to include in a trend (repeatable)")
	flag.StringVar(&o.format, "format", "table", "table, csv, xlsx or json")
	flag.StringVar(&o.lang, "lang", "", "header language, en or ja")
	flag.StringVar(&o.missing, "missing", "", "comparison fill for absent properties: zero or undefined")
	flag.StringVar(&o.out, "o", "", "output file (default stdout)")
	flag.BoolVar(&o.bom, "bom", false, "prefix CSV output with a UTF-8 BOM")
	flag.Parse()

	if err := run(context.Background(), o); err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if o.fileA == "" {
		return errors.New("-a is required")
	}
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if o.lang == "" {
		o.lang = cfg.HeaderLang
	}
	lang, err := report.ParseLang(o.lang)
	if err != nil {
		return err
	}

	loader := ingest.NewLoader(ingest.NewHTTPClient(cfg.HTTPTimeout, cfg.FetchAllowPrivate), logger, cfg, nil)
	svc := metrics.NewService(logger, nil)

	var a, b *store.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = load(gctx, loader, o.fileA)
		return err
	})
	if o.fileB != "" && o.trend == "" {
		g.Go(func() (err error) {
			b, err = load(gctx, loader, o.fileB)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var raw any
	var table func(report.Mode) report.Table
	switch {
	case o.trend != "":
		metric, err := metrics.ParseMetric(o.trend)
		if err != nil {
			return err
		}
		tr, err := svc.Trend(a, metric, o.properties)
		if err != nil {
			return err
		}
		raw = tr
		table = func(m report.Mode) report.Table { return report.TrendTable(tr, m, lang) }

	case o.fileB != "":
		month, err := metrics.ParseMonth(o.month)
		if err != nil {
			return err
		}
		if o.missing == "" {
			o.missing = cfg.MissingSide
		}
		policy, err := metrics.ParseMissingSide(o.missing)
		if err != nil {
			return err
		}
		cmp, err := svc.CompareMonth(a, b, month, metrics.CompareOptions{MissingSide: policy})
		if err != nil {
			return err
		}
		raw = cmp
		table = func(m report.Mode) report.Table { return report.ComparisonTable(cmp, m, lang) }

	default:
		if o.period == "" {
			periods, _ := svc.Periods(a)
			return fmt.Errorf("-period is required; periods in %s: %s", a.Name(), strings.Join(periods, ", "))
		}
		rep, err := svc.Monthly(a, o.period)
		if err != nil {
			return err
		}
		raw = rep
		table = func(m report.Mode) report.Table { return report.SummaryTable(rep.Summaries, m, lang) }
	}

	var w io.Writer = os.Stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case report.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", " ")
		return enc.Encode(raw)
	case report.FormatCSV:
		return report.WriteCSV(w, table(report.Export), o.bom)
	case report.FormatXLSX:
		return report.WriteXLSX(w, table(report.Export), "report")
	}
	return report.WriteText(w, table(report.Display))
}

func load(ctx context.Context, l *ingest.Loader, src string) (*store.Dataset, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return l.Load(ctx, ingest.Source{URL: src})
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return l.Load(ctx, ingest.Source{Name: src, Body: f})
}
