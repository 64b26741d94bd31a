package httpx

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/stayreport/internal/config"
	"github.com/AngelCh415/stayreport/internal/ingest"
	"github.com/AngelCh415/stayreport/internal/metrics"
	"github.com/AngelCh415/stayreport/internal/report"
	"github.com/AngelCh415/stayreport/internal/store"
	"github.com/AngelCh415/stayreport/internal/utils"
)

type handlers struct {
	log    *slog.Logger
	loader *ingest.Loader
	svc    *metrics.Service
	cfg    config.Config
}

// multipart parts above this size spill to temp files
const formMemory = 8 << 20

// source picks the uploaded file in field, or the URL in urlField. done
// releases the upload.
func (h *handlers) source(r *http.Request, field, urlField string) (src ingest.Source, done func(), err error) {
	if u := r.FormValue(urlField); u != "" {
		return ingest.Source{URL: u}, func() {}, nil
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return ingest.Source{}, nil, err
	}
	return ingest.Source{Name: hdr.Filename, Body: f}, func() { f.Close() }, nil
}

func (h *handlers) load(r *http.Request, field, urlField string, enc ingest.Encoding) (*store.Dataset, error) {
	src, done, err := h.source(r, field, urlField)
	if err != nil {
		return nil, err
	}
	defer done()
	return h.loader.LoadWith(r.Context(), src, enc)
}

// loadPair loads both sides of a comparison concurrently. Form access stays
// on the request goroutine.
func (h *handlers) loadPair(r *http.Request, enc ingest.Encoding) (a, b *store.Dataset, err error) {
	srcA, doneA, err := h.source(r, "file_a", "source_url_a")
	if err != nil {
		return nil, nil, err
	}
	defer doneA()
	srcB, doneB, err := h.source(r, "file_b", "source_url_b")
	if err != nil {
		return nil, nil, err
	}
	defer doneB()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		a, err = h.loader.LoadWith(ctx, srcA, enc)
		return err
	})
	g.Go(func() (err error) {
		b, err = h.loader.LoadWith(ctx, srcB, enc)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (h *handlers) prepare(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(formMemory); err != nil && err != http.ErrNotMultipart {
		return err
	}
	return nil
}

func (h *handlers) encoding(q outputQuery) ingest.Encoding {
	src := q.Encoding
	if src == "" {
		src = h.cfg.InputEncoding
	}
	enc, err := ingest.ParseEncoding(src)
	if err != nil {
		return ingest.EncodingAuto
	}
	return enc
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := toAPIError(err)
	if ae.StatusCode >= 500 {
		h.log.Error("request failed", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
	}
	render.Render(w, r, ae)
}

func (h *handlers) periods(w http.ResponseWriter, r *http.Request) {
	if err := h.prepare(w, r); err != nil {
		h.fail(w, r, err)
		return
	}
	q := parseOutput(r.URL.Query())
	if ae := checkQuery(q); ae != nil {
		h.fail(w, r, ae)
		return
	}
	ds, err := h.load(r, "file", "source_url", h.encoding(q))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	periods, months := h.svc.Periods(ds)
	render.JSON(w, r, map[string]any{
		"source":     ds.Name(),
		"rows":       ds.Len(),
		"periods":    periods,
		"months":     months,
		"properties": ds.Properties(),
	})
}

func (h *handlers) monthly(w http.ResponseWriter, r *http.Request) {
	if err := h.prepare(w, r); err != nil {
		h.fail(w, r, err)
		return
	}
	q := parseMonthly(r.URL.Query())
	if ae := checkQuery(q); ae != nil {
		h.fail(w, r, ae)
		return
	}
	ds, err := h.load(r, "file", "source_url", h.encoding(q.outputQuery))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rep, err := h.svc.Monthly(ds, q.Period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rep.Summaries = metrics.ListSummaries(rep.Summaries, metrics.ParseListOptions(r.URL.Query()))
	h.respond(w, r, q.outputQuery, rep, report.SummaryFilename(rep.Period, h.format(q.outputQuery)),
		func(m report.Mode, l report.Lang) report.Table { return report.SummaryTable(rep.Summaries, m, l) })
}

func (h *handlers) compare(w http.ResponseWriter, r *http.Request) {
	if err := h.prepare(w, r); err != nil {
		h.fail(w, r, err)
		return
	}
	q := parseCompare(r.URL.Query())
	if ae := checkQuery(q); ae != nil {
		h.fail(w, r, ae)
		return
	}
	missing := q.Missing
	if missing == "" {
		missing = h.cfg.MissingSide
	}
	policy, err := metrics.ParseMissingSide(missing)
	if err != nil {
		h.fail(w, r, badParam(err.Error()))
		return
	}
	a, b, err := h.loadPair(r, h.encoding(q.outputQuery))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cmp, err := h.svc.CompareMonth(a, b, time.Month(q.Month), metrics.CompareOptions{MissingSide: policy})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cmp.Rows = metrics.ListComparison(cmp.Rows, metrics.ParseListOptions(r.URL.Query()))
	h.respond(w, r, q.outputQuery, cmp, report.ComparisonFilename(cmp.YearA, cmp.YearB, cmp.Month, h.format(q.outputQuery)),
		func(m report.Mode, l report.Lang) report.Table { return report.ComparisonTable(cmp, m, l) })
}

func (h *handlers) trend(w http.ResponseWriter, r *http.Request) {
	if err := h.prepare(w, r); err != nil {
		h.fail(w, r, err)
		return
	}
	q := parseTrend(r.URL.Query())
	if ae := checkQuery(q); ae != nil {
		h.fail(w, r, ae)
		return
	}
	metric, err := metrics.ParseMetric(q.Metric)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ds, err := h.load(r, "file", "source_url", h.encoding(q.outputQuery))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tr, err := h.svc.Trend(ds, metric, q.Properties)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, q.outputQuery, tr, report.TrendFilename(tr.Metric, h.format(q.outputQuery)),
		func(m report.Mode, l report.Lang) report.Table { return report.TrendTable(tr, m, l) })
}

func (h *handlers) format(q outputQuery) report.Format {
	f, err := report.ParseFormat(q.Format)
	if err != nil {
		return report.FormatJSON
	}
	return f
}

func (h *handlers) lang(q outputQuery) report.Lang {
	src := q.Lang
	if src == "" {
		src = h.cfg.HeaderLang
	}
	l, err := report.ParseLang(src)
	if err != nil {
		return report.LangEN
	}
	return l
}

// respond writes raw JSON, a display table, or an export file depending on format.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, q outputQuery, raw any, filename string,
	table func(report.Mode, report.Lang) report.Table) {
	f := h.format(q)
	switch f {
	case report.FormatJSON:
		render.JSON(w, r, raw)
		return
	case report.FormatTable:
		render.JSON(w, r, table(report.Display, h.lang(q)))
		return
	}

	var buf bytes.Buffer
	var err error
	t := table(report.Export, h.lang(q))
	if f == report.FormatXLSX {
		err = report.WriteXLSX(&buf, t, "report")
	} else {
		err = report.WriteCSV(&buf, t, q.BOM)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
