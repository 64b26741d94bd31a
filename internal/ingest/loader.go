package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/AngelCh415/stayreport/internal/config"
	"github.com/AngelCh415/stayreport/internal/store"
	"github.com/AngelCh415/stayreport/internal/telemetry"
	"github.com/AngelCh415/stayreport/internal/utils"
)

// Source is one uploaded file, or a URL to fetch it from.
type Source struct {
	Name string
	Body io.Reader
	URL  string
}

// Loader runs read -> normalize for one source and returns its dataset.
type Loader struct {
	c   HTTPClient
	log *slog.Logger
	cfg config.Config
	enc Encoding
	obs *telemetry.Metrics
}

func NewLoader(c HTTPClient, log *slog.Logger, cfg config.Config, obs *telemetry.Metrics) *Loader {
	enc, err := ParseEncoding(cfg.InputEncoding)
	if err != nil {
		enc = EncodingAuto
	}
	return &Loader{c: c, log: log, cfg: cfg, enc: enc, obs: obs}
}

func (l *Loader) Load(ctx context.Context, src Source) (*store.Dataset, error) {
	return l.LoadWith(ctx, src, l.enc)
}

// LoadWith is Load with a per-call input encoding.
func (l *Loader) LoadWith(ctx context.Context, src Source, enc Encoding) (*store.Dataset, error) {
	name, body := src.Name, src.Body
	if src.URL != "" {
		bo := utils.NewBackoff(l.cfg.FetchBackoff, l.cfg.FetchRetries)
		b, err := Fetch(ctx, l.c, src.URL, bo, l.cfg.MaxUploadBytes())
		if err != nil {
			l.log.Warn("fetch failed", slog.String("url", src.URL), slog.String("err", err.Error()))
			return nil, err
		}
		body = bytes.NewReader(b)
		if name == "" {
			name = nameFromURL(src.URL)
		}
	}
	if body == nil {
		return nil, errors.New("source has neither body nor url")
	}

	raw, err := Read(name, body, enc)
	if err == nil {
		recs, nerr := Normalize(raw)
		if nerr == nil {
			for i := range recs {
				recs[i].Source = name
			}
			l.obs.RowsNormalized(len(recs))
			l.log.Info("ingest complete", slog.String("source", name), slog.Int("rows", len(recs)))
			return store.NewDataset(name, recs), nil
		}
		err = nerr
	}

	err = withSource(err, name)
	var pe *ParseError
	if errors.As(err, &pe) {
		l.obs.ParseError()
		l.log.Warn("parse failed", slog.String("source", name), slog.Int("row", pe.Row),
			slog.String("column", pe.Column), slog.String("err", pe.Err.Error()))
	}
	return nil, err
}
