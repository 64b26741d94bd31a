package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AngelCh415/stayreport/internal/metrics"
)

var validate = newValidator()

// newValidator adds the sort-key tags, whose vocabulary lives in metrics.
func newValidator() *validator.Validate {
	v := validator.New()
	tags := map[string]bool{"summary_sort": false, "comparison_sort": true}
	for tag, comparison := range tags {
		comparison := comparison // per-iteration copy; go 1.21 loop variables are shared
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return metrics.ValidSort(fl.Field().String(), comparison)
		}); err != nil {
			panic(err)
		}
	}
	return v
}

type outputQuery struct {
	Format   string `validate:"omitempty,oneof=json table csv xlsx"`
	Lang     string `validate:"omitempty,oneof=en ja"`
	Encoding string `validate:"omitempty,oneof=auto utf-8 utf8 shift_jis sjis cp932"`
	BOM      bool
}

type monthlyQuery struct {
	outputQuery
	Period string `validate:"required,datetime=2006-01"`
	Sort   string `validate:"summary_sort"`
}

type compareQuery struct {
	outputQuery
	Month   int    `validate:"required,min=1,max=12"`
	Missing string `validate:"omitempty,oneof=zero undefined"`
	Sort    string `validate:"comparison_sort"`
}

type trendQuery struct {
	outputQuery
	Metric     string `validate:"required"`
	Properties []string
}

func parseOutput(v url.Values) outputQuery {
	return outputQuery{
		Format:   strings.ToLower(v.Get("format")),
		Lang:     strings.ToLower(v.Get("lang")),
		Encoding: strings.ToLower(v.Get("encoding")),
		BOM:      v.Get("bom") == "1" || v.Get("bom") == "true",
	}
}

func parseMonthly(v url.Values) monthlyQuery {
	return monthlyQuery{outputQuery: parseOutput(v), Period: strings.TrimSpace(v.Get("period")), Sort: sortKey(v)}
}

func parseCompare(v url.Values) compareQuery {
	m, _ := strconv.Atoi(strings.TrimSpace(v.Get("month")))
	return compareQuery{outputQuery: parseOutput(v), Month: m, Missing: strings.ToLower(v.Get("missing")), Sort: sortKey(v)}
}

func sortKey(v url.Values) string { return strings.ToLower(strings.TrimSpace(v.Get("sort"))) }

func parseTrend(v url.Values) trendQuery {
	return trendQuery{outputQuery: parseOutput(v), Metric: v.Get("metric"), Properties: v["property"]}
}

// checkQuery validates a parsed query struct, answering 400 with one entry per bad field.
func checkQuery(q any) *APIError {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return badParam(err.Error())
	}
	fields := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, FieldError{Field: strings.ToLower(fe.Field()), Message: "failed '" + fe.Tag() + "' check"})
	}
	return newAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", fields)
}
