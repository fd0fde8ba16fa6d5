package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ademuri/streaming-history-tools/internal/analysis"
)

const dateLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// paramError is a malformed path or query parameter.
type paramError struct {
	msg string
}

func (e *paramError) Error() string {
	return e.msg
}

type periodParams struct {
	Year  *int `validate:"omitempty,min=1,max=9999"`
	Month *int `validate:"omitempty,min=1,max=12"`
	Limit int  `validate:"min=1"`
}

func (p periodParams) filter() analysis.Filter {
	var f analysis.Filter
	if p.Year != nil {
		f.Year = *p.Year
	}
	if p.Month != nil {
		f.Month = time.Month(*p.Month)
	}
	return f
}

type dateParams struct {
	Date  string `validate:"required,datetime=2006-01-02"`
	Limit int    `validate:"min=1"`
}

func (s *Server) parsePeriod(r *http.Request) (periodParams, error) {
	var p periodParams
	var err error
	if p.Year, err = optionalInt(r, "year"); err != nil {
		return p, err
	}
	if p.Month, err = optionalInt(r, "month"); err != nil {
		return p, err
	}
	if p.Limit, err = s.limit(r); err != nil {
		return p, err
	}
	return p, check(&p)
}

func (s *Server) parseDate(r *http.Request) (time.Time, int, error) {
	p := dateParams{Date: chi.URLParam(r, "date")}
	var err error
	if p.Limit, err = s.limit(r); err != nil {
		return time.Time{}, 0, err
	}
	if err := check(&p); err != nil {
		return time.Time{}, 0, err
	}
	date, err := time.Parse(dateLayout, p.Date)
	if err != nil {
		return time.Time{}, 0, &paramError{fmt.Sprintf("date: %v", err)}
	}
	return date, p.Limit, nil
}

func (s *Server) limit(r *http.Request) (int, error) {
	return limitOr(r, s.cfg.DefaultLimit)
}

func limitOr(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{fmt.Sprintf("limit: %q is not an integer", raw)}
	}
	return n, nil
}

func optionalInt(r *http.Request, name string) (*int, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{fmt.Sprintf("%s: %q is not an integer", name, raw)}
	}
	return &n, nil
}

func check(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return &paramError{strings.Join(msgs, "; ")}
}
