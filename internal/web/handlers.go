package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/JonMunkholm/csvcell/internal/ingest"
	"github.com/JonMunkholm/csvcell/internal/pgsink"
	"github.com/JonMunkholm/csvcell/internal/rowjson"
	"github.com/go-chi/chi/v5"
)

// maxReportedErrors caps the cell errors listed in a copy response.
const maxReportedErrors = 100

// convertRequest is a parsed conversion request.
type convertRequest struct {
	opts        ingest.Options
	strict      bool
	skipInvalid bool
}

// handleHealth reports liveness and whether copying is available.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "disabled"
	if s.sink != nil {
		database = "enabled"
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":             "ok",
		"database":           database,
		"active_conversions": s.ActiveConversions(),
	})
}

type kindInfo struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	PgType  string   `json:"pg_type"`
}

// handleKinds lists the supported column kinds.
func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	kinds := core.Kinds()
	out := make([]kindInfo, len(kinds))
	for i, k := range kinds {
		out[i] = kindInfo{Name: k.String(), Aliases: k.Aliases(), PgType: pgsink.PgType(k)}
	}
	writeJSON(w, r, http.StatusOK, out)
}

type localeInfo struct {
	Tag              string `json:"tag"`
	DecimalSeparator string `json:"decimal_separator"`
	GroupSeparator   string `json:"group_separator"`
	CurrencySymbol   string `json:"currency_symbol"`
	Default          bool   `json:"default"`
}

// handleLocales lists the built-in locale tables.
func (s *Server) handleLocales(w http.ResponseWriter, r *http.Request) {
	tags := core.Locales()
	out := make([]localeInfo, len(tags))
	for i, tag := range tags {
		fc := core.ForLocale(tag)
		out[i] = localeInfo{
			Tag:              tag.String(),
			DecimalSeparator: fc.DecimalSeparator,
			GroupSeparator:   fc.GroupSeparator,
			CurrencySymbol:   fc.CurrencySymbol,
			Default:          tag.String() == s.format.Tag.String(),
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleConvert converts the CSV body and returns every row as JSON.
// The response is streamed so large results are not buffered twice.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseConvertRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.convert(w, r, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	enc := rowjson.NewEncoder(w)
	st := enc.Stream()
	st.WriteObjectStart()
	st.WriteObjectField("id")
	st.WriteString(res.ID.String())
	st.WriteMore()
	st.WriteObjectField("schema")
	st.WriteString(req.opts.Schema.String())
	st.WriteMore()
	st.WriteObjectField("locale")
	st.WriteString(req.opts.Format.Tag.String())
	st.WriteMore()
	st.WriteObjectField("styles")
	st.WriteString(req.opts.Styles.String())
	st.WriteMore()
	st.WriteObjectField("warnings")
	st.WriteVal(nonNil(res.Warnings))
	st.WriteMore()
	st.WriteObjectField("summary")
	st.WriteVal(res.Summary)
	st.WriteMore()
	st.WriteObjectField("rows")
	st.WriteArrayStart()
	for i, row := range res.Rows {
		if i > 0 {
			st.WriteMore()
		}
		enc.WriteRow(row)
		if st.Buffered() > 64*1024 {
			if err := enc.Flush(); err != nil {
				break
			}
		}
	}
	st.WriteArrayEnd()
	st.WriteObjectEnd()
	st.WriteRaw("\n")

	// Headers are already sent, so a write failure can only be logged.
	if err := enc.Flush(); err != nil {
		logRequestError(r, "failed to stream rows", err)
	}
}

// copyResponse is the JSON body returned after copying into a table.
type copyResponse struct {
	ID       string         `json:"id"`
	Table    string         `json:"table"`
	Copied   int64          `json:"copied"`
	Skipped  int            `json:"skipped"`
	Summary  ingest.Summary `json:"summary"`
	Warnings []string       `json:"warnings"`
	Errors   []string       `json:"errors"`
}

// handleConvertToTable converts the CSV body and copies the rows into a
// Postgres table whose columns are named like the schema's columns.
func (s *Server) handleConvertToTable(w http.ResponseWriter, r *http.Request) {
	if s.sink == nil {
		respondError(w, r, errSinkDisabled)
		return
	}

	table := chi.URLParam(r, "table")
	if _, err := pgsink.ParseTable(table); err != nil {
		respondError(w, r, err)
		return
	}

	req, err := s.parseConvertRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.convert(w, r, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rows := res.Rows
	if req.skipInvalid {
		rows = res.ValidRows()
	}

	copied, err := s.sink.Copy(r.Context(), table, req.opts.Schema, rows)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", errCopy, err))
		return
	}

	cellErrs := res.CellErrors(maxReportedErrors)
	msgs := make([]string, len(cellErrs))
	for i, e := range cellErrs {
		msgs[i] = e.Error()
	}

	writeJSON(w, r, http.StatusOK, copyResponse{
		ID:       res.ID.String(),
		Table:    table,
		Copied:   copied,
		Skipped:  len(res.Rows) - len(rows),
		Summary:  res.Summary,
		Warnings: nonNil(res.Warnings),
		Errors:   msgs,
	})
}

// convert waits for a conversion slot, then runs the conversion over the
// request body. In strict mode any failed cell fails the request.
func (s *Server) convert(w http.ResponseWriter, r *http.Request, req convertRequest) (*ingest.Result, error) {
	ctx := r.Context()
	if err := s.limiter.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.release()

	body, closeBody, err := requestCSV(w, r, s.cfg.Convert.MaxBodySize)
	if err != nil {
		return nil, err
	}
	defer closeBody()

	res, err := ingest.Run(ctx, body, req.opts)
	if err != nil {
		return nil, err
	}

	if req.strict && res.Summary.FailedCells > 0 {
		first := res.CellErrors(1)[0]
		return nil, fmt.Errorf("%w: %d of %d rows invalid, first: %v",
			errStrict, res.Summary.Rows-res.Summary.ValidRows, res.Summary.Rows, first)
	}
	return res, nil
}

// requestCSV returns the CSV in the request. Multipart forms carry it in the
// "file" field; any other content type is read as the raw body.
func requestCSV(w http.ResponseWriter, r *http.Request, maxSize int64) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, &paramError{Param: "file", Err: err}
	}
	return file, func() { file.Close() }, nil
}

// parseConvertRequest reads the conversion options from the query string.
// Options not given fall back to the server defaults.
func (s *Server) parseConvertRequest(r *http.Request) (convertRequest, error) {
	q := r.URL.Query()
	var req convertRequest

	decl := q.Get("schema")
	if strings.TrimSpace(decl) == "" {
		return req, &paramError{Param: "schema", Err: errors.New("required")}
	}
	schema, err := core.ParseSchema(decl)
	if err != nil {
		return req, err
	}

	format := core.ForLocale(s.format.Tag)
	if v := q.Get("locale"); v != "" {
		format, err = core.ParseLocale(v)
		if err != nil {
			return req, &paramError{Param: "locale", Err: err}
		}
	}
	format.Location = s.format.Location

	styles := s.cfg.Convert.NumberStyles
	if v := q.Get("styles"); v != "" {
		styles, err = core.ParseNumberStyles(v)
		if err != nil {
			return req, &paramError{Param: "styles", Err: err}
		}
	}

	req.opts = ingest.Options{
		Schema:  schema,
		Format:  format,
		Styles:  styles,
		Workers: s.cfg.Convert.Workers,
	}
	req.opts.Reader.CleanCells = s.cfg.Convert.CleanCells

	if v := q.Get("delimiter"); v != "" {
		comma, err := parseDelimiter(v)
		if err != nil {
			return req, &paramError{Param: "delimiter", Err: err}
		}
		req.opts.Reader.Comma = comma
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"clean", &req.opts.Reader.CleanCells},
		{"lazy_quotes", &req.opts.Reader.LazyQuotes},
		{"trim_space", &req.opts.Reader.TrimLeadingSpace},
		{"strict", &req.strict},
		{"skip_invalid", &req.skipInvalid},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, &paramError{Param: f.name, Err: err}
		}
		*f.dst = b
	}

	if v := q.Get("header"); v != "" {
		hasHeader, err := strconv.ParseBool(v)
		if err != nil {
			return req, &paramError{Param: "header", Err: err}
		}
		req.opts.NoHeader = !hasHeader
	}

	return req, nil
}

// parseDelimiter accepts a single character or the name "tab".
func parseDelimiter(v string) (rune, error) {
	switch strings.ToLower(v) {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(v) != 1 {
		return 0, fmt.Errorf("want a single character, got %q", v)
	}
	c, _ := utf8.DecodeRuneInString(v)
	if c == '"' || c == '\r' || c == '\n' || c == utf8.RuneError {
		return 0, fmt.Errorf("%q cannot separate fields", v)
	}
	return c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
