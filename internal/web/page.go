package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"unitconv/internal/convert"
	"unitconv/internal/service"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type historyRow struct {
	Category string
	Value    string
	From     string
	To       string
	Result   string
}

type pageData struct {
	Categories []string
	Category   string
	Units      []string
	Value      string
	FromUnit   string
	ToUnit     string
	Result     string
	Error      string
	Info       string
	Common     []string
	History    []historyRow
}

// selection holds what the form currently shows. Units outside the selected
// category fall back to the category's first unit.
type selection struct {
	category convert.Category
	value    string
	from     string
	to       string
}

func newSelection(rawCategory, value, from, to string) selection {
	cat, err := convert.ParseCategory(rawCategory)
	if err != nil {
		cat = convert.Length
	}
	units, _ := convert.Units(cat)
	sel := selection{category: cat, value: strings.TrimSpace(value), from: units[0], to: units[0]}
	if u, err := convert.LookupUnit(cat, from); err == nil {
		sel.from = u
	}
	if u, err := convert.LookupUnit(cat, to); err == nil {
		sel.to = u
	}
	if sel.value == "" {
		sel.value = "1"
	}
	return sel
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, sel selection, result, errMsg string) {
	units, _ := convert.Units(sel.category)
	data := pageData{
		Category: string(sel.category),
		Units:    units,
		Value:    sel.value,
		FromUnit: sel.from,
		ToUnit:   sel.to,
		Result:   result,
		Error:    errMsg,
		Info:     convert.Describe(sel.category),
		Common:   convert.CommonConversions(sel.category),
	}
	for _, c := range convert.Categories() {
		data.Categories = append(data.Categories, string(c))
	}

	entries, err := s.conv.History(r.Context(), sessionFrom(r))
	if err != nil {
		log.Printf("history list error session=%s: %v", sessionFrom(r), err)
	}
	for _, e := range entries {
		data.History = append(data.History, historyRow{
			Category: e.Category,
			Value:    service.FormatValue(e.Value),
			From:     e.FromUnit,
			To:       e.ToUnit,
			Result:   e.Formatted,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, data); err != nil {
		log.Printf("render index error: %v", err)
	}
}

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.render(w, r, http.StatusOK, newSelection(q.Get("category"), q.Get("value"), q.Get("from"), q.Get("to")), "", "")
}

func (s *Server) convertForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sel := newSelection(r.PostForm.Get("category"), r.PostForm.Get("value"), r.PostForm.Get("from"), r.PostForm.Get("to"))

	if r.PostForm.Get("action") == "swap" {
		sel.from, sel.to = sel.to, sel.from
		s.render(w, r, http.StatusOK, sel, "", "")
		return
	}

	value, err := strconv.ParseFloat(sel.value, 64)
	if err != nil {
		s.render(w, r, http.StatusBadRequest, sel, "", "Please enter a valid number.")
		return
	}
	// Convert what was posted, not the fallback selection: a stale unit must
	// fail with its own name rather than silently become the first unit.
	res, err := s.conv.Convert(r.Context(), sessionFrom(r), service.ConversionRequest{
		Value:    value,
		FromUnit: r.PostForm.Get("from"),
		ToUnit:   r.PostForm.Get("to"),
		Category: r.PostForm.Get("category"),
	})
	if err != nil {
		s.render(w, r, statusFor(err), sel, "", service.UserMessage(err))
		return
	}
	s.render(w, r, http.StatusOK, sel, res.Display, "")
}

func (s *Server) clearHistoryForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.conv.ClearHistory(r.Context(), sessionFrom(r)); err != nil {
		log.Printf("history clear error session=%s: %v", sessionFrom(r), err)
		http.Error(w, "could not clear history", http.StatusInternalServerError)
		return
	}
	target := "/"
	if cat, err := convert.ParseCategory(r.PostForm.Get("category")); err == nil {
		target += "?category=" + url.QueryEscape(string(cat))
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
