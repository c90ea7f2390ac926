package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"unitconv/internal/convert"
	"unitconv/internal/domain"
	"unitconv/internal/history"
	"unitconv/internal/integrations/llm"
	"unitconv/internal/query"
)

type HistoryEntry = domain.HistoryEntry
type ConversionRequest = domain.ConversionRequest

// QueryParser reads free text the deterministic parser could not.
type QueryParser interface {
	Parse(ctx context.Context, text string) (ConversionRequest, llm.LLMUsage, error)
}

type Result struct {
	Entry   HistoryEntry
	Display string // "<value> <from> = <formatted> <to>"
}

// Converter is the boundary between the presentation surfaces and the
// engine: it validates, converts, formats and records history.
type Converter struct {
	store     history.Store
	precision int
	fallback  QueryParser
	now       func() time.Time
}

type Option func(*Converter)

// WithQueryParser enables the fallback parser for Ask.
func WithQueryParser(p QueryParser) Option {
	return func(c *Converter) {
		c.fallback = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

func New(store history.Store, precision int, opts ...Option) *Converter {
	c := &Converter{
		store:     store,
		precision: precision,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve canonicalises the category and unit names of req. An empty
// category is inferred from the source unit.
func Resolve(req ConversionRequest) (ConversionRequest, error) {
	var category convert.Category
	var err error
	if req.Category == "" {
		category, err = convert.CategoryOf(req.FromUnit)
	} else {
		category, err = convert.ParseCategory(req.Category)
	}
	if err != nil {
		return ConversionRequest{}, err
	}
	from, err := convert.LookupUnit(category, req.FromUnit)
	if err != nil {
		return ConversionRequest{}, err
	}
	to, err := convert.LookupUnit(category, req.ToUnit)
	if err != nil {
		return ConversionRequest{}, err
	}
	return ConversionRequest{Value: req.Value, FromUnit: from, ToUnit: to, Category: string(category)}, nil
}

// Convert runs one conversion for sessionID and appends it to that
// session's history. Failed conversions leave the history untouched.
func (c *Converter) Convert(ctx context.Context, sessionID string, req ConversionRequest) (Result, error) {
	resolved, err := Resolve(req)
	if err != nil {
		return Result{}, err
	}
	value, err := convert.Convert(resolved.Value, resolved.FromUnit, resolved.ToUnit, convert.Category(resolved.Category))
	if err != nil {
		return Result{}, err
	}
	formatted := convert.Format(value, c.precision)

	entry, err := c.store.Append(ctx, sessionID, HistoryEntry{
		Category:  resolved.Category,
		Value:     resolved.Value,
		FromUnit:  resolved.FromUnit,
		ToUnit:    resolved.ToUnit,
		Result:    value,
		Formatted: formatted,
		CreatedAt: c.now(),
	})
	if err != nil {
		log.Printf("history append error session=%s: %v", sessionID, err)
		return Result{}, fmt.Errorf("save history: %w", err)
	}
	log.Printf("convert session=%s category=%s %s->%s", sessionID, entry.Category, entry.FromUnit, entry.ToUnit)
	return Result{Entry: entry, Display: DisplayLine(entry)}, nil
}

// Ask converts a free-text request such as "3 km to miles".
func (c *Converter) Ask(ctx context.Context, sessionID, text string) (Result, error) {
	req, err := query.Parse(text)
	if errors.Is(err, query.ErrUnparseable) && c.fallback != nil {
		var usage llm.LLMUsage
		req, usage, err = c.fallback.Parse(ctx, text)
		if err != nil {
			log.Printf("ask fallback error session=%s: %v", sessionID, err)
		} else {
			log.Printf("ask fallback session=%s tokens=%d", sessionID, usage.TotalTokens())
		}
	}
	if err != nil {
		return Result{}, err
	}
	return c.Convert(ctx, sessionID, req)
}

func (c *Converter) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	return c.store.List(ctx, sessionID)
}

func (c *Converter) ClearHistory(ctx context.Context, sessionID string) error {
	if err := c.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	log.Printf("history cleared session=%s", sessionID)
	return nil
}

// Touch marks the session as active so the sweeper keeps it.
func (c *Converter) Touch(ctx context.Context, sessionID string) error {
	return c.store.Touch(ctx, sessionID, c.now())
}

// Session returns the stored times for sessionID.
func (c *Converter) Session(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	return c.store.Session(ctx, sessionID)
}

func (c *Converter) Precision() int {
	return c.precision
}

func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func DisplayLine(e HistoryEntry) string {
	return fmt.Sprintf("%s %s = %s %s", FormatValue(e.Value), e.FromUnit, e.Formatted, e.ToUnit)
}

// IsUserError reports whether err comes from bad input rather than from the
// service itself.
func IsUserError(err error) bool {
	return errors.Is(err, convert.ErrUnknownUnit) ||
		errors.Is(err, convert.ErrInvalidValue) ||
		errors.Is(err, query.ErrUnparseable) ||
		errors.Is(err, llm.ErrNotAConversion)
}

// UserMessage renders err for display next to the calculator.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, query.ErrUnparseable), errors.Is(err, llm.ErrNotAConversion):
		return "Could not understand that request. Try something like \"3.5 km to miles\"."
	case IsUserError(err):
		return "Conversion error: " + err.Error()
	default:
		return "Conversion error: something went wrong, please try again."
	}
}
