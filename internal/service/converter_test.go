package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"unitconv/internal/convert"
	"unitconv/internal/history"
	"unitconv/internal/integrations/llm"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestConverter(opts ...Option) (*Converter, *history.MemoryStore) {
	store := history.NewMemoryStore()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(store, convert.DefaultPrecision, opts...), store
}

type stubParser struct {
	req   ConversionRequest
	err   error
	calls int
}

func (s *stubParser) Parse(_ context.Context, _ string) (ConversionRequest, llm.LLMUsage, error) {
	s.calls++
	return s.req, llm.LLMUsage{InputTokens: 1}, s.err
}

func TestConvertAppendsOneEntryPerSuccess(t *testing.T) {
	c, _ := newTestConverter()
	ctx := context.Background()

	res, err := c.Convert(ctx, "s1", ConversionRequest{Value: 1, FromUnit: "meter", ToUnit: "FOOT", Category: "length"})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if res.Entry.FromUnit != "Meter" || res.Entry.ToUnit != "Foot" || res.Entry.Category != "Length" {
		t.Fatalf("names not canonicalised: %+v", res.Entry)
	}
	if math.Abs(res.Entry.Result-3.28084) > 1e-12 {
		t.Fatalf("unexpected raw result %v", res.Entry.Result)
	}
	if res.Entry.Formatted != "3.2808" {
		t.Fatalf("unexpected formatted result %q", res.Entry.Formatted)
	}
	if res.Display != "1 Meter = 3.2808 Foot" {
		t.Fatalf("unexpected display %q", res.Display)
	}
	if !res.Entry.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected created_at %s", res.Entry.CreatedAt)
	}

	entries, _ := c.History(ctx, "s1")
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}

	if _, err := c.Convert(ctx, "s1", ConversionRequest{Value: 0, FromUnit: "Celsius", ToUnit: "Fahrenheit", Category: "Temperature"}); err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	entries, _ = c.History(ctx, "s1")
	if len(entries) != 2 || entries[1].Formatted != "32" {
		t.Fatalf("expected second entry with result 32, got %+v", entries)
	}
}

func TestConvertFailureLeavesHistoryUntouched(t *testing.T) {
	c, _ := newTestConverter()
	ctx := context.Background()

	_, err := c.Convert(ctx, "s1", ConversionRequest{Value: 1, FromUnit: "Parsec", ToUnit: "Meter", Category: "Length"})
	if !errors.Is(err, convert.ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
	_, err = c.Convert(ctx, "s1", ConversionRequest{Value: math.Inf(1), FromUnit: "Meter", ToUnit: "Foot", Category: "Length"})
	if !errors.Is(err, convert.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if entries, _ := c.History(ctx, "s1"); len(entries) != 0 {
		t.Fatalf("failed conversions must not be recorded, got %d", len(entries))
	}
}

func TestConvertOverflowIsNotRecorded(t *testing.T) {
	c, _ := newTestConverter()
	ctx := context.Background()

	_, err := c.Convert(ctx, "s1", ConversionRequest{Value: 1e308, FromUnit: "Kilogram", ToUnit: "Milligram", Category: "Weight"})
	if !errors.Is(err, convert.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if !IsUserError(err) || !strings.HasPrefix(UserMessage(err), "Conversion error: ") {
		t.Fatalf("overflow should be reported to the user, got %q", UserMessage(err))
	}
	if entries, _ := c.History(ctx, "s1"); len(entries) != 0 {
		t.Fatalf("overflowing conversion must not be recorded, got %+v", entries)
	}
}

func TestConvertInfersCategory(t *testing.T) {
	c, _ := newTestConverter()
	res, err := c.Convert(context.Background(), "s", ConversionRequest{Value: 100, FromUnit: "Celsius", ToUnit: "Kelvin"})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if res.Entry.Category != "Temperature" || res.Entry.Result != 373.15 {
		t.Fatalf("unexpected entry: %+v", res.Entry)
	}
}

func TestClearHistoryEmptiesSession(t *testing.T) {
	c, _ := newTestConverter()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Convert(ctx, "s1", ConversionRequest{Value: float64(i), FromUnit: "Liter", ToUnit: "Cup", Category: "Volume"}); err != nil {
			t.Fatalf("Convert error: %v", err)
		}
	}
	if _, err := c.Convert(ctx, "s2", ConversionRequest{Value: 1, FromUnit: "Liter", ToUnit: "Cup", Category: "Volume"}); err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	if err := c.ClearHistory(ctx, "s1"); err != nil {
		t.Fatalf("ClearHistory error: %v", err)
	}
	if entries, _ := c.History(ctx, "s1"); len(entries) != 0 {
		t.Fatalf("expected empty history, got %d", len(entries))
	}
	if entries, _ := c.History(ctx, "s2"); len(entries) != 1 {
		t.Fatalf("other session must keep its history, got %d", len(entries))
	}
}

func TestAskUsesDeterministicParserFirst(t *testing.T) {
	fallback := &stubParser{}
	c, _ := newTestConverter(WithQueryParser(fallback))

	res, err := c.Ask(context.Background(), "s", "2 kg to lb")
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if res.Entry.FromUnit != "Kilogram" || res.Entry.ToUnit != "Pound" {
		t.Fatalf("unexpected entry: %+v", res.Entry)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback must not be called for parseable text, calls=%d", fallback.calls)
	}
}

func TestAskFallsBackToQueryParser(t *testing.T) {
	fallback := &stubParser{req: ConversionRequest{Value: 3, FromUnit: "Kilometer", ToUnit: "Foot", Category: "Length"}}
	c, _ := newTestConverter(WithQueryParser(fallback))

	res, err := c.Ask(context.Background(), "s", "how many feet are in three kilometers")
	if err != nil {
		t.Fatalf("Ask error: %v", err)
	}
	if fallback.calls != 1 {
		t.Fatalf("expected one fallback call, got %d", fallback.calls)
	}
	if res.Entry.Formatted != "9842.5200" {
		t.Fatalf("unexpected formatted result %q", res.Entry.Formatted)
	}
}

func TestAskWithoutFallback(t *testing.T) {
	c, _ := newTestConverter()
	_, err := c.Ask(context.Background(), "s", "how tall is a giraffe")
	if !IsUserError(err) {
		t.Fatalf("expected a user error, got %v", err)
	}
	if msg := UserMessage(err); !strings.HasPrefix(msg, "Could not understand") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestUserMessage(t *testing.T) {
	lookup := &convert.LookupError{Category: convert.Length, Unit: "Parsec"}
	if got := UserMessage(lookup); got != `Conversion error: unknown unit "Parsec" for category Length` {
		t.Fatalf("unexpected lookup message %q", got)
	}
	if got := UserMessage(errors.New("disk full")); strings.Contains(got, "disk full") {
		t.Fatalf("internal errors must not leak: %q", got)
	}
	if IsUserError(errors.New("disk full")) {
		t.Fatal("internal error classified as user error")
	}
	if UserMessage(nil) != "" {
		t.Fatal("nil error must render empty")
	}
}
