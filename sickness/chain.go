package sickness

import (
	"sort"

	"github.com/warp/sickpay-engine/generic"
)

const (
	// MinPIWQualifyingDays is the shortest absence, in qualifying days, that
	// forms a Period of Incapacity for Work.
	MinPIWQualifyingDays = 4

	// LinkingGapDays is the largest gap in calendar days (previous PIW end to
	// next PIW start) that still links two PIWs into one chain.
	LinkingGapDays = 56
)

// =============================================================================
// SPANS, PIWs AND CHAINS (derived, never persisted)
// =============================================================================

// Span is one sickness record evaluated against a work pattern.
type Span struct {
	RecordID       string
	Start          generic.TimePoint
	End            generic.TimePoint
	QualifyingDays int
}

// IsPIW reports whether the span is long enough to be a PIW.
func (s Span) IsPIW() bool { return s.QualifyingDays >= MinPIWQualifyingDays }

// Chain is a non-empty run of PIWs sorted by start date, each starting no
// more than LinkingGapDays after the previous one ended.
type Chain struct {
	Spans []Span
}

func (c Chain) Start() generic.TimePoint { return c.Spans[0].Start }
func (c Chain) End() generic.TimePoint   { return c.Spans[len(c.Spans)-1].End }

// QualifyingDays sums the qualifying days of every PIW in the chain.
func (c Chain) QualifyingDays() int {
	total := 0
	for _, s := range c.Spans {
		total += s.QualifyingDays
	}
	return total
}

// BuildSpans evaluates every record over [start, end ?? start].
func BuildSpans(records []SicknessRecord, q QualifyingDays) []Span {
	spans := make([]Span, 0, len(records))
	for _, r := range records {
		end := r.LastDay()
		spans = append(spans, Span{
			RecordID:       r.ID,
			Start:          r.StartDate,
			End:            end,
			QualifyingDays: CountQualifyingDaysBetween(r.StartDate, end, q),
		})
	}
	return spans
}

// BuildPIWs keeps the spans that qualify as PIWs, sorted by start date.
func BuildPIWs(records []SicknessRecord, q QualifyingDays) []Span {
	var piws []Span
	for _, s := range BuildSpans(records, q) {
		if s.IsPIW() {
			piws = append(piws, s)
		}
	}
	sort.SliceStable(piws, func(i, j int) bool {
		return piws[i].Start.Before(piws[j].Start)
	})
	return piws
}

// BuildChains groups records into linked PIW chains.
//
// The gap is measured in calendar days from the previous span's end to the
// current span's start; a gap of exactly LinkingGapDays still links.
func BuildChains(records []SicknessRecord, q QualifyingDays) []Chain {
	piws := BuildPIWs(records, q)
	if len(piws) == 0 {
		return nil
	}

	var chains []Chain
	current := Chain{Spans: []Span{piws[0]}}
	for _, span := range piws[1:] {
		prev := current.Spans[len(current.Spans)-1]
		if generic.DaysBetween(prev.End, span.Start) <= LinkingGapDays {
			current.Spans = append(current.Spans, span)
			continue
		}
		chains = append(chains, current)
		current = Chain{Spans: []Span{span}}
	}
	return append(chains, current)
}
