// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import "strings"

// =============================================================================
// QUERY CLASSIFICATION
// =============================================================================

// QueryType describes what kind of answer a question is after.
type QueryType string

const (
	QueryIndicator QueryType = "indicator"
	QueryNews      QueryType = "news"
	QuerySummary   QueryType = "summary"
	QueryHybrid    QueryType = "hybrid"
)

// templateForType maps a query type to its server-side prompt template.
var templateForType = map[QueryType]string{
	QueryIndicator: "fh_indicator_v1",
	QueryNews:      "fh_news_v1",
	QuerySummary:   "fh_summary_v1",
	QueryHybrid:    "fh_hybrid_v1",
}

var indicatorKeywords = []string{
	"rsi", "macd", "sma", "ema", "bollinger", "stochastic",
	"moving average", "indicator", "momentum", "volume", "support",
	"resistance", "overbought", "oversold", "technical",
}

var newsKeywords = []string{
	"news", "headline", "announce", "report", "earnings call",
	"press release", "article", "rumor", "media",
}

var summaryKeywords = []string{
	"summary", "summarize", "overview", "recap", "fundamentals",
	"how is", "how's", "outlook",
}

// ClassifyQuery buckets a question so the gateway can pick a prompt
// template. Questions matching both technical and news vocabulary are
// hybrid; unmatched questions default to summary.
func ClassifyQuery(text string) QueryType {
	lower := strings.ToLower(text)

	indicator := containsAny(lower, indicatorKeywords)
	news := containsAny(lower, newsKeywords)

	switch {
	case indicator && news:
		return QueryHybrid
	case indicator:
		return QueryIndicator
	case news:
		return QueryNews
	case containsAny(lower, summaryKeywords):
		return QuerySummary
	default:
		return QuerySummary
	}
}

// TemplateID returns the prompt template for this query type.
func (q QueryType) TemplateID() string {
	if id, ok := templateForType[q]; ok {
		return id
	}
	return templateForType[QuerySummary]
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
