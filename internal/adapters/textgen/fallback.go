package textgen

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mzton/vantage/internal/core/domain"
)

// FallbackGenerator answers without any remote model: template analysis and canned chat replies.
type FallbackGenerator struct{}

func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

func (g *FallbackGenerator) AnalyzeProperty(_ context.Context, listing domain.Listing) (string, error) {
	return domain.FallbackAnalysis(listing), nil
}

func (g *FallbackGenerator) Chat(_ context.Context, message string, chatCtx domain.ChatContext) (string, error) {
	return CannedReply(message, chatCtx), nil
}

type cannedRule struct {
	keywords []string
	reply    string
}

// Rules that only apply while a listing is selected.
var listingRules = []cannedRule{
	{
		keywords: []string{"price", "cost"},
		reply:    "Based on similar properties in this area, this listing is competitively priced. The NYC rental market varies by neighborhood, but this location offers good value for the amenities provided.",
	},
	{
		keywords: []string{"neighborhood", "area"},
		reply:    "This neighborhood is known for its vibrant culture, excellent dining options, and convenient public transportation access. It's a popular choice for both short-term visitors and long-term residents.",
	},
	{
		keywords: []string{"transport", "subway"},
		reply:    "The property is well-connected to public transportation. Most NYC apartments are within walking distance of subway stations, making it easy to explore the city.",
	},
}

var generalRules = []cannedRule{
	{
		keywords: []string{"hello", "hi"},
		reply:    "Hello! I'm Vantage AI, your property assistant. How can I help you find the perfect place to stay in NYC?",
	},
	{
		keywords: []string{"recommend", "suggest"},
		reply:    "Based on NYC's current market, I'd recommend exploring properties in SoHo for a trendy urban experience, West Village for charm, or Tribeca for family-friendly spaces. Would you like me to help you explore any of these areas?",
	},
	{
		keywords: []string{"budget", "cheap"},
		reply:    "For budget-friendly options, consider studios in the East Village or apartments in the Financial District. These areas offer great value while still providing easy access to NYC's attractions.",
	},
	{
		keywords: []string{"luxury", "expensive"},
		reply:    "For a luxury experience, I'd suggest looking at penthouses in Tribeca or high-floor apartments with skyline views. These properties often include premium amenities like concierge service and rooftop access.",
	},
}

const defaultReply = "I can help you explore properties, understand neighborhoods, or answer questions about the NYC rental market. Feel free to select a property on the map for a detailed analysis, or ask me anything about finding your perfect stay!"

// CannedReply picks the first rule whose keyword occurs in the message.
// Keywords of two letters or fewer must match a whole word, so "this" does not count as "hi".
func CannedReply(message string, chatCtx domain.ChatContext) string {
	folded := cases.Fold().String(message)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})

	if chatCtx.SelectedListingID != "" {
		if reply, ok := matchRules(listingRules, folded, words); ok {
			return reply
		}
	}
	if reply, ok := matchRules(generalRules, folded, words); ok {
		return reply
	}
	return defaultReply
}

func matchRules(rules []cannedRule, folded string, words []string) (string, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if containsKeyword(folded, words, kw) {
				return rule.reply, true
			}
		}
	}
	return "", false
}

func containsKeyword(folded string, words []string, kw string) bool {
	if len(kw) > 2 {
		return strings.Contains(folded, kw)
	}
	for _, w := range words {
		if w == kw {
			return true
		}
	}
	return false
}
