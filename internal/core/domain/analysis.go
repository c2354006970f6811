package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultNeighborhood = "a prime location"

// PriceCategory buckets a nightly price.
func PriceCategory(price float64) string {
	switch {
	case price < 400:
		return "budget-friendly"
	case price < 700:
		return "mid-range"
	default:
		return "premium"
	}
}

// TargetAudience buckets a listing by bedroom count.
func TargetAudience(bedrooms int) string {
	switch {
	case bedrooms >= 3:
		return "Families or groups"
	case bedrooms == 1:
		return "Solo travelers or couples"
	default:
		return "Small groups or couples"
	}
}

// Neighborhood is the address segment after the first comma.
func Neighborhood(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return defaultNeighborhood
	}
	if n := strings.TrimSpace(parts[1]); n != "" {
		return n
	}
	return defaultNeighborhood
}

// FallbackAnalysis is the deterministic property write-up used when no text generator is reachable.
// It is a pure function of the listing.
func FallbackAnalysis(l Listing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s** offers %s in %s.\n\n", l.Title, l.PropertyType.Vibe(), Neighborhood(l.Address))
	fmt.Fprintf(&b, "**The Space**: %d bedroom%s, %s bath%s, spanning %s sq ft.\n\n",
		l.Bedrooms, plural(float64(l.Bedrooms)),
		formatNumber(l.Bathrooms), plural(l.Bathrooms),
		groupedNumber(l.SquareFeet))
	fmt.Fprintf(&b, "**Best For**: %s looking for a %s stay.\n\n", TargetAudience(l.Bedrooms), PriceCategory(l.Price))
	fmt.Fprintf(&b, "**Location Value**: %s\n\n", l.Description)
	fmt.Fprintf(&b, "At **$%s/night**, this %s offers excellent value for its location and amenities.",
		formatNumber(l.Price), l.PropertyType)

	return b.String()
}

// AnalysisMessage wraps an analysis into the assistant reply posted to the chat.
func AnalysisMessage(title, analysis string) string {
	return fmt.Sprintf("Here is my analysis for **%s**:\n\n%s", title, analysis)
}

func plural(n float64) string {
	if n > 1 {
		return "s"
	}
	return ""
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// groupedNumber prints v with thousands separators and at most three decimals.
func groupedNumber(v float64) string {
	s := strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	n, _ := strconv.ParseInt(whole, 10, 64)

	out := sign + message.NewPrinter(language.English).Sprintf("%d", n)
	if hasFrac {
		out += "." + frac
	}
	return out
}
