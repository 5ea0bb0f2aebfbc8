package services

import (
	"fmt"
	"strings"
	"time"
)

// PrefetchSection is auxiliary data gathered before submission, folded
// into the research prompt as an extra context section.
type PrefetchSection struct {
	Title   string
	Content string
}

const researchPromptTemplate = `
You are conducting an exhaustive deep research analysis of customer reviews for the COBS Bread bakery located at: %s

**TODAY'S DATE: %s**

Your task is to find and analyze ALL available reviews across EVERY social media platform and review site. Be extremely thorough and comprehensive. Search for the most recent reviews up to today's date.

## PLATFORMS TO SEARCH (search ALL of these):
- Google Reviews / Google Maps
- Yelp
- Facebook (page reviews and comments)
- Instagram (mentions, tagged posts, comments)
- Twitter/X (mentions, hashtags)
- TikTok (mentions, reviews, videos)
- Reddit (r/vancouver, r/calgary, r/toronto, local subreddits, food subreddits)
- TripAdvisor
- Zomato
- DoorDash reviews
- UberEats reviews
- Skip The Dishes reviews
- Local food blogs and review sites
- News articles mentioning this location
- YouTube reviews and mentions
- LinkedIn (any business mentions)
- NextDoor app mentions
- Local community forums
- Food critic reviews
- Franchise review sites

## ANALYSIS FRAMEWORK:

### SECTION 1: 5-STAR REVIEWS (Excellent - Detailed Analysis)
For every 5-star review found, extract and analyze:
1. **Beloved Products**: List EVERY product mentioned positively with specific details
2. **Customer Experience Highlights**: staff interactions, atmosphere, wait times, freshness, packaging
3. **Discovery Journey**: how customers found this bakery and what made them first try it
4. **Loyalty Indicators**: repeat patterns, comparisons to other bakeries, brand affinity
5. **Value Perception**: price satisfaction, quality-to-price ratio, deals mentioned

### SECTION 2: 4-STAR REVIEWS (Good but with reservations - Balanced Analysis)
Analyze from DUAL PERSPECTIVES:
**A) Customer/Reviewer Perspective**: what they loved, what held back 5 stars, conditional recommendations
**B) COBS Bread Franchisor Perspective**: operational insights, competitive intelligence, growth opportunities

### SECTION 3: 3-STAR AND BELOW (Critical Analysis)
For every review rated 3 stars or lower, deeply analyze:
1. **Problematic Products** (CRITICAL - Be Exhaustive): every product mentioned negatively, specific issues, complaint frequency
2. **Service Failures**: staff behavior, wait times, order accuracy, service recovery
3. **Environmental Issues**: cleanliness, layout, parking/accessibility, crowding
4. **Value Disappointments**: price and portion complaints, quality-to-price mismatch
5. **Discovery Process Analysis**: expectations set vs. reality, impact on word-of-mouth
6. **Severity Assessment**: one-time vs. recurring, seasonal patterns, bakery responses

### SECTION 4: COMPETITIVE LANDSCAPE
How does this COBS location compare to other COBS locations, local independent bakeries,
chain competitors (Tim Hortons, Panera, etc.), and grocery store bakeries.

### SECTION 5: TREND ANALYSIS
Review sentiment over time, seasonal patterns, post-COVID changes, new product reception,
staff/management change indicators.

### SECTION 6: SOCIAL MEDIA SENTIMENT
Hashtag analysis, viral moments, influencer mentions, user-generated content themes.

### SECTION 7: ACTIONABLE INSIGHTS SUMMARY
Specific, actionable recommendations: products to highlight or remove, service training
priorities, marketing opportunities, competitive positioning strategies.

## SECTION 8: REVIEW STATISTICS & DATA SOURCES (MANDATORY)
**THIS SECTION IS REQUIRED - You MUST include this exact breakdown:**

### 8.1 Total Reviews Analyzed
- **Total number of reviews analyzed**: [exact count]
- **Date range of reviews**: [earliest review date] to %s

### 8.2 Reviews by Platform (provide exact counts)
Create a table with columns: Platform | # of Reviews | Date Range | Average Rating,
one row per platform searched, ending with a **TOTAL** row.

### 8.3 Rating Distribution (across all platforms)
- 5-star reviews: XX (XX%%)
- 4-star reviews: XX (XX%%)
- 3-star reviews: XX (XX%%)
- 2-star reviews: XX (XX%%)
- 1-star reviews: XX (XX%%)

### 8.4 Data Limitations
List platforms where data was unavailable or limited, access restrictions encountered,
and date ranges with no data.

## OUTPUT FORMAT:
- Be extremely detailed and thorough
- Include specific quotes from reviews where possible
- Provide counts/statistics where available
- Organize clearly by section
- Include the source platform for each insight
- **ALWAYS include Section 8 with exact review counts and date ranges**
- Flag any data limitations or gaps in available information

Remember: This research will inform critical business decisions. Leave no stone unturned. The review statistics in Section 8 are MANDATORY and must be accurate.
`

// BuildResearchPrompt assembles the deep-research instructions for one
// bakery location. Prefetched data, when present, is appended as seed
// context so the agent starts from already-verified reviews.
func BuildResearchPrompt(location string, today time.Time, prefetched []PrefetchSection) string {
	date := today.Format("January 2, 2006")
	var b strings.Builder
	b.WriteString(fmt.Sprintf(researchPromptTemplate, location, date, date))

	for _, section := range prefetched {
		if strings.TrimSpace(section.Content) == "" {
			continue
		}
		b.WriteString("\n\n## PRE-FETCHED CONTEXT: ")
		b.WriteString(section.Title)
		b.WriteString("\nThe following data was retrieved directly from source APIs before this research started. Treat it as verified ground truth and expand on it:\n\n")
		b.WriteString(section.Content)
		b.WriteString("\n")
	}

	return b.String()
}
