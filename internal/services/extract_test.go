package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleStatsSection = `
## SECTION 8: REVIEW STATISTICS & DATA SOURCES

### 8.1 Total Reviews Analyzed
- **Total number of reviews analyzed**: 1,204
- **Date range of reviews**: March 2019 to January 2026

### 8.2 Reviews by Platform
| Platform | # of Reviews | Date Range | Average Rating |
|----------|--------------|------------|----------------|
| Google Reviews | 640 | 03/2019 - 01/2026 | 4.4 |
| Yelp | 212 | 06/2019 - 12/2025 | 3.9 |
| Facebook | 180 | 01/2020 - 11/2025 | 4.1 |
| Reddit | 98 mentions | 02/2021 - 01/2026 | N/A |
| UberEats | 74 | 05/2022 - 01/2026 | 4.2 |
| **TOTAL** | **1,204** | | |

### 8.3 Rating Distribution (across all platforms)
- 5-star reviews: 610 (50.7%)
- 4-star reviews: 289 (24.0%)
- 3-star reviews: 145 (12.0%)
- 2-star reviews: 88 (7.3%)
- 1-star reviews: 72 (6.0%)

The overall average rating across platforms is 4.2.
`

func TestExtractReportSummaryFullSection(t *testing.T) {
	summary := ExtractReportSummary(sampleStatsSection)

	if !assert.NotNil(t, summary) {
		return
	}
	assert.Equal(t, 1204, summary.TotalReviews)
	assert.Equal(t, "March 2019 to January 2026", summary.DateRange)
	assert.Equal(t, "4.2", summary.AverageRating)
	assert.Equal(t, "50.7%", summary.FiveStarShare)
	assert.Equal(t, 5, summary.PlatformCount)
}

func TestExtractReportSummaryTotalFromTableOnly(t *testing.T) {
	report := `
| Platform | # of Reviews |
| Google Reviews | 38 |
| **TOTAL** | **38** |
`
	summary := ExtractReportSummary(report)
	if !assert.NotNil(t, summary) {
		return
	}
	assert.Equal(t, 38, summary.TotalReviews)
}

func TestExtractReportSummaryPartialIsNotAnError(t *testing.T) {
	summary := ExtractReportSummary("- **Date range of reviews**: June 2023 to August 2026\n")
	if !assert.NotNil(t, summary) {
		return
	}
	assert.Equal(t, "June 2023 to August 2026", summary.DateRange)
	assert.Zero(t, summary.TotalReviews)
	assert.Empty(t, summary.AverageRating)
}

func TestExtractReportSummaryNothingFound(t *testing.T) {
	assert.Nil(t, ExtractReportSummary("The bakery is beloved for its sourdough."))
	assert.Nil(t, ExtractReportSummary(""))
}
