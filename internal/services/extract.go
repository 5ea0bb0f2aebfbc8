package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/divhit/cobs-bread-research/internal/models"
)

// Patterns target the mandatory Section 8 statistics block of the report.
// The agent does not always follow the template exactly, so every pattern
// is best-effort and a miss just leaves the field empty.
var (
	totalReviewsRe = regexp.MustCompile(`(?i)total number of reviews analyzed\**\s*[:\-]\s*\**\s*([\d,]+)`)
	totalRowRe     = regexp.MustCompile(`(?i)\|\s*\**TOTAL\**\s*\|\s*\**\s*([\d,]+)`)
	dateRangeRe    = regexp.MustCompile(`(?i)date range of reviews\**\s*[:\-]\s*\**\s*([^\n*]+)`)
	avgRatingRe    = regexp.MustCompile(`(?i)(?:overall|average)\s+(?:average\s+)?rating[^\d\n]*([0-5](?:\.\d)?)`)
	fiveStarRe     = regexp.MustCompile(`(?i)5-star reviews:\s*[\d,]+\s*\(([\d.]+%)\)`)
	platformRowRe  = regexp.MustCompile(`(?m)^\|\s*[A-Za-z][^|\n]*\|[^|\n]*\d`)
)

// ExtractReportSummary pulls headline statistics out of the report text.
// Returns nil when nothing at all could be extracted. Never fails: this
// runs after the research already succeeded and must not affect it.
func ExtractReportSummary(report string) *models.ReportSummary {
	summary := &models.ReportSummary{}
	found := false

	if m := totalReviewsRe.FindStringSubmatch(report); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil && n > 0 {
			summary.TotalReviews = n
			found = true
		}
	}
	if summary.TotalReviews == 0 {
		if m := totalRowRe.FindStringSubmatch(report); m != nil {
			if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil && n > 0 {
				summary.TotalReviews = n
				found = true
			}
		}
	}

	if m := dateRangeRe.FindStringSubmatch(report); m != nil {
		if r := strings.TrimSpace(m[1]); r != "" {
			summary.DateRange = r
			found = true
		}
	}

	if m := avgRatingRe.FindStringSubmatch(report); m != nil {
		summary.AverageRating = m[1]
		found = true
	}

	if m := fiveStarRe.FindStringSubmatch(report); m != nil {
		summary.FiveStarShare = m[1]
		found = true
	}

	if rows := platformRowRe.FindAllString(report, -1); len(rows) > 0 {
		count := 0
		for _, row := range rows {
			lower := strings.ToLower(row)
			if strings.Contains(lower, "total") || strings.Contains(lower, "platform") {
				continue
			}
			count++
		}
		if count > 0 {
			summary.PlatformCount = count
			found = true
		}
	}

	if !found {
		return nil
	}
	return summary
}
