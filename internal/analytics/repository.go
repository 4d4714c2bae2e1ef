package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetOverview() (*OverviewAnalytics, error)
	GetBatchAnalytics() ([]BatchAnalytics, error)
	GetTagAnalytics(batchID *uuid.UUID) ([]TagAnalytics, error)
	GetDeviceBreakdown() ([]DeviceBreakdown, error)
	GetDailyStats(days int) ([]DailyTapStats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOverview() (*OverviewAnalytics, error) {
	overview := &OverviewAnalytics{}

	err := r.db.Raw(`
		SELECT
			COUNT(*) FILTER (WHERE is_duplicate = false) AS total_taps,
			COUNT(*) FILTER (WHERE is_duplicate = false AND occurred_at >= CURRENT_DATE) AS taps_today,
			COUNT(*) FILTER (WHERE is_duplicate = false AND user_id IS NOT NULL) AS attributed_taps,
			COUNT(*) FILTER (WHERE is_duplicate = true) AS duplicates_caught
		FROM tap_events
	`).Row().Scan(&overview.TotalTaps, &overview.TapsToday, &overview.AttributedTaps, &overview.DuplicatesCaught)
	if err != nil {
		return nil, fmt.Errorf("failed to get tap totals: %w", err)
	}

	if err := r.db.Raw(`SELECT COUNT(*) FROM visitors`).Row().Scan(&overview.UniqueVisitors); err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}

	if err := r.db.Raw(`SELECT COUNT(*) FROM visitors WHERE user_id IS NOT NULL`).Row().Scan(&overview.ClaimedVisitors); err != nil {
		return nil, fmt.Errorf("failed to count claimed visitors: %w", err)
	}

	if err := r.db.Raw(`SELECT COUNT(*) FROM nfc_tags WHERE status = 'ACTIVE'`).Row().Scan(&overview.ActiveTags); err != nil {
		return nil, fmt.Errorf("failed to count active tags: %w", err)
	}

	if err := r.db.Raw(`SELECT COUNT(*) FROM tag_batches`).Row().Scan(&overview.TotalBatches); err != nil {
		return nil, fmt.Errorf("failed to count batches: %w", err)
	}

	if overview.TotalTaps > 0 {
		overview.AttributionRate = float64(overview.AttributedTaps) / float64(overview.TotalTaps)
	}

	return overview, nil
}

func (r *repository) GetBatchAnalytics() ([]BatchAnalytics, error) {
	var results []BatchAnalytics

	err := r.db.Raw(`
		SELECT
			b.id::text AS batch_id,
			b.slug AS batch_slug,
			b.name AS batch_name,
			COUNT(te.id) FILTER (WHERE te.is_duplicate = false) AS total_taps,
			COUNT(DISTINCT te.visitor_id) FILTER (WHERE te.is_duplicate = false) AS unique_visitors,
			COUNT(te.id) FILTER (WHERE te.is_duplicate = false AND te.user_id IS NOT NULL) AS attributed_taps,
			MAX(te.occurred_at) FILTER (WHERE te.is_duplicate = false) AS last_tap_at
		FROM tag_batches b
		LEFT JOIN tap_events te ON te.batch_id = b.id
		GROUP BY b.id, b.slug, b.name
		ORDER BY total_taps DESC
	`).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get batch analytics: %w", err)
	}

	return results, nil
}

func (r *repository) GetTagAnalytics(batchID *uuid.UUID) ([]TagAnalytics, error) {
	var results []TagAnalytics

	query := `
		SELECT
			t.id::text AS tag_id,
			t.public_uuid::text AS public_uuid,
			t.label,
			t.status,
			COUNT(te.id) FILTER (WHERE te.is_duplicate = false) AS total_taps,
			COUNT(DISTINCT te.visitor_id) FILTER (WHERE te.is_duplicate = false) AS unique_visitors,
			MAX(te.occurred_at) FILTER (WHERE te.is_duplicate = false) AS last_tap_at
		FROM nfc_tags t
		LEFT JOIN tap_events te ON te.tag_id = t.id
	`

	var err error
	if batchID != nil {
		query += ` WHERE t.batch_id = ? GROUP BY t.id ORDER BY total_taps DESC`
		err = r.db.Raw(query, *batchID).Scan(&results).Error
	} else {
		query += ` GROUP BY t.id ORDER BY total_taps DESC`
		err = r.db.Raw(query).Scan(&results).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag analytics: %w", err)
	}

	return results, nil
}

func (r *repository) GetDeviceBreakdown() ([]DeviceBreakdown, error) {
	var results []DeviceBreakdown

	err := r.db.Raw(`
		SELECT device_hint, COUNT(*) AS taps
		FROM tap_events
		WHERE is_duplicate = false
		GROUP BY device_hint
		ORDER BY taps DESC
	`).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get device breakdown: %w", err)
	}

	var total int64
	for _, row := range results {
		total += row.Taps
	}
	if total > 0 {
		for i := range results {
			results[i].Share = float64(results[i].Taps) / float64(total)
		}
	}

	return results, nil
}

func (r *repository) GetDailyStats(days int) ([]DailyTapStats, error) {
	var results []DailyTapStats

	since := time.Now().UTC().AddDate(0, 0, -days)

	err := r.db.Raw(`
		SELECT
			TO_CHAR(DATE(occurred_at), 'YYYY-MM-DD') AS date,
			COUNT(*) AS taps,
			COUNT(DISTINCT visitor_id) AS unique_visitors,
			COUNT(*) FILTER (WHERE tapper_had_session = true) AS session_taps
		FROM tap_events
		WHERE is_duplicate = false AND occurred_at >= ?
		GROUP BY DATE(occurred_at)
		ORDER BY DATE(occurred_at)
	`, since).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return results, nil
}
