package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/danielodella-summer87/cafecitos-sub000/internal/errors"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
)

// AlertDropThreshold is the fraction of the prior week's movement count
// below which a café is flagged. 0.6 means "dropped by more than 40%".
const AlertDropThreshold = 0.6

// reportService builds read-only rollups by grouping the same ledger
// rows the projections replay. A dashboard figure that disagrees with a
// balance replay over the same window is a bug, not a design variance.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// keyedSum receives grouped SUM results. Key is nil for the global
// scope or for rows with a NULL grouping column.
type keyedSum struct {
	Key   *string
	Total int64
}

// sumByKey runs a grouped sum of one transaction type since the given
// time. groupCol is empty for a global (ungrouped) sum.
func (s *reportService) sumByKey(txType models.TxType, since time.Time, groupCol string, cafeID *string) (map[string]int64, int64, error) {
	q := s.db.Model(&models.PointTransaction{}).
		Where("tx_type = ? AND created_at >= ?", txType, since)
	if cafeID != nil {
		q = q.Where("cafe_id = ?", *cafeID)
	}

	if groupCol == "" {
		var total int64
		if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
			return nil, 0, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
		}
		return nil, total, nil
	}

	var rows []keyedSum
	if err := q.Select(groupCol + " AS key, COALESCE(SUM(amount), 0) AS total").
		Group(groupCol).
		Scan(&rows).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}

	sums := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.Key != nil {
			sums[*r.Key] += r.Total
		}
	}
	return sums, 0, nil
}

// Rollup returns earn-vs-redeem sums for the window, grouped by the
// scope. cafeID optionally restricts any scope to one café.
func (s *reportService) Rollup(scope ReportScope, window ReportWindow, cafeID *string) ([]RollupRow, error) {
	since := time.Now().Add(-window.Duration())

	switch scope {
	case ScopeGlobal:
		_, earned, err := s.sumByKey(models.TxTypeEarn, since, "", cafeID)
		if err != nil {
			return nil, err
		}
		_, redeemed, err := s.sumByKey(models.TxTypeRedeem, since, "", cafeID)
		if err != nil {
			return nil, err
		}
		return []RollupRow{{Earned: earned, Redeemed: redeemed, Net: earned - redeemed}}, nil

	case ScopePerCafe:
		earned, _, err := s.sumByKey(models.TxTypeEarn, since, "cafe_id", cafeID)
		if err != nil {
			return nil, err
		}
		redeemed, _, err := s.sumByKey(models.TxTypeRedeem, since, "cafe_id", cafeID)
		if err != nil {
			return nil, err
		}
		return mergeRollups(earned, redeemed, func(key string, row *RollupRow) {
			k := key
			row.CafeID = &k
		}), nil

	case ScopePerConsumer:
		earned, _, err := s.sumByKey(models.TxTypeEarn, since, "to_profile_id", cafeID)
		if err != nil {
			return nil, err
		}
		redeemed, _, err := s.sumByKey(models.TxTypeRedeem, since, "from_profile_id", cafeID)
		if err != nil {
			return nil, err
		}
		return mergeRollups(earned, redeemed, func(key string, row *RollupRow) {
			k := key
			row.ProfileID = &k
		}), nil
	}

	return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown report scope")
}

// mergeRollups joins per-key earn and redeem sums into sorted rows.
func mergeRollups(earned, redeemed map[string]int64, setKey func(string, *RollupRow)) []RollupRow {
	keys := make(map[string]struct{}, len(earned)+len(redeemed))
	for k := range earned {
		keys[k] = struct{}{}
	}
	for k := range redeemed {
		keys[k] = struct{}{}
	}

	rows := make([]RollupRow, 0, len(keys))
	for k := range keys {
		row := RollupRow{
			Earned:   earned[k],
			Redeemed: redeemed[k],
		}
		row.Net = row.Earned - row.Redeemed
		setKey(k, &row)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Net > rows[j].Net
	})
	return rows
}

// TopConsumers returns the consumers with the highest net movement
// (earned minus redeemed) within the window, optionally for one café.
func (s *reportService) TopConsumers(window ReportWindow, cafeID *string, limit int) ([]ConsumerNet, error) {
	if limit <= 0 {
		limit = 10
	}
	since := time.Now().Add(-window.Duration())

	earned, _, err := s.sumByKey(models.TxTypeEarn, since, "to_profile_id", cafeID)
	if err != nil {
		return nil, err
	}
	redeemed, _, err := s.sumByKey(models.TxTypeRedeem, since, "from_profile_id", cafeID)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(earned)+len(redeemed))
	for k := range earned {
		keys[k] = struct{}{}
	}
	for k := range redeemed {
		keys[k] = struct{}{}
	}

	rows := make([]ConsumerNet, 0, len(keys))
	for k := range keys {
		rows = append(rows, ConsumerNet{
			ProfileID: k,
			Earned:    earned[k],
			Redeemed:  redeemed[k],
			Net:       earned[k] - redeemed[k],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Net != rows[j].Net {
			return rows[i].Net > rows[j].Net
		}
		return rows[i].ProfileID < rows[j].ProfileID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// movementCounts returns per-café movement counts in [since, until).
func (s *reportService) movementCounts(since, until time.Time) (map[string]int64, error) {
	var rows []keyedSum
	if err := s.db.Model(&models.PointTransaction{}).
		Select("cafe_id AS key, COUNT(*) AS total").
		Where("created_at >= ? AND created_at < ?", since, until).
		Group("cafe_id").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.Key != nil {
			counts[*r.Key] = r.Total
		}
	}
	return counts, nil
}

// CafeAlerts flags cafés whose seven-day movement count dropped by more
// than 40% versus the prior seven days, or whose seven-day net is
// negative.
func (s *reportService) CafeAlerts() ([]CafeAlert, error) {
	now := time.Now()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)

	current, err := s.movementCounts(weekAgo, now)
	if err != nil {
		return nil, err
	}
	prior, err := s.movementCounts(twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, err
	}

	earned, _, err := s.sumByKey(models.TxTypeEarn, weekAgo, "cafe_id", nil)
	if err != nil {
		return nil, err
	}
	redeemed, _, err := s.sumByKey(models.TxTypeRedeem, weekAgo, "cafe_id", nil)
	if err != nil {
		return nil, err
	}

	var cafes []models.Cafe
	if err := s.db.Where("is_active = ?", true).Find(&cafes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}

	var alerts []CafeAlert
	for _, cafe := range cafes {
		cur := current[cafe.ID]
		pri := prior[cafe.ID]
		net := earned[cafe.ID] - redeemed[cafe.ID]

		switch {
		case pri > 0 && float64(cur) < AlertDropThreshold*float64(pri):
			alerts = append(alerts, CafeAlert{
				CafeID:        cafe.ID,
				CafeName:      cafe.Name,
				Reason:        "activity_drop",
				CurrentVolume: cur,
				PriorVolume:   pri,
				Net:           net,
			})
		case net < 0:
			alerts = append(alerts, CafeAlert{
				CafeID:        cafe.ID,
				CafeName:      cafe.Name,
				Reason:        "negative_net",
				CurrentVolume: cur,
				PriorVolume:   pri,
				Net:           net,
			})
		}
	}
	return alerts, nil
}
