package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"staybook/internal/domain"
)

// Repo implements domain.PromotionStore on MySQL.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func (r *Repo) UpsertSchedule(ctx context.Context, s domain.PromotionSchedule) (int64, error) {
	res, err := r.db.ExecContext(ctx, upsertScheduleSQL,
		s.PropertyID,
		s.PromotionID,
		s.Title,
		s.Description,
		valStr(s.PromoCode),
		s.PriceFactor.StringFixed(2),
		s.Period.Start.Format("2006-01-02"),
		s.Period.End.Format("2006-01-02"),
		s.Active,
		s.Visible,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) SchedulesByProperty(ctx context.Context, propertyID int64) ([]domain.PromotionSchedule, error) {
	return r.query(ctx, schedulesByPropertySQL, propertyID)
}

func (r *Repo) ActiveSchedulesByProperty(ctx context.Context, propertyID int64) ([]domain.PromotionSchedule, error) {
	return r.query(ctx, activeSchedulesByPropertySQL, propertyID)
}

func (r *Repo) ActiveOverlapping(ctx context.Context, propertyID int64, period domain.Period) ([]domain.PromotionSchedule, error) {
	return r.query(ctx, activeOverlappingSQL,
		propertyID,
		period.End.Format("2006-01-02"),
		period.Start.Format("2006-01-02"),
	)
}

func (r *Repo) ActiveVisibleOn(ctx context.Context, date time.Time) ([]domain.PromotionSchedule, error) {
	return r.query(ctx, activeVisibleOnSQL, domain.Day(date).Format("2006-01-02"))
}

func (r *Repo) ByCode(ctx context.Context, code string, on time.Time) (domain.PromotionSchedule, error) {
	row := r.db.QueryRowContext(ctx, byCodeSQL, code, domain.Day(on).Format("2006-01-02"))
	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return domain.PromotionSchedule{}, domain.ErrNotFound
	}
	return s, err
}

func (r *Repo) query(ctx context.Context, q string, args ...any) ([]domain.PromotionSchedule, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PromotionSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSchedule(row rowScanner) (domain.PromotionSchedule, error) {
	var (
		s          domain.PromotionSchedule
		code       sql.NullString
		factorRaw  []byte
		start, end time.Time
	)
	if err := row.Scan(
		&s.ID,
		&s.PropertyID,
		&s.PromotionID,
		&s.Title,
		&s.Description,
		&code,
		&factorRaw,
		&start,
		&end,
		&s.Active,
		&s.Visible,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return domain.PromotionSchedule{}, err
	}
	if code.Valid {
		c := code.String
		s.PromoCode = &c
	}
	factor, err := decimal.NewFromString(string(factorRaw))
	if err != nil {
		return domain.PromotionSchedule{}, err
	}
	s.PriceFactor = factor
	s.Period = domain.NewPeriod(start, end)
	return s, nil
}
