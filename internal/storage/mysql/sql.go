package mysql

const upsertScheduleSQL = `
INSERT INTO promotion_schedules
  (property_id, promotion_id, title, description, promo_code, price_factor, start_date, end_date, is_active, is_visible)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title        = VALUES(title),
  description  = VALUES(description),
  promo_code   = VALUES(promo_code),
  price_factor = VALUES(price_factor),
  end_date     = VALUES(end_date),
  is_active    = VALUES(is_active),
  is_visible   = VALUES(is_visible),
  updated_at   = CURRENT_TIMESTAMP,
  id           = LAST_INSERT_ID(id)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const scheduleColumns = `
  id, property_id, promotion_id, title, description, promo_code,
  price_factor, start_date, end_date, is_active, is_visible,
  created_at, updated_at`

const schedulesByPropertySQL = `
SELECT` + scheduleColumns + `
FROM promotion_schedules
WHERE property_id = ?
ORDER BY start_date, id`

const activeSchedulesByPropertySQL = `
SELECT` + scheduleColumns + `
FROM promotion_schedules
WHERE property_id = ? AND is_active = 1
ORDER BY start_date, id`

// Inclusive overlap: start1 <= end2 AND end1 >= start2.
const activeOverlappingSQL = `
SELECT` + scheduleColumns + `
FROM promotion_schedules
WHERE property_id = ?
  AND is_active = 1
  AND is_visible = 1
  AND start_date <= ?
  AND end_date >= ?
ORDER BY start_date, id`

const activeVisibleOnSQL = `
SELECT` + scheduleColumns + `
FROM promotion_schedules
WHERE is_active = 1
  AND is_visible = 1
  AND ? BETWEEN start_date AND end_date
ORDER BY property_id, start_date, id`

const byCodeSQL = `
SELECT` + scheduleColumns + `
FROM promotion_schedules
WHERE promo_code = ?
  AND is_active = 1
  AND is_visible = 1
  AND ? BETWEEN start_date AND end_date
LIMIT 1`
