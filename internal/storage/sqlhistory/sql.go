package sqlhistory

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

var createTableSQL = map[string]string{
	DriverSQLite: `
CREATE TABLE IF NOT EXISTS user_reviews (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  rating     INTEGER NOT NULL,
  name       TEXT    NOT NULL,
  email      TEXT    NOT NULL DEFAULT '',
  title      TEXT    NOT NULL DEFAULT '',
  body       TEXT    NOT NULL,
  ts_ms      INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	DriverMySQL: `
CREATE TABLE IF NOT EXISTS user_reviews (
  id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  rating     TINYINT NOT NULL,
  name       VARCHAR(255) NOT NULL,
  email      VARCHAR(255) NOT NULL DEFAULT '',
  title      VARCHAR(255) NOT NULL DEFAULT '',
  body       TEXT NOT NULL,
  ts_ms      BIGINT NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Both dialects accept ? placeholders.
const insertReviewSQL = `
INSERT INTO user_reviews (rating, name, email, title, body, ts_ms)
VALUES (?, ?, ?, ?, ?, ?)
`

// Append order is the id order.
const listReviewsSQL = `
SELECT rating, name, email, title, body, ts_ms
FROM user_reviews
ORDER BY id
`
