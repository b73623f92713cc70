package store

// schema runs on open so reports work against an empty database.
const schema = `
CREATE TABLE IF NOT EXISTS holidays (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    date         TEXT NOT NULL,
    year_month   TEXT NOT NULL,
    year         INTEGER NOT NULL,
    month        INTEGER NOT NULL,
    holiday_name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_holidays_year_month ON holidays(year_month);

CREATE TABLE IF NOT EXISTS guests (
    year_month   TEXT PRIMARY KEY,
    year         INTEGER NOT NULL,
    month        INTEGER NOT NULL,
    total_guests INTEGER NOT NULL
);
`

const dropTables = `
DROP TABLE IF EXISTS holidays;
DROP TABLE IF EXISTS guests;
`

const monthlyReportQuery = `
SELECT g.year_month, g.year, g.month, g.total_guests,
       CAST(COALESCE(h.cnt, 0) AS INTEGER) AS holiday_cnt
FROM guests g
LEFT JOIN (
    SELECT year_month, COUNT(*) AS cnt FROM holidays GROUP BY year_month
) h ON h.year_month = g.year_month
ORDER BY g.year, g.month
`

const yearlyReportQuery = `
SELECT g.year, g.total_guests,
       CAST(COALESCE(h.cnt, 0) AS INTEGER) AS holiday_cnt
FROM (
    SELECT year, SUM(total_guests) AS total_guests FROM guests GROUP BY year
) g
LEFT JOIN (
    SELECT year, COUNT(*) AS cnt FROM holidays GROUP BY year
) h ON h.year = g.year
ORDER BY g.year
`
