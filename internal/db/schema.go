// Package db provides SQLite-backed storage for the meal adjustment engine.
// It owns the schema, the migration runner, and connection setup; the
// per-concern stores (feedback, suggestion, pantry) run their queries
// against the *sql.DB it hands out.
package db

// SchemaVersion is the current supported schema version. Opening a database
// with a newer version fails rather than risking corruption.
const SchemaVersion = 1

// schemaV1 creates the initial schema.
//
// Tables:
//  1. feedback_event         - Meal feedback captured by the host app (append-only)
//  2. adjustment_suggestion  - Change proposals produced by the engine
//  3. recipe                 - Recipes with their ingredient quantity fields
//  4. market_item            - Shopping-list entries
//  5. schema_migrations      - Migration version tracking
const schemaV1 = `
-- 1. Feedback events. The engine never mutates or deletes rows here except
-- through retention cleanup of expired events.
CREATE TABLE IF NOT EXISTS feedback_event (
  id                  TEXT PRIMARY KEY,
  meal_date           TEXT NOT NULL,
  meal_type           TEXT NOT NULL,
  recipe_id           TEXT,
  recipe_name         TEXT NOT NULL,
  portion_rating      TEXT,
  leftover_rating     TEXT,
  missing_ingredients TEXT NOT NULL DEFAULT '[]',
  used_up_ingredients TEXT NOT NULL DEFAULT '[]',
  notes               TEXT NOT NULL DEFAULT '',
  created_at_ms       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback_event(created_at_ms DESC);
CREATE INDEX IF NOT EXISTS idx_feedback_recipe ON feedback_event(recipe_id, created_at_ms DESC);

-- 2. Adjustment suggestions. The partial unique index enforces at most one
-- pending suggestion per (recipe, type); concurrent inserts surface as a
-- constraint conflict and are retried as an update.
CREATE TABLE IF NOT EXISTS adjustment_suggestion (
  id              TEXT PRIMARY KEY,
  suggestion_type TEXT NOT NULL,
  recipe_id       TEXT NOT NULL,
  recipe_name     TEXT NOT NULL,
  change_percent  INTEGER NOT NULL DEFAULT 0,
  ingredient_name TEXT NOT NULL DEFAULT '',
  reason          TEXT NOT NULL,
  feedback_count  INTEGER NOT NULL,
  status          TEXT NOT NULL DEFAULT 'pending',
  created_at_ms   INTEGER NOT NULL,
  applied_at_ms   INTEGER
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_suggestion_one_pending
  ON adjustment_suggestion(recipe_id, suggestion_type) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS idx_suggestion_status ON adjustment_suggestion(status, created_at_ms DESC);

-- 3. Recipes. Ingredients are stored as a JSON array of
-- {name, total, luis, mariana} quantity fields.
CREATE TABLE IF NOT EXISTS recipe (
  id            TEXT PRIMARY KEY,
  name          TEXT NOT NULL,
  ingredients   TEXT NOT NULL DEFAULT '[]',
  updated_at_ms INTEGER NOT NULL
);

-- 4. Market items (shopping list).
CREATE TABLE IF NOT EXISTS market_item (
  id            TEXT PRIMARY KEY,
  name          TEXT NOT NULL,
  quantity      TEXT NOT NULL DEFAULT '',
  updated_at_ms INTEGER NOT NULL
);

-- 5. Schema migrations tracking
CREATE TABLE IF NOT EXISTS schema_migrations (
  version    INTEGER PRIMARY KEY,
  applied_ms INTEGER NOT NULL
);
`
