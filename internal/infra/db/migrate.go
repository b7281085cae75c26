package db

import "database/sql"

// MigrateUp creates every table and index the aggregation pipeline needs.
// Statements are idempotent (IF NOT EXISTS) so MigrateUp is safe to run on
// every process start, matching the teacher's inline-DDL migration style.
func MigrateUp(db *sql.DB) error {
	// Embedding similarity search needs pgvector; ignored if the extension
	// is unavailable or the role lacks superuser privilege, same as the
	// optional pg_trgm enablement below.
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`)
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sources (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    kind             VARCHAR(20) NOT NULL,
    url              TEXT NOT NULL,
    language         VARCHAR(10),
    interval_min     INT NOT NULL,
    priority         INT NOT NULL DEFAULT 0,
    enabled          BOOLEAN NOT NULL DEFAULT TRUE,
    feed_config      JSONB,
    api_config       JSONB,
    scraper_config   JSONB,
    last_fetched_at  TIMESTAMPTZ,
    health           VARCHAR(20) NOT NULL DEFAULT 'healthy'
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS fetch_logs (
    id             BIGSERIAL PRIMARY KEY,
    source_id      TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
    started_at     TIMESTAMPTZ NOT NULL,
    completed_at   TIMESTAMPTZ,
    status         VARCHAR(20) NOT NULL,
    articles_found INT NOT NULL DEFAULT 0,
    articles_new   INT NOT NULL DEFAULT 0,
    articles_dedup INT NOT NULL DEFAULT 0,
    error_message  TEXT,
    duration_ms    BIGINT
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_fetch_logs_source_started ON fetch_logs(source_id, started_at DESC)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id                TEXT PRIMARY KEY,
    url               TEXT NOT NULL UNIQUE,
    title             TEXT NOT NULL,
    body_text         TEXT NOT NULL,
    body_markdown     TEXT,
    language          VARCHAR(10),
    source_id         TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
    published_at      TIMESTAMPTZ NOT NULL,
    fetched_at        TIMESTAMPTZ NOT NULL,
    title_simhash     BIGINT NOT NULL,
    content_minhash   BYTEA NOT NULL,
    summary_en        TEXT,
    summary_zh        TEXT,
    transport_modes   JSONB,
    primary_topic     TEXT,
    secondary_topics  JSONB,
    content_type      TEXT,
    regions           JSONB,
    entities          JSONB,
    sentiment         VARCHAR(20),
    market_impact     VARCHAR(20),
    urgency           VARCHAR(20),
    key_metrics       JSONB,
    embedding         vector(1024),
    processing_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    llm_processed     BOOLEAN NOT NULL DEFAULT FALSE,
    enrichment_error  TEXT
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_source_id ON articles(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_title_simhash ON articles(title_simhash)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_processing_status ON articles(processing_status, fetched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_title_gin ON articles USING gin(title gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_body_gin ON articles USING gin(body_text gin_trgm_ops)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	// IVFFlat requires pgvector; ignored if the extension above didn't load.
	_, _ = db.Exec(`
CREATE INDEX IF NOT EXISTS idx_articles_embedding
    ON articles USING ivfflat (embedding vector_cosine_ops)
    WITH (lists = 100)`)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS source_candidates (
    id                 TEXT PRIMARY KEY,
    url                TEXT NOT NULL UNIQUE,
    feed_url           TEXT,
    kind               VARCHAR(20),
    discovery_method   VARCHAR(20),
    discovery_query    TEXT,
    status             VARCHAR(20) NOT NULL,
    quality_score      DOUBLE PRECISION,
    relevance_score    DOUBLE PRECISION,
    combined_score     DOUBLE PRECISION,
    sample_previews    JSONB,
    validation_detail  JSONB,
    auto_approved      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    validated_at       TIMESTAMPTZ,
    decided_at         TIMESTAMPTZ
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_source_candidates_status ON source_candidates(status)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS subscriptions (
    id              TEXT PRIMARY KEY,
    filter          JSONB,
    channel         VARCHAR(20) NOT NULL,
    webhook_url     TEXT,
    webhook_secret  TEXT,
    frequency       VARCHAR(20),
    enabled         BOOLEAN NOT NULL DEFAULT TRUE
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_subscriptions_channel ON subscriptions(channel) WHERE enabled`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS webhook_delivery_logs (
    id              BIGSERIAL PRIMARY KEY,
    subscription_id TEXT NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
    article_id      TEXT NOT NULL,
    attempt         INT NOT NULL,
    http_status     INT NOT NULL DEFAULT 0,
    latency_ms      BIGINT NOT NULL DEFAULT 0,
    error_message   TEXT,
    delivered_at    TIMESTAMPTZ NOT NULL
)`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_webhook_logs_subscription ON webhook_delivery_logs(subscription_id, delivered_at DESC)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS api_keys (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    key_hash       TEXT NOT NULL UNIQUE,
    role           VARCHAR(20) NOT NULL,
    enabled        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_used_at   TIMESTAMPTZ
)`); err != nil {
		return err
	}

	return nil
}

// MigrateDown drops every table MigrateUp creates, in dependency order.
func MigrateDown(db *sql.DB) error {
	tables := []string{
		"webhook_delivery_logs",
		"subscriptions",
		"source_candidates",
		"api_keys",
		"articles",
		"fetch_logs",
		"sources",
	}
	for _, table := range tables {
		if _, err := db.Exec(`DROP TABLE IF EXISTS ` + table + ` CASCADE`); err != nil {
			return err
		}
	}
	return nil
}
