package repository

// taxonomySchema 目录表结构（幂等）
const taxonomySchema = `
CREATE TABLE IF NOT EXISTS biomarker_categories (
	category_id UUID PRIMARY KEY,
	name        VARCHAR(50) NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS biomarker_definitions (
	biomarker_id     UUID PRIMARY KEY,
	category_id      UUID NOT NULL REFERENCES biomarker_categories(category_id) ON DELETE CASCADE,
	code             VARCHAR(20) NOT NULL UNIQUE,
	display_name     VARCHAR(100) NOT NULL,
	unit             VARCHAR(20) NOT NULL,
	is_dependent     BOOLEAN NOT NULL DEFAULT FALSE,
	normal_range_min DOUBLE PRECISION NOT NULL,
	normal_range_max DOUBLE PRECISION NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT biomarker_normal_range_ordered CHECK (normal_range_min <= normal_range_max)
);

CREATE INDEX IF NOT EXISTS idx_biomarker_definitions_category ON biomarker_definitions(category_id);

CREATE TABLE IF NOT EXISTS score_weights (
	weight_id    UUID PRIMARY KEY,
	biomarker_id UUID NOT NULL UNIQUE REFERENCES biomarker_definitions(biomarker_id) ON DELETE CASCADE,
	weight       DOUBLE PRECISION NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT score_weight_range CHECK (weight >= 0 AND weight <= 1)
);

CREATE TABLE IF NOT EXISTS data_sources (
	source_id    UUID PRIMARY KEY,
	name         VARCHAR(50) NOT NULL UNIQUE,
	organization VARCHAR(100) NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
