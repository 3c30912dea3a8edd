package graph

// SchemaSQL contains the graph schema initialization SQL.
//
// Identity keys: article records use the caller-supplied article ID, entity
// records use the "<normalized name>|<TYPE>" composite key. Both uniqueness
// guarantees the ingestion pipeline relies on (one article node per ID, one
// mention edge per (article, entity) pair, one relationship edge per
// unordered entity pair and type) are enforced here at the storage layer,
// not in application logic.
const SchemaSQL = `
    -- ==========================================================================
    -- ARTICLE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS article SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON article TYPE string;
    DEFINE FIELD IF NOT EXISTS source ON article TYPE string;
    DEFINE FIELD IF NOT EXISTS url ON article TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS published ON article TYPE datetime;

    DEFINE INDEX IF NOT EXISTS article_published ON article FIELDS published;

    -- ==========================================================================
    -- ENTITY TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS entity SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON entity TYPE string;
    -- norm_name is the lowercased, whitespace-collapsed surface form; all
    -- name lookups go through it so they agree with the identity key.
    DEFINE FIELD IF NOT EXISTS norm_name ON entity TYPE string;
    DEFINE FIELD IF NOT EXISTS type ON entity TYPE string
        ASSERT $value IN ["PERSON", "ORGANIZATION", "LOCATION", "EVENT", "OTHER"];
    DEFINE FIELD IF NOT EXISTS description ON entity TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS first_seen ON entity TYPE datetime;
    DEFINE FIELD IF NOT EXISTS last_seen ON entity TYPE datetime;
    DEFINE FIELD IF NOT EXISTS mention_count ON entity TYPE int DEFAULT 0;

    DEFINE INDEX IF NOT EXISTS entity_type ON entity FIELDS type;
    DEFINE INDEX IF NOT EXISTS entity_norm_name ON entity FIELDS norm_name;

    -- ==========================================================================
    -- MENTIONS RELATION (article -> entity)
    -- ==========================================================================
    -- Unique constraint on [in, out]: at most one mention edge per
    -- (article, entity) pair. Re-ingestion updates confidence/context.
    DEFINE TABLE IF NOT EXISTS mentions TYPE RELATION IN article OUT entity SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS confidence ON mentions TYPE float DEFAULT 1.0;
    DEFINE FIELD IF NOT EXISTS context ON mentions TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS seen_at ON mentions TYPE datetime;
    DEFINE FIELD IF NOT EXISTS unique_key ON mentions VALUE <string>string::concat(<string>in, "->", <string>out);
    DEFINE INDEX IF NOT EXISTS unique_mention ON mentions FIELDS unique_key UNIQUE;
    DEFINE INDEX IF NOT EXISTS mention_seen_at ON mentions FIELDS seen_at;

    -- ==========================================================================
    -- RELATED_TO RELATION (entity <-> entity)
    -- ==========================================================================
    -- Unique constraint: sorted [in, out] plus rel_type prevents duplicate
    -- edges regardless of direction. Strength only ever increments.
    DEFINE TABLE IF NOT EXISTS related_to TYPE RELATION IN entity OUT entity SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS rel_type ON related_to TYPE string;
    DEFINE FIELD IF NOT EXISTS strength ON related_to TYPE int DEFAULT 1;
    DEFINE FIELD IF NOT EXISTS created ON related_to TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS unique_key ON related_to VALUE <string>string::concat(array::sort([<string>in, <string>out]), rel_type);
    DEFINE INDEX IF NOT EXISTS unique_relationship ON related_to FIELDS unique_key UNIQUE;
`
