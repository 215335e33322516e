package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

// Store is the configuration/rule repository over named queries.
type Store struct {
	db *sqlx.DB
	q  *Queries
}

// New creates a repository, loading the embedded named queries.
func New(db *sqlx.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	q, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, q: q}, nil
}

// configurationRow maps the configurations table. Timestamps are stored as
// RFC3339 strings for sqlite/postgres parity; metadata_fields is the
// serialized field-spec list.
type configurationRow struct {
	ID                 string         `db:"id"`
	Tenant             string         `db:"tenant"`
	Name               sql.NullString `db:"name"`
	Type               string         `db:"type"`
	MetadataFields     string         `db:"metadata_fields"`
	Priority           int            `db:"priority"`
	ShowOnStorefront   bool           `db:"show_on_storefront"`
	StorefrontPosition string         `db:"storefront_position"`
	CreatedAt          string         `db:"created_at"`
	UpdatedAt          string         `db:"updated_at"`
}

type ruleRow struct {
	ID              string         `db:"id"`
	ConfigurationID string         `db:"configuration_id"`
	ParentID        sql.NullString `db:"parent_id"`
	Kind            string         `db:"kind"`
	MatchValue      string         `db:"match_value"`
	MatchRef        sql.NullString `db:"match_ref"`
	Operator        string         `db:"operator"`
	Level           int            `db:"level"`
	Position        int            `db:"position"`
	CreatedAt       string         `db:"created_at"`
}

// CreateConfiguration inserts a configuration row.
func (s *Store) CreateConfiguration(ctx context.Context, cfg *types.Configuration) error {
	fields, err := json.Marshal(cfg.MetafieldSpecs)
	if err != nil {
		return fmt.Errorf("serializing metafield specs: %w", err)
	}

	_, err = s.q.Exec(ctx, "insert-configuration",
		string(cfg.ID),
		cfg.Tenant,
		nullable(cfg.Name),
		string(cfg.Type),
		string(fields),
		cfg.Priority,
		cfg.ShowOnStorefront,
		string(cfg.StorefrontPosition),
		cfg.CreatedAt.UTC().Format(time.RFC3339),
		cfg.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting configuration: %w", err)
	}
	return nil
}

// GetConfiguration loads one configuration by id.
func (s *Store) GetConfiguration(ctx context.Context, id types.ConfigurationID) (*types.Configuration, error) {
	var row configurationRow
	err := s.q.Get(ctx, "get-configuration", &row, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrConfigurationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return rowToConfiguration(row)
}

// ListConfigurationsByTenant returns a tenant's configurations ordered by
// descending priority (the application order for priority resolution).
func (s *Store) ListConfigurationsByTenant(ctx context.Context, tenant string) ([]types.Configuration, error) {
	var rows []configurationRow
	if err := s.q.Select(ctx, "list-configurations-by-tenant", &rows, tenant); err != nil {
		return nil, fmt.Errorf("listing configurations: %w", err)
	}

	out := make([]types.Configuration, 0, len(rows))
	for _, row := range rows {
		cfg, err := rowToConfiguration(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *cfg)
	}
	return out, nil
}

// UpdateConfiguration persists the mutable configuration columns.
func (s *Store) UpdateConfiguration(ctx context.Context, cfg *types.Configuration) error {
	fields, err := json.Marshal(cfg.MetafieldSpecs)
	if err != nil {
		return fmt.Errorf("serializing metafield specs: %w", err)
	}

	res, err := s.q.Exec(ctx, "update-configuration",
		nullable(cfg.Name),
		string(cfg.Type),
		string(fields),
		cfg.Priority,
		cfg.ShowOnStorefront,
		string(cfg.StorefrontPosition),
		time.Now().UTC().Format(time.RFC3339),
		string(cfg.ID),
	)
	if err != nil {
		return fmt.Errorf("updating configuration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrConfigurationNotFound
	}
	return nil
}

// DeleteConfiguration removes a configuration; its rules cascade.
func (s *Store) DeleteConfiguration(ctx context.Context, id types.ConfigurationID) error {
	res, err := s.q.Exec(ctx, "delete-configuration", string(id))
	if err != nil {
		return fmt.Errorf("deleting configuration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrConfigurationNotFound
	}
	return nil
}

// InsertRules bulk-inserts a configuration's rule set.
func (s *Store) InsertRules(ctx context.Context, flat []types.Rule) error {
	for _, r := range flat {
		_, err := s.q.Exec(ctx, "insert-rule",
			string(r.ID),
			string(r.ConfigurationID),
			nullable(string(r.ParentID)),
			string(r.Kind),
			r.MatchValue,
			nullable(r.MatchRef),
			string(r.Operator),
			r.Level,
			r.Position,
			r.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting rule %s: %w", r.ID, err)
		}
	}
	return nil
}

// ListRulesByConfiguration returns a configuration's flat rule list.
func (s *Store) ListRulesByConfiguration(ctx context.Context, id types.ConfigurationID) ([]types.Rule, error) {
	var rows []ruleRow
	if err := s.q.Select(ctx, "list-rules-by-configuration", &rows, string(id)); err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}

	out := make([]types.Rule, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.Rule{
			ID:              types.RuleID(row.ID),
			ConfigurationID: types.ConfigurationID(row.ConfigurationID),
			ParentID:        types.RuleID(row.ParentID.String),
			Kind:            types.RuleKind(row.Kind),
			MatchValue:      row.MatchValue,
			MatchRef:        row.MatchRef.String,
			Operator:        types.RuleOperator(row.Operator),
			Level:           row.Level,
			Position:        row.Position,
			CreatedAt:       parseTime(row.CreatedAt),
		})
	}
	return out, nil
}

// ReplaceRules implements the full-replace update semantics: delete the old
// set, then insert the new one. The two steps are not wrapped in one
// transaction; a crash in between leaves a configuration with no rules
// (matches everything), an accepted risk window.
func (s *Store) ReplaceRules(ctx context.Context, id types.ConfigurationID, flat []types.Rule) error {
	if _, err := s.q.Exec(ctx, "delete-rules-by-configuration", string(id)); err != nil {
		return fmt.Errorf("deleting rules: %w", err)
	}
	return s.InsertRules(ctx, flat)
}

func rowToConfiguration(row configurationRow) (*types.Configuration, error) {
	var specs []types.FieldSpec
	if row.MetadataFields != "" {
		if err := json.Unmarshal([]byte(row.MetadataFields), &specs); err != nil {
			return nil, fmt.Errorf("decoding metafield specs for %s: %w", row.ID, err)
		}
	}

	return &types.Configuration{
		ID:                 types.ConfigurationID(row.ID),
		Tenant:             row.Tenant,
		Name:               row.Name.String,
		Type:               types.ConfigurationType(row.Type),
		MetafieldSpecs:     specs,
		Priority:           row.Priority,
		ShowOnStorefront:   row.ShowOnStorefront,
		StorefrontPosition: types.StorefrontPosition(row.StorefrontPosition),
		CreatedAt:          parseTime(row.CreatedAt),
		UpdatedAt:          parseTime(row.UpdatedAt),
	}, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseTime decodes a stored RFC3339 timestamp; zero time on malformed data.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
