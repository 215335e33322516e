// Package service orchestrates configuration management: persisting
// configurations and their rule trees, previewing matches against the
// catalog, and applying metafield values to matched items.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lazymak3r/meta-bulk-assign/internal/catalog"
	"github.com/lazymak3r/meta-bulk-assign/internal/logger"
	"github.com/lazymak3r/meta-bulk-assign/internal/match"
	"github.com/lazymak3r/meta-bulk-assign/internal/metafields"
	"github.com/lazymak3r/meta-bulk-assign/internal/rules"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

// Store is the persistence surface the service depends on.
// *store.Store satisfies it.
type Store interface {
	CreateConfiguration(ctx context.Context, cfg *types.Configuration) error
	GetConfiguration(ctx context.Context, id types.ConfigurationID) (*types.Configuration, error)
	ListConfigurationsByTenant(ctx context.Context, tenant string) ([]types.Configuration, error)
	UpdateConfiguration(ctx context.Context, cfg *types.Configuration) error
	DeleteConfiguration(ctx context.Context, id types.ConfigurationID) error
	InsertRules(ctx context.Context, flat []types.Rule) error
	ListRulesByConfiguration(ctx context.Context, id types.ConfigurationID) ([]types.Rule, error)
	ReplaceRules(ctx context.Context, id types.ConfigurationID, flat []types.Rule) error
}

// Service is a thin orchestration layer delegating to the store, the rules
// package, and the catalog.
type Service struct {
	store   Store
	source  catalog.Source
	matcher *match.Matcher
	applier *metafields.Applier
	log     *logger.Logger
}

// New creates a service instance with its dependencies.
func New(store Store, source catalog.Source, log *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Service{
		store:   store,
		source:  source,
		matcher: match.New(source),
		applier: metafields.NewApplier(source, log),
		log:     log,
	}, nil
}

// RuleInput describes one rule in a submitted rule set. Parent is the index
// of the parent rule within the same slice, or -1 for a root rule; parents
// must precede their children.
type RuleInput struct {
	Kind       types.RuleKind
	MatchValue string
	MatchRef   string
	Operator   types.RuleOperator
	Parent     int
	Position   int
}

// ConfigurationInput is the admin-facing create/update payload.
type ConfigurationInput struct {
	Tenant             string
	Name               string
	Fields             []types.FieldSpec
	Rules              []RuleInput
	Priority           int
	ShowOnStorefront   bool
	StorefrontPosition types.StorefrontPosition
}

// CreateConfiguration validates and persists a new configuration with its
// rule set. Type is always inferred from the rules; name falls back to an
// inferred one when the input leaves it empty.
func (s *Service) CreateConfiguration(ctx context.Context, in ConfigurationInput) (*types.Configuration, error) {
	if len(in.Fields) == 0 {
		return nil, types.ErrMissingFieldSpecs
	}

	id := types.NewConfigurationID()
	flat, err := materializeRules(id, in.Rules)
	if err != nil {
		return nil, err
	}

	flat = rules.NormalizeSiblingOperators(flat)
	if err := rules.ValidateRuleSet(flat); err != nil {
		return nil, err
	}

	name := in.Name
	if name == "" {
		name = rules.InferName(flat)
	}

	position := in.StorefrontPosition
	if position == "" {
		position = types.PositionProductPage
	}

	now := time.Now().UTC()
	cfg := &types.Configuration{
		ID:                 id,
		Tenant:             in.Tenant,
		Name:               name,
		Type:               rules.InferType(flat),
		MetafieldSpecs:     in.Fields,
		Priority:           in.Priority,
		ShowOnStorefront:   in.ShowOnStorefront,
		StorefrontPosition: position,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.CreateConfiguration(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.store.InsertRules(ctx, flat); err != nil {
		return nil, err
	}

	s.log.Info("configuration created",
		"configuration_id", string(cfg.ID),
		"tenant", cfg.Tenant,
		"type", string(cfg.Type),
		"rules", len(flat),
	)

	return cfg, nil
}

// UpdateConfiguration replaces a configuration's fields and its entire rule
// set. Rules are never patched individually; the submitted set is the new
// truth. Type is re-inferred from the new rules.
func (s *Service) UpdateConfiguration(ctx context.Context, id types.ConfigurationID, in ConfigurationInput) (*types.Configuration, error) {
	existing, err := s.store.GetConfiguration(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(in.Fields) == 0 {
		return nil, types.ErrMissingFieldSpecs
	}

	flat, err := materializeRules(id, in.Rules)
	if err != nil {
		return nil, err
	}

	flat = rules.NormalizeSiblingOperators(flat)
	if err := rules.ValidateRuleSet(flat); err != nil {
		return nil, err
	}

	name := in.Name
	if name == "" {
		name = rules.InferName(flat)
	}

	position := in.StorefrontPosition
	if position == "" {
		position = existing.StorefrontPosition
	}

	cfg := &types.Configuration{
		ID:                 id,
		Tenant:             existing.Tenant,
		Name:               name,
		Type:               rules.InferType(flat),
		MetafieldSpecs:     in.Fields,
		Priority:           in.Priority,
		ShowOnStorefront:   in.ShowOnStorefront,
		StorefrontPosition: position,
		CreatedAt:          existing.CreatedAt,
		UpdatedAt:          time.Now().UTC(),
	}

	if err := s.store.UpdateConfiguration(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.store.ReplaceRules(ctx, id, flat); err != nil {
		return nil, err
	}

	s.log.Info("configuration updated",
		"configuration_id", string(id),
		"type", string(cfg.Type),
		"rules", len(flat),
	)

	return cfg, nil
}

// GetConfiguration loads one configuration with its rules.
func (s *Service) GetConfiguration(ctx context.Context, id types.ConfigurationID) (*types.Configuration, []types.Rule, error) {
	cfg, err := s.store.GetConfiguration(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	flat, err := s.store.ListRulesByConfiguration(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return cfg, flat, nil
}

// ListConfigurations returns a tenant's configurations in application order
// (highest priority first).
func (s *Service) ListConfigurations(ctx context.Context, tenant string) ([]types.Configuration, error) {
	return s.store.ListConfigurationsByTenant(ctx, tenant)
}

// DeleteConfiguration removes a configuration; its rules cascade in the
// database.
func (s *Service) DeleteConfiguration(ctx context.Context, id types.ConfigurationID) error {
	if err := s.store.DeleteConfiguration(ctx, id); err != nil {
		return err
	}
	s.log.Info("configuration deleted", "configuration_id", string(id))
	return nil
}

// DuplicateConfiguration copies a configuration and its rule tree into the
// target tenant under fresh identifiers. The copy keeps the source's fields,
// priority, and storefront settings; its name gets a " (copy)" suffix.
func (s *Service) DuplicateConfiguration(ctx context.Context, id types.ConfigurationID, targetTenant string) (*types.Configuration, error) {
	src, err := s.store.GetConfiguration(ctx, id)
	if err != nil {
		return nil, err
	}
	srcRules, err := s.store.ListRulesByConfiguration(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	copyID := types.NewConfigurationID()
	cfg := &types.Configuration{
		ID:                 copyID,
		Tenant:             targetTenant,
		Name:               src.Name + " (copy)",
		Type:               src.Type,
		MetafieldSpecs:     src.MetafieldSpecs,
		Priority:           src.Priority,
		ShowOnStorefront:   src.ShowOnStorefront,
		StorefrontPosition: src.StorefrontPosition,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Re-key the rules, preserving tree structure through an old-to-new
	// identifier map.
	idMap := make(map[types.RuleID]types.RuleID, len(srcRules))
	for _, r := range srcRules {
		idMap[r.ID] = types.NewRuleID()
	}

	flat := make([]types.Rule, 0, len(srcRules))
	for _, r := range srcRules {
		clone := r
		clone.ID = idMap[r.ID]
		clone.ConfigurationID = copyID
		clone.CreatedAt = now
		if !r.IsRoot() {
			clone.ParentID = idMap[r.ParentID]
		}
		flat = append(flat, clone)
	}

	if err := s.store.CreateConfiguration(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.store.InsertRules(ctx, flat); err != nil {
		return nil, err
	}

	s.log.Info("configuration duplicated",
		"source_id", string(id),
		"configuration_id", string(copyID),
		"tenant", targetTenant,
	)

	return cfg, nil
}

// PreviewMatches evaluates an unsaved rule set against the live catalog and
// returns the items it would target. Nothing is persisted.
func (s *Service) PreviewMatches(ctx context.Context, ruleInputs []RuleInput) ([]types.CatalogItem, error) {
	flat, err := materializeRules(types.NewConfigurationID(), ruleInputs)
	if err != nil {
		return nil, err
	}

	flat = rules.NormalizeSiblingOperators(flat)
	if err := rules.ValidateRuleSet(flat); err != nil {
		return nil, err
	}

	return s.matcher.FindMatching(ctx, rules.Build(flat))
}

// MatchesForSaved returns the catalog items a stored configuration targets.
func (s *Service) MatchesForSaved(ctx context.Context, id types.ConfigurationID) ([]types.CatalogItem, error) {
	if _, err := s.store.GetConfiguration(ctx, id); err != nil {
		return nil, err
	}
	return s.matcher.FindMatchingForConfiguration(ctx, s.store, id)
}

// ApplyConfiguration writes a configuration's metafield values to every
// matching catalog item and reports the per-item outcome.
func (s *Service) ApplyConfiguration(ctx context.Context, id types.ConfigurationID) (types.ApplyReport, error) {
	cfg, err := s.store.GetConfiguration(ctx, id)
	if err != nil {
		return types.ApplyReport{}, err
	}

	items, err := s.matcher.FindMatchingForConfiguration(ctx, s.store, id)
	if err != nil {
		return types.ApplyReport{}, err
	}

	report := s.applier.BulkApply(ctx, items, cfg.MetafieldSpecs)

	s.log.Info("configuration applied",
		"configuration_id", string(id),
		"total", report.Total,
		"successful", report.Successful,
		"failed", report.Failed,
	)

	return report, nil
}

// materializeRules turns rule inputs into persistable rules: fresh
// identifiers, parent indices resolved to parent identifiers, and tree
// levels computed. Parent indices must reference an earlier entry.
func materializeRules(cfgID types.ConfigurationID, inputs []RuleInput) ([]types.Rule, error) {
	now := time.Now().UTC()
	flat := make([]types.Rule, 0, len(inputs))

	for i, in := range inputs {
		r := types.Rule{
			ID:              types.NewRuleID(),
			ConfigurationID: cfgID,
			Kind:            in.Kind,
			MatchValue:      in.MatchValue,
			MatchRef:        in.MatchRef,
			Operator:        in.Operator,
			Position:        in.Position,
			CreatedAt:       now,
		}
		if r.Operator == "" {
			r.Operator = types.OperatorAnd
		}

		if in.Parent >= 0 {
			if in.Parent >= i {
				return nil, fmt.Errorf("rule %d: %w", i, types.ErrInvalidRuleParent)
			}
			parent := flat[in.Parent]
			r.ParentID = parent.ID
			r.Level = parent.Level + 1
		}

		flat = append(flat, r)
	}

	return flat, nil
}
