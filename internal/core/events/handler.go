// Package events applies matching configurations to catalog items as they
// are created or updated, driven by incoming webhooks.
package events

import (
	"context"
	"fmt"

	"github.com/lazymak3r/meta-bulk-assign/internal/catalog"
	"github.com/lazymak3r/meta-bulk-assign/internal/logger"
	"github.com/lazymak3r/meta-bulk-assign/internal/rules"
	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

// EventType identifies the catalog change that triggered processing.
type EventType string

const (
	EventItemCreated EventType = "created"
	EventItemUpdated EventType = "updated"
)

// ItemAttributes carries the item fields present in a webhook payload.
// Collection membership is not part of the payload, so collection rules do
// not match during event processing.
type ItemAttributes struct {
	ID          string `json:"admin_graphql_api_id"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"product_type"`
}

// ItemEvent is one catalog change to process.
type ItemEvent struct {
	Type   EventType
	Tenant string
	Item   ItemAttributes
}

type configurationStore interface {
	ListConfigurationsByTenant(ctx context.Context, tenant string) ([]types.Configuration, error)
	ListRulesByConfiguration(ctx context.Context, id types.ConfigurationID) ([]types.Rule, error)
}

type fieldWriter interface {
	ApplyMetadata(ctx context.Context, itemID string, specs []types.FieldSpec) ([]catalog.FieldInput, error)
}

// Handler evaluates every stored configuration against an incoming item and
// applies the matching ones in priority order.
type Handler struct {
	store   configurationStore
	applier fieldWriter
	log     *logger.Logger
}

// NewHandler creates an event handler.
func NewHandler(store configurationStore, applier fieldWriter, log *logger.Logger) (*Handler, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if applier == nil {
		return nil, fmt.Errorf("applier cannot be nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{store: store, applier: applier, log: log}, nil
}

// HandleItemEvent processes one catalog change. Configurations are applied
// from highest priority down, so when two configurations write the same
// field the later, lower-priority write is the one that sticks. A failure in
// one configuration does not stop the rest.
//
// Failures never reach the caller: the delivery mechanism retries on error,
// and a bad payload or a store outage would retry forever. Everything is
// logged and swallowed, panics included.
func (h *Handler) HandleItemEvent(ctx context.Context, ev ItemEvent) error {
	// A panic in rule evaluation must not take the webhook consumer down.
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic while processing item event",
				"item_id", ev.Item.ID,
				"panic", fmt.Sprint(r),
			)
		}
	}()

	if ev.Item.ID == "" {
		h.log.Error("item event missing item id", "tenant", ev.Tenant)
		return nil
	}

	item := types.CatalogItem{
		ID:     ev.Item.ID,
		Vendor: ev.Item.Vendor,
		Category: types.ItemCategory{
			Name: ev.Item.ProductType,
		},
	}

	configs, err := h.store.ListConfigurationsByTenant(ctx, ev.Tenant)
	if err != nil {
		h.log.Error("listing configurations failed",
			"tenant", ev.Tenant,
			"item_id", ev.Item.ID,
			"error", err.Error(),
		)
		return nil
	}

	// Tracks which configuration last wrote each field, to surface silent
	// overwrites between overlapping configurations.
	seen := make(map[string]types.ConfigurationID)

	for _, cfg := range configs {
		flat, err := h.store.ListRulesByConfiguration(ctx, cfg.ID)
		if err != nil {
			h.log.Error("loading rules failed",
				"configuration_id", string(cfg.ID),
				"error", err.Error(),
			)
			continue
		}

		if !rules.Evaluate(item, rules.Build(flat)) {
			continue
		}

		if _, err := h.applier.ApplyMetadata(ctx, item.ID, cfg.MetafieldSpecs); err != nil {
			h.log.Error("applying configuration failed",
				"configuration_id", string(cfg.ID),
				"item_id", item.ID,
				"error", err.Error(),
			)
			continue
		}

		for _, spec := range cfg.MetafieldSpecs {
			key := spec.FullKey()
			if prev, ok := seen[key]; ok {
				h.log.Warn("field overwritten by lower-priority configuration",
					"field", key,
					"item_id", item.ID,
					"previous_configuration", string(prev),
					"configuration_id", string(cfg.ID),
				)
			}
			seen[key] = cfg.ID
		}

		h.log.Info("configuration applied to item",
			"configuration_id", string(cfg.ID),
			"item_id", item.ID,
			"event", string(ev.Type),
		)
	}

	return nil
}
