package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lazymak3r/meta-bulk-assign/internal/types"
)

/*
 * Shopify Admin GraphQL implementation of Source.
 *
 * One POST per page/mutation against the shop's Admin API endpoint. Catalog
 * fetches follow the relay cursor until hasNextPage is false, 250 items per
 * page (the platform cap). Field-level write failures surface as
 * metafieldsSet userErrors and are returned as FieldErrors, not as a request
 * error.
 *
 * Structured objects map to metaobjects: create/update mutations keyed on
 * whether an existing gid was supplied, definitions loaded via
 * metaobjectDefinition with nested definition ids carried in the
 * metaobject_definition_id validation.
 */

// ShopifyClient talks to one shop's Admin GraphQL API.
type ShopifyClient struct {
	endpoint string
	token    string
	pageSize int
	client   *http.Client
}

var _ Source = (*ShopifyClient)(nil)

// NewShopifyClient creates a client for the given shop domain
// (e.g. "acme.myshopify.com") and Admin API access token.
func NewShopifyClient(shopDomain, token, apiVersion string, timeout time.Duration) *ShopifyClient {
	return &ShopifyClient{
		endpoint: fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, apiVersion),
		token:    token,
		pageSize: types.CatalogPageSize,
		client:   &http.Client{Timeout: timeout},
	}
}

// graphQLError is one error entry in a GraphQL response envelope.
type graphQLError struct {
	Message string `json:"message"`
}

// execute posts one GraphQL document and decodes the data envelope into out.
func (c *ShopifyClient) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("encoding graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog request failed: status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding catalog response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("catalog query rejected: %s", strings.Join(msgs, "; "))
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decoding catalog data: %w", err)
		}
	}
	return nil
}

const productsQuery = `
query Products($pageSize: Int!, $cursor: String, $query: String) {
  products(first: $pageSize, after: $cursor, query: $query) {
    edges {
      node {
        id
        vendor
        productType
        category { id name }
        collections(first: 50) {
          edges { node { id title } }
        }
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// productsPage mirrors the products connection payload.
type productsPage struct {
	Products struct {
		Edges []struct {
			Node struct {
				ID          string `json:"id"`
				Vendor      string `json:"vendor"`
				ProductType string `json:"productType"`
				Category    *struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"category"`
				Collections struct {
					Edges []struct {
						Node struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"collections"`
			} `json:"node"`
		} `json:"edges"`
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
	} `json:"products"`
}

// FetchAllItems pages through the entire catalog.
func (c *ShopifyClient) FetchAllItems(ctx context.Context) ([]types.CatalogItem, error) {
	return c.fetchItems(ctx, "")
}

// FetchItemsByVendor pages through one vendor's items using a search query.
func (c *ShopifyClient) FetchItemsByVendor(ctx context.Context, vendor string) ([]types.CatalogItem, error) {
	return c.fetchItems(ctx, fmt.Sprintf("vendor:%q", vendor))
}

func (c *ShopifyClient) fetchItems(ctx context.Context, search string) ([]types.CatalogItem, error) {
	var items []types.CatalogItem
	var cursor *string

	for {
		variables := map[string]any{"pageSize": c.pageSize}
		if cursor != nil {
			variables["cursor"] = *cursor
		}
		if search != "" {
			variables["query"] = search
		}

		var page productsPage
		if err := c.execute(ctx, productsQuery, variables, &page); err != nil {
			return nil, err
		}

		for _, edge := range page.Products.Edges {
			item := types.CatalogItem{
				ID:     edge.Node.ID,
				Vendor: edge.Node.Vendor,
			}
			if edge.Node.Category != nil {
				item.Category = types.ItemCategory{ID: edge.Node.Category.ID, Name: edge.Node.Category.Name}
			} else {
				// Legacy catalogs expose only the free-form product type.
				item.Category = types.ItemCategory{Name: edge.Node.ProductType}
			}
			for _, ce := range edge.Node.Collections.Edges {
				item.Collections = append(item.Collections, types.ItemCollection{
					ID:    ce.Node.ID,
					Title: ce.Node.Title,
				})
			}
			items = append(items, item)
		}

		if !page.Products.PageInfo.HasNextPage {
			return items, nil
		}
		end := page.Products.PageInfo.EndCursor
		cursor = &end
	}
}

const metafieldsSetMutation = `
mutation SetMetafields($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    userErrors { field message }
  }
}`

// WriteItemFields writes all fields to the item in a single mutation.
func (c *ShopifyClient) WriteItemFields(ctx context.Context, itemID string, fields []FieldInput) ([]FieldError, error) {
	inputs := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		inputs = append(inputs, map[string]any{
			"ownerId":   itemID,
			"namespace": f.Namespace,
			"key":       f.Key,
			"type":      f.Type,
			"value":     f.Value,
		})
	}

	var result struct {
		MetafieldsSet struct {
			UserErrors []struct {
				Field   []string `json:"field"`
				Message string   `json:"message"`
			} `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := c.execute(ctx, metafieldsSetMutation, map[string]any{"metafields": inputs}, &result); err != nil {
		return nil, err
	}

	var fieldErrs []FieldError
	for _, ue := range result.MetafieldsSet.UserErrors {
		fieldErrs = append(fieldErrs, FieldError{
			Field:   strings.Join(ue.Field, "."),
			Message: ue.Message,
		})
	}
	return fieldErrs, nil
}

const metaobjectDefinitionQuery = `
query MetaobjectDefinition($id: ID!) {
  metaobjectDefinition(id: $id) {
    id
    type
    fieldDefinitions {
      key
      required
      type { name }
      validations { name value }
    }
  }
}`

// FetchStructuredObjectDefinition loads a metaobject definition. Nested
// object-reference fields carry their target definition id in the
// metaobject_definition_id validation.
func (c *ShopifyClient) FetchStructuredObjectDefinition(ctx context.Context, definitionID string) (*ObjectDefinition, error) {
	var result struct {
		MetaobjectDefinition *struct {
			ID               string `json:"id"`
			Type             string `json:"type"`
			FieldDefinitions []struct {
				Key      string `json:"key"`
				Required bool   `json:"required"`
				Type     struct {
					Name string `json:"name"`
				} `json:"type"`
				Validations []struct {
					Name  string `json:"name"`
					Value string `json:"value"`
				} `json:"validations"`
			} `json:"fieldDefinitions"`
		} `json:"metaobjectDefinition"`
	}
	if err := c.execute(ctx, metaobjectDefinitionQuery, map[string]any{"id": definitionID}, &result); err != nil {
		return nil, err
	}
	if result.MetaobjectDefinition == nil {
		return nil, fmt.Errorf("structured object definition %s not found", definitionID)
	}

	def := &ObjectDefinition{
		ID:   result.MetaobjectDefinition.ID,
		Type: result.MetaobjectDefinition.Type,
	}
	for _, fd := range result.MetaobjectDefinition.FieldDefinitions {
		field := ObjectFieldDefinition{
			Key:      fd.Key,
			Required: fd.Required,
			Type:     fd.Type.Name,
		}
		for _, v := range fd.Validations {
			if v.Name == "metaobject_definition_id" {
				field.NestedDefinitionID = v.Value
			}
		}
		def.Fields = append(def.Fields, field)
	}
	return def, nil
}

const metaobjectCreateMutation = `
mutation CreateMetaobject($metaobject: MetaobjectCreateInput!) {
  metaobjectCreate(metaobject: $metaobject) {
    metaobject { id }
    userErrors { field message }
  }
}`

const metaobjectUpdateMutation = `
mutation UpdateMetaobject($id: ID!, $metaobject: MetaobjectUpdateInput!) {
  metaobjectUpdate(id: $id, metaobject: $metaobject) {
    metaobject { id }
    userErrors { field message }
  }
}`

// ResolveStructuredObject creates or updates a metaobject and returns its gid.
func (c *ShopifyClient) ResolveStructuredObject(ctx context.Context, definitionID string, fields map[string]string, existingID string) (string, error) {
	fieldInputs := make([]map[string]string, 0, len(fields))
	for k, v := range fields {
		fieldInputs = append(fieldInputs, map[string]string{"key": k, "value": v})
	}

	var mutation string
	variables := map[string]any{}
	if existingID != "" {
		mutation = metaobjectUpdateMutation
		variables["id"] = existingID
		variables["metaobject"] = map[string]any{"fields": fieldInputs}
	} else {
		// Creation is keyed on the definition's type handle, not its gid.
		def, err := c.FetchStructuredObjectDefinition(ctx, definitionID)
		if err != nil {
			return "", err
		}
		mutation = metaobjectCreateMutation
		variables["metaobject"] = map[string]any{"type": def.Type, "fields": fieldInputs}
	}

	var result struct {
		MetaobjectCreate *metaobjectResult `json:"metaobjectCreate"`
		MetaobjectUpdate *metaobjectResult `json:"metaobjectUpdate"`
	}
	if err := c.execute(ctx, mutation, variables, &result); err != nil {
		return "", err
	}

	res := result.MetaobjectCreate
	if res == nil {
		res = result.MetaobjectUpdate
	}
	if res == nil {
		return "", fmt.Errorf("structured object mutation returned no payload")
	}
	if len(res.UserErrors) > 0 {
		return "", fmt.Errorf("structured object write rejected: %s", res.UserErrors[0].Message)
	}
	if res.Metaobject == nil {
		return "", fmt.Errorf("structured object mutation returned no id")
	}
	return res.Metaobject.ID, nil
}

type metaobjectResult struct {
	Metaobject *struct {
		ID string `json:"id"`
	} `json:"metaobject"`
	UserErrors []struct {
		Field   []string `json:"field"`
		Message string   `json:"message"`
	} `json:"userErrors"`
}
