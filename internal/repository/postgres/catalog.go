package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/domain"
)

// CatalogStore reads the authoritative menu catalog. The checkout pipeline
// prices everything from here; client-supplied prices are never used.
type CatalogStore struct {
	db DBTX
}

// NewCatalogStore creates a catalog store.
func NewCatalogStore(db DBTX) *CatalogStore {
	return &CatalogStore{db: db}
}

const selectItem = `
	SELECT id, name, base_price_cents, active, modifier_groups, visibility_rules, updated_at
	FROM menu_items
	WHERE id = $1`

// GetItem fetches one menu item by ID, active or not. Callers decide how to
// treat inactive items.
func (s *CatalogStore) GetItem(ctx context.Context, itemID string) (*domain.MenuItem, error) {
	item, err := scanItem(s.db.QueryRow(ctx, selectItem, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound(itemID)
		}
		return nil, fmt.Errorf("get menu item %s: %w", itemID, err)
	}
	return item, nil
}

const selectItems = `
	SELECT id, name, base_price_cents, active, modifier_groups, visibility_rules, updated_at
	FROM menu_items
	WHERE id = ANY($1)`

// GetItems fetches a batch of menu items keyed by ID. Missing IDs are simply
// absent from the result; callers detect them by lookup.
func (s *CatalogStore) GetItems(ctx context.Context, itemIDs []string) (map[string]*domain.MenuItem, error) {
	rows, err := s.db.Query(ctx, selectItems, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("get menu items: %w", err)
	}
	defer rows.Close()

	items := make(map[string]*domain.MenuItem, len(itemIDs))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}
	return items, nil
}

func scanItem(row pgx.Row) (*domain.MenuItem, error) {
	var (
		item       domain.MenuItem
		groupsJSON []byte
		rulesJSON  []byte
	)
	if err := row.Scan(&item.ID, &item.Name, &item.BasePriceCents, &item.Active,
		&groupsJSON, &rulesJSON, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if len(groupsJSON) > 0 {
		if err := json.Unmarshal(groupsJSON, &item.ModifierGroups); err != nil {
			return nil, fmt.Errorf("decode modifier groups: %w", err)
		}
	}
	if len(rulesJSON) > 0 {
		if err := json.Unmarshal(rulesJSON, &item.VisibilityRules); err != nil {
			return nil, fmt.Errorf("decode visibility rules: %w", err)
		}
	}
	return &item, nil
}
