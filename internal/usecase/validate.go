package usecase

import (
	"fmt"
	"strings"

	"github.com/cartcompare/backend/internal/domain"
)

// Limits bound the size of an incoming shopping list. Zero values fall
// back to defaults.
type Limits struct {
	MaxItems          int
	MaxItemNameLength int
	MaxQuantity       int
}

const (
	defaultMaxItems          = 50
	defaultMaxItemNameLength = 200
	defaultMaxQuantity       = 999
)

func (l Limits) withDefaults() Limits {
	if l.MaxItems <= 0 {
		l.MaxItems = defaultMaxItems
	}
	if l.MaxItemNameLength <= 0 {
		l.MaxItemNameLength = defaultMaxItemNameLength
	}
	if l.MaxQuantity <= 0 {
		l.MaxQuantity = defaultMaxQuantity
	}
	return l
}

// ValidateItems rejects malformed shopping lists before any network
// activity. All failures wrap domain.ErrInvalidRequest.
func ValidateItems(items []domain.ShoppingListItem, limits Limits) error {
	limits = limits.withDefaults()

	if len(items) == 0 {
		return fmt.Errorf("%w: items must be a non-empty list", domain.ErrInvalidRequest)
	}
	if len(items) > limits.MaxItems {
		return fmt.Errorf("%w: too many items (max %d)", domain.ErrInvalidRequest, limits.MaxItems)
	}
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return fmt.Errorf("%w: item %d has an empty name", domain.ErrInvalidRequest, i)
		}
		if len(name) > limits.MaxItemNameLength {
			return fmt.Errorf("%w: item %d name exceeds %d characters", domain.ErrInvalidRequest, i, limits.MaxItemNameLength)
		}
		if item.Quantity < 1 || item.Quantity > limits.MaxQuantity {
			return fmt.Errorf("%w: item %d quantity must be between 1 and %d", domain.ErrInvalidRequest, i, limits.MaxQuantity)
		}
	}
	return nil
}
