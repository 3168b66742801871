package cms

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ReferencePrefix starts every order reference.
const ReferencePrefix = "OSW-"

// Order is what the order modal shows after a plan is chosen.
type Order struct {
	Plan      Plan
	Currency  string
	Accounts  []Account
	Contacts  []Contact
	Reference string
}

// NewReference returns a fresh order reference the buyer quotes with the
// payment receipt.
func NewReference() string {
	return ReferencePrefix + ulid.Make().String()
}

// Order prepares the order for plan id.
func (c *Client) Order(ctx context.Context, lang, id string) (Order, error) {
	p, err := c.Purchase(ctx, lang)
	if err != nil {
		return Order{}, err
	}
	id = strings.TrimSpace(strings.ToLower(id))
	for _, plan := range p.Plans {
		if plan.ID != id {
			continue
		}
		return Order{
			Plan:      plan,
			Currency:  p.Currency,
			Accounts:  p.Accounts,
			Contacts:  p.Contacts,
			Reference: NewReference(),
		}, nil
	}
	return Order{}, ErrNotFound
}
