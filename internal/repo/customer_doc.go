package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

// ErrMalformedDocument is returned when a stored customer document does not
// decode into the expected shape. The offending customer ID is in the message.
var ErrMalformedDocument = errors.New("malformed customer document")

// customerDoc is the on-disk shape of a customer. Older writers used other
// key names for several fields; both spellings are accepted on read and only
// the canonical one is written.
type customerDoc struct {
	DisplayName *string `json:"displayName,omitempty"`
	LegacyName  *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	UserEmail   *string `json:"userEmail,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`

	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	JoinedAt     *time.Time `json:"joinedAt,omitempty"`
	LastOrderAt  *time.Time `json:"lastOrderAt,omitempty"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`

	OrderCount *int     `json:"orderCount,omitempty"`
	TotalSpent *float64 `json:"totalSpent,omitempty"`

	Tags        []string            `json:"tags,omitempty"`
	Notes       *string             `json:"notes,omitempty"`
	Preferences *domain.Preferences `json:"preferences,omitempty"`
}

// decodeCustomerDoc parses raw into c, resolving legacy fallbacks:
// displayName→name, email→userEmail, createdAt→joinedAt, lastOrderAt→lastActivity.
// A field with the wrong JSON type is an error, never a silent zero value.
func decodeCustomerDoc(raw []byte, c *domain.Customer) error {
	var d customerDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDocument, c.ID, err)
	}
	if d.OrderCount != nil && *d.OrderCount < 0 {
		return fmt.Errorf("%w: %s: negative orderCount", ErrMalformedDocument, c.ID)
	}

	c.DisplayName = firstString(d.DisplayName, d.LegacyName)
	c.Email = firstString(d.Email, d.UserEmail)
	c.Phone = firstString(d.Phone)
	c.Address = firstString(d.Address)
	c.Notes = firstString(d.Notes)
	c.CreatedAt = firstTime(d.CreatedAt, d.JoinedAt)
	c.LastOrderAt = firstTime(d.LastOrderAt, d.LastActivity)

	if d.OrderCount != nil {
		c.OrderCount = *d.OrderCount
	}
	if d.TotalSpent != nil {
		c.TotalSpent = *d.TotalSpent
	}
	c.Tags = d.Tags
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if d.Preferences != nil {
		c.Preferences = *d.Preferences
	}
	return nil
}

// encodeCustomerDoc renders c with canonical key names only.
func encodeCustomerDoc(c domain.Customer) (json.RawMessage, error) {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	d := map[string]any{
		"displayName": c.DisplayName,
		"email":       c.Email,
		"phone":       c.Phone,
		"address":     c.Address,
		"orderCount":  c.OrderCount,
		"totalSpent":  c.TotalSpent,
		"tags":        tags,
		"notes":       c.Notes,
		"preferences": c.Preferences,
	}
	if c.CreatedAt != nil {
		d["createdAt"] = c.CreatedAt.UTC()
	}
	if c.LastOrderAt != nil {
		d["lastOrderAt"] = c.LastOrderAt.UTC()
	}
	return json.Marshal(d)
}

// encodeCustomerPatch renders only the fields set on p, ready to be merged
// into a stored document with the jsonb || operator.
func encodeCustomerPatch(p domain.CustomerPatch) (json.RawMessage, error) {
	d := map[string]any{}
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		d["tags"] = tags
	}
	if p.Notes != nil {
		d["notes"] = *p.Notes
	}
	if p.Preferences != nil {
		d["preferences"] = *p.Preferences
	}
	if p.Address != nil {
		d["address"] = *p.Address
	}
	return json.Marshal(d)
}

func firstString(vals ...*string) string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

func firstTime(vals ...*time.Time) *time.Time {
	for _, v := range vals {
		if v != nil && !v.IsZero() {
			t := v.UTC()
			return &t
		}
	}
	return nil
}
