package repo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
)

func TestDecodeCustomerDoc_CanonicalKeys(t *testing.T) {
	raw := []byte(`{
		"displayName": "Ana Pérez",
		"email": "ana@example.com",
		"phone": "+51 999 111 222",
		"createdAt": "2025-01-02T10:00:00Z",
		"lastOrderAt": "2025-03-04T12:30:00Z",
		"orderCount": 4,
		"totalSpent": 120.5,
		"tags": ["vip", "lima"],
		"notes": "prefers pickup",
		"preferences": {"newsletter": true, "notifyOrderStatus": false}
	}`)

	c := domain.Customer{ID: uuid.New()}
	require.NoError(t, decodeCustomerDoc(raw, &c))

	assert.Equal(t, "Ana Pérez", c.DisplayName)
	assert.Equal(t, "ana@example.com", c.Email)
	assert.Equal(t, "+51 999 111 222", c.Phone)
	require.NotNil(t, c.CreatedAt)
	assert.True(t, c.CreatedAt.Equal(time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)))
	require.NotNil(t, c.LastOrderAt)
	assert.Equal(t, 4, c.OrderCount)
	assert.InDelta(t, 120.5, c.TotalSpent, 0.0001)
	assert.Equal(t, []string{"vip", "lima"}, c.Tags)
	assert.Equal(t, "prefers pickup", c.Notes)
	assert.True(t, c.Preferences.Newsletter)
	assert.False(t, c.Preferences.NotifyOrderStatus)
}

func TestDecodeCustomerDoc_LegacyFallbacks(t *testing.T) {
	raw := []byte(`{
		"name": "Legacy Name",
		"userEmail": "legacy@example.com",
		"joinedAt": "2024-05-01T00:00:00Z",
		"lastActivity": "2024-06-01T00:00:00Z"
	}`)

	c := domain.Customer{ID: uuid.New()}
	require.NoError(t, decodeCustomerDoc(raw, &c))

	assert.Equal(t, "Legacy Name", c.DisplayName)
	assert.Equal(t, "legacy@example.com", c.Email)
	require.NotNil(t, c.CreatedAt)
	assert.True(t, c.CreatedAt.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, c.LastOrderAt)
	assert.True(t, c.LastOrderAt.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.NotNil(t, c.Tags, "tags should never decode as nil")
}

func TestDecodeCustomerDoc_CanonicalWinsOverLegacy(t *testing.T) {
	raw := []byte(`{"displayName": "New", "name": "Old", "createdAt": "2025-01-01T00:00:00Z", "joinedAt": "2020-01-01T00:00:00Z"}`)

	c := domain.Customer{ID: uuid.New()}
	require.NoError(t, decodeCustomerDoc(raw, &c))

	assert.Equal(t, "New", c.DisplayName)
	assert.Equal(t, 2025, c.CreatedAt.Year())
}

func TestDecodeCustomerDoc_MissingTimestamps(t *testing.T) {
	c := domain.Customer{ID: uuid.New()}
	require.NoError(t, decodeCustomerDoc([]byte(`{}`), &c))

	assert.Nil(t, c.CreatedAt)
	assert.Nil(t, c.LastOrderAt)
}

func TestDecodeCustomerDoc_WrongTypeIsError(t *testing.T) {
	for name, raw := range map[string]string{
		"orderCount as string": `{"orderCount": "three"}`,
		"tags as string":       `{"tags": "vip"}`,
		"createdAt as number":  `{"createdAt": 12345}`,
		"negative orderCount":  `{"orderCount": -1}`,
		"not an object":        `[]`,
	} {
		t.Run(name, func(t *testing.T) {
			c := domain.Customer{ID: uuid.New()}
			err := decodeCustomerDoc([]byte(raw), &c)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestEncodeCustomerPatch_OnlySetFields(t *testing.T) {
	notes := "call after 6pm"
	raw, err := encodeCustomerPatch(domain.CustomerPatch{Notes: &notes})

	require.NoError(t, err)
	assert.JSONEq(t, `{"notes": "call after 6pm"}`, string(raw))
}

func TestEncodeCustomerPatch_EmptyTagsEncodeAsArray(t *testing.T) {
	var tags []string
	raw, err := encodeCustomerPatch(domain.CustomerPatch{Tags: &tags})

	require.NoError(t, err)
	assert.JSONEq(t, `{"tags": []}`, string(raw))
}
