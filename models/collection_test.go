package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCollectionBareArray(t *testing.T) {
	body := []byte(`[{"id":1,"title":"Spring launch"},{"id":2,"title":"Retention push"}]`)

	items, err := DecodeCollection[Conversation](body)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, "Retention push", items[1].Title)
}

func TestDecodeCollectionEnvelope(t *testing.T) {
	body := []byte(`{"items":[{"id":7,"name":"Summer sale","conversation_id":3}],"total":1}`)

	items, err := DecodeCollection[Campaign](body)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].ID)
	assert.Equal(t, 3, items[0].ConversationID)
}

func TestDecodeCollectionLeadingWhitespace(t *testing.T) {
	body := []byte("\n\t [{\"id\":4}]")

	items, err := DecodeCollection[Conversation](body)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].ID)
}

func TestDecodeCollectionEmptyEnvelope(t *testing.T) {
	items, err := DecodeCollection[Campaign]([]byte(`{"total":0}`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeCollectionMalformed(t *testing.T) {
	_, err := DecodeCollection[Conversation]([]byte(`[{"id":`))
	assert.Error(t, err)

	_, err = DecodeCollection[Conversation]([]byte(`not json`))
	assert.Error(t, err)
}
