package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deltaJSON(content string) []byte {
	return []byte(fmt.Sprintf(`{"delta":{"content":%q}}`, content))
}

func TestAccumulator_JoinsDeltasInOrder(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.AddDelta(deltaJSON("Hello ")))
	require.NoError(t, acc.AddDelta(deltaJSON("world")))

	resp := acc.Response("conv-1")
	assert.Equal(t, "Hello world", resp.Text)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Empty(t, resp.Attributions)
	assert.Empty(t, resp.SensitivityLabel)
}

func TestAccumulator_NilContentSkipped(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.AddDelta([]byte(`{"delta":{}}`)))
	require.NoError(t, acc.AddDelta(deltaJSON("text")))
	require.NoError(t, acc.AddDelta([]byte(`{"delta":{"sensitivityLabel":{"displayName":"General"}}}`)))

	resp := acc.Response("conv-1")
	assert.Equal(t, "text", resp.Text)
	assert.Equal(t, "General", resp.SensitivityLabel)
}

func TestAccumulator_EmptyStringContentKept(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.AddDelta(deltaJSON("a")))
	require.NoError(t, acc.AddDelta(deltaJSON("")))
	require.NoError(t, acc.AddDelta(deltaJSON("b")))

	assert.Equal(t, "ab", acc.Response("c").Text)
}

func TestAccumulator_MalformedDeltaReturnsError(t *testing.T) {
	acc := NewAccumulator()
	assert.Error(t, acc.AddDelta([]byte(`{not json`)))

	// The turn carries on; earlier and later frames still accumulate.
	require.NoError(t, acc.AddDelta(deltaJSON("ok")))
	assert.Equal(t, "ok", acc.Response("c").Text)
}

func TestAccumulator_AttributionsDedupedByURL(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.AddDelta([]byte(`{"delta":{"attributions":[
		{"url":"https://contoso.sharepoint.com/a","title":"First Title"},
		{"url":"https://contoso.sharepoint.com/b","title":"Other"}
	]}}`)))
	require.NoError(t, acc.AddDelta([]byte(`{"delta":{"attributions":[
		{"url":"https://contoso.sharepoint.com/a","title":"Repeated Title"}
	]}}`)))

	resp := acc.Response("conv-1")
	require.Len(t, resp.Attributions, 2)
	assert.Equal(t, "https://contoso.sharepoint.com/a", resp.Attributions[0].URL)
	assert.Equal(t, "First Title", resp.Attributions[0].Title)
	assert.Equal(t, "https://contoso.sharepoint.com/b", resp.Attributions[1].URL)
}

func TestAccumulator_CompletionDoesNotOverrideDeltaAttribution(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.AddDelta([]byte(`{"delta":{"attributions":[
		{"url":"https://contoso.sharepoint.com/a","title":"Delta Title"}
	]}}`)))
	require.NoError(t, acc.AddCompletion([]byte(`{"attributions":[
		{"url":"https://contoso.sharepoint.com/a","title":"Completion Title"},
		{"url":"https://contoso.sharepoint.com/new","title":"New"}
	]}`)))

	resp := acc.Response("conv-1")
	require.Len(t, resp.Attributions, 2)
	assert.Equal(t, "Delta Title", resp.Attributions[0].Title)
	assert.Equal(t, "New", resp.Attributions[1].Title)
}

func TestAccumulator_CompletionOnlyAttributions(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.AddDelta(deltaJSON("answer")))
	require.NoError(t, acc.AddCompletion([]byte(`{"attributions":[
		{"url":"https://contoso.sharepoint.com/doc","title":"Doc","type":"file"}
	]}`)))

	resp := acc.Response("conv-1")
	require.Len(t, resp.Attributions, 1)
	assert.Equal(t, "file", resp.Attributions[0].Type)
}

func TestAccumulator_AttributionTypeDefaultsToCitation(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.AddDelta([]byte(`{"delta":{"attributions":[
		{"url":"https://contoso.sharepoint.com/a","title":"A"}
	]}}`)))

	resp := acc.Response("conv-1")
	require.Len(t, resp.Attributions, 1)
	assert.Equal(t, "citation", resp.Attributions[0].Type)
}

func TestAccumulator_SensitivityLabelLastWriteWins(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.AddDelta([]byte(`{"delta":{"sensitivityLabel":{"displayName":"General"}}}`)))
	require.NoError(t, acc.AddDelta([]byte(`{"delta":{"sensitivityLabel":{"displayName":"Confidential"}}}`)))

	assert.Equal(t, "Confidential", acc.Response("c").SensitivityLabel)
}

func TestAccumulator_EmptyStream(t *testing.T) {
	acc := NewAccumulator()
	resp := acc.Response("conv-1")

	assert.Empty(t, resp.Text)
	assert.Empty(t, resp.Attributions)
	assert.Empty(t, resp.SensitivityLabel)
	assert.Equal(t, "conv-1", resp.ConversationID)
}

func TestAccumulator_ResponseIdempotent(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.AddDelta(deltaJSON("stable")))
	require.NoError(t, acc.AddDelta([]byte(`{"delta":{"attributions":[
		{"url":"https://contoso.sharepoint.com/a","title":"A"}
	]}}`)))

	first := acc.Response("conv-1")
	second := acc.Response("conv-1")
	assert.Equal(t, first, second)
}
