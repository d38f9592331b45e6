package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePayload_EmptyObject(t *testing.T) {
	p, err := DecodePayload([]byte(`{}`))

	assert.NoError(t, err)
	assert.Equal(t, DefaultTitle, p.Title)
	assert.Equal(t, DefaultBody, p.Body)
	assert.Equal(t, DefaultIcon, p.Icon)
	assert.Equal(t, DefaultIcon, p.Badge)
	assert.Equal(t, DefaultTag, p.Tag)
	assert.NotNil(t, p.Data)
	assert.NotNil(t, p.Actions)
	assert.False(t, p.RequireInteraction)
	assert.False(t, p.Silent)
}

func TestDecodePayload_MalformedJSON(t *testing.T) {
	p, err := DecodePayload([]byte(`{"title": "broken`))

	// the error is only for logging, the payload still renders fully
	assert.Error(t, err)
	assert.Equal(t, DefaultTitle, p.Title)
	assert.Equal(t, DefaultBody, p.Body)
	assert.Equal(t, DefaultTag, p.Tag)
	assert.NotNil(t, p.Data)
}

func TestDecodePayload_FullMessage(t *testing.T) {
	raw := []byte(`{"title":"X","message":"Y","tag":"t1","data":{"serverId":"9"}}`)

	p, err := DecodePayload(raw)

	assert.NoError(t, err)
	assert.Equal(t, "X", p.Title)
	assert.Equal(t, "Y", p.Body)
	assert.Equal(t, "t1", p.Tag)

	url, navigate := p.TargetURL("")
	assert.True(t, navigate)
	assert.Equal(t, "/server/9", url)
}

func TestDecodePayload_BodyFallsBackToBodyField(t *testing.T) {
	p, _ := DecodePayload([]byte(`{"body":"cuerpo"}`))
	assert.Equal(t, "cuerpo", p.Body)
}

func TestDecodePayload_MessageWinsOverBody(t *testing.T) {
	p, _ := DecodePayload([]byte(`{"message":"m","body":"b"}`))
	assert.Equal(t, "m", p.Body)
}

func TestDecodePayload_TagFromID(t *testing.T) {
	p, _ := DecodePayload([]byte(`{"id":"n-42"}`))
	assert.Equal(t, "n-42", p.Tag)

	// numeric ids stringify
	p, _ = DecodePayload([]byte(`{"id":42}`))
	assert.Equal(t, "42", p.Tag)

	// data.id works as a fallback too
	p, _ = DecodePayload([]byte(`{"data":{"id":"abc"}}`))
	assert.Equal(t, "abc", p.Tag)
}

func TestTargetURL_Precedence(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"explicit url wins", map[string]any{"url": "/custom", "postId": "1"}, "/custom"},
		{"postId wins over gameId", map[string]any{"postId": "42", "gameId": "7"}, "/post/42"},
		{"gameId wins over serverId", map[string]any{"gameId": "7", "serverId": "9"}, "/game/7"},
		{"serverId alone", map[string]any{"serverId": "9"}, "/server/9"},
		{"numeric ids", map[string]any{"postId": float64(42)}, "/post/42"},
		{"no hints falls back to root", map[string]any{}, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Payload{Data: tt.data}
			url, navigate := p.TargetURL("")
			assert.True(t, navigate)
			assert.Equal(t, tt.want, url)
		})
	}
}

func TestTargetURL_DismissSkipsNavigation(t *testing.T) {
	p := Payload{Data: map[string]any{"postId": "42"}}

	_, navigate := p.TargetURL(ActionDismiss)

	assert.False(t, navigate)
}

func TestTargetURL_CustomActionNavigates(t *testing.T) {
	p := Payload{Data: map[string]any{"url": "/inbox"}}

	url, navigate := p.TargetURL("open")

	assert.True(t, navigate)
	assert.Equal(t, "/inbox", url)
}

func TestTrackClose(t *testing.T) {
	p := Payload{Data: map[string]any{"trackClose": true, "id": "n-1"}}
	assert.True(t, p.TrackClose())
	assert.Equal(t, "n-1", p.NotificationID())

	p = Payload{Tag: "t", Data: map[string]any{}}
	assert.False(t, p.TrackClose())
	assert.Equal(t, "t", p.NotificationID())
}
