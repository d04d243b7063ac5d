package negotiate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oaspipe/internal/testutil"
	"github.com/erraggy/oaspipe/mediatype"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/opdef"
	"github.com/erraggy/oaspipe/schemareg"
)

func declare(types ...string) map[string]schemareg.Key {
	m := make(map[string]schemareg.Key, len(types))
	for _, t := range types {
		m[t] = schemareg.ResponseBodyKey("op", "", t)
	}
	return m
}

func TestMatcher_GetBest(t *testing.T) {
	m, err := NewMatcher(map[opdef.ResponseCode]map[string]schemareg.Key{
		"200":     declare("application/json"),
		"4XX":     declare("text/plain"),
		"404":     declare(),
		"default": declare("application/json"),
	})
	require.NoError(t, err)

	tests := []struct {
		status int
		code   opdef.ResponseCode
		types  []string
	}{
		{200, "200", []string{"application/json"}},
		{404, "404", []string{}},
		{400, "4XX", []string{"text/plain"}},
		{201, "default", []string{"application/json"}},
		{503, "default", []string{"application/json"}},
	}
	for _, tt := range tests {
		t.Run(tt.code.Kind().String(), func(t *testing.T) {
			got := m.GetBest(tt.status)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.types, got.Types())
		})
	}
}

func TestMatcher_GetBestUndeclared(t *testing.T) {
	m, err := NewMatcher(map[opdef.ResponseCode]map[string]schemareg.Key{
		"200": declare("application/json"),
	})
	require.NoError(t, err)

	got := m.GetBest(500)
	assert.Equal(t, opdef.DefaultCode, got.Code)
	assert.Nil(t, got.Declared)
	assert.Nil(t, got.Types())
}

func TestNewMatcher_Rejects(t *testing.T) {
	_, err := NewMatcher(map[opdef.ResponseCode]map[string]schemareg.Key{
		"2xx": declare(),
		"2XX": declare(),
	})
	assert.ErrorIs(t, err, oaserrors.ErrConfig)

	_, err = NewMatcher(map[opdef.ResponseCode]map[string]schemareg.Key{"x-extra": declare()})
	assert.ErrorIs(t, err, oaserrors.ErrConfig)

	m, err := NewMatcher(map[opdef.ResponseCode]map[string]schemareg.Key{"5xx": nil})
	require.NoError(t, err)
	got := m.GetBest(502)
	assert.Equal(t, opdef.ResponseCode("5XX"), got.Code)
	assert.NotNil(t, got.Declared, "nil declarations mean no body")
}

func TestMatcher_Acceptable(t *testing.T) {
	m, err := NewMatcher(map[opdef.ResponseCode]map[string]schemareg.Key{
		"200": declare("application/json", "text/csv"),
		"404": declare(),
		"4XX": declare("text/plain"),
	})
	require.NoError(t, err)

	tests := []struct {
		accept string
		want   bool
	}{
		{"*/*", true},
		{"", true},
		{"application/json, text/plain", true},
		{"text/*", true},
		{"application/json", false},
		{"image/png", false},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Acceptable(mediatype.AcceptedOrAny(tt.accept)))
		})
	}

	empty, err := NewMatcher(nil)
	require.NoError(t, err)
	assert.True(t, empty.Acceptable(mediatype.NewSet("image/png")))
}

func TestIsResponseTypeValid(t *testing.T) {
	jsonOnly := mediatype.NewSet("application/json")
	anything := mediatype.NewSet(mediatype.Any)

	tests := []struct {
		name     string
		value    string
		declared map[string]schemareg.Key
		accepted mediatype.Set
		want     bool
	}{
		{"undeclared without body", "", nil, jsonOnly, true},
		{"undeclared accepted", "application/json", nil, jsonOnly, true},
		{"undeclared not accepted", "text/plain", nil, jsonOnly, false},
		{"no body declared, none sent", "", declare(), jsonOnly, true},
		{"no body declared, body sent", "application/json", declare(), anything, false},
		{"declared and accepted", "application/json", declare("application/json"), jsonOnly, true},
		{"declared, missing body", "", declare("application/json"), jsonOnly, false},
		{"not declared", "text/csv", declare("application/json"), anything, false},
		{"declared, not accepted", "text/csv", declare("application/json", "text/csv"), jsonOnly, false},
		{"declared, wildcard accepted", "text/csv", declare("text/csv"), mediatype.NewSet("text/*"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsResponseTypeValid(tt.value, tt.declared, tt.accepted))
		})
	}
}

func TestForDefinition(t *testing.T) {
	defs, err := opdef.Extract(testutil.Petstore(t))
	require.NoError(t, err)

	m, err := ForDefinition(defs["getPet"])
	require.NoError(t, err)
	assert.Equal(t, []opdef.ResponseCode{"200", "404", "default"}, m.Codes())

	clause := m.GetBest(200)
	assert.Equal(t, schemareg.ResponseBodyKey("getPet", "200", "application/json"), clause.Declared["application/json"])
	assert.Empty(t, m.GetBest(404).Declared)
	assert.Equal(t, opdef.DefaultCode, m.GetBest(500).Code)

	assert.True(t, m.Acceptable(mediatype.NewSet("application/json")))
	assert.False(t, m.Acceptable(mediatype.NewSet("text/plain")))
}
