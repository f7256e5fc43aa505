package workspace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRole_String(t *testing.T) {
	assert.Equal(t, "top-left", TopLeft.String())
	assert.Equal(t, "bottom-right", BottomRight.String())
	assert.Equal(t, "role(9)", Role(9).String())
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	for in, want := range map[string]Role{
		"top_right":   TopRight,
		"bottom_left": BottomLeft,
		"tl":          TopLeft,
		"BR":          BottomRight,
	} {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRole("middle")
	assert.Error(t, err)
}

func TestRole_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]Role{"corner": BottomLeft})
	require.NoError(t, err)
	assert.JSONEq(t, `{"corner":"bottom-left"}`, string(data))

	var back struct {
		Corner Role `json:"corner"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"corner":"top_right"}`), &back))
	assert.Equal(t, TopRight, back.Corner)

	_, err = json.Marshal(Role(7))
	assert.Error(t, err)
	assert.Error(t, json.Unmarshal([]byte(`{"corner":"nowhere"}`), &back))
}

func TestRole_YAML(t *testing.T) {
	var v struct {
		Corner Role `yaml:"corner"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("corner: bottom_right\n"), &v))
	assert.Equal(t, BottomRight, v.Corner)
}

func TestMarkerIDs(t *testing.T) {
	ids := MarkerIDs{TopLeft: 10, TopRight: 11, BottomLeft: 12, BottomRight: 13}
	for i, r := range Roles {
		assert.Equal(t, 10+i, ids.ID(r))
		got, ok := ids.RoleOf(10 + i)
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}
	_, ok := ids.RoleOf(0)
	assert.False(t, ok)
}

func TestSpec_Validate(t *testing.T) {
	require.NoError(t, DefaultSpec().Validate())

	s := DefaultSpec()
	s.WidthPx = 0
	s.HeightMM = 0
	s.Markers.BottomLeft = -1
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rectified size")
	assert.Contains(t, err.Error(), "physical size")
	assert.Contains(t, err.Error(), "must not be negative")

	s = DefaultSpec()
	s.Markers.BottomRight = s.Markers.TopLeft
	err = s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker id 0 assigned to both top-left and bottom-right")
}

func TestSpec_IsAValue(t *testing.T) {
	a := DefaultSpec()
	b := a
	b.Markers.TopLeft = 42
	b.WidthMM = 1
	assert.Equal(t, 0, a.Markers.TopLeft)
	assert.Equal(t, 220.0, a.WidthMM)
}
