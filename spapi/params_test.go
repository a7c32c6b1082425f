package spapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsForm(t *testing.T) {
	params := Params{
		"name":       "Lobby screen",
		"enabled":    true,
		"locked":     false,
		"width":      1920,
		"ratio":      1.25,
		"size":       int64(42),
		"buildings":  []string{"b1", "b2"},
		"materials":  []any{"m1", 7},
		"codes":      []int{1, 2},
		"details":    map[string]any{"a": "b"},
		"raw":        json.RawMessage(`{"x":1}`),
		"duration":   5 * time.Second,
		"skipped":    nil,
		"empty_list": []string{},
	}

	form, err := params.form("tok")
	require.NoError(t, err)

	assert.Equal(t, "tok", form.Get("token"))
	assert.Equal(t, "Lobby screen", form.Get("name"))
	assert.Equal(t, "True", form.Get("enabled"))
	assert.Equal(t, "False", form.Get("locked"))
	assert.Equal(t, "1920", form.Get("width"))
	assert.Equal(t, "1.25", form.Get("ratio"))
	assert.Equal(t, "42", form.Get("size"))
	assert.Equal(t, []string{"b1", "b2"}, form["buildings"])
	assert.Equal(t, []string{"m1", "7"}, form["materials"])
	assert.Equal(t, []string{"1", "2"}, form["codes"])
	assert.Equal(t, `{"a":"b"}`, form.Get("details"))
	assert.Equal(t, `{"x":1}`, form.Get("raw"))
	assert.Equal(t, "5s", form.Get("duration"))
	assert.NotContains(t, form, "skipped")
	assert.NotContains(t, form, "empty_list")
}

func TestParamsFormIntegerKinds(t *testing.T) {
	type priority int16

	params := Params{
		"i8":       int8(-8),
		"i16":      int16(16),
		"u8":       uint8(8),
		"u16":      uint16(160),
		"u32":      uint32(320),
		"priority": priority(3),
		"ids":      []uint16{4, 5},
		"levels":   [2]int8{1, -1},
		"weights":  []float32{0.5},
	}

	form, err := params.form("tok")
	require.NoError(t, err)

	assert.Equal(t, "-8", form.Get("i8"))
	assert.Equal(t, "16", form.Get("i16"))
	assert.Equal(t, "8", form.Get("u8"))
	assert.Equal(t, "160", form.Get("u16"))
	assert.Equal(t, "320", form.Get("u32"))
	assert.Equal(t, "3", form.Get("priority"))
	assert.Equal(t, []string{"4", "5"}, form["ids"])
	assert.Equal(t, []string{"1", "-1"}, form["levels"])
	assert.Equal(t, []string{"0.5"}, form["weights"])
}

func TestParamsFormUnsupportedValue(t *testing.T) {
	_, err := Params{"bad": struct{}{}}.form("tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter bad")

	_, err = Params{"bad": []any{[]string{"nested"}}}.form("tok")
	require.Error(t, err)
}

func TestJoinList(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{"string slice", []string{"a", "b", "c"}, "a,b,c", false},
		{"generic slice", []any{"a", 2, true}, "a,2,True", false},
		{"integer slice", []uint32{7, 8}, "7,8", false},
		{"single string", "solo", "solo", false},
		{"empty slice", []string{}, "", false},
		{"not a list", 12, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{"tags": tt.value}
			err := p.joinList("tags", "tags_text")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p["tags_text"])
			assert.NotContains(t, p, "tags")
		})
	}

	t.Run("absent key", func(t *testing.T) {
		p := Params{"name": "x"}
		require.NoError(t, p.joinList("tags", "tags_text"))
		assert.Equal(t, Params{"name": "x"}, p)
	})
}

func TestCheckParams(t *testing.T) {
	client, err := NewClient("pub", "sec", zerolog.Nop())
	require.NoError(t, err)

	allowed := newAllowList("name", "comment")

	assert.NoError(t, client.checkParams("add_materialgroup", allowed, Params{"name": "x"}))
	assert.NoError(t, client.checkParams("add_materialgroup", allowed, nil))

	err = client.checkParams("add_materialgroup", allowed, Params{"name": "x", "zeta": 1, "alpha": 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
	assert.Equal(t,
		"add_materialgroup: APIError: cancel call for add_materialgroup: unsupported parameters: alpha, zeta",
		err.Error())
}

func TestAllowListWith(t *testing.T) {
	base := newAllowList("b", "a")
	extended := base.with("c")

	assert.Equal(t, []string{"a", "b"}, base.keys())
	assert.Equal(t, []string{"a", "b", "c"}, extended.keys())
}

func TestRecordAccessors(t *testing.T) {
	r := Record{
		"code":    "abc",
		"name":    "Lobby",
		"width":   float64(1920),
		"active":  true,
		"owner":   map[string]any{"code": "u1"},
		"comment": nil,
	}

	assert.Equal(t, "abc", r.Code())
	assert.Equal(t, "Lobby", r.Name())
	assert.Equal(t, "1920", r.String("width"))
	assert.Equal(t, "true", r.String("active"))
	assert.Empty(t, r.String("comment"))
	assert.Empty(t, r.String("missing"))
	assert.True(t, r.Bool("active"))
	assert.False(t, r.Bool("name"))

	owner, ok := r.Record("owner")
	require.True(t, ok)
	assert.Equal(t, "u1", owner.Code())

	_, ok = r.Record("name")
	assert.False(t, ok)
}

func TestRecordList(t *testing.T) {
	resp := Record{
		"medias": []any{map[string]any{"code": "m1"}},
		"nulls":  nil,
		"bad":    []any{"text"},
		"scalar": "x",
	}

	records, err := recordList("op", resp, "medias")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0].Code())

	records, err = recordList("op", resp, "nulls")
	require.NoError(t, err)
	assert.Empty(t, records)

	for _, key := range []string{"bad", "scalar", "missing"} {
		_, err := recordList("op", resp, key)
		assert.ErrorIs(t, err, ErrInvalidResponse, key)
	}
}
