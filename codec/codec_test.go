package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	c, ok := ByName("")
	require.True(t, ok)
	assert.Equal(t, Default.Name(), c.Name())

	c, ok = ByName(" GoJSON ")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())

	_, ok = ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsDecodeMixedRows(t *testing.T) {
	data := []byte(`[[0.5, 1, "cat", "img/a.jpg"], [2, 3.25, "dog", "img/b.jpg"]]`)

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var rows [][]any
			require.NoError(t, c.Unmarshal(data, &rows))
			require.Len(t, rows, 2)
			assert.Equal(t, 0.5, rows[0][0])
			assert.Equal(t, "cat", rows[0][2])
			assert.Equal(t, 3.25, rows[1][1])
		})
	}
}

func TestMarshalIndent(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			out, err := c.MarshalIndent(map[string][]int{"a": {1, 2}})
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":[1,2]}`, string(out))
			assert.Contains(t, string(out), "\n  ")
		})
	}

	_, err := JSON{}.Marshal(make(chan int))
	assert.Error(t, err)
}
