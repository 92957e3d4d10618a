package cas

import (
	"io"
	"testing"

	"github.com/shamaton/msgpack/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string
	Count int
}

func (s *sample) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, s)
}

func (s *sample) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, s)
}

func init() {
	Register("sample", &sample{})
}

func TestMemoryCAS_PutRetrieve(t *testing.T) {
	c := NewMemoryCAS()
	h, err := c.Put(&sample{Name: "a", Count: 4})
	require.NoError(t, err)
	assert.True(t, c.Has(h))

	got, err := Retrieve[*sample](c, h)
	require.NoError(t, err)
	assert.Equal(t, &sample{Name: "a", Count: 4}, got)
}

func TestMemoryCAS_EqualRecordsShareHash(t *testing.T) {
	c := NewMemoryCAS()
	h1, err := c.Put(&sample{Name: "a", Count: 4})
	require.NoError(t, err)
	h2, err := c.Put(&sample{Name: "a", Count: 4})
	require.NoError(t, err)
	h3, err := c.Put(&sample{Name: "a", Count: 3})
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Equal(t, 2, c.Len())
	assert.ElementsMatch(t, []Hash{h1, h3}, c.Hashes())
}

func TestRetrieveMissing(t *testing.T) {
	c := NewMemoryCAS()
	_, err := Retrieve[*sample](c, Hash(12345))
	assert.Error(t, err)
}

func TestRetrieveWrongType(t *testing.T) {
	c := NewMemoryCAS()
	h, err := c.Put(&sample{Name: "x"})
	require.NoError(t, err)
	_, err = Retrieve[*TypedEntry](c, h)
	assert.Error(t, err)
}
