package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineCodec_KnownValues(t *testing.T) {
	c := AffineCodec{}
	// a -> (5*0+8)%26 = 8 -> 'i'; z -> (5*25+8)%26 = 3 -> 'd'
	assert.Equal(t, "i", c.Encode("a"))
	assert.Equal(t, "d", c.Encode("z"))
	assert.Equal(t, "I", c.Encode("A"))
}

func TestAffineCodec_RoundTrip(t *testing.T) {
	c := AffineCodec{}
	for _, in := range []string{"password", "Secret123!", "MiXeD cAsE", "", "ümlaut-ß"} {
		t.Run(in, func(t *testing.T) {
			out, err := c.Decode(c.Encode(in))
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestAffineCodec_NonLettersPassThrough(t *testing.T) {
	assert.Equal(t, "123-_!", AffineCodec{}.Encode("123-_!"))
}

func TestAffineCodec_DecodeRejectsControlCharacters(t *testing.T) {
	_, err := AffineCodec{}.Decode("abc\x00")
	assert.ErrorIs(t, err, ErrUndecodable)
}
