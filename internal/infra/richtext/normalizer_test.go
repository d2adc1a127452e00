package richtext

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingConverter struct{}

func (failingConverter) Name() string                    { return "failing" }
func (failingConverter) Convert(string) (string, error) { return "", errors.New("boom") }

type panickingConverter struct{}

func (panickingConverter) Name() string                    { return "panicking" }
func (panickingConverter) Convert(string) (string, error) { panic("broken converter") }

func TestNormalizeProducesHypertextAndPlainText(t *testing.T) {
	hyper, plain := New(nil).Normalize([]byte(`{\rtf1\ansi{\fonttbl\f0 Helvetica;}\f0 Title\par \b bold\b0  text   \par}`))
	require.NotNil(t, hyper)
	assert.Contains(t, *hyper, "<b>bold</b>")
	assert.Equal(t, "Title\nbold\n text", plain)
}

func TestNormalizeFallsBackToPlainTextConverter(t *testing.T) {
	n := New(nil)
	n.Hypertext = []Converter{failingConverter{}, panickingConverter{}}

	hyper, plain := n.Normalize([]byte(`{\rtf1 one\par two}`))
	assert.Nil(t, hyper)
	assert.Equal(t, "one\ntwo", plain)
}

func TestNormalizeFallsBackToCrudeStrip(t *testing.T) {
	hyper, plain := New(nil).Normalize([]byte("not rtf \\b at all}  \nsecond line  "))
	assert.Nil(t, hyper)
	assert.Equal(t, "not rtf at all\nsecond line", plain)
}

func TestNormalizeRescuesTruncatedDocument(t *testing.T) {
	hyper, plain := New(nil).Normalize([]byte(`{\rtf1\ansi{\fonttbl\f0\fswiss Helvetica;}\f0 caf\'e9 \u8212\'97 done\par second`))
	assert.Nil(t, hyper)
	assert.Equal(t, "caf\u00e9 \u2014 done\nsecond", plain)
}

func TestNormalizeMalformedInputYieldsEmptyText(t *testing.T) {
	hyper, plain := New(nil).Normalize([]byte(`{\rtf1\ansi{\fonttbl\f0`))
	assert.Nil(t, hyper)
	assert.Equal(t, "", plain)

	hyper, plain = New(nil).Normalize(nil)
	assert.Nil(t, hyper)
	assert.Equal(t, "", plain)
}

func TestNormalizeRepairsInvalidUTF8(t *testing.T) {
	_, plain := New(nil).Normalize([]byte("plain \xff text"))
	assert.Equal(t, "plain \uFFFD text", plain)
}

func TestStripHTMLJoinsTextNodes(t *testing.T) {
	assert.Equal(t, "Hello\nworld", StripHTML("<p>Hello <b>world</b></p>"))
}
