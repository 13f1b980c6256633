package fat32

import (
	"testing"

	sdformat "github.com/herbderby/NdsSDFormat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	label, err := NormalizeLabel("my disk!")
	require.NoError(t, err)
	assert.Equal(t, "MY DISK!   ", string(label[:]),
		"lowercase must be uppercased and the result space-padded")
	assert.Equal(t, "MY DISK!", label.String())

	label, err = NormalizeLabel("")
	require.NoError(t, err)
	assert.Equal(t, "           ", string(label[:]), "empty label is all spaces")

	label, err = NormalizeLabel("ELEVENCHARS")
	require.NoError(t, err)
	assert.Equal(t, "ELEVENCHARS", string(label[:]))
}

func TestNormalizeLabelRejectsBadInput(t *testing.T) {
	badLabels := []string{
		"TWELVE CHARS", // too long
		"bad*label",
		"dot.dot",
		`back\slash`,
		"pipe|pipe",
		"a:b",
		"q?q",
		"<angle>",
		"tab\there",
		"caf\xc3\xa9", // non-ASCII
	}
	for _, text := range badLabels {
		_, err := NormalizeLabel(text)
		assert.ErrorIsf(t, err, sdformat.ErrInvalidLabel, "label %q", text)
	}
}
