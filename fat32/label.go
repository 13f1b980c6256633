package fat32

import (
	"fmt"
	"strings"

	sdformat "github.com/herbderby/NdsSDFormat"
)

// Label is a normalized 11-byte FAT volume label: uppercase, space-padded,
// restricted to the short-name character set. The structure builders only
// ever accept this type, so an un-normalized string can never reach the
// disk.
type Label [11]byte

// Characters the FAT short-name character set forbids. Lowercase letters
// are not listed because they are normalized, not rejected.
const forbiddenLabelChars = `"*+,./:;<=>?[\]|`

// NormalizeLabel converts user text into an on-disk volume label. The input
// is uppercased and right-padded with spaces. Inputs longer than 11 bytes,
// or containing a forbidden, non-printable, or non-ASCII character, are
// rejected.
func NormalizeLabel(text string) (Label, error) {
	var label Label
	for i := range label {
		label[i] = ' '
	}

	if len(text) > len(label) {
		return Label{}, sdformat.ErrInvalidLabel.WithMessage(fmt.Sprintf(
			"%q is %d bytes, maximum is %d", text, len(text), len(label)))
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < 0x20 || c > 0x7E {
			return Label{}, sdformat.ErrInvalidLabel.WithMessage(fmt.Sprintf(
				"%q contains a non-printable or non-ASCII byte at index %d",
				text, i))
		}
		if strings.IndexByte(forbiddenLabelChars, c) >= 0 {
			return Label{}, sdformat.ErrInvalidLabel.WithMessage(fmt.Sprintf(
				"%q contains forbidden character %q", text, c))
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		label[i] = c
	}
	return label, nil
}

// String returns the label with trailing padding removed.
func (l Label) String() string {
	return strings.TrimRight(string(l[:]), " ")
}
