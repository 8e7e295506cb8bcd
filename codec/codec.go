package codec

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// QuietPreamble suppresses PowerShell progress output so streams carry only
// what the command itself wrote. It is prepended to every encoded script.
const QuietPreamble = "$ProgressPreference='SilentlyContinue';"

// ErrEncoding marks input that cannot be encoded because it is not valid
// UTF-8 text.
var ErrEncoding = errors.New("command is not valid UTF-8 text")

func utf16Encoding() encoding.Encoding {
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}

// Encode prepends the quiet preamble to command and encodes the result as
// base64 over UTF-16LE, the form powershell.exe accepts via -EncodedCommand.
// The output never contains newlines. Encode does not touch the system.
func Encode(command string) (string, error) {
	if !utf8.ValidString(command) {
		return "", errors.Wrapf(ErrEncoding, "cannot encode command %q", command)
	}

	script := QuietPreamble + command
	raw, err := utf16Encoding().NewEncoder().Bytes([]byte(script))
	if err != nil {
		return "", errors.Wrap(err, "utf-16le encode failed")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode: base64 decode followed by UTF-16LE decode. The
// returned script still carries the quiet preamble Encode prepended.
func Decode(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, "base64 decode failed")
	}
	if len(raw)%2 != 0 {
		return "", errors.Errorf("utf-16le payload has odd length %d", len(raw))
	}
	decoded, err := utf16Encoding().NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrap(err, "utf-16le decode failed")
	}
	return string(decoded), nil
}

// EncodeLine prepends the quiet preamble to command and encodes the result
// as base64 over plain UTF-8. This is the one-command-per-line form the
// session pipe protocol carries; the output never contains newlines.
func EncodeLine(command string) (string, error) {
	if !utf8.ValidString(command) {
		return "", errors.Wrapf(ErrEncoding, "cannot encode command %q", command)
	}
	return base64.StdEncoding.EncodeToString([]byte(QuietPreamble + command)), nil
}

// DecodeLine reverses EncodeLine, returning the script with its preamble.
func DecodeLine(line string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		return "", errors.Wrap(err, "base64 decode failed")
	}
	return string(raw), nil
}
