package subtitle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asticode/go-astisub"
	"github.com/samber/lo"
	"github.com/wlynxg/chardet"
	"github.com/wlynxg/chardet/consts"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrTooLarge is returned when a subtitle, or a file inside an archive, exceeds the size limit.
	ErrTooLarge = errors.New("subtitle too large")
	// ErrUnsupportedFormat is returned for archives without subtitles and unknown subtitle formats.
	ErrUnsupportedFormat = errors.New("unsupported subtitle format")
	// ErrUndecodable is returned when a subtitle cannot be decoded to UTF-8 or parsed.
	ErrUndecodable = errors.New("undecodable subtitle")
)

type format func(r io.Reader) (*astisub.Subtitles, error)

var formats = map[string]format{
	".srt": astisub.ReadFromSRT,
	".vtt": astisub.ReadFromWebVTT,
	".ssa": astisub.ReadFromSSA,
	".ass": astisub.ReadFromSSA,
}

// Formats returns the supported subtitle file extensions.
func Formats() []string {
	return []string{".srt", ".vtt", ".ssa", ".ass"}
}

// ReadAll reads r until EOF and fails with ErrTooLarge if r holds more than limit bytes.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(LimitReader(r, limit, ErrTooLarge))
	if err != nil {
		return nil, err
	}
	return b, nil
}

var utf8BOM = []byte("\xEF\xBB\xBF")

// Decode detects the charset of data and returns it as NFC normalized UTF-8 text.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var (
		text string
		err  error
	)
	switch encoding := chardet.Detect(data).Encoding; encoding {
	case consts.UTF8, "":
		text = string(data)
	case consts.ISO88591:
		text, err = decodeWith(data, charmap.ISO8859_1.NewDecoder())
	default:
		enc, lookupErr := htmlindex.Get(encoding)
		if lookupErr != nil {
			// Unknown to the index, keep the bytes when they are valid anyway.
			text = string(data)
			break
		}
		text, err = decodeWith(data, enc.NewDecoder())
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUndecodable, err)
	}

	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrUndecodable)
	}

	return norm.NFC.String(text), nil
}

func decodeWith(data []byte, t transform.Transformer) (string, error) {
	b, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", fmt.Errorf("failed to transform.Bytes: %w", err)
	}
	return string(bytes.TrimPrefix(b, utf8BOM)), nil
}

var (
	markupRE = regexp.MustCompile(`<[^>]*>|\{\\[^}]*\}`)
	spacesRE = regexp.MustCompile(`[ \t]+`)
)

// Parse parses text according to the extension of name and returns the text of every cue, in timed order.
// Files without a known extension are parsed as WebVTT when they start with its header, and as SRT otherwise.
func Parse(name, text string) ([]string, error) {
	read, ok := formats[strings.ToLower(path.Ext(name))]
	if !ok {
		read = astisub.ReadFromSRT
		if strings.HasPrefix(strings.TrimSpace(text), "WEBVTT") {
			read = astisub.ReadFromWebVTT
		}
	}

	subs, err := read(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}

	return lo.FilterMap(subs.Items, func(item *astisub.Item, _ int) (string, bool) {
		cue := cueText(item)
		return cue, cue != ""
	}), nil
}

func cueText(item *astisub.Item) string {
	lines := make([]string, 0, len(item.Lines))
	for _, line := range item.Lines {
		parts := lo.Map(line.Items, func(li astisub.LineItem, _ int) string { return li.Text })
		text := markupRE.ReplaceAllString(strings.Join(parts, " "), "")
		text = strings.ReplaceAll(text, `\N`, "\n")
		text = strings.TrimSpace(spacesRE.ReplaceAllString(text, " "))
		if text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// Read runs the whole pipeline on an upload: size check, archive extraction, charset decoding and parsing.
// name is the uploaded file name, used to pick the subtitle format.
func Read(name string, r io.Reader, limit int64) ([]string, error) {
	data, err := ReadAll(r, limit)
	if err != nil {
		return nil, err
	}

	file, err := Extract(name, data, limit)
	if err != nil {
		return nil, err
	}

	text, err := Decode(file.Data)
	if err != nil {
		return nil, err
	}

	return Parse(file.Name, text)
}
