package playlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Extension is the manifest file extension.
const Extension = ".m3u"

// Encoder writes an extended M3U playlist.
type Encoder struct {
	w      *bufio.Writer
	header bool
}

// NewEncoder returns an encoder writing to w. The #EXTM3U line is written with the first call.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

func (e *Encoder) writeHeader() {
	if !e.header {
		e.w.WriteString("#EXTM3U\n")
		e.header = true
	}
}

// Comment writes a "# text" line.
func (e *Encoder) Comment(text string) {
	e.writeHeader()
	fmt.Fprintf(e.w, "# %s\n", singleLine(text))
}

// Blank writes an empty line.
func (e *Encoder) Blank() {
	e.writeHeader()
	e.w.WriteString("\n")
}

// Entry writes an #EXTINF line followed by the path line.
func (e *Encoder) Entry(path string, seconds int, title string) {
	e.writeHeader()
	fmt.Fprintf(e.w, "#EXTINF:%d,%s\n%s\n", seconds, singleLine(title), singleLine(path))
}

// Close flushes buffered output.
func (e *Encoder) Close() error {
	e.writeHeader()
	return e.w.Flush()
}

func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
