package logging

import (
	"io"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// NewGraylog returns a writer that ships every log line to the GELF UDP
// input at addr, e.g. "localhost:12201".
func NewGraylog(addr string) (*gelf.Writer, error) {
	return gelf.NewWriter(addr)
}

// Tee fans log lines out to every writer.
func Tee(ws ...io.Writer) io.Writer {
	return zerolog.MultiLevelWriter(ws...)
}
