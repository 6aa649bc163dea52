package viz

import (
	"bytes"
	"io"

	"github.com/fogleman/gg"
)

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
