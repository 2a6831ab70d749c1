package export

import "errors"

// ErrNoHeaders is returned when a dataset has no columns to render.
var ErrNoHeaders = errors.New("dataset requires at least one header")

// Dataset is a titled table. Rows are keyed by header; missing cells render empty.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// Record returns row i ordered by Headers, reusing buf when it is large enough.
func (d Dataset) Record(i int, buf []string) []string {
	if cap(buf) < len(d.Headers) {
		buf = make([]string, len(d.Headers))
	}
	buf = buf[:len(d.Headers)]
	for j, header := range d.Headers {
		buf[j] = d.Rows[i][header]
	}
	return buf
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return ErrNoHeaders
	}
	return nil
}
