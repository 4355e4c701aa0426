package runner

// tailWriter keeps the last limit bytes written to it.
// Write is only called from the goroutine exec uses to copy the stream.
type tailWriter struct {
	limit   int
	buf     []byte
	dropped bool
}

func newTailWriter(limit int) *tailWriter {
	if limit <= 0 {
		limit = defaultStderrTailBytes
	}
	return &tailWriter{limit: limit}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	if over := len(w.buf) - w.limit; over > 0 {
		w.buf = w.buf[over:]
		w.dropped = true
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	return string(w.buf)
}

// tail returns at most n trailing bytes of s.
func tail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
