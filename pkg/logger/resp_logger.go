// Package logger provides a ResponseWriter that remembers what the handler
// sent, for request logging and error recovery.
package logger

import "net/http"

type ResponseLogger struct {
	w           http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func New(w http.ResponseWriter) *ResponseLogger {
	return &ResponseLogger{w: w, status: http.StatusOK}
}

func (l *ResponseLogger) WriteHeader(code int) {
	if l.wroteHeader {
		return
	}
	l.status = code
	l.wroteHeader = true
	l.w.WriteHeader(code)
}

func (l *ResponseLogger) Write(b []byte) (int, error) {
	l.wroteHeader = true
	n, err := l.w.Write(b)
	l.size += n
	return n, err
}

func (l *ResponseLogger) Header() http.Header {
	return l.w.Header()
}

// Status is the status code sent, http.StatusOK if none was set explicitly.
func (l *ResponseLogger) Status() int {
	return l.status
}

// Size is the number of body bytes written.
func (l *ResponseLogger) Size() int {
	return l.size
}

// Written reports whether the header has been sent.
func (l *ResponseLogger) Written() bool {
	return l.wroteHeader
}
