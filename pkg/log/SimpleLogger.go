// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/navwar/goicon/pkg/ts"
)

// SimpleLogger writes one JSON object per line.
type SimpleLogger struct {
	mutex    *sync.Mutex
	writer   io.Writer
	layout   ts.Layout
	location *time.Location
	now      func() time.Time
}

func (s *SimpleLogger) Log(msg string, fields ...map[string]interface{}) error {
	m := map[string]interface{}{}
	for _, f := range fields {
		for k, v := range f {
			m[k] = v
		}
	}
	m["msg"] = msg
	m["ts"] = s.layout.Format(s.now().In(s.location))

	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshaling log message: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, err = fmt.Fprintln(s.writer, string(b))
	if err != nil {
		return fmt.Errorf("error writing log message: %w", err)
	}
	return nil
}

func NewSimpleLogger(w io.Writer) *SimpleLogger {
	return NewSimpleLoggerWithLayout(w, ts.DefaultLogLayout, time.UTC)
}

func NewSimpleLoggerWithLayout(w io.Writer, layout ts.Layout, location *time.Location) *SimpleLogger {
	return &SimpleLogger{
		mutex:    &sync.Mutex{},
		writer:   w,
		layout:   layout,
		location: location,
		now:      time.Now,
	}
}
