// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLayout(t *testing.T) {
	assert.Equal(t, Layout(time.RFC3339), ParseLayout("RFC3339"))
	assert.Equal(t, Layout("Jan 02 15:04"), ParseLayout("Default"))
	assert.Equal(t, Layout("2006"), ParseLayout("2006"))
	assert.Equal(t, DefaultLogLayout, ParseLayout(""))
}

func TestLayoutFormat(t *testing.T) {
	tm := time.Date(2024, time.March, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "Mar 04 05:06", ParseLayout("Default").Format(tm))
	assert.Equal(t, "2024-03-04", ParseLayout("DateOnly").Format(tm))
}
