package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeWindowDuration(t *testing.T) {
	d, ok := WindowDay.Duration()
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, d)

	d, ok = WindowWeek.Duration()
	assert.True(t, ok)
	assert.Equal(t, 7*24*time.Hour, d)

	d, ok = WindowMonth.Duration()
	assert.True(t, ok)
	assert.Equal(t, 30*24*time.Hour, d)

	_, ok = WindowAll.Duration()
	assert.False(t, ok)

	_, ok = TimeWindow("fortnight").Duration()
	assert.False(t, ok)
}

func TestTimeWindowValid(t *testing.T) {
	for _, w := range []TimeWindow{WindowDay, WindowWeek, WindowMonth, WindowAll} {
		assert.True(t, w.Valid(), "%s", w)
	}
	assert.False(t, TimeWindow("fortnight").Valid())
	assert.False(t, TimeWindow("").Valid())
}

func TestDetailLevelValid(t *testing.T) {
	for _, d := range []DetailLevel{DetailBrief, DetailStandard, DetailVerbose} {
		assert.True(t, d.Valid(), "%s", d)
	}
	assert.False(t, DetailLevel("epic").Valid())
}

func TestMessageHasMedia(t *testing.T) {
	assert.False(t, Message{Body: "text"}.HasMedia())
	assert.True(t, Message{ImageRef: "a.jpg"}.HasMedia())
	assert.True(t, Message{VideoRef: "b.mp4"}.HasMedia())
}
