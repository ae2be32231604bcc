package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/seenimoa/sentidash/internal/dashboard"
	"github.com/seenimoa/sentidash/internal/dataset"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sampleTable() *dataset.Table {
	return dataset.MustNew([]string{"date", "sentiment", "headline"}, [][]string{
		{"2024-01-01", "Positive", "A"},
	})
}

func TestCreateAndGet(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()

	id := s.Create()
	require.NotEmpty(t, id)

	st, err := s.Get(id)
	require.NoError(t, err)
	assert.False(t, st.HasData())

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadResetsSelection(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()
	id := s.Create()

	require.NoError(t, s.Load(id, sampleTable(), "a.csv"))
	require.NoError(t, s.Select(id, "Positive", nil))

	st, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Positive", st.Selection)
	assert.Equal(t, "a.csv", st.FileName)

	require.NoError(t, s.Load(id, sampleTable(), "b.csv"))
	st, err = s.Get(id)
	require.NoError(t, err)
	assert.Empty(t, st.Selection)
	assert.Equal(t, "b.csv", st.FileName)
}

func TestSelectCheckSeesLatestTable(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()
	id := s.Create()

	validFor := func(label string) func(*dataset.Table) error {
		return func(t *dataset.Table) error { return dashboard.SelectSentiment(t, label) }
	}

	assert.ErrorIs(t, s.Select(id, "Positive", validFor("Positive")), dashboard.ErrNoData)

	require.NoError(t, s.Load(id, sampleTable(), "a.csv"))
	require.NoError(t, s.Select(id, "Positive", validFor("Positive")))

	// The table changes between the caller's own check and the write.
	other := dataset.MustNew([]string{"date", "sentiment", "headline"}, [][]string{
		{"2024-02-01", "Bullish", "X"},
	})
	require.NoError(t, s.Load(id, other, "b.csv"))

	err := s.Select(id, "Positive", validFor("Positive"))
	assert.ErrorIs(t, err, dashboard.ErrUnknownSentiment)

	st, err := s.Get(id)
	require.NoError(t, err)
	assert.Empty(t, st.Selection, "rejected label must not be stored")
	assert.Equal(t, "b.csv", st.FileName)
}

func TestReset(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()
	id := s.Create()

	require.NoError(t, s.Load(id, sampleTable(), "a.csv"))
	require.NoError(t, s.Reset(id))

	st, err := s.Get(id)
	require.NoError(t, err)
	assert.False(t, st.HasData())
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()

	a, b := s.Create(), s.Create()
	require.NotEqual(t, a, b)
	require.NoError(t, s.Load(a, sampleTable(), "a.csv"))

	st, err := s.Get(b)
	require.NoError(t, err)
	assert.False(t, st.HasData(), "session b must not see session a's upload")
}

func TestIdleExpiry(t *testing.T) {
	clk := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	var dropped []string
	s := NewStore(10*time.Minute, 0,
		WithClock(clk.Now),
		WithExpiryHook(func(id string) { dropped = append(dropped, id) }))
	defer s.Close()

	id := s.Create()
	clk.Advance(11 * time.Minute)

	assert.ErrorIs(t, s.Select(id, "Positive", nil), ErrNotFound)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, []string{id}, dropped)
	assert.Equal(t, 0, s.Len())
}

func TestJanitorStopsOnClose(t *testing.T) {
	s := NewStore(time.Millisecond, 5*time.Millisecond)
	s.Create()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	s.Close()
	s.Close()
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(time.Minute, 0)
	defer s.Close()
	id := s.Create()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = s.Select(id, "Positive", nil)
			} else {
				_, _ = s.Get(id)
			}
		}(i)
	}
	wg.Wait()

	st, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Positive", st.Selection)
}
