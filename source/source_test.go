package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/salespulse/sales"
)

const exportCSV = "Order ID,Product,Status,Net Amount,Payment Method,Source\n" +
	"1001,2x Widget,completed,$20.00,card,ads\n"

func TestOpen(t *testing.T) {
	src, err := Open("https://example.com/export?format=csv", nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, src)

	src, err = Open("testdata/orders.csv", nil)
	require.NoError(t, err)
	assert.IsType(t, &File{}, src)

	_, err = Open("  ", nil)
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestFile_CSV(t *testing.T) {
	ds, err := (&File{Path: filepath.Join("testdata", "orders.csv")}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 2)

	records, err := sales.Normalize(ds)
	require.NoError(t, err)
	assert.Equal(t, 2, records[0].Quantity)
}

func TestFile_JSON(t *testing.T) {
	ds, err := (&File{Path: filepath.Join("testdata", "orders.json")}).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)

	records, err := sales.Normalize(ds)
	require.NoError(t, err)
	assert.Equal(t, "1001", records[0].OrderID)
	assert.Equal(t, 10.0, records[0].NetAmount)
}

func TestFile_Missing(t *testing.T) {
	_, err := (&File{Path: "testdata/nope.csv"}).Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestHTTP_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(exportCSV))
	}))
	defer server.Close()

	ds, err := (&HTTP{URL: server.URL, Client: server.Client()}).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "2x Widget", ds.Rows[0]["Product"])
}

func TestHTTP_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := (&HTTP{URL: server.URL}).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Contains(t, err.Error(), "404")
}

func TestHTTP_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(exportCSV))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&HTTP{URL: server.URL}).Fetch(ctx)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.True(t, errors.Is(err, context.Canceled))
}

// countingSource counts fetches and optionally fails.
type countingSource struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Fetch(ctx context.Context) (sales.Dataset, error) {
	s.calls.Add(1)
	if s.fail.Load() {
		return sales.Dataset{}, ErrFetch
	}
	return sales.Dataset{Columns: []string{"Order ID"}, Rows: []sales.Row{{"Order ID": "1"}}}, nil
}

func TestCached_FetchesOnceWithinTTL(t *testing.T) {
	src := &countingSource{}
	cached := NewCached(src, time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := cached.Fetch(context.Background())
			assert.NoError(t, err)
			assert.Len(t, ds.Rows, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, "counting", cached.Name())
}

func TestCached_RefetchesAfterExpiry(t *testing.T) {
	src := &countingSource{}
	cached := NewCached(src, 20*time.Millisecond, nil)

	_, err := cached.Fetch(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		_, err := cached.Fetch(context.Background())
		return err == nil && src.calls.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{}
	src.fail.Store(true)
	cached := NewCached(src, time.Minute, nil)

	_, err := cached.Fetch(context.Background())
	assert.Error(t, err)

	src.fail.Store(false)
	_, err = cached.Fetch(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCached_Invalidate(t *testing.T) {
	src := &countingSource{}
	cached := NewCached(src, time.Minute, nil).(*Cached)

	_, _ = cached.Fetch(context.Background())
	cached.Invalidate()
	_, _ = cached.Fetch(context.Background())
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestNewCached_ZeroTTL(t *testing.T) {
	src := &countingSource{}
	assert.Same(t, Source(src), NewCached(src, 0, nil))
}
