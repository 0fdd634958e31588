package collect

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testPrompts = []string{"CEO", "Nurse", "Software Engineer", "Teacher", "Construction Worker"}

func testOptions(dir string) Options {
	return Options{
		Prompts:        testPrompts,
		TextsPerPrompt: 5,
		FirstNames:     []string{"Alex", "Taylor", "Jordan"},
		Surnames:       []string{"Smith", "Johnson"},
		ImagesDir:      dir,
		PlaceholderURL: "http://example.invalid/icon.png",
		Workers:        3,
	}
}

type recordingSaver struct {
	mu    sync.Mutex
	paths []string
	fail  func(path string) error
}

func (r *recordingSaver) Save(_ context.Context, _ string, path string) error {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	if r.fail != nil {
		return r.fail(path)
	}
	return nil
}

func TestGenerateShape(t *testing.T) {
	dir := t.TempDir()
	c, err := New(testOptions(dir), &recordingSaver{}, rand.New(rand.NewSource(7)), nil)
	require.NoError(t, err)

	samples := c.Generate()
	require.Len(t, samples, 25)
	for i, s := range samples {
		prompt := testPrompts[i/5]
		assert.Equal(t, prompt, s.Prompt)
		fields := strings.Fields(strings.TrimPrefix(s.Text, prompt+" "))
		require.Len(t, fields, 2, s.Text)
		assert.True(t, strings.HasPrefix(s.Text, prompt+" "))
		assert.Contains(t, []string{"Alex", "Taylor", "Jordan"}, fields[0])
		assert.Contains(t, []string{"Smith", "Johnson"}, fields[1])

		assert.Equal(t, dir, filepath.Dir(s.ImagePath))
		base := filepath.Base(s.ImagePath)
		require.True(t, strings.HasPrefix(base, prompt+"_"), base)
		require.True(t, strings.HasSuffix(base, ".jpg"), base)
		digits := strings.TrimSuffix(strings.TrimPrefix(base, prompt+"_"), ".jpg")
		require.Len(t, digits, 4)
		assert.GreaterOrEqual(t, digits, "1000")
		assert.LessOrEqual(t, digits, "9999")
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	opts := testOptions("images")
	a, err := New(opts, &recordingSaver{}, rand.New(rand.NewSource(42)), nil)
	require.NoError(t, err)
	b, err := New(opts, &recordingSaver{}, rand.New(rand.NewSource(42)), nil)
	require.NoError(t, err)
	assert.Equal(t, a.Generate(), b.Generate())
}

func TestRunWritesRowsInOrderEvenWhenDownloadsFail(t *testing.T) {
	dir := t.TempDir()
	saver := &recordingSaver{fail: func(path string) error {
		if strings.Contains(path, "Nurse_") {
			return &StatusError{URL: "x", StatusCode: http.StatusNotFound}
		}
		return nil
	}}
	core, logs := observer.New(zapcore.WarnLevel)
	c, err := New(testOptions(dir), saver, rand.New(rand.NewSource(1)), zap.New(core))
	require.NoError(t, err)

	var buf bytes.Buffer
	stats, err := c.Run(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 25, Downloaded: 20, Failed: 5}, stats)
	assert.Equal(t, 5, logs.FilterMessage("failed to download image").Len())
	assert.Len(t, saver.paths, 25)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 26)
	assert.Equal(t, Header, rows[0])
	for i, row := range rows[1:] {
		assert.Equal(t, testPrompts[i/5], row[0])
	}
	ceo := 0
	for _, row := range rows[1:] {
		if row[0] == "CEO" {
			ceo++
			assert.True(t, strings.HasPrefix(row[1], "CEO "))
		}
	}
	assert.Equal(t, 5, ceo)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, err := New(testOptions(t.TempDir()), &recordingSaver{}, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	_, err = c.Run(ctx, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewValidates(t *testing.T) {
	_, err := New(testOptions(""), nil, nil, nil)
	assert.Error(t, err)

	opts := testOptions("")
	opts.Surnames = nil
	_, err = New(opts, &recordingSaver{}, nil, nil)
	assert.Error(t, err)
}

func TestDownloaderSave(t *testing.T) {
	payload := []byte("\x89PNG fake")
	var (
		mu       sync.Mutex
		gotAgent string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAgent = r.Header.Get("User-Agent")
		mu.Unlock()
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := NewDownloader(DownloaderConfig{UserAgent: "biaslab-test"})

	okPath := filepath.Join(dir, "nested", "CEO_1234.jpg")
	require.NoError(t, d.Save(context.Background(), srv.URL+"/icon.png", okPath))
	data, err := os.ReadFile(okPath)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	mu.Lock()
	assert.Equal(t, "biaslab-test", gotAgent)
	mu.Unlock()

	badPath := filepath.Join(dir, "Nurse_2222.jpg")
	err = d.Save(context.Background(), srv.URL+"/missing.png", badPath)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.NoFileExists(t, badPath)

	srv.CloseClientConnections()
	d.http.CloseIdleConnections()
}

func TestDownloaderTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	d := NewDownloader(DownloaderConfig{})
	path := filepath.Join(t.TempDir(), "x.jpg")
	err := d.Save(context.Background(), url, path)
	require.Error(t, err)
	assert.NoFileExists(t, path)
}
