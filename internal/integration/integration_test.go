// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"twohit/internal/app"
	"twohit/internal/table"
)

// measurements renders an ImageJ-style results table: an unnamed row
// counter, then Area, Mean, X, Y, Slice. onset maps ROI X to the first slice
// with signal; other slices read zero.
func measurements(onset map[int]int, slices int) string {
	var b strings.Builder
	b.WriteString(" ,Area,Mean,X,Y,Slice\n")
	n := 1
	// Slice-major, as the exporter writes one frame at a time.
	for s := 1; s <= slices; s++ {
		for x := 1; x <= len(onset)+1; x++ {
			first, ok := onset[x]
			mean := 0.0
			if ok && s >= first {
				mean = 10 + float64(s)
			}
			fmt.Fprintf(&b, "%d,42,%g,%d,%d,%d\n", n, mean, x, 2*x, s)
			n++
		}
	}
	return b.String()
}

func write(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func TestEndToEnd_ImageJExport(t *testing.T) {
	dir := t.TempDir()
	// ROI 4 never lights up in either channel and is left out of both hit tables.
	green := write(t, dir, "resultsGREEN.csv", measurements(map[int]int{1: 5, 2: 2, 3: 7}, 12))
	yellow := write(t, dir, "resultsYELLOW.csv", measurements(map[int]int{1: 6, 2: 9, 3: 7}, 12))
	dst := filepath.Join(dir, "output.csv")

	var stdout, stderr bytes.Buffer
	code := app.Run([]string{"-q", "-s", green, "-l", yellow, "-o", dst}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	got, err := table.ReadFile(dst, "", ',')
	require.NoError(t, err)
	want := [][]float64{
		{1, 2, 9, 7},
		{0, 5, 6, 1},
		{2, 7, 7, 0},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Fatalf("lag table (-want +got):\n%s", diff)
	}
}

func TestEndToEnd_GzipInput(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := io.WriteString(zw, measurements(map[int]int{1: 3}, 5))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	green := write(t, dir, "resultsGREEN.csv.gz", buf.String())
	yellow := write(t, dir, "resultsYELLOW.csv", measurements(map[int]int{1: 4}, 5))

	var stdout, stderr bytes.Buffer
	code := app.Run([]string{"-q", green, yellow}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Equal(t, "ID#,t1,t2,Δt\n0,3,4,1\n", stdout.String())
}

func TestCancelledBeforeRun_Exit130(t *testing.T) {
	dir := t.TempDir()
	green := write(t, dir, "g.csv", measurements(map[int]int{1: 3}, 5))
	yellow := write(t, dir, "y.csv", measurements(map[int]int{1: 4}, 5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := app.RunContext(ctx, []string{"-q", green, yellow}, io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
}
