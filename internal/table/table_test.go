package table

import (
	"bytes"
	"compress/gzip"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = " ,Area,Mean,X,Y,Slice\n" +
	"1,12,0,4,9,2\n" +
	"2,12,5.5,4,9,1\n" +
	"3,10,0,1,3,1\n"

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func TestReadFile_RenamesFirstColumn(t *testing.T) {
	p := writeFile(t, "resultsGREEN.csv", sample)

	tb, err := ReadFile(p, "Green", ',')
	require.NoError(t, err)

	assert.Equal(t, "Green", tb.Name)
	assert.Equal(t, []string{"Green", "Area", "Mean", "X", "Y", "Slice"}, tb.Header)
	want := [][]float64{
		{1, 12, 0, 4, 9, 2},
		{2, 12, 5.5, 4, 9, 1},
		{3, 10, 0, 1, 3, 1},
	}
	if diff := cmp.Diff(want, tb.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFile_KeepsHeaderWithoutChannel(t *testing.T) {
	tb, err := Read(strings.NewReader("id,X\n1,2\n"), "mem", "", ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "X"}, tb.Header)
}

func TestRead_FormatErrors(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		line   int
		column string
	}{
		{"text in numeric field", "a,X,Mean\n1,2,3\n2,abc,4\n", 3, "X"},
		{"empty field", "a,X,Mean\n1,,3\n", 2, "X"},
		{"malformed number", "a,X,Mean\n1,2,3.4.5\n", 2, "Mean"},
		{"short record", "a,X,Mean\n1,2\n", 2, ""},
		{"long record", "a,X,Mean\n1,2,3,4\n", 2, ""},
		{"empty input", "", 1, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.data), "in.csv", "Green", ',')
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "in.csv", fe.Path)
			assert.Equal(t, tc.line, fe.Line)
			assert.Equal(t, tc.column, fe.Column)
			assert.Contains(t, err.Error(), "in.csv:")
		})
	}
}

func TestRead_ToleratesSurroundingSpace(t *testing.T) {
	tb, err := Read(strings.NewReader("a,X\n 1 , 2.5\n"), "in", "", ',')
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2.5}}, tb.Rows)
}

func TestRead_StripsBOM(t *testing.T) {
	tb, err := Read(strings.NewReader("\ufeffid,X\n1,2\n"), "in", "", ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "X"}, tb.Header)
}

func TestRead_DuplicateHeaderAfterRename(t *testing.T) {
	_, err := Read(strings.NewReader("id,X\n1,2\n"), "in", "X", ',')
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestReadFile_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")
	_, err := ReadFile(missing, "Green", ',')
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, "open", ioe.Op)
	assert.Equal(t, missing, ioe.Path)
}

func TestReadFile_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	// No .gz suffix: detection must go by magic bytes.
	p := writeFile(t, "results.csv", buf.String())
	tb, err := ReadFile(p, "Yellow", ',')
	require.NoError(t, err)
	assert.Equal(t, 3, tb.Len())
	assert.Equal(t, "Yellow", tb.Header[0])
}

func TestRoundTrip(t *testing.T) {
	src := &Table{
		Name:   "Green",
		Header: []string{"Green", "X", "Slice", "Mean"},
		Rows: [][]float64{
			{1, 3, 1, 0},
			{2, 3, 2, 12.125},
			{3, 7, 1, -0.5},
			{4, 7, 2, 1e-9},
			{5, 8, 1, 123456789.987654321},
		},
	}
	for _, delim := range []rune{',', ';', '\t'} {
		t.Run(string(delim), func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "out.csv")
			require.NoError(t, WriteFile(src, p, delim))

			got, err := ReadFile(p, "", delim)
			require.NoError(t, err)
			assert.Equal(t, src.Header, got.Header)
			if diff := cmp.Diff(src.Rows, got.Rows, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDelimiterFidelity(t *testing.T) {
	src := &Table{
		Name:   "merged",
		Header: []string{"ID#", "t1", "t2", "Δt"},
		Rows:   [][]float64{{0, 3, 4, 1}, {1, 2.5, 10, 7.5}},
	}
	read := func(delim rune) *Table {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, src, delim))
		got, err := Read(&buf, "mem", "", delim)
		require.NoError(t, err)
		return got
	}
	comma, semi := read(','), read(';')
	if diff := cmp.Diff(comma, semi, cmp.AllowUnexported(Table{})); diff != "" {
		t.Fatalf("delimiter changed values (-comma +semicolon):\n%s", diff)
	}
}

func TestWrite_Format(t *testing.T) {
	src := &Table{Header: []string{"ID#", "t1", "t2", "Δt"}, Rows: [][]float64{{0, 3, 4, 1}, {1, 1.5, 2, 0.5}}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src, ','))
	assert.Equal(t, "ID#,t1,t2,Δt\n0,3,4,1\n1,1.5,2,0.5\n", buf.String())
}

func TestWriteFile_Overwrites(t *testing.T) {
	p := writeFile(t, "out.csv", "stale content that is longer than the new table\n")
	src := &Table{Header: []string{"a"}, Rows: [][]float64{{1}}}
	require.NoError(t, WriteFile(src, p, ','))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFile_UnwritableDestination(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing-dir", "out.csv")
	err := WriteFile(&Table{Header: []string{"a"}}, p, ',')
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
}

func TestSortBy_Order(t *testing.T) {
	src := &Table{
		Name:   "Green",
		Header: []string{"Green", "X", "Slice"},
		Rows: [][]float64{
			{1, 4, 2},
			{2, 1, 3},
			{3, 4, 1},
			{4, 1, 1},
		},
	}
	got, err := src.SortBy("X", "Slice")
	require.NoError(t, err)
	want := [][]float64{{4, 1, 1}, {2, 1, 3}, {3, 4, 1}, {1, 4, 2}}
	assert.Equal(t, want, got.Rows)

	// Input untouched.
	assert.Equal(t, float64(1), src.Rows[0][0])
}

func TestSortBy_StableOnTies(t *testing.T) {
	src := &Table{
		Header: []string{"id", "p", "s"},
		Rows:   [][]float64{{0, 1, 1}, {1, 0, 0}, {2, 1, 1}, {3, 1, 1}},
	}
	got, err := src.SortBy("p", "s")
	require.NoError(t, err)
	ids, _ := got.Column("id")
	assert.Equal(t, []float64{1, 0, 2, 3}, ids)
}

func TestSortBy_Invariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		src := &Table{Header: []string{"n", "p", "s"}}
		for i := 0; i < 40; i++ {
			src.Rows = append(src.Rows, []float64{
				float64(i),
				float64(rng.Intn(6)),
				float64(rng.Intn(6)) + rng.Float64(),
			})
		}
		got, err := src.SortBy("p", "s")
		require.NoError(t, err)
		require.Equal(t, src.Len(), got.Len())
		for i := 0; i+1 < got.Len(); i++ {
			a, b := got.Rows[i], got.Rows[i+1]
			ok := a[1] < b[1] || (a[1] == b[1] && a[2] <= b[2])
			require.Truef(t, ok, "rows %d,%d out of order: %v %v", i, i+1, a, b)
		}
		sorted, err := got.IsSortedBy("p", "s")
		require.NoError(t, err)
		assert.True(t, sorted)
	}
}

func TestSortBy_MissingColumn(t *testing.T) {
	src := &Table{Name: "Yellow", Header: []string{"Yellow", "X"}}
	_, err := src.SortBy("X", "Slice")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Slice", se.Column)
	assert.Equal(t, "Yellow", se.Table)
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{",": ',', ";": ';', `\t`: '\t', "tab": '\t', "|": '|'} {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", ",,", `"`, "\n"} {
		_, err := ParseDelimiter(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestAppendChecksWidth(t *testing.T) {
	tb := New("t", []string{"a", "b"})
	require.NoError(t, tb.Append([]float64{1, 2}))
	assert.Error(t, tb.Append([]float64{1}))
	assert.Equal(t, 1, tb.Len())
}

// redirect points *std at a fresh temp file holding data for the rest of the
// test and returns the file.
func redirect(t *testing.T, std **os.File, data string) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "std")
	require.NoError(t, err)
	_, err = f.WriteString(data)
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)

	old := *std
	*std = f
	t.Cleanup(func() {
		*std = old
		_ = f.Close()
	})
	return f
}

func TestReadFile_Stdin(t *testing.T) {
	redirect(t, &os.Stdin, sample)

	tb, err := ReadFile(Stdin, "Green", ',')
	require.NoError(t, err)
	assert.Equal(t, "Green", tb.Name)
	assert.Equal(t, 3, tb.Len())
}

func TestWriteFile_DashIsStdout(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	out := redirect(t, &os.Stdout, "")

	src := &Table{Header: []string{"ID#", "t1"}, Rows: [][]float64{{0, 3}}}
	require.NoError(t, WriteFile(src, Stdin, ','))

	data, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	assert.Equal(t, "ID#,t1\n0,3\n", string(data))
	_, err = os.Stat(filepath.Join(dir, Stdin))
	assert.True(t, errors.Is(err, os.ErrNotExist), "no file named %q may be created", Stdin)
}

func TestReadFile_GzipSuffixWithPlainContent(t *testing.T) {
	p := writeFile(t, "results.csv.gz", sample)

	_, err := ReadFile(p, "Green", ',')
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
	assert.NotErrorIs(t, err, ErrIO)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, p, fe.Path)
	assert.Equal(t, 1, fe.Line)
}

func TestRequireFinite(t *testing.T) {
	// The blank line is skipped by the reader, so the NaN row sits on line 4.
	tb, err := Read(strings.NewReader("n,X,Slice,Mean,Skew\n1,1,1,1,Inf\n\n2,1,2,NaN,0\n"), "g.csv", "Green", ',')
	require.NoError(t, err)

	require.NoError(t, tb.RequireFinite("g.csv", "X", "Slice"), "unchecked columns may hold NaN or Inf")

	err = tb.RequireFinite("g.csv", "X", "Slice", "Mean")
	require.ErrorIs(t, err, ErrFormat)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 4, fe.Line)
	assert.Equal(t, "Mean", fe.Column)
	assert.Equal(t, "NaN", fe.Value)

	err = tb.RequireFinite("g.csv", "Skew")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "+Inf", fe.Value)
	assert.Equal(t, 2, fe.Line)

	assert.ErrorIs(t, tb.RequireFinite("g.csv", "Area"), ErrSchema)
}
