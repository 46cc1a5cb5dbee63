package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhartert/choicetrace/internal/analyzer"
)

// Directory containing the golden test cases of the analyzer. Each test case
// is made of three files sharing the same name:
//
//   - A solver log with the ".out" file extension.
//   - A LAD pattern file with the ".pattern" file extension, whose first line
//     is the maximum search depth.
//   - The records expected for that log, one per line and without the
//     results file header, with the ".want" file extension. The instance name
//     is the test case name and the family is "fam".
var testdataDir = "testdata"

type testCase struct {
	name        string
	logFile     string
	patternFile string
	wantFile    string
}

// listTestCases returns the list of test cases contained in the file tree
// rooted in the given directory.
func listTestCases(dir string) ([]testCase, error) {
	testCases := []testCase{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".out") {
			return nil
		}
		base := strings.TrimSuffix(path, ".out")
		testCases = append(testCases, testCase{
			name:        strings.TrimSuffix(d.Name(), ".out"),
			logFile:     path,
			patternFile: base + ".pattern",
			wantFile:    base + ".want",
		})
		return nil
	})
	return testCases, err
}

func readLines(t *testing.T, filename string) []string {
	t.Helper()
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// TestAnalyzeGolden checks the records written for each solver log of the
// test data directory.
func TestAnalyzeGolden(t *testing.T) {
	testCases, err := listTestCases(testdataDir)
	if err != nil {
		t.Fatalf("Error listing test cases: %s", err)
	}
	if len(testCases) == 0 {
		t.Fatalf("No test case in %q", testdataDir)
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			logDir := filepath.Join(dir, string(analyzer.Sequential))
			require.NoError(t, os.MkdirAll(logDir, 0755))
			data, err := os.ReadFile(tc.logFile)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(logDir, tc.name+".out"), data, 0644))

			opts := analyzer.DefaultOptions
			opts.ResultsDir = dir
			opts.Algorithms = []analyzer.Algorithm{analyzer.Sequential}
			an, err := analyzer.Create(opts)
			require.NoError(t, err)
			require.NoError(t, an.Process(tc.name, "fam", analyzer.Sequential, tc.patternFile))
			require.NoError(t, an.Close())

			got := readLines(t, analyzer.OutputPath(dir, analyzer.Sequential))
			want := append([]string{strings.TrimSuffix(analyzer.Header, "\n")}, readLines(t, tc.wantFile)...)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Records mismatch (+want, -got):\n%s", diff)
			}
		})
	}
}

// experiment lays out an experiment directory with every test case of the
// test data directory as an instance, and a log for the given algorithms.
func experiment(t *testing.T, algorithms ...analyzer.Algorithm) (results, instances string) {
	t.Helper()
	testCases, err := listTestCases(testdataDir)
	require.NoError(t, err)

	dir := t.TempDir()
	results = filepath.Join(dir, "results")
	var manifest strings.Builder
	for _, a := range analyzer.Algorithms {
		require.NoError(t, os.MkdirAll(filepath.Join(results, string(a)), 0755))
	}
	for _, tc := range testCases {
		data, err := os.ReadFile(tc.logFile)
		require.NoError(t, err)
		for _, a := range algorithms {
			require.NoError(t, os.WriteFile(analyzer.LogPath(results, a, tc.name, false), data, 0644))
		}
		manifest.WriteString(tc.name + " " + tc.patternFile + " target fam\n")
	}
	instances = filepath.Join(dir, "instances.txt")
	require.NoError(t, os.WriteFile(instances, []byte(manifest.String()), 0644))
	return results, instances
}

func TestAnalyzeCommand(t *testing.T) {
	results, instances := experiment(t, analyzer.Sequential, analyzer.SequentialDDS)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"analyze", "-q", "--results", results, instances})

	require.NoError(t, root.Execute())

	summary := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, summary, len(analyzer.Algorithms))
	// basic: 1 decision at depth fraction 0.5, 1 at 0.7 and 1 at 1.0.
	// deep: decisions at 1/3 and 2/3 of the search tree.
	assert.Equal(t, "sequential13 [0, 1] [0, 1]", summary[0])
	assert.Equal(t, "sequentialinputordersoftmax13 [0, 0] [0, 0]", summary[1])
	assert.Equal(t, "sequentialdds13 [0, 1] [0, 1]", summary[6])

	for _, a := range analyzer.Algorithms {
		lines := readLines(t, analyzer.OutputPath(results, a))
		want := 1
		if a == analyzer.Sequential || a == analyzer.SequentialDDS {
			want = 6
		}
		assert.Len(t, lines, want, "records of %s", a)
	}
}

func TestAnalyzeCommand_configFile(t *testing.T) {
	results, instances := experiment(t, analyzer.SequentialShuffle)
	cfgFile := filepath.Join(t.TempDir(), "choicetrace.yaml")
	cfg := "results_dir: " + results + "\n" +
		"instances_file: " + instances + "\n" +
		"algorithms: [sequentialshuffle13]\n" +
		"near_root: 0.4\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"analyze", "-q", "--config", cfgFile})

	require.NoError(t, root.Execute())

	assert.Equal(t, "sequentialshuffle13 [1, 1] [0, 1]\n", out.String())
	_, err := os.Stat(analyzer.OutputPath(results, analyzer.Sequential))
	assert.True(t, os.IsNotExist(err), "only configured algorithms get a results file")
}

func TestAnalyzeCommand_badManifest(t *testing.T) {
	dir := t.TempDir()
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"analyze", "-q", "--results", dir, filepath.Join(dir, "missing.txt")})

	assert.Error(t, root.Execute())

	// Results files are created before the manifest is read.
	lines := readLines(t, analyzer.OutputPath(dir, analyzer.Sequential))
	assert.Equal(t, []string{strings.TrimSuffix(analyzer.Header, "\n")}, lines)
}

func TestRun_cpuProfileStoppedOnError(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	a := &app{}
	err = a.run([]string{"--cpuprof", "analyze", "-q", "--results", dir, filepath.Join(dir, "missing.txt")})

	require.Error(t, err)
	assert.Nil(t, a.cpuFile)
	info, err := os.Stat(filepath.Join(dir, "cpuprof"))
	require.NoError(t, err)
	assert.Positive(t, info.Size(), "profile written on stop")

	// No profile is running anymore.
	require.NoError(t, pprof.StartCPUProfile(&bytes.Buffer{}))
	pprof.StopCPUProfile()
}

func TestWrapCommand(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no shell available")
	}
	dir := t.TempDir()
	solver := filepath.Join(dir, "solver")
	script := "#!/bin/sh\necho \"args = $*\"\necho 'status = true'\necho 'runtime = 2500'\n"
	require.NoError(t, os.WriteFile(solver, []byte(script), 0755))
	cfgFile := filepath.Join(dir, "tune.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("wrapper:\n  solver: "+solver+"\n"), 0644))
	t.Setenv(configEnv, cfgFile)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"wrap", "p.lad@t.lad", "0", "9.5", "0", "1234", "-luby-multiplier", "1.5"})

	require.NoError(t, root.Execute())

	assert.Equal(t, "Result of algorithm run: SUCCESS, 2.500000, 0, 0, 1234\n", out.String())
}

func TestWrapCommand_badArgs(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"wrap", "p.lad", "0", "9.5", "0", "1234"})

	assert.Error(t, root.Execute())
}
