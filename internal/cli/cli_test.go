package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essaysim/internal/adapter/analyzer"
	"essaysim/internal/domain"
	"essaysim/internal/similarity"
	"essaysim/internal/textstats"
	"essaysim/internal/usecase"
)

const (
	reference  = "Software testing is a process of evaluating a software application to ensure it meets requirements."
	paraphrase = "Software testing is a process of evaluating a software to ensure quality and detect defects."
)

// resetFlags restores every flag to its default so commands can run
// repeatedly within one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--dir", dir, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScoreJSON(t *testing.T) {
	out, err := run(t, t.TempDir(), "score", "--text", "--json", reference, paraphrase)
	require.NoError(t, err)

	var res usecase.GradeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "en", res.Language)
	require.Len(t, res.Grades, 1)
	assert.InDelta(t, 0.658459411875532, res.Grades[0].Score, 1e-9)
	assert.Equal(t, domain.BandPartial, res.Grades[0].Band)
}

func TestScoreFiles(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "ref.txt")
	ansPath := filepath.Join(dir, "answer.txt")
	require.NoError(t, os.WriteFile(refPath, []byte(reference), 0644))
	require.NoError(t, os.WriteFile(ansPath, []byte(reference), 0644))

	out, err := run(t, dir, "score", refPath, ansPath, "--stats", "words")
	require.NoError(t, err)
	assert.Contains(t, out, "score 1.0000")
	assert.Contains(t, out, "correct")
	assert.Contains(t, out, "words=15.00")
}

func TestScoreUnknownLanguage(t *testing.T) {
	_, err := run(t, t.TempDir(), "score", "--text", "--lang", "xx", reference, paraphrase)
	assert.ErrorIs(t, err, analyzer.ErrUnknownLanguage)
}

func TestScoreInvalidThresholds(t *testing.T) {
	_, err := run(t, t.TempDir(), "score", "--text", "--upper", "0.3", "--lower", "0.6", reference, paraphrase)
	assert.Error(t, err)
}

func TestRecordAndHistory(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "history")
	assert.Error(t, err)

	_, err = run(t, dir, "score", "--text", "--record", reference, paraphrase)
	require.NoError(t, err)

	out, err := run(t, dir, "history", "--json")
	require.NoError(t, err)

	var hist struct {
		Items   []domain.Attempt `json:"items"`
		Summary domain.Summary   `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	require.Len(t, hist.Items, 1)
	assert.Equal(t, paraphrase, hist.Items[0].Response)
	assert.Equal(t, 1, hist.Summary.Count)
	assert.Equal(t, 1, hist.Summary.Bands[domain.BandPartial])

	out, err = run(t, dir, "history", "--delete", hist.Items[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, hist.Items[0].ID)

	out, err = run(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No attempts recorded.")
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "ref.txt")
	answers := filepath.Join(dir, "answers")
	require.NoError(t, os.WriteFile(refPath, []byte(reference), 0644))
	require.NoError(t, os.MkdirAll(answers, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(answers, "a.txt"), []byte(reference), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(answers, "b.txt"), []byte(paraphrase), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(answers, "skip.bin"), []byte("x"), 0644))

	out, err := run(t, dir, "batch", refPath, answers, "--quiet", "--json")
	require.NoError(t, err)

	var res usecase.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Items, 2)
	assert.Equal(t, 1, res.Summary.Bands[domain.BandCorrect])
	assert.Equal(t, 1, res.Summary.Bands[domain.BandPartial])
}

func TestLanguages(t *testing.T) {
	out, err := run(t, t.TempDir(), "languages")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "* en"), lines[0])
	assert.Contains(t, lines[0], "English")
	assert.Contains(t, out, "none")
}

func TestStats(t *testing.T) {
	out, err := run(t, t.TempDir(), "stats", "--text", "--json", "--items", "words,sentences", "The quick brown fox jumps. Twice!")
	require.NoError(t, err)

	var values []textstats.Value
	require.NoError(t, json.Unmarshal([]byte(out), &values))
	assert.Equal(t, []textstats.Value{
		{Item: textstats.Words, Value: 6},
		{Item: textstats.Sentences, Value: 2},
	}, values)
}

func TestConfigFileOverrides(t *testing.T) {
	dir := t.TempDir()
	content := "grading:\n  upper_correctness: 0.6\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "essaysim.yaml"), []byte(content), 0644))

	out, err := run(t, dir, "score", "--text", "--json", reference, paraphrase)
	require.NoError(t, err)

	var res usecase.GradeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0.6, res.Thresholds.Upper)
	assert.Equal(t, domain.BandCorrect, res.Grades[0].Band)
}

func TestInspectJSON(t *testing.T) {
	out, err := run(t, t.TempDir(), "inspect", "--text", "--json", reference, paraphrase, "Dogs bark loudly.")
	require.NoError(t, err)

	var a similarity.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "en", a.Language)
	require.Len(t, a.Terms, 3)
	assert.Len(t, a.IDF, len(a.Vocabulary))
	require.Len(t, a.Scores, 2)
	assert.InDelta(t, 0.6659611203021324, a.Scores[0], 1e-9)
	assert.InDelta(t, 0, a.Scores[1], 1e-9)
	assert.LessOrEqual(t, a.TruncationRank, a.Rank)
}
