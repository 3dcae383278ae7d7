package analyze

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/phobologic/treemap/internal/config"
	"github.com/phobologic/treemap/internal/lang"
	"github.com/phobologic/treemap/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var registry = lang.DefaultRegistry()

func mustLang(t *testing.T, name string) *lang.Language {
	t.Helper()
	l, ok := registry.Get(name)
	require.True(t, ok, "language %s not registered", name)
	return l
}

func analyzeSource(t *testing.T, language, path, src string) *FileResult {
	t.Helper()
	return analyzeWith(t, language, path, src, config.DefaultThresholds())
}

func analyzeWith(t *testing.T, language, path, src string, th config.Thresholds) *FileResult {
	t.Helper()
	l := mustLang(t, language)
	parser := l.NewParser()
	defer parser.Close()

	res, err := AnalyzeFile(context.Background(), l, parser, path, []byte(src), th)
	require.NoError(t, err)
	return res
}

// located renders findings as "KIND:line detail" for compact assertions.
func located(findings []model.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, fmt.Sprintf("%s:%d %s", f.Kind, f.Line, f.Detail))
	}
	return out
}

// pyFunction returns a documented Python function spanning exactly n lines.
func pyFunction(name string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "def %s():\n", name)
	b.WriteString("    \"\"\"Documented.\"\"\"\n")
	for i := 0; i < n-3; i++ {
		fmt.Fprintf(&b, "    x%d = %d\n", i, i)
	}
	b.WriteString("    return None\n")
	return b.String()
}
