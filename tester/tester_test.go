package tester

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nihei9/lrtab/grammar"
	gspec "github.com/nihei9/lrtab/spec/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileTestGrammar(t *testing.T) *gspec.CompiledGrammar {
	t.Helper()

	gram, err := grammar.Load(strings.NewReader(`
E -> E + T | T
T -> id
`), "test", "")
	require.NoError(t, err)
	cg, _, err := grammar.Compile(gram, grammar.VariantLALR1)
	require.NoError(t, err)
	return cg
}

func TestTester_Run(t *testing.T) {
	tests := []struct {
		caption string
		testSrc string
		errors  []bool
	}{
		{
			caption: "expectations hold",
			testSrc: `
[[case]]
name = "sum"
input = "id + id"
accept = true

[[case]]
name = "dangling plus"
input = "id +"
accept = false
`,
			errors: []bool{false, false},
		},
		{
			caption: "expectations fail",
			testSrc: `
[[case]]
input = "id id"
accept = true

[[case]]
input = "id"
accept = false
`,
			errors: []bool{true, true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cases.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.testSrc), 0644))

			tester := &Tester{
				Grammar: compileTestGrammar(t),
				Cases:   ListTestCases(path),
			}
			rs := tester.Run()
			require.Len(t, rs, len(tt.errors))
			for i, r := range rs {
				if tt.errors[i] {
					assert.Error(t, r.Error, r.String())
					assert.True(t, strings.HasPrefix(r.String(), "Failed "))
				} else {
					assert.NoError(t, r.Error, r.String())
					assert.True(t, strings.HasPrefix(r.String(), "Passed "))
				}
			}
		})
	}
}

func TestListTestCases(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.toml"), []byte("[[case]]\ninput = \"id\"\naccept = true\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.toml"), []byte("[[case]]\nname = \"x\"\ninput = \"\"\n[[case]]\ninput = \"id\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("not a test case"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("[[case]\n"), 0644))

	cases := ListTestCases(dir)
	require.Len(t, cases, 4)
	assert.Equal(t, "1", cases[0].TestCase.Name)
	assert.Equal(t, "x", cases[1].TestCase.Name)
	assert.Equal(t, "2", cases[2].TestCase.Name)
	assert.Nil(t, cases[3].TestCase)
	assert.Error(t, cases[3].Error)

	rs := (&Tester{
		Grammar: compileTestGrammar(t),
		Cases:   cases,
	}).Run()
	require.Len(t, rs, 4)
	assert.NoError(t, rs[0].Error)
	assert.NoError(t, rs[1].Error)
	assert.Error(t, rs[2].Error)
	assert.Error(t, rs[3].Error)

	cases = ListTestCases(filepath.Join(dir, "missing.toml"))
	require.Len(t, cases, 1)
	assert.Error(t, cases[0].Error)
}
