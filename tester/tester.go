package tester

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nihei9/lrtab/driver"
	gspec "github.com/nihei9/lrtab/spec/grammar"
)

// TestCase is an input and whether the grammar must accept it. In a file, test cases are listed as follows.
//
//	[[case]]
//	name = "sum"
//	input = "id + id"
//	accept = true
type TestCase struct {
	Name   string `toml:"name"`
	Input  string `toml:"input"`
	Accept bool   `toml:"accept"`
}

type testCaseFile struct {
	Cases []*TestCase `toml:"case"`
}

type TestResult struct {
	TestCasePath string
	Error        error
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "

		msgLines := strings.Split(r.Error.Error(), "\n")
		return fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

// casePath names a test case by its file and its name or index.
func (c *TestCaseWithMetadata) casePath() string {
	if c.TestCase == nil {
		return c.FilePath
	}
	return fmt.Sprintf("%v#%v", c.FilePath, c.TestCase.Name)
}

// ListTestCases reads test cases from a file, or from every `.toml` file under a directory.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		cs, err := parseTestCaseFile(testPath)
		if err != nil {
			return []*TestCaseWithMetadata{
				{
					FilePath: testPath,
					Error:    err,
				},
			}
		}
		cases := make([]*TestCaseWithMetadata, len(cs))
		for i, c := range cs {
			cases[i] = &TestCaseWithMetadata{
				TestCase: c,
				FilePath: testPath,
			}
		}
		return cases
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		if !e.IsDir() && filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCaseFile(testCasePath string) ([]*TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCases(f)
}

// ParseTestCases decodes test cases. A case without a name is named after its index.
func ParseTestCases(r io.Reader) ([]*TestCase, error) {
	var file testCaseFile
	_, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, err
	}
	if len(file.Cases) == 0 {
		return nil, fmt.Errorf("no test case")
	}
	for i, c := range file.Cases {
		if c.Name == "" {
			c.Name = fmt.Sprint(i + 1)
		}
	}
	return file.Cases, nil
}

type Tester struct {
	Grammar *gspec.CompiledGrammar
	Cases   []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, runTest(t.Grammar, c))
	}
	return rs
}

func runTest(g *gspec.CompiledGrammar, c *TestCaseWithMetadata) *TestResult {
	if c.Error != nil {
		return &TestResult{
			TestCasePath: c.casePath(),
			Error:        c.Error,
		}
	}

	var p *driver.Parser
	{
		toks, err := driver.NewTokenStream(strings.NewReader(c.TestCase.Input))
		if err != nil {
			return &TestResult{
				TestCasePath: c.casePath(),
				Error:        err,
			}
		}
		p, err = driver.NewParser(g, toks)
		if err != nil {
			return &TestResult{
				TestCasePath: c.casePath(),
				Error:        err,
			}
		}
	}

	res, err := p.Parse()
	if err != nil {
		return &TestResult{
			TestCasePath: c.casePath(),
			Error:        err,
		}
	}

	switch {
	case c.TestCase.Accept && !res.Accepted:
		return &TestResult{
			TestCasePath: c.casePath(),
			Error:        fmt.Errorf("the input must be accepted:\n%v", res.SyntaxError),
		}
	case !c.TestCase.Accept && res.Accepted:
		return &TestResult{
			TestCasePath: c.casePath(),
			Error:        fmt.Errorf("the input must be rejected"),
		}
	}
	return &TestResult{
		TestCasePath: c.casePath(),
	}
}
