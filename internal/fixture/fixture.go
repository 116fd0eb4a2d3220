// Package fixture discovers and parses the example programs under
// examples/**/*.uplp, each annotated with a small preface describing the
// expected outcome.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ValueExpectation asserts the driver's evaluated value has the given
// type and renders to the given value (compared against value.Val's own
// String(), so the expected "value" is always a string in source form,
// e.g. "42", "true", "()").
type ValueExpectation struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// ErrorExpectation asserts the driver's error matches Error's dotted
// family.member code (spec.md §6, driver.Error.Code), with an optional
// free-form Expectation map for documentation of the error's payload —
// this module doesn't assert against Expectation's contents field by
// field, since the driver's one-line message already encodes them.
type ErrorExpectation struct {
	Error       string         `yaml:"error"`
	Expectation map[string]any `yaml:"expectation"`
}

// ExpectationJSON renders Expectation as a JSON object, built key by key
// with sjson.Set rather than encoding/json, so the field order a reader
// sees (sorted, deterministic) doesn't depend on map iteration order.
// internal/fixture's test package puts the whole document into a failure
// message rather than Go's %v rendering of the map; ExpectationField
// reads single fields back out of it with gjson.Get.
func (e ErrorExpectation) ExpectationJSON() (string, error) {
	keys := make([]string, 0, len(e.Expectation))
	for k := range e.Expectation {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := "{}"
	for _, k := range keys {
		var err error
		doc, err = sjson.Set(doc, k, e.Expectation[k])
		if err != nil {
			return "", fmt.Errorf("failed to encode expectation field %q: %w", k, err)
		}
	}
	return doc, nil
}

// ExpectationField looks up a single field of Expectation by gjson path,
// e.g. "got" or "expected", returning its raw rendered value.
func (e ErrorExpectation) ExpectationField(path string) (string, bool) {
	doc, err := e.ExpectationJSON()
	if err != nil {
		return "", false
	}
	r := gjson.Get(doc, path)
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

// Preface is a fixture's parsed annotation block.
type Preface struct {
	Skip  bool              `yaml:"skip"`
	Value *ValueExpectation `yaml:"value"`
	Error *ErrorExpectation `yaml:"error"`
}

// Fixture is one discovered example program: its preface and the program
// source that follows it.
type Fixture struct {
	Path    string
	Preface Preface
	Source  string
}

// Discover walks root for *.uplp files and parses each one into a
// Fixture. Files are returned in the order filepath.WalkDir visits them
// (lexical per directory), which is deterministic but not sorted across
// directories; callers that need a stable display order should sort the
// result themselves.
func Discover(root string) ([]Fixture, error) {
	var fixtures []Fixture
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".uplp" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		f, err := Parse(path, string(content))
		if err != nil {
			return fmt.Errorf("failed to parse preface of %s: %w", path, err)
		}
		fixtures = append(fixtures, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fixtures, nil
}

// Parse splits source into its preface and program text and unmarshals
// the preface as YAML. Two preface forms are accepted, per spec.md §6:
// a run of "-- key: value" comment lines, or a front-matter block that
// opens with a bare "---" line at the top of the file and closes at the
// next "---" line. Either form is valid YAML once any leading "-- "
// markers are stripped, so one parser serves both.
func Parse(path, source string) (Fixture, error) {
	yamlText, program := splitPreface(source)

	var p Preface
	if strings.TrimSpace(yamlText) != "" {
		if err := yaml.Unmarshal([]byte(yamlText), &p); err != nil {
			return Fixture{}, fmt.Errorf("invalid preface: %w", err)
		}
	}
	return Fixture{Path: path, Preface: p, Source: program}, nil
}

func splitPreface(source string) (yamlText, program string) {
	lines := strings.Split(source, "\n")
	i := 0

	// Front-matter form: a bare "---" delimiter, raw YAML, a closing "---".
	if i < len(lines) && strings.TrimSpace(lines[i]) == "---" {
		i++
		start := i
		for i < len(lines) && strings.TrimSpace(lines[i]) != "---" {
			i++
		}
		block := strings.Join(lines[start:i], "\n")
		if i < len(lines) {
			i++ // consume the closing "---"
		}
		return block, strings.Join(lines[i:], "\n")
	}

	// Comment form: a run of "-- key: value" lines, each stripped of its
	// literal "-- " prefix only (not the whole line), so nested YAML
	// indentation under a "-- value:" line survives.
	var kv []string
	for i < len(lines) && strings.HasPrefix(lines[i], "-- ") {
		kv = append(kv, strings.TrimPrefix(lines[i], "-- "))
		i++
	}
	return strings.Join(kv, "\n"), strings.Join(lines[i:], "\n")
}
