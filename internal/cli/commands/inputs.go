package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

// modelFile is one declared model document. compiled_code may be given
// inline or read from sql_file, relative to the model file.
type modelFile struct {
	relation.Config `yaml:",inline"`
	SQLFile         string `yaml:"sql_file"`
}

// declaredModel is a model together with the file it came from.
type declaredModel struct {
	Config relation.Config
	Source string
}

// loadModels reads every YAML document in path as a declared model.
func loadModels(path string) ([]declaredModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var models []declaredModel
	dec := yaml.NewDecoder(f)
	for doc := 1; ; doc++ {
		var m modelFile
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: document %d: %w", path, doc, err)
		}

		if m.Materialized == "" {
			return nil, fmt.Errorf("%s: document %d: materialized is required", path, doc)
		}
		if m.Identifier == "" {
			return nil, fmt.Errorf("%s: document %d: identifier is required", path, doc)
		}
		if m.CompiledCode == "" && m.SQLFile != "" {
			sqlPath := m.SQLFile
			if !filepath.IsAbs(sqlPath) {
				sqlPath = filepath.Join(filepath.Dir(path), sqlPath)
			}
			data, err := os.ReadFile(sqlPath)
			if err != nil {
				return nil, fmt.Errorf("%s: document %d: failed to read sql_file: %w", path, doc, err)
			}
			m.CompiledCode = string(data)
		}

		models = append(models, declaredModel{Config: m.Config, Source: path})
	}

	if len(models) == 0 {
		return nil, fmt.Errorf("%s: no models found", path)
	}
	return models, nil
}

// observedFile is the observed-state document, keyed by relation path.
type observedFile struct {
	Relations map[string]relation.Results `yaml:"relations"`
}

// loadObserved reads an observed-state document (YAML or JSON) and keys it
// by the case-sensitive form of each relation path.
func loadObserved(path string, pol relation.Policies) (map[string]relation.Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read observed state: %w", err)
	}

	var doc observedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse observed state %s: %w", path, err)
	}

	observed := make(map[string]relation.Results, len(doc.Relations))
	for ref, results := range doc.Relations {
		p, err := relation.ParsePath(strings.TrimSpace(ref))
		if err != nil {
			return nil, fmt.Errorf("observed state %s: %w", path, err)
		}
		observed[p.AsCaseSensitive(pol).String()] = results
	}
	return observed, nil
}
