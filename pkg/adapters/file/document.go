package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/thicket/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions recognized as tree documents.
var Extensions = []string{".yaml", ".yml", ".json"}

// Document is the on-disk form of a tree. JSON documents use the same keys.
type Document struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Options     *options      `yaml:"options"`
	Items       []domain.Item `yaml:"items"`
}

// options keeps omitted keys distinguishable from false.
type options struct {
	AllowPartialSelection *bool  `yaml:"allow_partial_selection"`
	Expandable            *bool  `yaml:"expandable"`
	ShowIcons             *bool  `yaml:"show_icons"`
	ShowDescriptions      *bool  `yaml:"show_descriptions"`
	SelectionOrder        string `yaml:"selection_order"`
}

func (o *options) resolve() (*domain.Options, error) {
	if o == nil {
		return nil, nil
	}
	opts := domain.DefaultOptions()
	for _, f := range []struct {
		dst *bool
		src *bool
	}{
		{&opts.AllowPartialSelection, o.AllowPartialSelection},
		{&opts.Expandable, o.Expandable},
		{&opts.ShowIcons, o.ShowIcons},
		{&opts.ShowDescriptions, o.ShowDescriptions},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	switch domain.SelectionOrder(o.SelectionOrder) {
	case "":
	case domain.OrderDocument, domain.OrderInsertion:
		opts.SelectionOrder = domain.SelectionOrder(o.SelectionOrder)
	default:
		return nil, fmt.Errorf("unknown selection_order %q", o.SelectionOrder)
	}
	return &opts, nil
}

// Parse decodes a YAML or JSON tree document. Unknown keys are rejected.
// name is the file name; its base name is the tree id when the document
// declares none.
func Parse(name string, data []byte) (domain.Tree, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return domain.Tree{}, fmt.Errorf("parse %s: %w", name, err)
	}

	opts, err := doc.Options.resolve()
	if err != nil {
		return domain.Tree{}, fmt.Errorf("parse %s: %w", name, err)
	}

	id := doc.ID
	if id == "" {
		id = TreeID(name)
	}
	return domain.Tree{
		ID:          id,
		Title:       doc.Title,
		Description: doc.Description,
		Items:       doc.Items,
		Options:     opts,
	}, nil
}

// Marshal encodes a tree as a YAML document.
func Marshal(tr domain.Tree) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tr); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TreeID derives a tree id from a file name.
func TreeID(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isTreeFile(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
