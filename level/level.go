// Package level reads level descriptions and computes the set of resource
// files a level needs.
//
// A description is a JSON document:
//
//	{
//	  "name": "forest",
//	  "resources": ["forest/bark.png"],
//	  "entities": [
//	    {"name": "oak", "model": "forest/tree.gltf", "textures": ["forest/bark.png"]},
//	    {"name": "bird", "sounds": ["forest/bird.wav"]}
//	  ]
//	}
//
// Unknown fields are ignored.
package level

import (
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/maskerad/stackmem/vfs"
)

// ErrInvalidDescription is returned for documents that are not valid JSON
// objects or carry non-string resource paths.
var ErrInvalidDescription = errors.New("level: invalid description")

// Description is a parsed level description.
type Description struct {
	Name     string
	needed   []string
	entities int
}

// New builds a description directly from a list of resource paths.
func New(name string, paths ...string) *Description {
	d := &Description{Name: name}
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		d.add(seen, p)
	}
	return d
}

// Parse decodes a description document.
func Parse(data []byte) (*Description, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDescription)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidDescription)
	}

	d := &Description{Name: doc.Get("name").String()}
	seen := make(map[string]struct{})

	if err := d.addList(seen, doc.Get("resources"), "resources"); err != nil {
		return nil, err
	}

	entities := doc.Get("entities")
	if entities.Exists() && !entities.IsArray() {
		return nil, fmt.Errorf("%w: entities is not an array", ErrInvalidDescription)
	}
	var err error
	entities.ForEach(func(_, e gjson.Result) bool {
		where := fmt.Sprintf("entities[%d]", d.entities)
		d.entities++
		if m := e.Get("model"); m.Exists() {
			if m.Type != gjson.String {
				err = fmt.Errorf("%w: %s.model is not a string", ErrInvalidDescription, where)
				return false
			}
			d.add(seen, m.Str)
		}
		for _, field := range []string{"textures", "sounds"} {
			if err = d.addList(seen, e.Get(field), where+"."+field); err != nil {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Load reads and parses the description at path.
func Load(fsys vfs.Filesystem, path string) (*Description, error) {
	rc, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("level: open %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("level: read %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Needed returns every resource path the level references, each once, in
// order of first appearance.
func (d *Description) Needed() []string {
	return append([]string(nil), d.needed...)
}

// Entities returns the number of entities in the description.
func (d *Description) Entities() int { return d.entities }

func (d *Description) addList(seen map[string]struct{}, list gjson.Result, where string) error {
	if !list.Exists() {
		return nil
	}
	if !list.IsArray() {
		return fmt.Errorf("%w: %s is not an array", ErrInvalidDescription, where)
	}
	for i, p := range list.Array() {
		if p.Type != gjson.String {
			return fmt.Errorf("%w: %s[%d] is not a string", ErrInvalidDescription, where, i)
		}
		d.add(seen, p.Str)
	}
	return nil
}

func (d *Description) add(seen map[string]struct{}, p string) {
	if _, ok := seen[p]; ok {
		return
	}
	seen[p] = struct{}{}
	d.needed = append(d.needed, p)
}
