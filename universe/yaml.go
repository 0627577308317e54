package universe

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the YAML document describing declarations:
//
//	declarations:
//	  - name: NumBox
//	    params:
//	      - name: N
//	        bound: Number
//	    extends: ["Box<N>"]
type File struct {
	Declarations []Def `yaml:"declarations"`
}

// ReadYAML decodes definitions, rejecting unknown fields
func ReadYAML(r io.Reader) ([]Def, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var file File
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decoding universe")
	}
	return file.Declarations, nil
}

// LoadYAML declares the definitions read from r
func (r *Registry) LoadYAML(rd io.Reader) error {
	defs, err := ReadYAML(rd)
	if err != nil {
		return err
	}
	return r.Declare(defs...)
}

// LoadFile declares the definitions of the YAML file at path
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening universe")
	}
	defer f.Close()
	return errors.Wrapf(r.LoadYAML(f), "loading %s", path)
}
