package rdl

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// Row is a single record of a host data collection: field name to value.
type Row map[string]interface{}

// DataCollection is one named block of host supplied data. HostSentData is keyed
// by dataset name; the value under the collection's own name is normally the array
// of rows a tablix iterates.
type DataCollection struct {
	Name         string
	HostSentData map[string]interface{}
}

// DataCollections is the ordered set of collections passed to a render.
type DataCollections []DataCollection

// Lookup returns the first collection whose name matches exactly.
func (dc DataCollections) Lookup(name string) (DataCollection, bool) {
	for _, c := range dc {
		if c.Name == name {
			return c, true
		}
	}
	return DataCollection{}, false
}

// Names returns the collection names in order.
func (dc DataCollections) Names() []string {
	names := make([]string, len(dc))
	for i, c := range dc {
		names[i] = c.Name
	}
	return names
}

// Data returns the host data stored under key in the collection.
func (c DataCollection) Data(key string) (interface{}, bool) {
	if c.HostSentData == nil {
		return nil, false
	}
	v, ok := c.HostSentData[key]
	return v, ok
}

// Rows returns the host data stored under key as rows. ok is false when the key
// is missing or does not hold an array of objects.
func (c DataCollection) Rows(key string) ([]Row, bool) {
	v, ok := c.Data(key)
	if !ok {
		return nil, false
	}
	return toRows(v)
}

func toRows(v interface{}) ([]Row, bool) {
	switch rows := v.(type) {
	case []Row:
		return rows, true
	case []map[string]interface{}:
		out := make([]Row, len(rows))
		for i, r := range rows {
			out[i] = Row(r)
		}
		return out, true
	case []interface{}:
		out := make([]Row, 0, len(rows))
		for _, item := range rows {
			row, ok := toRow(item)
			if !ok {
				return nil, false
			}
			out = append(out, row)
		}
		return out, true
	default:
		return nil, false
	}
}

func toRow(v interface{}) (Row, bool) {
	switch r := v.(type) {
	case Row:
		return r, true
	case map[string]interface{}:
		return Row(r), true
	default:
		return nil, false
	}
}

// NewDataCollection builds a collection whose host data holds rows under its own name.
func NewDataCollection(name string, rows []Row) DataCollection {
	return DataCollection{
		Name:         name,
		HostSentData: map[string]interface{}{name: rows},
	}
}

// ParseDataCollection decodes host JSON for one collection. Numbers are kept as
// json.Number so values print exactly as the host sent them.
func ParseDataCollection(name string, r io.Reader) (DataCollection, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var data map[string]interface{}
	if err := decoder.Decode(&data); err != nil {
		return DataCollection{}, errors.Wrapf(err, "decode data collection %s", name)
	}
	return DataCollection{Name: name, HostSentData: data}, nil
}

// LoadDataCollections reads a JSON file shaped as
// {"<collection>": {"<dataset>": [rows...]}}. Collections are returned sorted by
// name since JSON objects carry no order.
func LoadDataCollections(path string) (DataCollections, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, WithContext(errors.Wrap(err, "read data file"), "load data collections", map[string]interface{}{"path": path})
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var doc map[string]map[string]interface{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, WithContext(errors.Wrap(err, "decode data file"), "load data collections", map[string]interface{}{"path": path})
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	collections := make(DataCollections, 0, len(names))
	for _, name := range names {
		collections = append(collections, DataCollection{Name: name, HostSentData: doc[name]})
	}
	return collections, nil
}
