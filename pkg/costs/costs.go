/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: costs.go
Description: API cost table. Loads the reference energy cost of every instrumented API from
a headerless two-column CSV (signature, cost) and keys it by the bare API name.
*/

package costs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/kleascm/orka/pkg/errs"
	"github.com/sirupsen/logrus"
)

// Table maps a bare API name to its energy cost. Read-only once loaded.
type Table map[string]float64

// row is one record of the cost CSV.
type row struct {
	Signature string  `csv:"signature"`
	Cost      float64 `csv:"cost"`
}

// Entry is a single (api, cost) pair, used for sorted listings.
type Entry struct {
	API  string
	Cost float64
}

// Load reads the cost table at path.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: api cost table %s", errs.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open api cost table: %w", err)
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Read decodes cost rows from r. A repeated API name overwrites the earlier cost.
func Read(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(reader, "signature", "cost")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, nil
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrParse, err)
	}

	table := make(Table)
	for line := 1; ; line++ {
		var rec row
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: row %d: %v", errs.ErrParse, line, err)
		}
		if len(dec.Record()) != 2 {
			return nil, fmt.Errorf("%w: row %d: expected 2 fields, got %d", errs.ErrParse, line, len(dec.Record()))
		}

		api := BareName(rec.Signature)
		if prev, ok := table[api]; ok {
			logrus.WithFields(logrus.Fields{
				"api":      api,
				"previous": prev,
				"cost":     rec.Cost,
			}).Debug("Duplicate API in cost table, later row wins")
		}
		table[api] = rec.Cost
	}
	return table, nil
}

// BareName strips the parenthesised signature suffix from an API name.
func BareName(signature string) string {
	if i := strings.IndexByte(signature, '('); i >= 0 {
		return signature[:i]
	}
	return signature
}

// Cost returns the cost of an API given either its bare name or its full signature.
func (t Table) Cost(api string) (float64, bool) {
	c, ok := t[BareName(api)]
	return c, ok
}

// Sorted returns the entries ordered by descending cost, then name.
func (t Table) Sorted() []Entry {
	entries := make([]Entry, 0, len(t))
	for api, cost := range t {
		entries = append(entries, Entry{API: api, Cost: cost})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Cost != entries[j].Cost {
			return entries[i].Cost > entries[j].Cost
		}
		return entries[i].API < entries[j].API
	})
	return entries
}
