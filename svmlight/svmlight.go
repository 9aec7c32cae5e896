// Package svmlight parses the SVMlight/RankLib ranking file format:
// one instance per line, "<label> qid:<q> <fid>:<v> <fid>:<v> ..."
// optionally followed by a "# comment". This package is deliberately
// independent of the dataset package so that the training core never
// has to import a text-format parser to describe its own data model;
// dataset.Load is the adapter that turns a stream of Records into a
// dataset.DataSet.
package svmlight

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMetaLine is returned when a line begins with '@', RankLib's
// meta-instance marker. This project has no use for meta instances.
var ErrMetaLine = errors.New("meta instance not supported")

// Record is one parsed line: a label, a query id, and a dense,
// 0-indexed feature vector (index i holds feature id i+1; absent ids
// default to 0).
type Record struct {
	Label  float64
	QID    int
	Values []float64
}

// ParseLine parses a single SVMlight line. Blank lines and lines
// reduced to nothing but a comment are skipped by Decode, not here;
// ParseLine assumes line already has content.
func ParseLine(line string) (Record, error) {
	if strings.HasPrefix(line, "@") {
		return Record{}, ErrMetaLine
	}

	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Record{}, errors.Errorf("expected at least label and qid, got %q", line)
	}

	label, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Record{}, errors.Wrapf(err, "invalid label %q", fields[0])
	}

	qid, err := parseQID(fields[1])
	if err != nil {
		return Record{}, err
	}

	values, err := parseFeatures(fields[2:])
	if err != nil {
		return Record{}, err
	}

	return Record{Label: label, QID: qid, Values: values}, nil
}

func parseQID(field string) (int, error) {
	const prefix = "qid:"
	if !strings.HasPrefix(field, prefix) {
		return 0, errors.Errorf("expected qid field, got %q", field)
	}
	qid, err := strconv.Atoi(strings.TrimPrefix(field, prefix))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid qid %q", field)
	}
	return qid, nil
}

// ParseFeature parses a single "<fid>:<value>" token.
func ParseFeature(f string) (id int, val float64, err error) {
	parts := strings.Split(f, ":")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("malformed feature %q", f)
	}

	id, err = strconv.Atoi(parts[0])
	if err != nil || id < 1 {
		return 0, 0, errors.Errorf("invalid feature id in %q", f)
	}

	val, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid feature value in %q", f)
	}

	return id, val, nil
}

func parseFeatures(fields []string) ([]float64, error) {
	type pair struct {
		id  int
		val float64
	}

	pairs := make([]pair, 0, len(fields))
	maxID := 0

	for _, f := range fields {
		id, val, err := ParseFeature(f)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, pair{id, val})
		if id > maxID {
			maxID = id
		}
	}

	values := make([]float64, maxID)
	for _, p := range pairs {
		values[p.id-1] = p.val
	}

	return values, nil
}

// Decode reads every instance line from r, skipping blank and
// '#'-prefixed lines, and returns the parsed records in file order.
func Decode(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading input")
	}

	return records, nil
}

// String renders a Record back into SVMlight form, omitting
// zero-valued features.
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v qid:%d", r.Label, r.QID)
	for i, v := range r.Values {
		if v == 0 {
			continue
		}
		fmt.Fprintf(&b, " %d:%v", i+1, v)
	}
	return b.String()
}
