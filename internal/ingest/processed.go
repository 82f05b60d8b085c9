package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/cellmap/internal/models"
)

const commentMarker = "#"

var processedHeader = []string{"operator_id", "latitude", "longitude", "g2", "g3", "g4"}

// WriteProcessed writes points as a comma separated file with a header line.
func WriteProcessed(w io.Writer, points []models.CoveragePoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(processedHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, pt := range points {
		record := []string{
			strconv.Itoa(pt.OperatorID),
			strconv.FormatFloat(pt.Location.Latitude, 'f', -1, 64),
			strconv.FormatFloat(pt.Location.Longitude, 'f', -1, 64),
			strconv.FormatBool(pt.G2),
			strconv.FormatBool(pt.G3),
			strconv.FormatBool(pt.G4),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write point %d: %w", pt.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush processed file: %w", err)
	}

	return nil
}

// ReadProcessed reads a file produced by WriteProcessed. Lines starting with '#' are ignored
// and columns are matched by header name. Points are numbered from 1 in file order.
func ReadProcessed(r io.Reader) ([]models.CoveragePoint, error) {
	filtered := skipComments(r)
	defer filtered.Close()

	reader := csv.NewReader(filtered)
	reader.FieldsPerRecord = len(processedHeader)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var points []models.CoveragePoint
	for {
		record, errRead := reader.Read()
		if errRead == io.EOF {
			break
		}
		if errRead != nil {
			return nil, fmt.Errorf("failed to read record: %w", errRead)
		}

		pt, errParse := parseProcessed(record, index)
		if errParse != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("invalid record at line %d: %w", line, errParse)
		}
		pt.ID = int64(len(points) + 1)
		points = append(points, pt)
	}

	return points, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range processedHeader {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return index, nil
}

func parseProcessed(record []string, index map[string]int) (models.CoveragePoint, error) {
	var (
		pt  models.CoveragePoint
		err error
	)

	if pt.OperatorID, err = strconv.Atoi(record[index["operator_id"]]); err != nil {
		return pt, fmt.Errorf("operator_id: %w", err)
	}
	if pt.Location.Latitude, err = strconv.ParseFloat(record[index["latitude"]], 64); err != nil {
		return pt, fmt.Errorf("latitude: %w", err)
	}
	if pt.Location.Longitude, err = strconv.ParseFloat(record[index["longitude"]], 64); err != nil {
		return pt, fmt.Errorf("longitude: %w", err)
	}
	if pt.G2, err = strconv.ParseBool(record[index["g2"]]); err != nil {
		return pt, fmt.Errorf("g2: %w", err)
	}
	if pt.G3, err = strconv.ParseBool(record[index["g3"]]); err != nil {
		return pt, fmt.Errorf("g3: %w", err)
	}
	if pt.G4, err = strconv.ParseBool(record[index["g4"]]); err != nil {
		return pt, fmt.Errorf("g4: %w", err)
	}

	return pt, nil
}

// skipComments drops lines whose first non blank character is the comment marker.
func skipComments(r io.Reader) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(strings.TrimSpace(line), commentMarker) {
				continue
			}
			if _, err := io.WriteString(pw, line+"\n"); err != nil {
				return
			}
		}
		pw.CloseWithError(scanner.Err())
	}()
	return pr
}
