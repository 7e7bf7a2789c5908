package roadgraph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Default file names of tab-delimited data set
const (
	NodesFileName         = "nodeID-lat-lon.tab"
	RoadsFileName         = "roadID-roadInfo.tab"
	SegmentsFileName      = "roadSeg-roadID-length-nodeID-nodeID-coords.tab"
	RestrictionsFileName  = "restrictions.tab"
	TrafficLightsFileName = "trafficLights.tab"
)

const (
	maxLineSize = 1024 * 1024
)

// tabLine is a line split by runs of tabs
type tabLine struct {
	number int
	tokens []string
}

func (line tabLine) int64At(i int) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(line.tokens[i]), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedInput, "Line %d, field %d: %s", line.number, i+1, err.Error())
	}
	return v, nil
}

func (line tabLine) intAt(i int) (int, error) {
	v, err := line.int64At(i)
	return int(v), err
}

func (line tabLine) floatAt(i int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(line.tokens[i]), 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedInput, "Line %d, field %d: %s", line.number, i+1, err.Error())
	}
	return v, nil
}

// scanTabLines calls fn for every non empty line. First line is skipped when skipHeader is set.
func scanTabLines(r io.Reader, skipHeader bool, minTokens int, fn func(line tabLine) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	number := 0
	for scanner.Scan() {
		number++
		if skipHeader && number == 1 {
			continue
		}
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		tokens := strings.FieldsFunc(text, func(r rune) bool { return r == '\t' })
		if len(tokens) < minTokens {
			return errors.Wrapf(ErrMalformedInput, "Line %d: expected at least %d fields, got %d", number, minTokens, len(tokens))
		}
		err := fn(tabLine{number: number, tokens: tokens})
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "Can't scan lines")
	}
	return nil
}

// ReadNodes parses "nodeID lat lon" lines. There is no header.
func ReadNodes(r io.Reader) ([]NodeRecord, error) {
	records := []NodeRecord{}
	err := scanTabLines(r, false, 3, func(line tabLine) error {
		id, err := line.int64At(0)
		if err != nil {
			return err
		}
		lat, err := line.floatAt(1)
		if err != nil {
			return err
		}
		lon, err := line.floatAt(2)
		if err != nil {
			return err
		}
		records = append(records, NodeRecord{ID: NodeID(id), Lat: lat, Lon: lon})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't read nodes")
	}
	return records, nil
}

// ReadRoads parses road descriptions. First line is a header.
func ReadRoads(r io.Reader) ([]RoadRecord, error) {
	records := []RoadRecord{}
	err := scanTabLines(r, true, 10, func(line tabLine) error {
		ints := [8]int{}
		intFields := [8]int{0, 1, 4, 5, 6, 7, 8, 9}
		for i, field := range intFields {
			v, err := line.intAt(field)
			if err != nil {
				return err
			}
			ints[i] = v
		}
		records = append(records, RoadRecord{
			ID:               RoadID(ints[0]),
			Type:             ints[1],
			Label:            line.tokens[2],
			City:             line.tokens[3],
			OneWay:           ints[2],
			Speed:            ints[3],
			RoadClass:        ints[4],
			NotForCar:        ints[5],
			NotForPedestrian: ints[6],
			NotForBicycle:    ints[7],
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't read roads")
	}
	return records, nil
}

// ReadSegments parses "roadID length nodeID nodeID lat lon lat lon ..." lines. First line is a header.
func ReadSegments(r io.Reader) ([]SegmentRecord, error) {
	records := []SegmentRecord{}
	err := scanTabLines(r, true, 4, func(line tabLine) error {
		roadID, err := line.int64At(0)
		if err != nil {
			return err
		}
		length, err := line.floatAt(1)
		if err != nil {
			return err
		}
		startID, err := line.int64At(2)
		if err != nil {
			return err
		}
		endID, err := line.int64At(3)
		if err != nil {
			return err
		}
		coords := make([]float64, len(line.tokens)-4)
		for i := range coords {
			coords[i], err = line.floatAt(i + 4)
			if err != nil {
				return err
			}
		}
		records = append(records, SegmentRecord{
			RoadID:      RoadID(roadID),
			Length:      length,
			StartNodeID: NodeID(startID),
			EndNodeID:   NodeID(endID),
			Coords:      coords,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't read segments")
	}
	return records, nil
}

// ReadRestrictions parses "N1 R1 N R2 N2" lines. First line is a header.
func ReadRestrictions(r io.Reader) ([]RestrictionRecord, error) {
	records := []RestrictionRecord{}
	err := scanTabLines(r, true, 5, func(line tabLine) error {
		ids := [5]int64{}
		for i := range ids {
			v, err := line.int64At(i)
			if err != nil {
				return err
			}
			ids[i] = v
		}
		records = append(records, RestrictionRecord{
			N1: NodeID(ids[0]),
			R1: RoadID(ids[1]),
			N:  NodeID(ids[2]),
			R2: RoadID(ids[3]),
			N2: NodeID(ids[4]),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't read restrictions")
	}
	return records, nil
}

// ReadTrafficLights parses "lat lon" lines. There is no header.
func ReadTrafficLights(r io.Reader) ([]TrafficLightRecord, error) {
	records := []TrafficLightRecord{}
	err := scanTabLines(r, false, 2, func(line tabLine) error {
		lat, err := line.floatAt(0)
		if err != nil {
			return err
		}
		lon, err := line.floatAt(1)
		if err != nil {
			return err
		}
		records = append(records, TrafficLightRecord{Lat: lat, Lon: lon})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't read traffic lights")
	}
	return records, nil
}

func readFile(fname string, optional bool, fn func(r io.Reader) error) error {
	file, err := os.Open(fname)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "Can't open file '%s'", fname)
	}
	defer file.Close()
	return fn(file)
}

// LoadDirectory reads data set with default file names from given directory.
// Restrictions and traffic lights files are optional.
func LoadDirectory(dir string, verbose bool) (*Records, error) {
	if verbose {
		fmt.Printf("Reading tab-delimited files from '%s'...", dir)
	}
	st := time.Now()
	records := &Records{}
	err := readFile(filepath.Join(dir, NodesFileName), false, func(r io.Reader) (err error) {
		records.Nodes, err = ReadNodes(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(filepath.Join(dir, RoadsFileName), false, func(r io.Reader) (err error) {
		records.Roads, err = ReadRoads(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(filepath.Join(dir, SegmentsFileName), false, func(r io.Reader) (err error) {
		records.Segments, err = ReadSegments(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(filepath.Join(dir, RestrictionsFileName), true, func(r io.Reader) (err error) {
		records.Restrictions, err = ReadRestrictions(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(filepath.Join(dir, TrafficLightsFileName), true, func(r io.Reader) (err error) {
		records.TrafficLights, err = ReadTrafficLights(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n\tRoads: %d\n\tSegments: %d\n\tRestrictions: %d\n\tTraffic lights: %d\n",
			time.Since(st), len(records.Nodes), len(records.Roads), len(records.Segments), len(records.Restrictions), len(records.TrafficLights))
	}
	return records, nil
}
