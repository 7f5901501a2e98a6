package fields

import (
	"encoding/binary"
	"fmt"
)

// DataField is one record of a Data Field group: a named, typed,
// variable-length value tagged with a parameter ID and unit code.
type DataField struct {
	ParameterID   string
	ParameterName string
	Length        int
	DataType      int
	Unit          int
	UnitName      string
	StepNumber    int
	Value         []byte
}

// ResolutionField is one record of a Resolution Field group: an index
// range tagged with a unit code and a time value.
type ResolutionField struct {
	FirstIndex int
	LastIndex  int
	Length     int
	DataType   int
	Unit       int
	TimeValue  []byte
}

// dataFieldHeaderLen is the fixed portion of a Data Field record
// (parameterID 5 + length 3 + dataType 2 + unit 3 + stepNumber 4).
const dataFieldHeaderLen = 17

// resolutionFieldHeaderLen is the fixed portion of a Resolution Field
// record (firstIndex 5 + lastIndex 5 + length 3 + dataType 2 + unit 3).
const resolutionFieldHeaderLen = 18

// ReadDataFields reads up to count repeating Data Field records starting
// at the cursor's current position. Parsing is deliberately tolerant: real
// controllers emit under-specified records, so the first malformed record
// (or a buffer that runs out mid-record) stops the read and returns what
// was parsed so far, without failing the whole payload. Callers should
// treat a short result as a signal the device is out-of-spec, not as an
// error on its own.
func ReadDataFields(c *Cursor, count int) []DataField {
	out := make([]DataField, 0, count)
	for i := 0; i < count; i++ {
		start := c.Pos()

		pid, err := c.ReadString("parameterID", 5)
		if err != nil {
			c.Seek(start)
			break
		}
		length, err := c.ReadNumber("length", 3)
		if err != nil {
			c.Seek(start)
			break
		}
		dataType, err := c.ReadNumber("dataType", 2)
		if err != nil {
			c.Seek(start)
			break
		}
		unit, err := c.ReadNumber("unit", 3)
		if err != nil {
			c.Seek(start)
			break
		}
		step, err := c.ReadNumber("stepNumber", 4)
		if err != nil {
			c.Seek(start)
			break
		}
		value, err := c.ReadBytes("dataValue", length)
		if err != nil {
			c.Seek(start)
			break
		}

		out = append(out, DataField{
			ParameterID:   pid,
			ParameterName: ParameterName(pid),
			Length:        length,
			DataType:      dataType,
			Unit:          unit,
			UnitName:      UnitName(unit),
			StepNumber:    step,
			Value:         value,
		})
	}
	return out
}

// ReadResolutionFields reads exactly count repeating Resolution Field
// records. Unlike ReadDataFields this is strict: any malformed record
// fails the whole parse, per the protocol's documented asymmetry between
// the two record types.
func ReadResolutionFields(c *Cursor, count int) ([]ResolutionField, error) {
	out := make([]ResolutionField, 0, count)
	for i := 0; i < count; i++ {
		firstIndex, err := c.ReadNumber("firstIndex", 5)
		if err != nil {
			return nil, fmt.Errorf("resolution field %d: %w", i, err)
		}
		lastIndex, err := c.ReadNumber("lastIndex", 5)
		if err != nil {
			return nil, fmt.Errorf("resolution field %d: %w", i, err)
		}
		length, err := c.ReadNumber("length", 3)
		if err != nil {
			return nil, fmt.Errorf("resolution field %d: %w", i, err)
		}
		dataType, err := c.ReadNumber("dataType", 2)
		if err != nil {
			return nil, fmt.Errorf("resolution field %d: %w", i, err)
		}
		unit, err := c.ReadNumber("unit", 3)
		if err != nil {
			return nil, fmt.Errorf("resolution field %d: %w", i, err)
		}
		timeValue, err := c.ReadBytes("timeValue", length)
		if err != nil {
			return nil, fmt.Errorf("resolution field %d: %w", i, err)
		}

		out = append(out, ResolutionField{
			FirstIndex: firstIndex,
			LastIndex:  lastIndex,
			Length:     length,
			DataType:   dataType,
			Unit:       unit,
			TimeValue:  timeValue,
		})
	}
	return out, nil
}

// Parameter IDs that carry the trace-sample scaling coefficient.
const (
	ParameterIDReciprocalScale = "02213"
	ParameterIDDirectScale     = "02214"
)

// unitTimeMultiplierMS maps a trace unit code to the number of
// milliseconds one timeValue unit represents.
func unitTimeMultiplierMS(unit int) int64 {
	switch unit {
	case 200:
		return 1000
	case 201:
		return 60000
	case 202:
		return 1
	case 203:
		return 3600000
	default:
		return 1
	}
}

// TraceSample is one decoded, scaled, time-stamped point of a trace curve.
type TraceSample struct {
	Raw         int16
	Value       float64
	TimestampMS int64
}

// scaleCoefficient extracts the trace-sample scaling coefficient from a
// sibling Data Field group: parameterID 02213 carries it as a reciprocal
// (coefficient = 1/value), 02214 carries it directly.
func scaleCoefficient(siblings []DataField) (float64, error) {
	for _, df := range siblings {
		switch df.ParameterID {
		case ParameterIDReciprocalScale:
			v, err := parseFloatValue(df.Value)
			if err != nil {
				return 0, fmt.Errorf("reciprocal scale field: %w", err)
			}
			if v == 0 {
				return 0, fmt.Errorf("reciprocal scale field: zero coefficient")
			}
			return 1 / v, nil
		case ParameterIDDirectScale:
			v, err := parseFloatValue(df.Value)
			if err != nil {
				return 0, fmt.Errorf("direct scale field: %w", err)
			}
			return v, nil
		}
	}
	return 0, fmt.Errorf("trace samples: no scale parameter (02213/02214) in sibling data fields")
}

func parseFloatValue(b []byte) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(string(b), "%g", &f)
	return f, err
}

// ReadTraceSamples reads count 16-bit big-endian two's-complement trace
// samples, scaling each by the coefficient found in siblings (a Data
// Field group carrying parameterID 02213 or 02214) and stamping each
// sample's timestamp by advancing baseTimestampMS by timeValue ×
// unit-multiplier × index.
func ReadTraceSamples(c *Cursor, count int, baseTimestampMS int64, timeValue int64, unit int, siblings []DataField) ([]TraceSample, error) {
	coeff, err := scaleCoefficient(siblings)
	if err != nil {
		return nil, err
	}

	multiplier := unitTimeMultiplierMS(unit)
	out := make([]TraceSample, 0, count)
	for i := 0; i < count; i++ {
		raw, err := c.ReadBytes("traceSample", 2)
		if err != nil {
			return nil, fmt.Errorf("trace sample %d: %w", i, err)
		}
		v := int16(binary.BigEndian.Uint16(raw))
		out = append(out, TraceSample{
			Raw:         v,
			Value:       float64(v) * coeff,
			TimestampMS: baseTimestampMS + timeValue*multiplier*int64(i),
		})
	}
	return out, nil
}
