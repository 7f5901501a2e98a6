package fields

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorReadString(t *testing.T) {
	c := NewCursor([]byte("Teste Airbag             X"))
	s, err := c.ReadString("controllerName", 25)
	require.NoError(t, err)
	require.Equal(t, "Teste Airbag", s)
	require.Equal(t, 25, c.Pos())
}

func TestCursorReadNumber(t *testing.T) {
	c := NewCursor([]byte("00123"))
	n, err := c.ReadNumber("cellID", 5)
	require.NoError(t, err)
	require.Equal(t, 123, n)
}

func TestCursorReadRawStringMismatch(t *testing.T) {
	c := NewCursor([]byte("ABCD"))
	_, err := c.ReadRawString("magic", "WXYZ")
	require.Error(t, err)
}

func TestCursorTestNul(t *testing.T) {
	c := NewCursor([]byte{0x00})
	require.NoError(t, c.TestNul())

	c2 := NewCursor([]byte{0x01})
	require.Error(t, c2.TestNul())
}

func TestCursorShortBuffer(t *testing.T) {
	c := NewCursor([]byte("12"))
	_, err := c.ReadNumber("x", 5)
	require.ErrorIs(t, err, ErrShortBuffer)
}

func dataFieldBytes(pid string, dataType, unit, step int, value string) string {
	return pid + padNum(len(value), 3) + padNum(dataType, 2) + padNum(unit, 3) + padNum(step, 4) + value
}

func padNum(n, width int) string {
	s := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		s[i] = byte('0' + n%10)
		n /= 10
	}
	return string(s)
}

func TestReadDataFieldsTolerant(t *testing.T) {
	buf := dataFieldBytes("02020", 1, 1, 1, "123") + "bad"
	c := NewCursor([]byte(buf))
	fieldsOut := ReadDataFields(c, 2)
	require.Len(t, fieldsOut, 1)
	require.Equal(t, "02020", fieldsOut[0].ParameterID)
	require.Equal(t, []byte("123"), fieldsOut[0].Value)
}

func resolutionFieldBytes(firstIndex, lastIndex, dataType, unit int, value string) string {
	return padNum(firstIndex, 5) + padNum(lastIndex, 5) + padNum(len(value), 3) + padNum(dataType, 2) + padNum(unit, 3) + value
}

func TestReadResolutionFieldsStrictValid(t *testing.T) {
	buf := resolutionFieldBytes(0, 99, 1, 200, "5")
	c := NewCursor([]byte(buf))
	out, err := ReadResolutionFields(c, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 0, out[0].FirstIndex)
	require.Equal(t, 99, out[0].LastIndex)
}

func TestReadResolutionFieldsStrictFailsOnShortBuffer(t *testing.T) {
	buf := resolutionFieldBytes(0, 99, 1, 200, "5")
	c := NewCursor([]byte(buf)[:len(buf)-1])
	_, err := ReadResolutionFields(c, 1)
	require.Error(t, err)
}

func TestReadTraceSamplesDirectScale(t *testing.T) {
	siblings := []DataField{{ParameterID: ParameterIDDirectScale, Value: []byte("2")}}
	raw := []byte{0x00, 0x05, 0xFF, 0xFB} // +5, -5
	c := NewCursor(raw)
	samples, err := ReadTraceSamples(c, 2, 1000, 1, 202, siblings)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Equal(t, int16(5), samples[0].Raw)
	require.Equal(t, float64(10), samples[0].Value)
	require.Equal(t, int64(1000), samples[0].TimestampMS)
	require.Equal(t, int64(1001), samples[1].TimestampMS)
}

func TestReadTraceSamplesReciprocalScale(t *testing.T) {
	siblings := []DataField{{ParameterID: ParameterIDReciprocalScale, Value: []byte("2")}}
	raw := []byte{0x00, 0x04}
	c := NewCursor(raw)
	samples, err := ReadTraceSamples(c, 1, 0, 1, 200, siblings)
	require.NoError(t, err)
	require.Equal(t, float64(2), samples[0].Value)
}
