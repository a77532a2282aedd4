package decode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirFelix/TDA/internal/domain"
)

func TestParseEnvelopeMalformedJSON(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"source": "DAQ", "type":`))
	require.Error(t, err)
}

func TestParseEnvelopeDAQTimestampScaling(t *testing.T) {
	rec, err := ParseEnvelope([]byte(`{"source":"DAQ","type":"data","params":{"timestamp":1712.3456789,"raw_pressure":55.5}}`))
	require.NoError(t, err)

	daq, ok := rec.(DAQData)
	require.True(t, ok)
	// Seconds ×1000, truncated to whole milliseconds.
	assert.Equal(t, time.UnixMilli(1712345), daq.Timestamp)
	require.NotNil(t, daq.RawPressure)
	assert.Equal(t, 55.5, *daq.RawPressure)
	assert.Equal(t, domain.Missing, daq.Filtered, "filtered_pressure defaults to the sentinel")
	assert.Nil(t, daq.Speed)
}

func TestParseEnvelopeDAQBothGroups(t *testing.T) {
	rec, err := ParseEnvelope([]byte(`{"source":"DAQ","type":"data","params":{"timestamp":2,"raw_pressure":1,"filtered_pressure":0.5,"tractor_speed":12}}`))
	require.NoError(t, err)

	daq := rec.(DAQData)
	assert.Equal(t, 0.5, daq.Filtered)
	require.NotNil(t, daq.Speed)
	assert.Equal(t, 12.0, *daq.Speed)
}

func TestParseEnvelopeDAQMissingTimestamp(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"source":"DAQ","type":"data","params":{"raw_pressure":1}}`))
	require.Error(t, err)

	_, err = ParseEnvelope([]byte(`{"source":"DAQ","type":"data","params":{"timestamp":"nope"}}`))
	require.Error(t, err, "a string timestamp is as invalid as a missing one")
}

func TestParseEnvelopeRIGNoScalingAndDefaults(t *testing.T) {
	rec, err := ParseEnvelope([]byte(`{"source":"RIG","type":"data","params":{"timestamp":1000,"ct_pressure":6402}}`))
	require.NoError(t, err)

	rig, ok := rec.(RIGData)
	require.True(t, ok)
	// Milliseconds consumed raw, no ×1000.
	assert.Equal(t, time.UnixMilli(1000), rig.Timestamp)
	assert.Equal(t, 6402.0, rig.Values[0])
	for i := 1; i < len(rig.Values); i++ {
		assert.Equal(t, domain.Missing, rig.Values[i], "field %d must default to the sentinel", i)
	}
}

func TestParseEnvelopeAck(t *testing.T) {
	rec, err := ParseEnvelope([]byte(`{"source":"RIG","type":"acknowledgement","params":{}}`))
	require.NoError(t, err)
	assert.Equal(t, Ack{Source: "RIG"}, rec)
}

func TestParseEnvelopeUnknownRoutes(t *testing.T) {
	for _, raw := range []string{
		`{"source":"GPS","type":"data","params":{"timestamp":1}}`,
		`{"source":"DAQ","type":"config","params":{}}`,
		`{"source":"","type":"","params":null}`,
	} {
		rec, err := ParseEnvelope([]byte(raw))
		require.NoError(t, err, raw)
		_, ok := rec.(Ignored)
		assert.True(t, ok, "expected %s to be ignored", raw)
	}
}
