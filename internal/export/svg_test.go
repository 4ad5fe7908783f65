package export

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dronesim/internal/analysis"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

func samples() []metrics.Sample {
	out := make([]metrics.Sample, 5)
	for i := range out {
		out[i] = metrics.Sample{
			Step:  i,
			Time:  float64(i) * 0.1,
			State: kinematics.State{Position: vecmath.Vec3{Y: 1 - 0.5*float64(i)}},
		}
	}
	return out
}

func TestChannelSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ChannelSVG(&buf, samples(), "y", DefaultChart()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 1, strings.Count(out, "<path"))
	assert.Equal(t, 4, strings.Count(out, " L"))
	// y crosses zero, so the zero line is drawn.
	assert.Contains(t, out, "<line")
	assert.Contains(t, out, ">y</text>")

	// The document is well formed.
	dec := xml.NewDecoder(&buf)
	for {
		_, err := dec.Token()
		if err != nil {
			assert.Equal(t, "EOF", err.Error())
			break
		}
	}
}

func TestChannelSVG_Rejects(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, ChannelSVG(&buf, samples(), "nope", DefaultChart()))
	assert.ErrorIs(t, ChannelSVG(&buf, samples()[:1], "y", DefaultChart()), dynamo.ErrInvalidArgument)
	assert.ErrorIs(t, ChannelSVG(&buf, samples(), "y", Chart{}), dynamo.ErrInvalidArgument)
	assert.Zero(t, buf.Len())
}

func TestPhaseSVG(t *testing.T) {
	p, err := analysis.NewPhasePortrait(samples(), "y", "vy")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PhaseSVG(&buf, p, DefaultChart()))
	assert.Contains(t, buf.String(), "vy vs y")
}
