package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: demo-pipeline
elements:
  - name: source
    factory: fakesrc
    pads:
      - name: out
        direction: src
        caps: "video/x-raw-rgb, width=(int)[1,1920], height=(int)[1,1080]"
  - name: sink
    factory: fakesink
    pads:
      - name: in
        direction: sink
        caps: "video/x-raw-rgb, width=(int)640, height=(int)480"
links:
  - src: source.out
    sink: sink.in
`

func TestParseValidGraph(t *testing.T) {
	g, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "demo-pipeline", g.Name)
	require.Len(t, g.Elements, 2)
	require.Len(t, g.Links, 1)

	c, err := g.Elements[0].Pads[0].PadCaps()
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())

	assert.Equal(t, "source", g.Links[0].SrcElement())
	assert.Equal(t, "out", g.Links[0].SrcPad())
	assert.Equal(t, "sink", g.Links[0].SinkElement())
	assert.Equal(t, "in", g.Links[0].SinkPad())
}

func TestParseRejectsMalformedCaps(t *testing.T) {
	bad := `
elements:
  - name: e1
    pads:
      - name: p
        caps: "video/x-raw, width=(int)[bad"
`
	_, err := Parse([]byte(bad))
	assert.Error(t, err)
}

func TestParseRejectsDuplicateElementName(t *testing.T) {
	dup := `
elements:
  - name: e1
  - name: e1
`
	_, err := Parse([]byte(dup))
	assert.Error(t, err)
}

func TestParseRejectsMalformedLinkRef(t *testing.T) {
	bad := `
elements:
  - name: e1
links:
  - src: "no-dot-here"
    sink: "e1.in"
`
	_, err := Parse([]byte(bad))
	assert.Error(t, err)
}

func TestPropertiesValidatedAgainstSchema(t *testing.T) {
	withSchema := `
elements:
  - name: e1
    properties:
      bitrate: "not-a-number"
schemas:
  e1: '{"type":"object","properties":{"bitrate":{"type":"number"}},"required":["bitrate"]}'
`
	_, err := Parse([]byte(withSchema))
	assert.Error(t, err)
}
