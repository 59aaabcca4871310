package hl7

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_String(t *testing.T) {
	require := require.New(t)

	msg := mustParse(t, sampleHL7)
	field := mustGet(t, msg, 3, 3)
	require.Equal("1554-5^GLUCOSE^POST 12H CFST:MCNC:PT:SER/PLAS:QN", field.String())

	c := NewContainer('|')
	c.AppendText("1", "b", "data")
	require.Equal("1|b|data", c.String())
	require.Equal(3, c.Len())

	require.Equal("", NewContainer('|').String())
}

func TestContainer_Append(t *testing.T) {
	require := require.New(t)

	seps := DefaultSeparators()
	msg := NewMessage(seps,
		NewSegment(seps.Field, NewField(seps.Component, Text("MSH")), NewField(seps.Component, Text(seps.EncodingCharacters()))),
	)

	pid := NewSegment(seps.Field, NewField(seps.Component, Text("PID")), NewField(seps.Component, Text("1")))
	name := NewField(seps.Component, Text("DOE"))
	name.AppendText("JANE")
	pid.Append(NewField(seps.Component, Text("")), name)
	msg.Append(pid)

	require.Equal("MSH|^~\\&\rPID|1||DOE^JANE", msg.String())

	parsed := mustParse(t, msg.String())
	require.True(parsed.Equal(msg))
	require.Equal(seps, parsed.Separators())
}

func TestContainer_Equal(t *testing.T) {
	t.Run("Plain Slices", func(t *testing.T) {
		c := NewContainer('^', Text("a"), Text("b"))

		assert.True(t, c.Equal([]string{"a", "b"}))
		assert.True(t, c.Equal([]any{"a", Text("b")}))
		assert.True(t, c.Equal([]Text{"a", "b"}))
		assert.False(t, c.Equal([]string{"a"}))
		assert.False(t, c.Equal([]string{"a", "c"}))
		assert.False(t, c.Equal("a^b"))
		assert.False(t, c.Equal(nil))
		assert.False(t, c.Equal(42))
	})

	t.Run("Separator Ignored", func(t *testing.T) {
		a := NewContainer('^', Text("a"), Text("b"))
		b := NewContainer('%', Text("a"), Text("b"))

		assert.True(t, a.Equal(b))
		assert.NotEqual(t, a.String(), b.String())
	})

	t.Run("Nested", func(t *testing.T) {
		msg := mustParse(t, sampleHL7)
		obx, err := msg.Segments("OBX")
		require.NoError(t, err)

		assert.True(t, NewContainer('|', obx[0].Slice(0, 3)...).Equal([][]string{{"OBX"}, {"1"}, {"SN"}}))
		assert.True(t, NewContainer('|', obx[1].Slice(0, 3)...).Equal([][]string{{"OBX"}, {"2"}, {"FN"}}))
		assert.False(t, obx[0].Equal(obx[1]))
	})

	t.Run("Nil Container", func(t *testing.T) {
		var seg *Segment
		assert.False(t, NewContainer('|').Equal(seg))
	})
}

func TestContainer_Get(t *testing.T) {
	require := require.New(t)

	msg := mustParse(t, sampleHL7)

	elem, err := msg.Get()
	require.NoError(err)
	require.Equal(msg.String(), elem.String())

	elem, err = msg.Get(1, 5, 1)
	require.NoError(err)
	require.Equal(Text("EVE"), elem)

	_, err = msg.Get(5)
	require.ErrorIs(err, ErrIndexOutOfRange)

	_, err = msg.Get(1, -1)
	require.ErrorIs(err, ErrIndexOutOfRange)

	_, err = msg.Get(0, 0, 0, 0)
	require.ErrorIs(err, ErrNotContainer)
}

func TestContainer_AtAndSlice(t *testing.T) {
	require := require.New(t)

	c := NewContainer('|', Text("a"), Text("b"), Text("c"))

	require.Equal(Text("b"), c.At(1))
	require.Nil(c.At(3))
	require.Nil(c.At(-1))

	require.Equal([]Element{Text("b"), Text("c")}, c.Slice(1, 10))
	require.Empty(c.Slice(2, 1))
	require.Len(c.Slice(-5, 2), 2)
}

func TestContainer_Clone(t *testing.T) {
	require := require.New(t)

	msg := mustParse(t, "MSH|^~\\&|A\rZZZ|a&b^c~d|e")
	clone := msg.Clone()

	require.True(clone.Equal(msg))
	require.Equal(msg.String(), clone.String())
	require.Equal(msg.Separators(), clone.Separators())

	// modifying the clone must not affect the original
	clone.SegmentAt(1).Field(2).AppendText("f")
	clone.Append(NewSegment('|', NewField('^', Text("NTE"))))

	require.Equal("MSH|^~\\&|A\rZZZ|a&b^c~d|e", msg.String())
	require.Equal("MSH|^~\\&|A\rZZZ|a&b^c~d|e^f\rNTE", clone.String())

	rep := msg.SegmentAt(1).Field(1).Repetitions()[0]
	repClone := rep.Clone()
	repClone.AppendText("x")
	require.Equal("a&b^c", rep.String())

	comp, ok := mustGet(t, rep, 0).(*Component)
	require.True(ok)
	compClone := comp.Clone()
	compClone.AppendText("z")
	require.Equal("a&b", comp.String())
	require.Equal("a&b&z", compClone.String())
}

func TestContainer_ElementsShareStorage(t *testing.T) {
	c := NewContainer('|', Text("a"), Text("b"))
	c.Elements()[0] = Text("z")

	if diff := cmp.Diff("z|b", c.String()); diff != "" {
		t.Errorf("String() mismatch (-want +got):\n%s", diff)
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "message", MessageKind.String())
	assert.Equal(t, "segment", SegmentKind.String())
	assert.Equal(t, "field", FieldKind.String())
	assert.Equal(t, "repetition", RepetitionKind.String())
	assert.Equal(t, "component", ComponentKind.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
