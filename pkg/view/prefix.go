package view

// Glyph is the connector drawn in front of a row's icon.
type Glyph int

const (
	TopCross Glyph = iota
	TopTeeDown
	TopTeeUp
	TopLine
	MiddleCross
	MiddleTeeDown
	MiddleTeeUp
	MiddleLine
	MiddleLightTeeUp
	MiddleLightLine
	BottomCross
	BottomTeeDown
	BottomTeeUp
	BottomLine
	BottomLightTeeUp
	BottomLightLine
	RootTeeDown
	RootLine
)

var glyphNames = [...]string{
	TopCross:         "top-cross",
	TopTeeDown:       "top-tee-down",
	TopTeeUp:         "top-tee-up",
	TopLine:          "top-line",
	MiddleCross:      "middle-cross",
	MiddleTeeDown:    "middle-tee-down",
	MiddleTeeUp:      "middle-tee-up",
	MiddleLine:       "middle-line",
	MiddleLightTeeUp: "middle-light-tee-up",
	MiddleLightLine:  "middle-light-line",
	BottomCross:      "bottom-cross",
	BottomTeeDown:    "bottom-tee-down",
	BottomTeeUp:      "bottom-tee-up",
	BottomLine:       "bottom-line",
	BottomLightTeeUp: "bottom-light-tee-up",
	BottomLightLine:  "bottom-light-line",
	RootTeeDown:      "tee-down",
	RootLine:         "line-h",
}

func (g Glyph) String() string {
	if g < 0 || int(g) >= len(glyphNames) {
		return "unknown"
	}
	return glyphNames[g]
}

// glyphArt is the two-cell terminal drawing of each glyph. The first cell
// joins the sibling chain, the second shows what is expanded.
var glyphArt = [...]string{
	TopCross:         "┌┼",
	TopTeeDown:       "┌┬",
	TopTeeUp:         "┌┴",
	TopLine:          "┌─",
	MiddleCross:      "├┼",
	MiddleTeeDown:    "├┬",
	MiddleTeeUp:      "├┴",
	MiddleLine:       "├─",
	MiddleLightTeeUp: "├┘",
	MiddleLightLine:  "├╴",
	BottomCross:      "└┼",
	BottomTeeDown:    "└┬",
	BottomTeeUp:      "└┴",
	BottomLine:       "└─",
	BottomLightTeeUp: "└┘",
	BottomLightLine:  "└╴",
	RootTeeDown:      "┬",
	RootLine:         "─",
}

// Art returns the terminal drawing of g.
func (g Glyph) Art() string {
	if g < 0 || int(g) >= len(glyphArt) {
		return "??"
	}
	return glyphArt[g]
}

// Position is where a row sits relative to its parent.
type Position int

const (
	HubOnTop Position = iota
	HubBelowTop
	LastSub
	MiddleSub
)

// PrefixInput is everything the connector depends on.
type PrefixInput struct {
	IsLastSub    bool
	HasSubs      bool
	ExpandedSubs bool
	ExpandedHubs bool
	IsHub        bool
	IsHubOnTop   bool
}

// Position classifies the row.
func (in PrefixInput) Position() Position {
	switch {
	case in.IsHub && in.IsHubOnTop:
		return HubOnTop
	case in.IsHub:
		return HubBelowTop
	case in.IsLastSub:
		return LastSub
	default:
		return MiddleSub
	}
}

type prefixKey struct {
	pos     Position
	subs    bool // expanded_subs
	hubs    bool // expanded_hubs
	hasSubs bool
}

// prefixTable lists every combination explicitly. Hub positions ignore
// hasSubs; sub positions use the light variants when there are no subs.
var prefixTable = map[prefixKey]Glyph{
	{HubOnTop, true, true, true}:    TopCross,
	{HubOnTop, true, true, false}:   TopCross,
	{HubOnTop, true, false, true}:   TopTeeDown,
	{HubOnTop, true, false, false}:  TopTeeDown,
	{HubOnTop, false, true, true}:   TopTeeUp,
	{HubOnTop, false, true, false}:  TopTeeUp,
	{HubOnTop, false, false, true}:  TopLine,
	{HubOnTop, false, false, false}: TopLine,

	{HubBelowTop, true, true, true}:    MiddleCross,
	{HubBelowTop, true, true, false}:   MiddleCross,
	{HubBelowTop, true, false, true}:   MiddleTeeDown,
	{HubBelowTop, true, false, false}:  MiddleTeeDown,
	{HubBelowTop, false, true, true}:   MiddleTeeUp,
	{HubBelowTop, false, true, false}:  MiddleTeeUp,
	{HubBelowTop, false, false, true}:  MiddleLine,
	{HubBelowTop, false, false, false}: MiddleLine,

	{LastSub, true, true, true}:    BottomCross,
	{LastSub, true, true, false}:   BottomCross,
	{LastSub, true, false, true}:   BottomTeeDown,
	{LastSub, true, false, false}:  BottomTeeDown,
	{LastSub, false, true, true}:   BottomTeeUp,
	{LastSub, false, true, false}:  BottomLightTeeUp,
	{LastSub, false, false, true}:  BottomLine,
	{LastSub, false, false, false}: BottomLightLine,

	{MiddleSub, true, true, true}:    MiddleCross,
	{MiddleSub, true, true, false}:   MiddleCross,
	{MiddleSub, true, false, true}:   MiddleTeeDown,
	{MiddleSub, true, false, false}:  MiddleTeeDown,
	{MiddleSub, false, true, true}:   MiddleTeeUp,
	{MiddleSub, false, true, false}:  MiddleLightTeeUp,
	{MiddleSub, false, false, true}:  MiddleLine,
	{MiddleSub, false, false, false}: MiddleLightLine,
}

// Prefix returns the connector glyph for a non-root row.
func Prefix(in PrefixInput) Glyph {
	g, ok := prefixTable[prefixKey{in.Position(), in.ExpandedSubs, in.ExpandedHubs, in.HasSubs}]
	if !ok {
		return MiddleLine
	}
	return g
}

// RootGlyph returns the connector drawn after the root's reset icon.
func RootGlyph(expandedSubs bool) Glyph {
	if expandedSubs {
		return RootTeeDown
	}
	return RootLine
}
