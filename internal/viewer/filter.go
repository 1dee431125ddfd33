package viewer

// Filter is a snapshot of the four category visibility toggles, one per
// region granularity. Toggling mid-render is undefined; a fresh filter
// is captured per render pass.
type Filter struct {
	ComposedBlock bool
	Illustration  bool
	TextLine      bool
	String        bool
}

// AllVisible is the default filter with every category shown.
var AllVisible = Filter{ComposedBlock: true, Illustration: true, TextLine: true, String: true}
