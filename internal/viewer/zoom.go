package viewer

import "fmt"

// ZoomController adjusts the zoom level in fixed steps within bounds
// and triggers a reload that preserves the relative scroll position.
type ZoomController struct {
	state  *State
	shell  Shell
	reload func(index int, restore *Fractions)
}

// NewZoomController wires zoom adjustment to the shell label and the
// session's reload path.
func NewZoomController(state *State, shell Shell, reload func(index int, restore *Fractions)) *ZoomController {
	return &ZoomController{state: state, shell: shell, reload: reload}
}

// Adjust moves the zoom level by deltaSteps steps of 25%. A step that
// would leave [25, 400] is rejected entirely, preserving the current
// level. Zoom changes never alter the current page index.
func (z *ZoomController) Adjust(deltaSteps int) {
	next := z.state.ZoomLevel + deltaSteps*ZoomStep
	if next < ZoomMin || next > ZoomMax {
		return
	}
	z.state.ZoomLevel = next
	z.shell.SetZoomLabel(fmt.Sprintf("%d%%", next))

	restore := z.state.LastScrollPercent
	z.reload(z.state.CurrentIndex, &restore)
}
