package vscroll

// AnchorScrollTop returns the offset that keeps the user's place after the
// view changed from oldPaths to newPaths.
//
// With a focal path present in both views, the focal row keeps its screen
// position. Otherwise the row that was at the top stays at the top, with
// any partial-row offset preserved. Failing both, oldTop is returned.
func AnchorScrollTop(oldTop, rowHeight int, oldPaths, newPaths []string, focal string) int {
	if rowHeight <= 0 {
		rowHeight = 1
	}
	if focal != "" {
		oldIdx := indexOf(oldPaths, focal)
		newIdx := indexOf(newPaths, focal)
		if oldIdx >= 0 && newIdx >= 0 {
			return oldTop + (newIdx-oldIdx)*rowHeight
		}
		return oldTop
	}
	if len(oldPaths) == 0 {
		return oldTop
	}
	topIdx := oldTop / rowHeight
	if topIdx < 0 || topIdx >= len(oldPaths) {
		return oldTop
	}
	if newIdx := indexOf(newPaths, oldPaths[topIdx]); newIdx >= 0 {
		return newIdx*rowHeight + oldTop%rowHeight
	}
	return oldTop
}

// KeepRelative returns the offset that puts targetIdx where sourceIdx sits
// on screen now. A source outside the viewport puts the target at the top.
func KeepRelative(sourceIdx, targetIdx, scrollTop, viewport, rowHeight int) int {
	if rowHeight <= 0 {
		rowHeight = 1
	}
	offset := sourceIdx*rowHeight - scrollTop
	if sourceIdx < 0 || offset < 0 || offset >= viewport {
		offset = 0
	}
	return targetIdx*rowHeight - offset
}

func indexOf(paths []string, p string) int {
	for i, q := range paths {
		if q == p {
			return i
		}
	}
	return -1
}
