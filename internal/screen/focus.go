package screen

import (
	"fmt"

	"weave/internal/layout"
)

// Direction is a focus-movement direction for Tab.FocusDirection.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// FocusDirection moves clientID's focus from its currently focused tiled
// pane to the nearest pane lying in dir: candidates must lie wholly past the
// focused pane's edge in dir, and the one whose center is nearest along the
// travel axis wins, with perpendicular center offset as a small secondary
// term (see directionalScore). A no-op (returns nil) if no pane lies in
// that direction.
func (t *Tab) FocusDirection(clientID string, dir Direction) error {
	focused := t.Focused(clientID)
	rects := t.Layout.Rects()
	from, ok := rects[focused]
	if !ok {
		return fmt.Errorf("screen: focused pane has no tiled rect (may be floating or fullscreen)")
	}

	var best string
	bestScore := -1.0
	for id, r := range rects {
		if id == focused {
			continue
		}
		if !inDirection(from, r, dir) {
			continue
		}
		score := directionalScore(from, r, dir)
		if bestScore < 0 || score < bestScore {
			bestScore = score
			best = id
		}
	}
	if best == "" {
		return nil
	}
	return t.SetFocus(clientID, best)
}

func center(r layout.Rect) (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// inDirection reports whether r lies on the correct side of from for dir,
// judged by rect edges (not centers) so a large neighbor that merely
// overlaps from's center line still counts.
func inDirection(from, r layout.Rect, dir Direction) bool {
	switch dir {
	case DirUp:
		return r.Y+r.H <= from.Y
	case DirDown:
		return r.Y >= from.Y+from.H
	case DirLeft:
		return r.X+r.W <= from.X
	case DirRight:
		return r.X >= from.X+from.W
	default:
		return false
	}
}

// directionalScore ranks candidates: primarily by distance along the
// travel axis, secondarily by how little the perpendicular axis needs to
// shift (so a directly-adjacent pane beats a diagonal one at the same
// distance).
func directionalScore(from, r layout.Rect, dir Direction) float64 {
	fx, fy := center(from)
	rx, ry := center(r)
	switch dir {
	case DirUp:
		return (fy - ry) + abs(fx-rx)*0.01
	case DirDown:
		return (ry - fy) + abs(fx-rx)*0.01
	case DirLeft:
		return (fx - rx) + abs(fy-ry)*0.01
	case DirRight:
		return (rx - fx) + abs(fy-ry)*0.01
	default:
		return 0
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
