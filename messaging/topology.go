package messaging

// Topology returns every window a broadcast from root must reach.
type Topology func(root *Window) []*Window

// AllFrames walks root and every nested frame, depth first, parents before children.
func AllFrames(root *Window) []*Window {
	out := []*Window{root}
	for _, f := range root.Frames() {
		out = append(out, AllFrames(f)...)
	}
	return out
}
