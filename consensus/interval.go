package consensus

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// interval is a locus on one reference tagged with the anchors aligned to
// it.
type interval struct {
	location *rtreego.Rect
	names    []string
}

func newInterval(start, end int, names []string) (*interval, error) {
	rect, err := rtreego.NewRect(rtreego.Point{float64(start)}, []float64{float64(end - start)})
	if err != nil {
		return nil, err
	}
	return &interval{location: rect, names: names}, nil
}

// Start returns the start position of the interval
func (i *interval) Start() float64 {
	return i.location.PointCoord(0)
}

// End returns the end position of the interval
func (i *interval) End() float64 {
	return i.location.LengthsCoord(0) + i.Start()
}

// Bounds returns the location of the interval. It is used within the Rtree.
func (i *interval) Bounds() *rtreego.Rect {
	return i.location
}

type intervalSlice []*interval

func (s intervalSlice) Len() int      { return len(s) }
func (s intervalSlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s intervalSlice) Less(i, j int) bool {
	if s[i].Start() != s[j].Start() {
		return s[i].Start() < s[j].Start()
	}
	return s[i].End() < s[j].End()
}

// refTree indexes the intervals of one reference.
type refTree struct {
	tree       *rtreego.Rtree
	start, end float64
	count      int
}

func newRefTree() *refTree {
	return &refTree{
		tree:  rtreego.NewTree(1, 25, 50),
		start: math.Inf(1),
		end:   math.Inf(-1),
	}
}

func (t *refTree) insert(i *interval) {
	t.tree.Insert(i)
	t.start = math.Min(t.start, i.Start())
	t.end = math.Max(t.end, i.End())
	t.count += len(i.names)
}

// all returns every interval of the tree.
func (t *refTree) all() []*interval {
	if t.tree.Size() == 0 {
		return nil
	}
	rect, err := rtreego.NewRect(rtreego.Point{t.start}, []float64{t.end - t.start})
	if err != nil {
		return nil
	}
	var out []*interval
	for _, s := range t.tree.SearchIntersect(rect) {
		out = append(out, s.(*interval))
	}
	return out
}

// mergeIntervals merges overlapping intervals, concatenating their anchors.
// Intervals that only touch end to start are kept apart.
func mergeIntervals(intervals []*interval) []*interval {
	sort.Sort(intervalSlice(intervals))
	var out []*interval
	var x *interval
	for n, i := range intervals {
		if n == 0 {
			x = &interval{location: i.location, names: append([]string(nil), i.names...)}
		}
		if n > 0 {
			if i.Start() < x.End() {
				start := math.Min(x.Start(), i.Start())
				end := math.Max(i.End(), x.End())
				rect, err := rtreego.NewRect(rtreego.Point{start}, []float64{end - start})
				if err == nil {
					x.location = rect
				}
				x.names = append(x.names, i.names...)
			} else {
				out = append(out, x)
				x = &interval{location: i.location, names: append([]string(nil), i.names...)}
			}
		}
		if n == len(intervals)-1 {
			out = append(out, x)
		}
	}
	return out
}
