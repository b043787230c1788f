package clusterkit

// DendrogramLeafSpacing is the horizontal distance between adjacent leaves;
// the first leaf sits at DendrogramLeafSpacing/2. These are the coordinates
// scipy uses.
const DendrogramLeafSpacing = 10.0

// DefaultColorThresholdRatio scales the tallest merge to obtain the default
// color threshold of a dendrogram.
const DefaultColorThresholdRatio = 0.7

// DendrogramLink is the U-shaped connector drawn for one merge. The four
// points run from the top of the left child, up to the merge height, across,
// and down to the top of the right child.
type DendrogramLink struct {
	X [4]float64
	Y [4]float64

	// Row is the linkage row this link draws.
	Row int

	// Group is the 0-based color group of the link, or -1 when the merge sits
	// at or above the color threshold.
	Group int
}

// DendrogramLayout holds the plotting coordinates of a dendrogram.
type DendrogramLayout struct {
	// Leaves lists the original point indices in left-to-right order.
	Leaves []int

	// Links has one entry per merge in post-order (children before parents).
	Links []DendrogramLink

	// MaxHeight is the largest merge distance.
	MaxHeight float64

	// ColorThreshold is the height below which subtrees get their own group.
	ColorThreshold float64

	// Groups is the number of color groups.
	Groups int
}

// Dendrogram lays out the tree described by linkage matrix z. Children are
// drawn in linkage order (row[0] left of row[1]), and subtrees whose merges
// lie strictly below 0.7 times the tallest merge are assigned color groups.
func Dendrogram(z [][4]float64) (*DendrogramLayout, error) {
	if err := validateLinkage(z); err != nil {
		return nil, err
	}
	n := len(z) + 1

	layout := &DendrogramLayout{
		Leaves: make([]int, 0, n),
		Links:  make([]DendrogramLink, 0, len(z)),
	}
	for _, r := range z {
		layout.MaxHeight = max(layout.MaxHeight, r[2])
	}
	layout.ColorThreshold = DefaultColorThresholdRatio * layout.MaxHeight

	var walk func(node, group int) (x, h float64)
	walk = func(node, group int) (x, h float64) {
		if node < n {
			x = DendrogramLeafSpacing/2 + DendrogramLeafSpacing*float64(len(layout.Leaves))
			layout.Leaves = append(layout.Leaves, node)
			return x, 0
		}

		row := node - n
		r := z[row]
		h = r[2]
		if group < 0 && h < layout.ColorThreshold {
			group = layout.Groups
			layout.Groups++
		}
		lx, lh := walk(int(r[0]), group)
		rx, rh := walk(int(r[1]), group)

		layout.Links = append(layout.Links, DendrogramLink{
			X:     [4]float64{lx, lx, rx, rx},
			Y:     [4]float64{lh, h, h, rh},
			Row:   row,
			Group: group,
		})
		return (lx + rx) / 2, h
	}
	walk(2*n-2, -1)

	return layout, nil
}
