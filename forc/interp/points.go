package interp

import "gonum.org/v1/gonum/spatial/kdtree"

// samplePoint is one scattered measurement in (field, reversal) space. idx
// addresses the flattened value arrays, so one tree serves every channel.
type samplePoint struct {
	h, hr float64
	idx   int
}

// Compare implements kdtree.Comparable.
func (p samplePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(samplePoint)
	switch d {
	case 0:
		return p.h - q.h
	case 1:
		return p.hr - q.hr
	default:
		panic("interp: illegal dimension")
	}
}

// Dims implements kdtree.Comparable.
func (p samplePoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance to c.
func (p samplePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(samplePoint)
	dh := p.h - q.h
	dhr := p.hr - q.hr
	return dh*dh + dhr*dhr
}

// samplePoints satisfies kdtree.Interface.
type samplePoints []samplePoint

func (p samplePoints) Index(i int) kdtree.Comparable { return p[i] }

func (p samplePoints) Len() int { return len(p) }

func (p samplePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p samplePoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(samplePlane{samplePoints: p, Dim: d}, kdtree.MedianOfRandoms(samplePlane{samplePoints: p, Dim: d}, 100))
}

// samplePlane implements sort.Interface and kdtree.SortSlicer over one
// dimension of samplePoints.
type samplePlane struct {
	samplePoints
	kdtree.Dim
}

func (p samplePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.samplePoints[i].h < p.samplePoints[j].h
	case 1:
		return p.samplePoints[i].hr < p.samplePoints[j].hr
	default:
		panic("interp: illegal dimension")
	}
}

func (p samplePlane) Slice(start, end int) kdtree.SortSlicer {
	return samplePlane{samplePoints: p.samplePoints[start:end], Dim: p.Dim}
}

func (p samplePlane) Swap(i, j int) {
	p.samplePoints[i], p.samplePoints[j] = p.samplePoints[j], p.samplePoints[i]
}
