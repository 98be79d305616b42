package vecmath

// Transform is a rigid frame: an origin plus three orthonormal axes.
type Transform struct {
	Origin Vec3
	Right  Vec3
	Up     Vec3
	Fwd    Vec3
}

// Identity returns a transform at origin with world-aligned axes.
func Identity(origin Vec3) Transform {
	return Transform{Origin: origin, Right: Vec3{X: 1}, Up: Vec3{Y: 1}, Fwd: Vec3{Z: 1}}
}

// PointToLocal expresses a world point in the frame's coordinates.
func (t Transform) PointToLocal(p Vec3) Vec3 {
	d := p.Sub(t.Origin)
	return Vec3{d.Dot(t.Right), d.Dot(t.Up), d.Dot(t.Fwd)}
}

// PointToWorld maps a local point back to world space.
func (t Transform) PointToWorld(p Vec3) Vec3 {
	return t.Origin.Add(t.DirToWorld(p))
}

// DirToLocal expresses a world direction in the frame's coordinates.
func (t Transform) DirToLocal(d Vec3) Vec3 {
	return Vec3{d.Dot(t.Right), d.Dot(t.Up), d.Dot(t.Fwd)}
}

// DirToWorld maps a local direction back to world space.
func (t Transform) DirToWorld(d Vec3) Vec3 {
	return t.Right.Scale(d.X).Add(t.Up.Scale(d.Y)).Add(t.Fwd.Scale(d.Z))
}
