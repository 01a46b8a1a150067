// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// Viewport is a window rectangle in pixels, origin at the top left.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// Project transforms position by mvp and maps the result from normalised
// device coordinates into the viewport. It reports false for points
// behind the camera.
func (v Viewport) Project(mvp glm.Mat4, position glm.Vec3) (glm.Vec2, bool) {
	clip := mvp.Mul4x1(position.Vec4(1))
	if clip[3] <= 0 {
		return glm.Vec2{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	return glm.Vec2{
		v.X + (ndc[0]*0.5+0.5)*v.Width,
		v.Y + (0.5-ndc[1]*0.5)*v.Height,
	}, true
}
