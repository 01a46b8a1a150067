// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/korender/device"
)

func TestViewportProject(t *testing.T) {
	c := qt.New(t)
	v := device.Viewport{X: 10, Y: 20, Width: 200, Height: 100}

	p, ok := v.Project(glm.Ident4(), glm.Vec3{0, 0, 0})
	c.Assert(ok, qt.IsTrue)
	c.Assert(p, qt.Equals, glm.Vec2{110, 70})

	p, _ = v.Project(glm.Ident4(), glm.Vec3{-1, 1, 0})
	c.Assert(p, qt.Equals, glm.Vec2{10, 20})

	p, _ = v.Project(glm.Scale3D(0.5, 0.5, 1), glm.Vec3{2, -2, 0})
	c.Assert(p, qt.Equals, glm.Vec2{210, 120})

	perspective := glm.Perspective(glm.DegToRad(90), 1, 0.1, 10)
	_, ok = v.Project(perspective, glm.Vec3{0, 0, 1})
	c.Assert(ok, qt.IsFalse)
}
