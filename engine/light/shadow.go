package light

import "github.com/chewxy/math32"

// DefaultShadowMapSize is the width and height in texels of the shadow depth texture.
const DefaultShadowMapSize = 256

// DefaultConeAngle is the full spot cone angle, 90 degrees.
const DefaultConeAngle = math32.Pi / 2

// ShadowNear is the near plane of the light's shadow projection.
const ShadowNear float32 = 1

// ShadowFar is the far plane of the light's shadow projection.
const ShadowFar float32 = 1000
