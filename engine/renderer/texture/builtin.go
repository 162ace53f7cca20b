package texture

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/chewxy/math32"
)

// BuiltinPrefix marks texture identifiers that are generated rather than read from disk.
const BuiltinPrefix = "builtin:"

const builtinSize = 64

// Builtin generates one of the built-in images:
//   - builtin:white  a solid white texture
//   - builtin:checker  an 8x8 grey checkerboard
//   - builtin:glow  a white radial falloff used for light glyphs
//
// Parameters:
//   - name: the texture identifier
//
// Returns:
//   - common.TextureStagingData: the generated pixels
//   - bool: false if name is not a builtin
func Builtin(name string) (common.TextureStagingData, bool) {
	kind, ok := strings.CutPrefix(name, BuiltinPrefix)
	if !ok {
		return common.TextureStagingData{}, false
	}

	var texel func(x, y int) [4]byte
	switch kind {
	case "white":
		texel = func(int, int) [4]byte { return [4]byte{255, 255, 255, 255} }
	case "checker":
		texel = func(x, y int) [4]byte {
			if (x/8+y/8)%2 == 0 {
				return [4]byte{200, 200, 200, 255}
			}
			return [4]byte{90, 90, 90, 255}
		}
	case "glow":
		texel = func(x, y int) [4]byte {
			half := float32(builtinSize) / 2
			dx := (float32(x) + 0.5 - half) / half
			dy := (float32(y) + 0.5 - half) / half
			v := 1 - math32.Sqrt(dx*dx+dy*dy)
			if v < 0 {
				v = 0
			}
			c := byte(255 * v * v)
			return [4]byte{c, c, c, 255}
		}
	default:
		return common.TextureStagingData{}, false
	}

	pixels := make([]byte, 0, builtinSize*builtinSize*4)
	for y := range builtinSize {
		for x := range builtinSize {
			p := texel(x, y)
			pixels = append(pixels, p[:]...)
		}
	}
	return common.TextureStagingData{
		Label:  name,
		Pixels: pixels,
		Width:  builtinSize,
		Height: builtinSize,
	}, true
}
