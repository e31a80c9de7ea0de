package common

// Key identifies a keyboard key. Values match GLFW key codes, which use ASCII
// for printable keys.
type Key int

// Keys the engine and its orbit controller react to.
const (
	KeyW     Key = 87
	KeyA     Key = 65
	KeyS     Key = 83
	KeyD     Key = 68
	KeyQ     Key = 81
	KeyE     Key = 69
	KeySpace Key = 32

	KeyEsc   Key = 256
	KeyRight Key = 262
	KeyLeft  Key = 263
	KeyDown  Key = 264
	KeyUp    Key = 265

	KeyLeftShift  Key = 340
	KeyRightShift Key = 344
)
