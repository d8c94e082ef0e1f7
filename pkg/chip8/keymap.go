package chip8

// KeyCount is the number of logical keypad keys.
const KeyCount = 16

// keyCodes maps physical key identifiers onto the hexadecimal keypad using
// the COSMAC VIP layout:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keyCodes = map[string]uint8{
	"Digit1": 0x1, "Digit2": 0x2, "Digit3": 0x3, "Digit4": 0xC,
	"KeyQ": 0x4, "KeyW": 0x5, "KeyE": 0x6, "KeyR": 0xD,
	"KeyA": 0x7, "KeyS": 0x8, "KeyD": 0x9, "KeyF": 0xE,
	"KeyZ": 0xA, "KeyX": 0x0, "KeyC": 0xB, "KeyV": 0xF,
}

// KeyForCode returns the keypad key bound to a physical key identifier.
func KeyForCode(code string) (uint8, bool) {
	key, ok := keyCodes[code]
	return key, ok
}

// keypad holds the pressed state of the 16 logical keys.
type keypad [KeyCount]bool
