package authflow

// otpLength is the number of digit slots in a verification code.
const otpLength = 6

// OTPInput models the six fixed-size code slots: one digit per slot,
// auto-advance on typing, backspace moves to the previous slot, and paste
// distributes leading digits across the slots.
type OTPInput struct {
	slots [otpLength]rune
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Type puts a digit into slot i and returns the slot that should receive
// focus next. Non-digit input is ignored.
func (o *OTPInput) Type(i int, r rune) int {
	if i < 0 || i >= otpLength || !isDigit(r) {
		return i
	}
	o.slots[i] = r
	if i < otpLength-1 {
		return i + 1
	}
	return i
}

// Backspace clears slot i; when the slot is already empty it clears the
// previous slot instead. Returns the slot that should receive focus.
func (o *OTPInput) Backspace(i int) int {
	if i < 0 || i >= otpLength {
		return i
	}
	if o.slots[i] == 0 && i > 0 {
		o.slots[i-1] = 0
		return i - 1
	}
	o.slots[i] = 0
	return i
}

// Paste distributes the leading characters of s across the slots, keeping
// digits only, and returns the slot that should receive focus: the first
// still-empty slot, or the last one.
func (o *OTPInput) Paste(s string) int {
	runes := []rune(s)
	for i := 0; i < len(runes) && i < otpLength; i++ {
		if isDigit(runes[i]) {
			o.slots[i] = runes[i]
		}
	}
	for i := range o.slots {
		if o.slots[i] == 0 {
			return i
		}
	}
	return otpLength - 1
}

// Clear empties every slot.
func (o *OTPInput) Clear() {
	o.slots = [otpLength]rune{}
}

// Code returns the digits entered so far.
func (o *OTPInput) Code() string {
	var out []rune
	for _, r := range o.slots {
		if r != 0 {
			out = append(out, r)
		}
	}
	return string(out)
}

// Complete reports whether all six slots are filled.
func (o *OTPInput) Complete() bool {
	for _, r := range o.slots {
		if r == 0 {
			return false
		}
	}
	return true
}
