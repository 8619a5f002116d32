// Package codeinput normalizes entry of a six-slot numeric OTP code
// independently of any UI toolkit: one digit per slot, focus moves forward on
// entry and back on backspace, pastes spread across the slots.
package codeinput

import "strings"

// Slots is the number of digits in one OTP code.
const Slots = 6

// Field is one six-slot code container (email or phone).
type Field struct {
	slots   [Slots]string
	focus   int
	errored bool
}

// New returns an empty field focused on the first slot.
func New() *Field {
	return &Field{}
}

// Input applies a value typed into slot i. Non-digit input clears the slot
// and is rejected. A digit fills the slot and moves focus to the next one.
func (f *Field) Input(i int, value string) bool {
	if !inRange(i) {
		return false
	}
	f.focus = i
	if value == "" {
		f.slots[i] = ""
		return true
	}
	if !allDigits(value) {
		f.slots[i] = ""
		return false
	}
	f.slots[i] = value[len(value)-1:]
	f.errored = false
	if i < Slots-1 {
		f.focus = i + 1
	}
	return true
}

// Backspace on an empty slot moves focus to the previous slot; on a filled
// slot it clears the digit and keeps focus.
func (f *Field) Backspace(i int) {
	if !inRange(i) {
		return
	}
	if f.slots[i] != "" {
		f.slots[i] = ""
		f.focus = i
		return
	}
	if i > 0 {
		f.focus = i - 1
	}
}

// Paste keeps only the digits of text and writes them left to right from the
// first slot, filling as many slots as are available. It returns the number
// of slots written.
func (f *Field) Paste(text string) int {
	digits := onlyDigits(text)
	n := min(len(digits), Slots)
	for i := 0; i < n; i++ {
		f.slots[i] = digits[i : i+1]
	}
	return n
}

// Assemble concatenates the slot values in index order. Empty slots
// contribute nothing, so an incomplete field yields fewer than six characters.
func (f *Field) Assemble() string {
	var b strings.Builder
	for _, s := range f.slots {
		b.WriteString(s)
	}
	return b.String()
}

// Complete reports whether every slot holds a digit.
func (f *Field) Complete() bool {
	return len(f.Assemble()) == Slots
}

// Slot returns the value of slot i.
func (f *Field) Slot(i int) string {
	if !inRange(i) {
		return ""
	}
	return f.slots[i]
}

// Focus returns the index of the focused slot.
func (f *Field) Focus() int { return f.focus }

// MarkError flags the entered code as rejected so it is re-entered.
func (f *Field) MarkError() { f.errored = true }

// Errored reports whether the last submission of this code was rejected.
func (f *Field) Errored() bool { return f.errored }

// Clear empties every slot, drops the error mark and focuses the first slot.
func (f *Field) Clear() {
	f.slots = [Slots]string{}
	f.focus = 0
	f.errored = false
}

// Valid reports whether code is exactly six ASCII digits.
func Valid(code string) bool {
	return len(code) == Slots && allDigits(code)
}

func inRange(i int) bool {
	return i >= 0 && i < Slots
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
