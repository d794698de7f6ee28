package domain

// DisplayMode is what the encoder shows on the next frame.
type DisplayMode struct {
	ShowNumbers bool     `json:"show_numbers"`
	Stepping    Stepping `json:"stepping"`
}

// ModeTable lists the four legal display modes in cycle order.
var ModeTable = [4]DisplayMode{
	{ShowNumbers: false, Stepping: Short},
	{ShowNumbers: true, Stepping: Short},
	{ShowNumbers: false, Stepping: Long},
	{ShowNumbers: true, Stepping: Long},
}

// ModeState is the interaction counter behind the current display mode.
// It only grows; the mode is derived by indexing ModeTable modulo its length.
type ModeState struct {
	Counter int `json:"counter"`
}

// DefaultModeState is the state at startup.
func DefaultModeState() ModeState {
	return ModeState{Counter: 1}
}

// Mode returns the display mode for the current counter.
func (s ModeState) Mode() DisplayMode {
	i := s.Counter % len(ModeTable)
	if i < 0 {
		i += len(ModeTable)
	}
	return ModeTable[i]
}

// Advance returns the state after one activate interaction.
func Advance(s ModeState) ModeState {
	return ModeState{Counter: s.Counter + 1}
}
