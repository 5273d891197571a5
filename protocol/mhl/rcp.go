package mhl

// RCP key codes
const (
	KeySelect       = 0x00
	KeyUp           = 0x01
	KeyDown         = 0x02
	KeyLeft         = 0x03
	KeyRight        = 0x04
	KeyRootMenu     = 0x09
	KeySetupMenu    = 0x0A
	KeyContentsMenu = 0x0B
	KeyFavoriteMenu = 0x0C
	KeyExit         = 0x0D
	KeyNum0         = 0x20
	KeyNum9         = 0x29
	KeyDot          = 0x2A
	KeyEnter        = 0x2B
	KeyClear        = 0x2C
	KeyChannelUp    = 0x30
	KeyChannelDown  = 0x31
	KeyPrevChannel  = 0x32
	KeySoundSelect  = 0x33
	KeyInputSelect  = 0x34
	KeyShowInfo     = 0x35
	KeyHelp         = 0x36
	KeyPageUp       = 0x37
	KeyPageDown     = 0x38
	KeyVolumeUp     = 0x41
	KeyVolumeDown   = 0x42
	KeyMute         = 0x43
	KeyPlay         = 0x44
	KeyStop         = 0x45
	KeyPause        = 0x46
	KeyRecord       = 0x47
	KeyRewind       = 0x48
	KeyFastForward  = 0x49
	KeyEject        = 0x4A
	KeyForward      = 0x4B
	KeyBackward     = 0x4C
	KeyAngle        = 0x50
	KeySubpicture   = 0x51
	KeyPlayFunc     = 0x60
	KeyPausePlay    = 0x61
	KeyRecordFunc   = 0x62
	KeyPauseRecord  = 0x63
	KeyStopFunc     = 0x64
	KeyMuteFunc     = 0x65
	KeyUnmuteFunc   = 0x66
	KeyTuneFunc     = 0x67
	KeyMediaFunc    = 0x68
	KeyF1           = 0x71
	KeyF5           = 0x75
	KeyVendor       = 0x7E

	// KeyReleased is OR-ed into a key code on release
	KeyReleased = 0x80
)

const (
	ldNav    = LdDisplay | LdVideo | LdMedia | LdTuner | LdRecord | LdGUI
	ldMenu   = LdVideo | LdMedia | LdTuner | LdRecord | LdGUI
	ldTune   = LdVideo | LdTuner
	ldSound  = LdAudio | LdSpeaker
	ldPlay   = LdVideo | LdAudio | LdMedia | LdRecord
	ldRecord = LdRecord
)

// rcpKeyUse maps each key code to the logical devices that act on it;
// reserved codes are zero.
var rcpKeyUse = func() (t [0x80]uint8) {
	for k := KeySelect; k <= KeyRight; k++ {
		t[k] = ldNav
	}
	for _, k := range []int{KeyRootMenu, KeySetupMenu, KeyContentsMenu, KeyFavoriteMenu, KeyExit} {
		t[k] = ldMenu
	}
	for k := KeyNum0; k <= KeyClear; k++ {
		t[k] = ldMenu
	}
	for _, k := range []int{KeyChannelUp, KeyChannelDown, KeyPrevChannel} {
		t[k] = ldTune
	}
	t[KeySoundSelect] = ldSound
	t[KeyInputSelect] = LdVideo | LdAudio | LdDisplay
	for k := KeyShowInfo; k <= KeyPageDown; k++ {
		t[k] = ldMenu
	}
	for k := KeyVolumeUp; k <= KeyMute; k++ {
		t[k] = ldSound
	}
	for k := KeyPlay; k <= KeyBackward; k++ {
		t[k] = ldPlay
	}
	t[KeyRecord] = ldRecord
	t[KeyAngle] = LdVideo | LdMedia
	t[KeySubpicture] = LdVideo | LdMedia
	for k := KeyPlayFunc; k <= KeyStopFunc; k++ {
		t[k] = ldPlay
	}
	t[KeyRecordFunc] = ldRecord
	t[KeyPauseRecord] = ldRecord
	t[KeyMuteFunc] = ldSound
	t[KeyUnmuteFunc] = ldSound
	t[KeyTuneFunc] = ldTune
	t[KeyMediaFunc] = LdMedia
	for k := KeyF1; k <= KeyF5; k++ {
		t[k] = ldMenu
	}
	t[KeyVendor] = ldNav | ldSound
	return t
}()

// RcpKeySupported reports whether a device with logical device map ldMask
// acts on key. The release bit is ignored.
func RcpKeySupported(key, ldMask uint8) bool {
	return rcpKeyUse[key&^KeyReleased]&ldMask != 0
}
