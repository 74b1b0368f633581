package wire

// BreakpointKind is the access type added to an aligned breakpoint address.
type BreakpointKind uint8

const (
	// BreakpointExecute fires on instruction fetch.
	BreakpointExecute BreakpointKind = 0x03
	// BreakpointRead fires on data read.
	BreakpointRead BreakpointKind = 0x05
	// BreakpointWrite fires on data write.
	BreakpointWrite BreakpointKind = 0x06
	// BreakpointReadWrite fires on data read or write.
	BreakpointReadWrite BreakpointKind = 0x07
)

// String returns the breakpoint kind name.
func (k BreakpointKind) String() string {
	switch k {
	case BreakpointExecute:
		return "EXECUTE"
	case BreakpointRead:
		return "READ"
	case BreakpointWrite:
		return "WRITE"
	case BreakpointReadWrite:
		return "READWRITE"
	default:
		return "UNKNOWN"
	}
}

// ServerVersion is the capability byte returned by CmdVersion.
type ServerVersion uint8

const (
	// VersionUnknown is returned when no allowed version was received.
	VersionUnknown ServerVersion = 0x00
	// VersionWii is a Wii handler.
	VersionWii ServerVersion = 0x80
	// VersionNGC is a GameCube handler (no exact breakpoints).
	VersionNGC ServerVersion = 0x81
	// VersionWiiU is a Wii U handler.
	VersionWiiU ServerVersion = 0x82
)

// AllowedVersions lists the server versions this client accepts.
var AllowedVersions = []ServerVersion{VersionWiiU}

// Allowed reports whether v is in AllowedVersions.
func (v ServerVersion) Allowed() bool {
	for _, a := range AllowedVersions {
		if a == v {
			return true
		}
	}
	return false
}

// ExactBreakpoints reports whether the server supports the advanced
// breakpoint encoding.
func (v ServerVersion) ExactBreakpoints() bool {
	return v != VersionNGC
}

// String returns the version name.
func (v ServerVersion) String() string {
	switch v {
	case VersionWii:
		return "WII"
	case VersionNGC:
		return "NGC"
	case VersionWiiU:
		return "WIIU"
	default:
		return "UNKNOWN"
	}
}

// HookType selects the event the execution hook attaches to.
type HookType uint8

const (
	HookVI HookType = iota
	HookWiiRemote
	HookGamecubePad
)

// Language overrides the target's system language when hooking.
type Language uint8

const (
	LanguageNoOverride Language = iota
	LanguageJapanese
	LanguageEnglish
	LanguageGerman
	LanguageFrench
	LanguageSpanish
	LanguageItalian
	LanguageDutch
	LanguageChineseSimplified
	LanguageChineseTraditional
	LanguageKorean
)

// NoLanguageOverride is sent in place of a language code when the language
// is not overridden.
const NoLanguageOverride byte = 0xCD

// Byte returns the wire encoding of the language.
func (l Language) Byte() byte {
	if l == LanguageNoOverride {
		return NoLanguageOverride
	}
	return byte(l - 1)
}

// Patches selects video patches applied when hooking.
type Patches uint8

const (
	PatchesNone Patches = iota
	PatchesPAL60
	PatchesVIDTV
	PatchesPAL60VIDTV
	PatchesNTSC
	PatchesNTSCVIDTV
	PatchesPAL50
	PatchesPAL50VIDTV
)
